package nodestore

// TableName is the table mirrored trees are stored in.
const TableName = "tree_nodes"

// Columns lists the columns the store reads and writes.
var Columns = []string{"id", "session", "parent_id", "position", "tag", "text", "attrs"}

// Row is one stored node. Roots of a session have a NULL parent and position
// 0; rows not placed yet have a NULL parent and position Detached.
type Row struct {
	ID       int64  `gorm:"primaryKey;autoIncrement"`
	Session  string `gorm:"size:64;index"`
	ParentID *int64 `gorm:"index"`
	Position int
	Tag      string `gorm:"size:64"`
	Text     string `gorm:"type:text"`
	// Attrs holds the attributes as a JSON object, empty when there are none.
	Attrs string `gorm:"type:text"`
}

// TableName overrides the gorm table name.
func (Row) TableName() string {
	return TableName
}

// Record is the live payload of a stored node.
type Record struct {
	ID    int64
	Tag   string
	Text  string
	Attrs string
}
