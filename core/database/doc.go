// Package database handles the optional MySQL connection used by the
// relational tree mirror.
//
// It wraps GORM with the connection settings read from configuration and
// offers a small schema inspector so the mirror can verify its table before
// the first pass.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    logg.Warn("Optional database connection failed", zap.Error(err))
//	}
//
//	missing, err := database.MissingColumns(db, "tree_nodes", []string{"id", "parent_id"})
package database
