package stylesheet

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Declarations maps CSS properties to values.
type Declarations map[string]string

// Style is the styling attached to one element: plain declarations plus
// declarations scoped to pseudo states (":hover") and media queries
// ("(max-width: 600px)").
type Style struct {
	Decls  Declarations            `json:"decls,omitempty" yaml:"decls,omitempty"`
	States map[string]Declarations `json:"states,omitempty" yaml:"states,omitempty"`
	Media  map[string]Declarations `json:"media,omitempty" yaml:"media,omitempty"`
}

// IsZero reports whether the style declares nothing.
func (s Style) IsZero() bool {
	return len(s.Decls) == 0 && len(s.States) == 0 && len(s.Media) == 0
}

// Equal reports whether two styles declare the same rules.
func (s Style) Equal(o Style) bool {
	return maps.Equal(s.Decls, o.Decls) &&
		maps.EqualFunc(s.States, o.States, maps.Equal[Declarations, Declarations]) &&
		maps.EqualFunc(s.Media, o.Media, maps.Equal[Declarations, Declarations])
}

// Class returns the content-derived class name of the style, empty for a
// zero style. Styles that render the same CSS share a class.
func (s Style) Class() string {
	if s.IsZero() {
		return ""
	}
	return fmt.Sprintf("s%016x", xxhash.Sum64String(s.Render("&")))
}

// Attr is the element attribute that carries the class of its style.
const Attr = "data-css"

// Selector returns the attribute selector matching elements of class.
func Selector(class string) string {
	return "[" + Attr + `="` + class + `"]`
}

// Render returns the CSS text of the style scoped to elements whose Attr
// holds class.
func (s Style) Render(class string) string {
	var b strings.Builder
	sel := Selector(class)

	if len(s.Decls) > 0 {
		writeBlock(&b, sel, s.Decls)
		b.WriteByte('\n')
	}
	for _, state := range slices.Sorted(maps.Keys(s.States)) {
		writeBlock(&b, sel+state, s.States[state])
		b.WriteByte('\n')
	}
	for _, query := range slices.Sorted(maps.Keys(s.Media)) {
		b.WriteString("@media " + query + "{")
		writeBlock(&b, sel, s.Media[query])
		b.WriteString("}\n")
	}
	return b.String()
}

func writeBlock(b *strings.Builder, selector string, decls Declarations) {
	b.WriteString(selector)
	b.WriteByte('{')
	for i, prop := range slices.Sorted(maps.Keys(decls)) {
		if i > 0 {
			b.WriteByte(';')
		}
		b.WriteString(prop + ":" + decls[prop])
	}
	b.WriteByte('}')
}
