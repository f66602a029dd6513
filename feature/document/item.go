package document

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"treesync/core/reconcile"
	"treesync/feature/stylesheet"
)

// CSSAttr is the attribute carrying the class of an element's style. Rules
// rendered by the stylesheet package select on it.
const CSSAttr = stylesheet.Attr

// Item is the declarative payload of a document view: an element when Tag
// is set, a text node otherwise.
type Item struct {
	Tag   string            `json:"tag,omitempty" yaml:"tag,omitempty"`
	Text  string            `json:"text,omitempty" yaml:"text,omitempty"`
	Attrs map[string]string `json:"attrs,omitempty" yaml:"attrs,omitempty"`
	Style stylesheet.Style  `json:"style,omitempty" yaml:"style,omitempty"`
}

// El returns an element item.
func El(tag string) Item {
	return Item{Tag: tag}
}

// Text returns a text item.
func Text(text string) Item {
	return Item{Text: text}
}

// IsText reports whether the item is a text node.
func (it Item) IsText() bool {
	return it.Tag == ""
}

// With returns a copy of the item with attribute key set.
func (it Item) With(key, value string) Item {
	attrs := maps.Clone(it.Attrs)
	if attrs == nil {
		attrs = map[string]string{}
	}
	attrs[key] = value
	it.Attrs = attrs
	return it
}

// Styled returns a copy of the item with style s.
func (it Item) Styled(s stylesheet.Style) Item {
	it.Style = s
	return it
}

// Attributes returns the attributes to materialize, including the style
// class.
func (it Item) Attributes() map[string]string {
	class := it.Style.Class()
	if class == "" {
		return it.Attrs
	}
	attrs := maps.Clone(it.Attrs)
	if attrs == nil {
		attrs = make(map[string]string, 1)
	}
	attrs[CSSAttr] = class
	return attrs
}

func (it Item) String() string {
	if it.IsText() {
		return fmt.Sprintf("%q", it.Text)
	}
	return "<" + it.Tag + formatAttrs(it.Attributes()) + ">"
}

func formatAttrs(attrs map[string]string) string {
	var b strings.Builder
	for _, k := range slices.Sorted(maps.Keys(attrs)) {
		b.WriteString(" " + k)
		if v := attrs[k]; v != "" {
			b.WriteString(fmt.Sprintf("=%q", v))
		}
	}
	return b.String()
}

// H returns an element view with children.
func H(tag string, children ...reconcile.View[Item]) reconcile.View[Item] {
	return reconcile.NewNode(El(tag), children...)
}

// T returns a text view.
func T(text string) reconcile.View[Item] {
	return reconcile.NewLeaf(Text(text))
}

// Node is the live payload mirroring one document node.
type Node struct {
	ID    NodeID
	Tag   string
	Text  string
	Attrs reconcile.Map[string, string]
}

func (n Node) String() string {
	if n.Tag == "" {
		return fmt.Sprintf("%v%q", n.ID, n.Text)
	}
	return fmt.Sprintf("%v<%s>", n.ID, n.Tag)
}

// CollectStyles returns a sheet holding the styles of every element of v.
func CollectStyles(v reconcile.View[Item]) *stylesheet.Sheet {
	sheet := stylesheet.NewSheet()
	collect(sheet, v)
	return sheet
}

func collect(sheet *stylesheet.Sheet, v reconcile.View[Item]) {
	sheet.Add(v.Payload.Style)
	for _, c := range v.Children {
		collect(sheet, c)
	}
}
