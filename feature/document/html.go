package document

import (
	"bytes"
	"fmt"
	"io"
	"maps"
	"slices"

	"golang.org/x/net/html"
)

// RenderHTML writes the subtree of id as HTML.
func (d *Document) RenderHTML(w io.Writer, id NodeID) error {
	d.mu.RLock()
	n, err := d.htmlNode(id)
	d.mu.RUnlock()
	if err != nil {
		return err
	}
	return html.Render(w, n)
}

// HTML returns the subtree of id as HTML.
func (d *Document) HTML(id NodeID) (string, error) {
	var buf bytes.Buffer
	if err := d.RenderHTML(&buf, id); err != nil {
		return "", fmt.Errorf("failed to render %v: %w", id, err)
	}
	return buf.String(), nil
}

func (d *Document) htmlNode(id NodeID) (*html.Node, error) {
	n, err := d.get(id)
	if err != nil {
		return nil, err
	}
	if n.kind == TextNode {
		return &html.Node{Type: html.TextNode, Data: n.text}, nil
	}

	out := &html.Node{Type: html.ElementNode, Data: n.tag}
	for _, k := range slices.Sorted(maps.Keys(n.attrs)) {
		out.Attr = append(out.Attr, html.Attribute{Key: k, Val: n.attrs[k]})
	}
	for _, c := range n.children {
		child, err := d.htmlNode(c)
		if err != nil {
			return nil, err
		}
		out.AppendChild(child)
	}
	return out, nil
}
