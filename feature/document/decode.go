package document

import (
	"errors"
	"fmt"
	"strings"

	"treesync/core/reconcile"
	"treesync/core/utils"
	"treesync/feature/stylesheet"

	"gopkg.in/yaml.v3"
)

// rawNode is the serialized form of a view node. A bare scalar is a text
// node.
//
//	tag: ul
//	attrs: {id: list, hidden: false}
//	style: {color: red, ":hover": {color: blue}, "@media (max-width: 600px)": {display: none}}
//	children:
//	  - tag: li
//	    text: one
//	  - plain text
type rawNode struct {
	Tag      string         `yaml:"tag"`
	Text     *string        `yaml:"text"`
	Attrs    map[string]any `yaml:"attrs"`
	Style    map[string]any `yaml:"style"`
	Children []rawNode      `yaml:"children"`
}

func (r *rawNode) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		text := value.Value
		*r = rawNode{Text: &text}
		return nil
	}
	type plain rawNode
	return value.Decode((*plain)(r))
}

// DecodeView parses a YAML or JSON view.
func DecodeView(data []byte) (reconcile.View[Item], error) {
	var raw rawNode
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return reconcile.View[Item]{}, fmt.Errorf("failed to parse view: %w", err)
	}
	return raw.view("root")
}

func (r rawNode) view(path string) (reconcile.View[Item], error) {
	if r.Tag == "" {
		if r.Text == nil {
			return reconcile.View[Item]{}, fmt.Errorf("%s: node needs a tag or a text", path)
		}
		if len(r.Children) > 0 || len(r.Attrs) > 0 || len(r.Style) > 0 {
			return reconcile.View[Item]{}, fmt.Errorf("%s: text nodes take no attributes, style or children", path)
		}
		return reconcile.NewLeaf(Text(*r.Text)), nil
	}

	item := Item{Tag: r.Tag}
	for key, value := range r.Attrs {
		if v, ok := utils.AttrValue(value); ok {
			item = item.With(key, v)
		}
	}
	style, err := decodeStyle(r.Style)
	if err != nil {
		return reconcile.View[Item]{}, fmt.Errorf("%s: %w", path, err)
	}
	item.Style = style

	var children []reconcile.View[Item]
	if r.Text != nil {
		children = append(children, reconcile.NewLeaf(Text(*r.Text)))
	}
	for i, c := range r.Children {
		child, err := c.view(fmt.Sprintf("%s.%s[%d]", path, r.Tag, i))
		if err != nil {
			return reconcile.View[Item]{}, err
		}
		children = append(children, child)
	}
	return reconcile.NewNode(item, children...), nil
}

func decodeStyle(raw map[string]any) (stylesheet.Style, error) {
	var s stylesheet.Style
	for key, value := range raw {
		switch {
		case strings.HasPrefix(key, ":"):
			decls, err := decodeDecls(key, value)
			if err != nil {
				return s, err
			}
			if s.States == nil {
				s.States = map[string]stylesheet.Declarations{}
			}
			s.States[key] = decls
		case strings.HasPrefix(key, "@media "):
			decls, err := decodeDecls(key, value)
			if err != nil {
				return s, err
			}
			if s.Media == nil {
				s.Media = map[string]stylesheet.Declarations{}
			}
			s.Media[strings.TrimSpace(strings.TrimPrefix(key, "@media "))] = decls
		default:
			if _, nested := value.(map[string]any); nested {
				return s, fmt.Errorf("style %q: unsupported nested block", key)
			}
			if s.Decls == nil {
				s.Decls = stylesheet.Declarations{}
			}
			s.Decls[key] = utils.ToString(value)
		}
	}
	return s, nil
}

func decodeDecls(selector string, value any) (stylesheet.Declarations, error) {
	block, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("style %q: expected a block of declarations", selector)
	}
	decls := make(stylesheet.Declarations, len(block))
	for prop, v := range block {
		if _, nested := v.(map[string]any); nested {
			return nil, fmt.Errorf("style %q: unsupported nested block %q", selector, prop)
		}
		decls[prop] = utils.ToString(v)
	}
	return decls, nil
}

// EncodeView renders a view in the YAML form read by DecodeView.
func EncodeView(v reconcile.View[Item]) ([]byte, error) {
	raw, err := encode(v)
	if err != nil {
		return nil, err
	}
	return yaml.Marshal(raw)
}

type encodedNode struct {
	Tag      string            `yaml:"tag"`
	Attrs    map[string]string `yaml:"attrs,omitempty"`
	Style    map[string]any    `yaml:"style,omitempty"`
	Children []any             `yaml:"children,omitempty"`
}

func encode(v reconcile.View[Item]) (any, error) {
	item := v.Payload
	if item.IsText() {
		if !v.IsLeaf() {
			return nil, errors.New("text nodes cannot have children")
		}
		return item.Text, nil
	}

	n := encodedNode{Tag: item.Tag, Attrs: item.Attrs}
	if !item.Style.IsZero() {
		n.Style = map[string]any{}
		for k, val := range item.Style.Decls {
			n.Style[k] = val
		}
		for state, decls := range item.Style.States {
			n.Style[state] = decls
		}
		for query, decls := range item.Style.Media {
			n.Style["@media "+query] = decls
		}
	}
	for _, c := range v.Children {
		child, err := encode(c)
		if err != nil {
			return nil, err
		}
		n.Children = append(n.Children, child)
	}
	return n, nil
}
