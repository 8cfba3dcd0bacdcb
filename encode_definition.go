package stockroom

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

const frontMatterDelim = "---\n"

// field binds a front matter key to a Definition field.
type field struct {
	key string
	get func(*Definition) *yaml.Node // nil when the field is unset
	set func(*Definition, *yaml.Node) error
}

// knownFields lists the front matter fields understood by the engine, in the
// order they are written in new files.
var knownFields = []field{
	{"id", func(d *Definition) *yaml.Node { return scalarNode(d.ID) }, func(d *Definition, n *yaml.Node) error { return scalar(n, &d.ID) }},
	{"name", func(d *Definition) *yaml.Node { return scalarNode(d.Name) }, func(d *Definition, n *yaml.Node) error { return scalar(n, &d.Name) }},
	{"summary", func(d *Definition) *yaml.Node { return scalarNode(d.Summary) }, func(d *Definition, n *yaml.Node) error { return scalar(n, &d.Summary) }},
	{"labels", getLabels, setLabels},
	{"attributes", getAttributes, setAttributes},
	{"unit", func(d *Definition) *yaml.Node { return scalarNode(d.Unit) }, func(d *Definition, n *yaml.Node) error { return scalar(n, &d.Unit) }},
	{"parent", func(d *Definition) *yaml.Node { return scalarNode(d.Parent) }, func(d *Definition, n *yaml.Node) error { return scalar(n, &d.Parent) }},
	{"price", getPrice, setPrice},
	{"currency", func(d *Definition) *yaml.Node { return scalarNode(d.Price.cur) }, func(d *Definition, n *yaml.Node) error { return scalar(n, &d.Price.cur) }},
}

func isKnownField(key string) bool {
	for _, f := range knownFields {
		if f.key == key {
			return true
		}
	}
	return false
}

func scalarNode(v string) *yaml.Node {
	if v == "" {
		return nil
	}
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v}
}

func scalar(n *yaml.Node, v *string) error {
	if n.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected a single value", n.Line)
	}
	*v = n.Value
	return nil
}

func getLabels(d *Definition) *yaml.Node {
	if len(d.Labels) == 0 {
		return nil
	}
	n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	for _, l := range d.Labels {
		n.Content = append(n.Content, scalarNode(l))
	}
	return n
}

func setLabels(d *Definition, n *yaml.Node) error {
	if n.Kind == yaml.ScalarNode {
		// a single label written as a plain value.
		d.Labels = []string{n.Value}
		return nil
	}
	return n.Decode(&d.Labels)
}

func getAttributes(d *Definition) *yaml.Node {
	if len(d.Attributes) == 0 {
		return nil
	}
	n := new(yaml.Node)
	if err := n.Encode(d.Attributes); err != nil {
		return nil
	}
	return n
}

func setAttributes(d *Definition, n *yaml.Node) error {
	if n.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: attributes must be a mapping", n.Line)
	}
	return n.Decode(&d.Attributes)
}

func getPrice(d *Definition) *yaml.Node {
	if d.Price.value.IsZero() {
		return nil
	}
	v := d.Price.value.String()
	tag := "!!int"
	if strings.Contains(v, ".") {
		tag = "!!float"
	}
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: v}
}

func setPrice(d *Definition, n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: price must be a number", n.Line)
	}
	v, err := decimal.NewFromString(n.Value)
	if err != nil {
		return fmt.Errorf("line %d: invalid price %q", n.Line, n.Value)
	}
	d.Price.value = v
	return nil
}

// sameNode compares the content of two nodes, ignoring style and position.
func sameNode(a, b *yaml.Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind != b.Kind || a.Value != b.Value || len(a.Content) != len(b.Content) {
		return false
	}
	for i := range a.Content {
		if !sameNode(a.Content[i], b.Content[i]) {
			return false
		}
	}
	return true
}

// splitFrontMatter separates the YAML front matter from the markdown body.
// A file that does not start with a delimiter is all body.
func splitFrontMatter(data []byte) (front, body []byte, err error) {
	rest, ok := bytes.CutPrefix(data, []byte(frontMatterDelim))
	if !ok {
		return nil, data, nil
	}
	if after, ok := bytes.CutPrefix(rest, []byte(frontMatterDelim)); ok {
		return nil, after, nil
	}
	if i := bytes.Index(rest, []byte("\n"+frontMatterDelim)); i >= 0 {
		return rest[:i+1], rest[i+1+len(frontMatterDelim):], nil
	}
	if bytes.HasSuffix(rest, []byte("\n---")) {
		return rest[:len(rest)-3], nil, nil
	}
	return nil, nil, errors.New("front matter is not terminated by '---'")
}

// DecodeDefinition parses a definition file. stem is the file name without
// extension, used as id when the front matter does not declare one.
func DecodeDefinition(kind Kind, stem string, data []byte) (*Definition, error) {
	front, body, err := splitFrontMatter(data)
	if err != nil {
		return nil, err
	}
	d := &Definition{Kind: kind, Body: string(body)}

	var doc yaml.Node
	if err := yaml.Unmarshal(front, &doc); err != nil {
		return nil, fmt.Errorf("invalid front matter: %w", err)
	}
	switch {
	case doc.Kind == 0:
		d.node = &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	case len(doc.Content) == 1 && doc.Content[0].Kind == yaml.MappingNode:
		d.node = doc.Content[0]
	default:
		return nil, errors.New("front matter is not a mapping")
	}

	for i := 0; i+1 < len(d.node.Content); i += 2 {
		k, v := d.node.Content[i].Value, d.node.Content[i+1]
		for _, f := range knownFields {
			if f.key != k {
				continue
			}
			if err := f.set(d, v); err != nil {
				return nil, fmt.Errorf("field %q: %w", k, err)
			}
		}
	}
	if d.ID == "" {
		d.ID = stem
	}
	if d.ID == "" {
		return nil, errors.New("missing id")
	}
	d.orig = d.clone()
	return d, nil
}

// sync folds known fields edited since the definition was read into the
// front matter. Unchanged fields keep their original node.
func (d *Definition) sync() {
	orig := d.orig
	if orig == nil {
		orig = &Definition{}
	}
	for _, f := range knownFields {
		want := f.get(d)
		if sameNode(want, f.get(orig)) {
			continue
		}
		d.setNode(f.key, want)
	}
	d.orig = d.clone()
}

// EncodeDefinition writes the definition file. Pending edits to known fields
// are folded into the front matter first; unknown fields are written back as
// they were read.
func EncodeDefinition(w io.Writer, d *Definition) error {
	d.sync()
	var buf bytes.Buffer
	if d.node != nil && len(d.node.Content) > 0 {
		buf.WriteString(frontMatterDelim)
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(d.node); err != nil {
			return fmt.Errorf("could not encode front matter of %s: %w", d.Ref(), err)
		}
		if err := enc.Close(); err != nil {
			return err
		}
		buf.WriteString(frontMatterDelim)
	}
	buf.WriteString(d.Body)
	_, err := w.Write(buf.Bytes())
	return err
}
