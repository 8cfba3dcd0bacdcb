package stockroom

import (
	"maps"
	"slices"

	"gopkg.in/yaml.v3"
)

// DefaultUnit is the counting unit of a part that does not declare one.
const DefaultUnit = "pc"

// Definition is the description of a part, location, project or source.
//
// Definitions are hand-edited markdown files with a YAML front matter. Only a
// handful of fields are known to the engine; any other front matter field is
// kept, in order, and written back untouched.
//
// A Definition never holds a quantity: stock is derived from the ledger.
type Definition struct {
	Kind       Kind
	ID         string
	Name       string
	Summary    string
	Labels     []string
	Attributes map[string]string
	Unit       string // counting unit, parts only
	Parent     string // containing location id, locations only
	Price      Money  // unit price, parts only

	// Body is the markdown text following the front matter.
	Body string

	// Missing is true for placeholders standing for ids that only appear in
	// the ledger.
	Missing bool

	node *yaml.Node  // front matter mapping, as read
	orig *Definition // known fields as read, nil for new definitions
	path string      // file the definition was read from
}

// NewDefinition creates an empty definition.
func NewDefinition(kind Kind, id string) *Definition {
	return &Definition{Kind: kind, ID: id}
}

// newPlaceholder creates the definition of an entity referenced by the ledger
// but not defined.
func newPlaceholder(ref Ref) *Definition {
	return &Definition{Kind: ref.Kind, ID: ref.ID, Missing: true}
}

// Ref returns the reference to this definition.
func (d *Definition) Ref() Ref { return Ref{d.Kind, d.ID} }

// Title returns the name, or the id when there is no name.
func (d *Definition) Title() string {
	if d.Name != "" {
		return d.Name
	}
	return d.ID
}

// CountingUnit returns the unit quantities of this part are expressed in.
func (d *Definition) CountingUnit() string {
	if d.Unit == "" {
		return DefaultUnit
	}
	return d.Unit
}

// Path returns the file the definition was loaded from, if any.
func (d *Definition) Path() string { return d.path }

// Extras returns the keys of the front matter fields unknown to the engine,
// in file order.
func (d *Definition) Extras() []string {
	if d.node == nil {
		return nil
	}
	var keys []string
	for i := 0; i+1 < len(d.node.Content); i += 2 {
		if k := d.node.Content[i].Value; !isKnownField(k) {
			keys = append(keys, k)
		}
	}
	return keys
}

// Extra decodes the unknown front matter field key.
func (d *Definition) Extra(key string) (any, bool) {
	_, v := d.lookup(key)
	if v == nil || isKnownField(key) {
		return nil, false
	}
	var x any
	if err := v.Decode(&x); err != nil {
		return nil, false
	}
	return x, true
}

// SetExtra sets an unknown front matter field, in place if it already exists.
func (d *Definition) SetExtra(key string, value any) error {
	if isKnownField(key) {
		return invalid("set", d.Ref(), "%q is not an extra field", key)
	}
	n := new(yaml.Node)
	if err := n.Encode(value); err != nil {
		return err
	}
	d.setNode(key, n)
	return nil
}

// Document returns the definition as a generic document, known and unknown
// fields merged, as used by attribute queries.
func (d *Definition) Document() map[string]any {
	doc := make(map[string]any)
	if d.node != nil {
		_ = d.node.Decode(&doc)
	}
	for _, f := range knownFields {
		delete(doc, f.key)
		if n := f.get(d); n != nil {
			var v any
			if err := n.Decode(&v); err == nil {
				doc[f.key] = v
			}
		}
	}
	doc["kind"] = string(d.Kind)
	doc["id"] = d.ID
	doc["missing"] = d.Missing
	return doc
}

// clone returns a copy of the known fields of d.
func (d *Definition) clone() *Definition {
	c := &Definition{
		Kind:       d.Kind,
		ID:         d.ID,
		Name:       d.Name,
		Summary:    d.Summary,
		Labels:     slices.Clone(d.Labels),
		Attributes: maps.Clone(d.Attributes),
		Unit:       d.Unit,
		Parent:     d.Parent,
		Price:      d.Price,
		Body:       d.Body,
		Missing:    d.Missing,
	}
	return c
}

// lookup returns the key and value nodes of a front matter field.
func (d *Definition) lookup(key string) (k, v *yaml.Node) {
	if d.node == nil {
		return nil, nil
	}
	for i := 0; i+1 < len(d.node.Content); i += 2 {
		if d.node.Content[i].Value == key {
			return d.node.Content[i], d.node.Content[i+1]
		}
	}
	return nil, nil
}

// setNode replaces the value of key, or appends the field. A nil value
// removes the field.
func (d *Definition) setNode(key string, value *yaml.Node) {
	if d.node == nil {
		d.node = &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	}
	for i := 0; i+1 < len(d.node.Content); i += 2 {
		if d.node.Content[i].Value != key {
			continue
		}
		if value == nil {
			d.node.Content = slices.Delete(d.node.Content, i, i+2)
			return
		}
		// keep comments attached to the old value.
		old := d.node.Content[i+1]
		value.HeadComment, value.LineComment, value.FootComment = old.HeadComment, old.LineComment, old.FootComment
		d.node.Content[i+1] = value
		return
	}
	if value == nil {
		return
	}
	k := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}
	d.node.Content = append(d.node.Content, k, value)
}
