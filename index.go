package stockroom

import (
	"cmp"
	"maps"
	"slices"

	"github.com/etnz/stockroom/date"
)

// Index answers queries over definitions and the replayed ledger. It is
// built from scratch on every scan and never modified.
type Index struct {
	defs     map[Ref]*Definition  // includes placeholders
	refs     []Ref                // sorted by kind then id
	terms    map[Ref]*terms
	postings map[string][]Ref     // search word to refs, sorted like refs
	words    []string             // keys of postings, sorted
	children map[string][]string  // location id to nested location ids
	held     map[string][]Content // location id to contents, by part id
	holders  map[string][]Content // part id to contents, by location id
	journal  *Journal
	snap     *Snapshot
}

// Content is the quantity of a part held at a location, or used by a
// project.
type Content struct {
	Part     *Definition
	Location string // location or project id
	Qty      Quantity
}

// NewIndex indexes defs. Ids referenced by the journal or by a location
// parent without a definition get a placeholder definition.
func NewIndex(defs *Definitions, journal *Journal, snap *Snapshot) *Index {
	x := &Index{
		defs:     make(map[Ref]*Definition, defs.Len()),
		terms:    make(map[Ref]*terms, defs.Len()),
		postings: make(map[string][]Ref),
		children: make(map[string][]string),
		held:     make(map[string][]Content),
		holders:  make(map[string][]Content),
		journal:  journal,
		snap:     snap,
	}
	for d := range defs.All() {
		x.defs[d.Ref()] = d
	}
	placeholder := func(r Ref) {
		if _, ok := x.defs[r]; !ok && !r.IsZero() {
			x.defs[r] = newPlaceholder(r)
		}
	}
	for e := range journal.Entries() {
		for _, r := range e.Refs() {
			placeholder(r)
		}
	}
	for r, d := range x.defs {
		if r.Kind == KindLocation && d.Parent != "" {
			placeholder(Location(d.Parent))
		}
	}

	for r, d := range x.defs {
		x.refs = append(x.refs, r)
		x.terms[r] = newTerms(d)
		if r.Kind == KindLocation && d.Parent != "" {
			x.children[d.Parent] = append(x.children[d.Parent], d.ID)
		}
	}
	slices.SortFunc(x.refs, compareRef)
	for _, c := range x.children {
		slices.Sort(c)
	}

	for _, r := range x.refs {
		for _, w := range x.terms[r].tokens {
			x.postings[w] = append(x.postings[w], r)
		}
	}
	x.words = slices.Sorted(maps.Keys(x.postings))

	for k, q := range snap.Stock() {
		c := Content{Part: x.definition(Part(k.Part)), Location: k.Location, Qty: q}
		x.held[k.Location] = append(x.held[k.Location], c)
		x.holders[k.Part] = append(x.holders[k.Part], c)
	}
	for _, list := range x.held {
		sortContents(list)
	}
	for _, list := range x.holders {
		sortContents(list)
	}
	return x
}

// Snapshot returns the replayed state the index was built on.
func (x *Index) Snapshot() *Snapshot { return x.snap }

// Journal returns the ledger entries the index was built on.
func (x *Index) Journal() *Journal { return x.journal }

// Definition returns the definition of ref, possibly a placeholder.
func (x *Index) Definition(ref Ref) (*Definition, bool) {
	d, ok := x.defs[ref]
	return d, ok
}

// definition never returns nil.
func (x *Index) definition(ref Ref) *Definition {
	if d, ok := x.defs[ref]; ok {
		return d
	}
	return newPlaceholder(ref)
}

// All returns the definitions of a kind, sorted by id. An empty kind returns
// all definitions.
func (x *Index) All(kind Kind) []*Definition {
	var list []*Definition
	for _, r := range x.refs {
		if kind == "" || r.Kind == kind {
			list = append(list, x.defs[r])
		}
	}
	return list
}

// Placeholders returns the ids referenced without a definition.
func (x *Index) Placeholders() []*Definition {
	var list []*Definition
	for _, r := range x.refs {
		if d := x.defs[r]; d.Missing {
			list = append(list, d)
		}
	}
	return list
}

// Children returns the locations directly nested in location.
func (x *Index) Children(location string) []string {
	return slices.Clone(x.children[location])
}

// descendants returns location and all nested locations, depth first.
// Cycles in parent links are cut.
func (x *Index) descendants(location string) []string {
	seen := map[string]bool{}
	var list []string
	var walk func(string)
	walk = func(l string) {
		if seen[l] {
			return
		}
		seen[l] = true
		list = append(list, l)
		for _, c := range x.children[l] {
			walk(c)
		}
	}
	walk(location)
	return list
}

// LocationPath returns the chain of locations from the outermost container
// down to location.
func (x *Index) LocationPath(location string) []string {
	seen := map[string]bool{}
	var path []string
	for l := location; l != "" && !seen[l]; {
		seen[l] = true
		path = append(path, l)
		l = x.definition(Location(l)).Parent
	}
	slices.Reverse(path)
	return path
}

// ListContents returns the parts held at location, sorted by part id. When
// recursive, the parts held in nested locations are listed too.
func (x *Index) ListContents(location string, recursive bool) []Content {
	locations := []string{location}
	if recursive {
		locations = x.descendants(location)
	}
	var list []Content
	for _, l := range locations {
		list = append(list, x.held[l]...)
	}
	if len(locations) > 1 {
		sortContents(list)
	}
	return list
}

// ListConsumed returns the parts used by project, sorted by part id.
func (x *Index) ListConsumed(project string) []Content {
	var list []Content
	for part, q := range x.snap.UsedIn(project) {
		list = append(list, Content{Part: x.definition(Part(part)), Location: project, Qty: q})
	}
	sortContents(list)
	return list
}

// WhereIs returns the locations holding part, sorted by location id.
func (x *Index) WhereIs(part string) []Content {
	return slices.Clone(x.holders[part])
}

func sortContents(list []Content) {
	slices.SortFunc(list, func(a, b Content) int {
		if c := cmp.Compare(a.Part.ID, b.Part.ID); c != 0 {
			return c
		}
		return cmp.Compare(a.Location, b.Location)
	})
}

// History returns the entries referencing ref within r, in replay order. A
// zero range is unbounded.
func (x *Index) History(ref Ref, r date.Range) []Entry {
	var list []Entry
	for e := range x.journal.Entries() {
		if r.ContainsTime(e.Time) && e.References(ref) {
			list = append(list, e)
		}
	}
	return list
}

// Valuation returns the value of the parts held at location, one amount per
// currency sorted by currency, and the ids of the held parts without a price.
func (x *Index) Valuation(location string, recursive bool) (values []Money, unpriced []string) {
	totals := make(map[string]Money)
	for _, c := range x.ListContents(location, recursive) {
		if c.Part.Price.IsZero() {
			if !slices.Contains(unpriced, c.Part.ID) {
				unpriced = append(unpriced, c.Part.ID)
			}
			continue
		}
		cur := c.Part.Price.Currency()
		totals[cur] = totals[cur].Add(c.Part.Price.Mul(c.Qty))
	}
	for _, v := range totals {
		values = append(values, v)
	}
	slices.SortFunc(values, func(a, b Money) int { return cmp.Compare(a.Currency(), b.Currency()) })
	return values, unpriced
}
