package stockroom

import (
	"bytes"
	"cmp"
	"fmt"
	"iter"
	"slices"
	"time"
)

// Journal holds the ledger entries in replay order: sorted by time, origin,
// sequence and content, with identical entries collapsed. A Journal is
// immutable.
type Journal struct {
	entries  []Entry
	corrupt  map[string]bool // group ids with missing or extra lines
	warnings Warnings
}

type keyedEntry struct {
	Entry
	key []byte // canonical form
}

// NewJournal normalizes entries into a Journal. The result does not depend
// on the order of entries, nor on how many times an entry is repeated.
func NewJournal(entries []Entry) *Journal {
	keyed := make([]keyedEntry, 0, len(entries))
	j := &Journal{corrupt: make(map[string]bool)}
	for _, e := range entries {
		key, err := e.MarshalJSON()
		if err != nil {
			j.warn(e, "", "unencodable entry: "+err.Error())
			continue
		}
		keyed = append(keyed, keyedEntry{e, key})
	}
	slices.SortStableFunc(keyed, compareKeyed)

	j.entries = make([]Entry, 0, len(keyed))
	for i, k := range keyed {
		if i > 0 {
			prev := keyed[i-1]
			if bytes.Equal(prev.key, k.key) {
				continue
			}
			if k.Seq > 0 && sameIdentity(prev.Entry, k.Entry) {
				j.warn(k.Entry, k.Group, fmt.Sprintf("conflicting entries share identity %s/%s/%d, both kept", k.Time.Format(time.RFC3339Nano), k.Origin, k.Seq))
			}
		}
		j.entries = append(j.entries, k.Entry)
	}
	j.checkGroups()
	return j
}

func compareKeyed(a, b keyedEntry) int {
	if c := a.Time.Compare(b.Time); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Origin, b.Origin); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Seq, b.Seq); c != 0 {
		return c
	}
	return bytes.Compare(a.key, b.key)
}

func sameIdentity(a, b Entry) bool {
	return a.Time.Equal(b.Time) && a.Origin == b.Origin && a.Seq == b.Seq
}

// checkGroups marks the groups whose number of distinct lines differs from
// their declared size, and the split groups that do not conserve quantity:
// one parent line whose quantity equals the sum of the pieces.
func (j *Journal) checkGroups() {
	type group struct {
		first   Entry
		lines   int
		of      int
		mixed   bool // members disagree on the group size
		splits  int
		parents int
		debit   Quantity
		credit  Quantity
	}
	groups := make(map[string]*group)
	var order []string
	for _, e := range j.entries {
		if e.Group == "" {
			continue
		}
		g, ok := groups[e.Group]
		if !ok {
			g = &group{first: e, of: e.Of}
			groups[e.Group] = g
			order = append(order, e.Group)
		}
		g.lines++
		if e.Of != g.of {
			g.mixed = true
		}
		if e.Action != ActSplit {
			continue
		}
		g.splits++
		if e.From != "" {
			g.parents++
			g.debit = g.debit.Add(e.Qty)
		} else {
			g.credit = g.credit.Add(e.Qty)
		}
	}
	for _, id := range order {
		g := groups[id]
		switch {
		case g.mixed:
			j.corruptGroup(g.first, id, "lines disagree on the group size")
		case g.lines != g.of:
			j.corruptGroup(g.first, id, fmt.Sprintf("found %d of %d lines", g.lines, g.of))
		case g.splits == 0:
		case g.splits != g.lines:
			j.corruptGroup(g.first, id, "split lines mixed with other actions")
		case g.parents != 1:
			j.corruptGroup(g.first, id, fmt.Sprintf("split has %d parent lines, want 1", g.parents))
		case !g.debit.Equal(g.credit):
			j.corruptGroup(g.first, id, fmt.Sprintf("split pieces sum to %s, parent has %s", g.credit, g.debit))
		}
	}
}

func (j *Journal) corruptGroup(e Entry, group, msg string) {
	j.corrupt[group] = true
	j.warnings = append(j.warnings, Warning{File: e.file, Line: e.line, Group: group, Message: ErrCorruptGroup.Error() + ": " + msg, Err: ErrCorruptGroup})
}

func (j *Journal) warn(e Entry, group, msg string) {
	j.warnings = append(j.warnings, Warning{File: e.file, Line: e.line, Group: group, Message: msg})
}

// Entries iterates over the entries in replay order.
func (j *Journal) Entries() iter.Seq[Entry] {
	return slices.Values(j.entries)
}

// Len returns the number of distinct entries.
func (j *Journal) Len() int { return len(j.entries) }

// Warnings returns the problems found while normalizing: conflicting
// identities and corrupt groups.
func (j *Journal) Warnings() Warnings { return slices.Clone(j.warnings) }

// Corrupt reports whether group is incomplete or inconsistent.
func (j *Journal) Corrupt(group string) bool { return j.corrupt[group] }

// With returns a new journal holding the entries of j and more.
func (j *Journal) With(more ...Entry) *Journal {
	all := make([]Entry, 0, len(j.entries)+len(more))
	all = append(all, j.entries...)
	all = append(all, more...)
	return NewJournal(all)
}

// event is a single, atomic change of the stock derived from an entry.
// Events are the lowest-level facts folded by the replay.
type event interface {
	part() string
}

// --- Stock Events ---

// creditStock increases the quantity of a part at a location.
type creditStock struct {
	item, location string
	qty            Quantity
}

func (e creditStock) part() string { return e.item }

// debitStock decreases the quantity of a part at a location.
type debitStock struct {
	item, location string
	qty            Quantity
}

func (e debitStock) part() string { return e.item }

// adjustStock applies a signed correction found by a recount.
type adjustStock struct {
	item, location string
	delta          Quantity
}

func (e adjustStock) part() string { return e.item }

// requireStock sets the minimum quantity wanted at a location.
type requireStock struct {
	item, location string
	qty            Quantity
}

func (e requireStock) part() string { return e.item }

// --- Project Events ---

// consume records parts put into a project.
type consume struct {
	item, project string
	qty           Quantity
}

func (e consume) part() string { return e.item }

// reclaim records parts taken back out of a project.
type reclaim struct {
	item, project string
	qty           Quantity
}

func (e reclaim) part() string { return e.item }

// --- Source Events ---

// placeOrder increases the quantity on order at a source.
type placeOrder struct {
	item, source string
	qty          Quantity
}

func (e placeOrder) part() string { return e.item }

// cancelOrder decreases the quantity on order at a source.
type cancelOrder struct {
	item, source string
	qty          Quantity
}

func (e cancelOrder) part() string { return e.item }

// receive records parts delivered by a source, settling its orders.
type receive struct {
	item, source string
	qty          Quantity
}

func (e receive) part() string { return e.item }

// returnToSource records parts sent back to a source.
type returnToSource struct {
	item, source string
	qty          Quantity
}

func (e returnToSource) part() string { return e.item }

// lower converts a valid entry into its events.
func lower(e Entry) []event {
	p := e.Part
	switch e.Action {
	case ActDeliver:
		if e.From == "" {
			return []event{creditStock{p, e.To, e.Qty}}
		}
		return []event{receive{p, e.From, e.Qty}, creditStock{p, e.To, e.Qty}}
	case ActMove:
		return []event{debitStock{p, e.From, e.Qty}, creditStock{p, e.To, e.Qty}}
	case ActUse:
		return []event{debitStock{p, e.From, e.Qty}, consume{p, e.To, e.Qty}}
	case ActSplit:
		if e.From != "" {
			return []event{debitStock{p, e.From, e.Qty}}
		}
		return []event{creditStock{p, e.To, e.Qty}}
	case ActRecount:
		return []event{adjustStock{p, e.Location, e.Qty}}
	case ActReturn:
		return []event{debitStock{p, e.From, e.Qty}, returnToSource{p, e.To, e.Qty}}
	case ActSalvage:
		return []event{reclaim{p, e.From, e.Qty}, creditStock{p, e.To, e.Qty}}
	case ActOrder:
		return []event{placeOrder{p, e.From, e.Qty}}
	case ActCancel:
		return []event{cancelOrder{p, e.From, e.Qty}}
	case ActRequire:
		return []event{requireStock{p, e.Location, e.Qty}}
	}
	return nil
}
