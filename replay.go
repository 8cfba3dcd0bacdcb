package stockroom

import (
	"cmp"
	"fmt"
	"iter"
	"maps"
	"slices"
	"time"
)

// Stock identifies the quantity of a part held at a location.
type Stock struct {
	Part     string
	Location string
}

// holding keys a per-part quantity at a project or a source.
type holding struct {
	part, at string
}

// Shortage is a part held in lower quantity than required at a location.
type Shortage struct {
	Stock
	Required Quantity
	OnHand   Quantity
}

// Missing returns how many parts are lacking.
func (s Shortage) Missing() Quantity { return s.Required.Sub(s.OnHand) }

// Snapshot is the state of the inventory derived from the ledger at a point
// in time. It is never stored: it is recomputed from the entries.
type Snapshot struct {
	asOf        time.Time
	applied     int
	stock       map[Stock]Quantity
	required    map[Stock]Quantity
	used        map[holding]Quantity
	outstanding map[holding]Quantity
	delivered   map[holding]Quantity
	returned    map[holding]Quantity
	skipped     Warnings
}

// Replay folds entries into the state of the inventory at asOf (inclusive).
// A zero asOf replays everything.
//
// Replay is a pure function of the set of entries: their order and
// repetitions do not matter. Entries that cannot be applied are skipped and
// reported by Skipped; members of an incomplete group are all skipped.
func Replay(entries iter.Seq[Entry], asOf time.Time) *Snapshot {
	return NewJournal(slices.Collect(entries)).Replay(asOf)
}

// Replay folds the journal into the state of the inventory at asOf
// (inclusive). A zero asOf replays everything.
func (j *Journal) Replay(asOf time.Time) *Snapshot {
	s := &Snapshot{
		asOf:        asOf,
		stock:       make(map[Stock]Quantity),
		required:    make(map[Stock]Quantity),
		used:        make(map[holding]Quantity),
		outstanding: make(map[holding]Quantity),
		delivered:   make(map[holding]Quantity),
		returned:    make(map[holding]Quantity),
	}
	included := func(e Entry) bool { return asOf.IsZero() || !e.Time.After(asOf) }

	// A group is applied all or nothing: find the groups holding an invalid
	// member or a member past asOf.
	rejected := make(map[string]error)
	for _, e := range j.entries {
		if e.Group == "" {
			continue
		}
		switch {
		case j.corrupt[e.Group]:
			rejected[e.Group] = ErrCorruptGroup
		case !included(e):
			rejected[e.Group] = nil // silently, the group is in the future
		default:
			if err := e.check(); err != nil {
				if _, done := rejected[e.Group]; !done {
					rejected[e.Group] = fmt.Errorf("invalid member: %w", err)
				}
			}
		}
	}

	for _, e := range j.entries {
		if !included(e) {
			break
		}
		if err, ok := rejected[e.Group]; ok && e.Group != "" {
			if err != nil {
				s.skip(e, err)
			}
			continue
		}
		if err := e.check(); err != nil {
			s.skip(e, err)
			continue
		}
		for _, ev := range lower(e) {
			s.apply(ev)
		}
		s.applied++
	}
	return s
}

func (s *Snapshot) skip(e Entry, err error) {
	w := Warning{File: e.file, Line: e.line, Group: e.Group, Message: "skipped " + string(e.Action) + ": " + err.Error(), Err: err}
	if e.Part != "" {
		w.Entity = Part(e.Part)
	}
	s.skipped = append(s.skipped, w)
}

func add[K comparable](m map[K]Quantity, k K, q Quantity) {
	if v := m[k].Add(q); v.IsZero() {
		delete(m, k)
	} else {
		m[k] = v
	}
}

// settle decreases an order, never below zero: deliveries beyond what was
// ordered do not create negative orders.
func settle(m map[holding]Quantity, k holding, q Quantity) {
	if left := m[k].Sub(q); left.IsPositive() {
		m[k] = left
	} else {
		delete(m, k)
	}
}

func (s *Snapshot) apply(ev event) {
	switch v := ev.(type) {
	case creditStock:
		add(s.stock, Stock{v.item, v.location}, v.qty)
	case debitStock:
		add(s.stock, Stock{v.item, v.location}, v.qty.Neg())
	case adjustStock:
		add(s.stock, Stock{v.item, v.location}, v.delta)
	case requireStock:
		k := Stock{v.item, v.location}
		if v.qty.IsZero() {
			delete(s.required, k)
		} else {
			s.required[k] = v.qty
		}
	case consume:
		add(s.used, holding{v.item, v.project}, v.qty)
	case reclaim:
		add(s.used, holding{v.item, v.project}, v.qty.Neg())
	case placeOrder:
		add(s.outstanding, holding{v.item, v.source}, v.qty)
	case cancelOrder:
		settle(s.outstanding, holding{v.item, v.source}, v.qty)
	case receive:
		settle(s.outstanding, holding{v.item, v.source}, v.qty)
		add(s.delivered, holding{v.item, v.source}, v.qty)
	case returnToSource:
		add(s.returned, holding{v.item, v.source}, v.qty)
	}
}

// AsOf returns the instant of the snapshot, zero for "everything".
func (s *Snapshot) AsOf() time.Time { return s.asOf }

// Applied returns the number of entries folded into the snapshot.
func (s *Snapshot) Applied() int { return s.applied }

// Skipped returns the entries that could not be applied, with the reason.
func (s *Snapshot) Skipped() Warnings { return slices.Clone(s.skipped) }

// OnHand returns the quantity of part at location. It can be negative when
// the ledger is incomplete.
func (s *Snapshot) OnHand(part, location string) Quantity {
	return s.stock[Stock{part, location}]
}

// Stock returns all non-zero quantities.
func (s *Snapshot) Stock() map[Stock]Quantity { return maps.Clone(s.stock) }

// ByLocation returns the quantity of each part held at location.
func (s *Snapshot) ByLocation(location string) map[string]Quantity {
	m := make(map[string]Quantity)
	for k, q := range s.stock {
		if k.Location == location {
			m[k.Part] = q
		}
	}
	return m
}

// ByPart returns the quantity of part held at each location.
func (s *Snapshot) ByPart(part string) map[string]Quantity {
	m := make(map[string]Quantity)
	for k, q := range s.stock {
		if k.Part == part {
			m[k.Location] = q
		}
	}
	return m
}

// Total returns the quantity of part across all locations.
func (s *Snapshot) Total(part string) Quantity {
	var total Quantity
	for k, q := range s.stock {
		if k.Part == part {
			total = total.Add(q)
		}
	}
	return total
}

// Used returns the quantity of part consumed by project.
func (s *Snapshot) Used(part, project string) Quantity {
	return s.used[holding{part, project}]
}

// UsedIn returns the quantity of each part consumed by project.
func (s *Snapshot) UsedIn(project string) map[string]Quantity {
	return s.perPart(s.used, project)
}

// Outstanding returns the quantity of part ordered from source and not yet
// delivered.
func (s *Snapshot) Outstanding(part, source string) Quantity {
	return s.outstanding[holding{part, source}]
}

// OutstandingAt returns the quantity of each part on order at source.
func (s *Snapshot) OutstandingAt(source string) map[string]Quantity {
	return s.perPart(s.outstanding, source)
}

// Delivered returns the total quantity of part delivered by source.
func (s *Snapshot) Delivered(part, source string) Quantity {
	return s.delivered[holding{part, source}]
}

// DeliveredBy returns the total quantity of each part delivered by source.
func (s *Snapshot) DeliveredBy(source string) map[string]Quantity {
	return s.perPart(s.delivered, source)
}

// Returned returns the total quantity of part sent back to source.
func (s *Snapshot) Returned(part, source string) Quantity {
	return s.returned[holding{part, source}]
}

// Required returns the minimum quantity of part wanted at location.
func (s *Snapshot) Required(part, location string) Quantity {
	return s.required[Stock{part, location}]
}

// Shortages returns the stocks below their required quantity, sorted by part
// then location.
func (s *Snapshot) Shortages() []Shortage {
	var list []Shortage
	for k, req := range s.required {
		if have := s.stock[k]; have.LessThan(req) {
			list = append(list, Shortage{Stock: k, Required: req, OnHand: have})
		}
	}
	slices.SortFunc(list, func(a, b Shortage) int { return compareStock(a.Stock, b.Stock) })
	return list
}

func (s *Snapshot) perPart(m map[holding]Quantity, at string) map[string]Quantity {
	res := make(map[string]Quantity)
	for k, q := range m {
		if k.at == at {
			res[k.part] = q
		}
	}
	return res
}

func compareStock(a, b Stock) int {
	if c := cmp.Compare(a.Part, b.Part); c != 0 {
		return c
	}
	return cmp.Compare(a.Location, b.Location)
}
