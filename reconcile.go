package stockroom

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"
)

// Result is the outcome of a command: the entries written to the ledger and
// the advisories raised. Advisories never prevent the write.
type Result struct {
	Entries    []Entry
	Advisories []Advisory
}

// Piece is a part resulting from a split, with its quantity.
type Piece struct {
	Part string
	Qty  Quantity
}

// draft accumulates advisories while a command is prepared.
type draft struct {
	op  string
	v   *View
	adv []Advisory
}

// defined adds a missing definition advisory for each ref not defined.
func (c *draft) defined(refs ...Ref) {
	for _, r := range refs {
		a := Advisory{Entity: r, Message: AdvMissingDef}
		if d, ok := c.v.Definitions.Get(r); (!ok || d.Missing) && !slices.Contains(c.adv, a) {
			c.adv = append(c.adv, a)
		}
	}
}

// available adds an advisory when qty exceeds the stock of part at location.
func (c *draft) available(part, location string, qty Quantity) {
	if have := c.v.Snapshot.OnHand(part, location); qty.GreaterThan(have) {
		c.adv = append(c.adv, Advisory{
			Entity:  Part(part),
			Message: AdvExceedsStock,
			Detail:  fmt.Sprintf("%s requested, %s known at %s", qty, have, location),
		})
	}
}

func requireIDs(op string, refs ...Ref) error {
	for _, r := range refs {
		if r.ID == "" {
			return invalid(op, Ref{}, "missing %s", r.Kind)
		}
	}
	return nil
}

func requirePositive(op string, part string, qty Quantity) error {
	if !qty.IsPositive() {
		return invalid(op, Part(part), "quantity must be positive, got %s", qty)
	}
	return nil
}

// record validates and prepares entries against the current view, appends
// them and publishes the view including them. Nothing is written when build
// fails.
func (inv *Inventory) record(ctx context.Context, op string, build func(c *draft) ([]Entry, error)) (*Result, error) {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c := &draft{op: op, v: inv.view.Load()}
	entries, err := build(c)
	if err != nil {
		return nil, err
	}
	written, err := inv.ledger.Append(entries...)
	if err != nil {
		inv.log.Error().Err(err).Str("op", op).Msg("append failed")
		return nil, err
	}
	inv.view.Store(c.v.with(written...))
	for _, e := range written {
		inv.log.Info().Str("op", op).Str("part", e.Part).Stringer("qty", e.Qty).Str("group", e.Group).Msg("recorded")
	}
	for _, a := range c.adv {
		inv.log.Debug().Str("op", op).Stringer("entity", a.Entity).Msg(a.Message)
	}
	return &Result{Entries: written, Advisories: c.adv}, nil
}

// Deliver records qty of part received at location from source. The source
// is optional.
func (inv *Inventory) Deliver(ctx context.Context, part, location string, qty Quantity, source, note string) (*Result, error) {
	return inv.record(ctx, "deliver", func(c *draft) ([]Entry, error) {
		if err := requireIDs(c.op, Part(part), Location(location)); err != nil {
			return nil, err
		}
		if err := requirePositive(c.op, part, qty); err != nil {
			return nil, err
		}
		c.defined(Part(part), Location(location))
		if source != "" {
			c.defined(Source(source))
		}
		return []Entry{{Action: ActDeliver, Part: part, From: source, To: location, Qty: qty, Note: note}}, nil
	})
}

// Move records qty of part moved between two locations.
func (inv *Inventory) Move(ctx context.Context, part, from, to string, qty Quantity, note string) (*Result, error) {
	return inv.record(ctx, "move", func(c *draft) ([]Entry, error) {
		if err := requireIDs(c.op, Part(part), Location(from), Location(to)); err != nil {
			return nil, err
		}
		if from == to {
			return nil, invalid(c.op, Location(from), "source and destination are the same")
		}
		if err := requirePositive(c.op, part, qty); err != nil {
			return nil, err
		}
		c.defined(Part(part), Location(from), Location(to))
		c.available(part, from, qty)
		return []Entry{{Action: ActMove, Part: part, From: from, To: to, Qty: qty, Note: note}}, nil
	})
}

// UseInProject records qty of part taken from a location into project.
func (inv *Inventory) UseInProject(ctx context.Context, part, from, project string, qty Quantity, note string) (*Result, error) {
	return inv.record(ctx, "use", func(c *draft) ([]Entry, error) {
		if err := requireIDs(c.op, Part(part), Location(from), Project(project)); err != nil {
			return nil, err
		}
		if err := requirePositive(c.op, part, qty); err != nil {
			return nil, err
		}
		c.defined(Part(part), Location(from), Project(project))
		c.available(part, from, qty)
		return []Entry{{Action: ActUse, Part: part, From: from, To: project, Qty: qty, Note: note}}, nil
	})
}

// SplitIntoPieces records total of part at location turned into pieces, in
// a single group. Pieces are new parts, existing parts or part itself in
// another unit; their quantities must add up to total exactly.
func (inv *Inventory) SplitIntoPieces(ctx context.Context, part, location string, total Quantity, pieces []Piece, note string) (*Result, error) {
	return inv.record(ctx, "split", func(c *draft) ([]Entry, error) {
		if err := requireIDs(c.op, Part(part), Location(location)); err != nil {
			return nil, err
		}
		if err := requirePositive(c.op, part, total); err != nil {
			return nil, err
		}
		if len(pieces) == 0 {
			return nil, invalid(c.op, Part(part), "no pieces")
		}
		var sum Quantity
		for i, p := range pieces {
			if p.Part == "" {
				return nil, invalid(c.op, Part(part), "piece %d has no part", i+1)
			}
			if !p.Qty.IsPositive() {
				return nil, invalid(c.op, Part(p.Part), "piece %d quantity must be positive, got %s", i+1, p.Qty)
			}
			sum = sum.Add(p.Qty)
		}
		if !sum.Equal(total) {
			return nil, invalid(c.op, Part(part), "pieces add up to %s, not %s", sum, total)
		}

		c.defined(Part(part), Location(location))
		c.available(part, location, total)
		group := uuid.NewString()
		of := len(pieces) + 1
		entries := []Entry{{Action: ActSplit, Part: part, From: location, Qty: total, Group: group, Of: of, Note: note}}
		for _, p := range pieces {
			c.defined(Part(p.Part))
			entries = append(entries, Entry{Action: ActSplit, Part: p.Part, To: location, Qty: p.Qty, Group: group, Of: of, Note: note})
		}
		return entries, nil
	})
}

// Recount records that observed units of part were counted at location. The
// entry holds the difference with the known stock at that instant.
func (inv *Inventory) Recount(ctx context.Context, part, location string, observed Quantity, note string) (*Result, error) {
	return inv.record(ctx, "recount", func(c *draft) ([]Entry, error) {
		if err := requireIDs(c.op, Part(part), Location(location)); err != nil {
			return nil, err
		}
		if observed.IsNegative() {
			return nil, invalid(c.op, Part(part), "observed count cannot be negative, got %s", observed)
		}
		c.defined(Part(part), Location(location))
		delta := observed.Sub(c.v.Snapshot.OnHand(part, location))
		if delta.IsZero() {
			c.adv = append(c.adv, Advisory{Entity: Part(part), Message: AdvNoChange, Detail: fmt.Sprintf("%s at %s", observed, location)})
		}
		return []Entry{{Action: ActRecount, Part: part, Location: location, Qty: delta, Note: note}}, nil
	})
}

// Return records qty of part sent back from a location to source.
func (inv *Inventory) Return(ctx context.Context, part, from, source string, qty Quantity, note string) (*Result, error) {
	return inv.record(ctx, "return", func(c *draft) ([]Entry, error) {
		if err := requireIDs(c.op, Part(part), Location(from), Source(source)); err != nil {
			return nil, err
		}
		if err := requirePositive(c.op, part, qty); err != nil {
			return nil, err
		}
		c.defined(Part(part), Location(from), Source(source))
		c.available(part, from, qty)
		return []Entry{{Action: ActReturn, Part: part, From: from, To: source, Qty: qty, Note: note}}, nil
	})
}

// Salvage records qty of part taken back from project into a location.
func (inv *Inventory) Salvage(ctx context.Context, part, project, to string, qty Quantity, note string) (*Result, error) {
	return inv.record(ctx, "salvage", func(c *draft) ([]Entry, error) {
		if err := requireIDs(c.op, Part(part), Project(project), Location(to)); err != nil {
			return nil, err
		}
		if err := requirePositive(c.op, part, qty); err != nil {
			return nil, err
		}
		c.defined(Part(part), Project(project), Location(to))
		if used := c.v.Snapshot.Used(part, project); qty.GreaterThan(used) {
			c.adv = append(c.adv, Advisory{Entity: Part(part), Message: AdvExceedsUsed, Detail: fmt.Sprintf("%s used in %s", used, project)})
		}
		return []Entry{{Action: ActSalvage, Part: part, From: project, To: to, Qty: qty, Note: note}}, nil
	})
}

// Order records qty of part ordered from source.
func (inv *Inventory) Order(ctx context.Context, part, source string, qty Quantity, note string) (*Result, error) {
	return inv.record(ctx, "order", func(c *draft) ([]Entry, error) {
		if err := requireIDs(c.op, Part(part), Source(source)); err != nil {
			return nil, err
		}
		if err := requirePositive(c.op, part, qty); err != nil {
			return nil, err
		}
		c.defined(Part(part), Source(source))
		return []Entry{{Action: ActOrder, Part: part, From: source, Qty: qty, Note: note}}, nil
	})
}

// CancelOrder records qty of part no longer expected from source.
func (inv *Inventory) CancelOrder(ctx context.Context, part, source string, qty Quantity, note string) (*Result, error) {
	return inv.record(ctx, "cancel", func(c *draft) ([]Entry, error) {
		if err := requireIDs(c.op, Part(part), Source(source)); err != nil {
			return nil, err
		}
		if err := requirePositive(c.op, part, qty); err != nil {
			return nil, err
		}
		c.defined(Part(part), Source(source))
		if out := c.v.Snapshot.Outstanding(part, source); qty.GreaterThan(out) {
			c.adv = append(c.adv, Advisory{Entity: Part(part), Message: AdvExceedsOrder, Detail: fmt.Sprintf("%s on order at %s", out, source)})
		}
		return []Entry{{Action: ActCancel, Part: part, From: source, Qty: qty, Note: note}}, nil
	})
}

// Require records the minimum quantity of part wanted at location. Zero
// removes the requirement.
func (inv *Inventory) Require(ctx context.Context, part, location string, qty Quantity, note string) (*Result, error) {
	return inv.record(ctx, "require", func(c *draft) ([]Entry, error) {
		if err := requireIDs(c.op, Part(part), Location(location)); err != nil {
			return nil, err
		}
		if qty.IsNegative() {
			return nil, invalid(c.op, Part(part), "required quantity cannot be negative, got %s", qty)
		}
		c.defined(Part(part), Location(location))
		return []Entry{{Action: ActRequire, Part: part, Location: location, Qty: qty, Note: note}}, nil
	})
}
