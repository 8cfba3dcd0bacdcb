package cmd

import (
	"fmt"
	"strings"

	"github.com/etnz/stockroom"
)

// quantityFlag is a flag.Value holding a decimal quantity.
type quantityFlag struct {
	q   stockroom.Quantity
	set bool
}

func (f *quantityFlag) String() string {
	if !f.set {
		return ""
	}
	return f.q.String()
}

func (f *quantityFlag) Set(s string) error {
	q, err := stockroom.ParseQuantity(s)
	if err != nil {
		return err
	}
	f.q, f.set = q, true
	return nil
}

// parsePieces parses split pieces written "part=qty".
func parsePieces(args []string) ([]stockroom.Piece, error) {
	pieces := make([]stockroom.Piece, 0, len(args))
	for _, arg := range args {
		part, qty, ok := strings.Cut(arg, "=")
		if !ok || part == "" {
			return nil, fmt.Errorf("invalid piece %q, want part=qty", arg)
		}
		q, err := stockroom.ParseQuantity(qty)
		if err != nil {
			return nil, fmt.Errorf("invalid piece %q: %w", arg, err)
		}
		pieces = append(pieces, stockroom.Piece{Part: part, Qty: q})
	}
	return pieces, nil
}

// resolveRef parses "kind:id". A bare id is looked up in every kind, parts
// first.
func resolveRef(x *stockroom.Index, s string) (stockroom.Ref, error) {
	if strings.Contains(s, ":") {
		return stockroom.ParseRef(s)
	}
	for _, k := range stockroom.Kinds {
		ref := stockroom.Ref{Kind: k, ID: s}
		if _, ok := x.Definition(ref); ok {
			return ref, nil
		}
	}
	return stockroom.Ref{}, fmt.Errorf("%s: %w", s, stockroom.ErrNotFound)
}
