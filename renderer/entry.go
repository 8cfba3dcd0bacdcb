package renderer

import (
	"fmt"

	"github.com/etnz/stockroom"
)

// Entry renders a ledger entry as a short sentence.
func Entry(e stockroom.Entry) string {
	q, p := e.Qty, e.Part
	switch e.Action {
	case stockroom.ActDeliver:
		if e.From == "" {
			return fmt.Sprintf("Delivered %s %s to %s", q, p, e.To)
		}
		return fmt.Sprintf("Delivered %s %s from %s to %s", q, p, e.From, e.To)
	case stockroom.ActMove:
		return fmt.Sprintf("Moved %s %s from %s to %s", q, p, e.From, e.To)
	case stockroom.ActUse:
		return fmt.Sprintf("Used %s %s from %s in %s", q, p, e.From, e.To)
	case stockroom.ActSplit:
		if e.From != "" {
			return fmt.Sprintf("Split %s %s at %s", q, p, e.From)
		}
		return fmt.Sprintf("Got %s %s at %s from a split", q, p, e.To)
	case stockroom.ActRecount:
		return fmt.Sprintf("Recounted %s at %s: %s", p, e.Location, signed(e))
	case stockroom.ActReturn:
		return fmt.Sprintf("Returned %s %s from %s to %s", q, p, e.From, e.To)
	case stockroom.ActSalvage:
		return fmt.Sprintf("Salvaged %s %s from %s to %s", q, p, e.From, e.To)
	case stockroom.ActOrder:
		return fmt.Sprintf("Ordered %s %s from %s", q, p, e.From)
	case stockroom.ActCancel:
		return fmt.Sprintf("Cancelled %s %s on order from %s", q, p, e.From)
	case stockroom.ActRequire:
		if e.Qty.IsZero() {
			return fmt.Sprintf("No requirement for %s at %s", p, e.Location)
		}
		return fmt.Sprintf("Required %s %s at %s", q, p, e.Location)
	default:
		return string(e.Action)
	}
}

// signed returns the quantity of a recount with an explicit sign.
func signed(e stockroom.Entry) string {
	if e.Qty.IsNegative() {
		return e.Qty.String()
	}
	return "+" + e.Qty.String()
}
