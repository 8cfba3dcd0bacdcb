package stockroom

import (
	"fmt"
	"time"
)

// Action is the kind of movement recorded by a ledger entry.
type Action string

// Ledger actions.
const (
	ActDeliver Action = "deliver" // from source to location
	ActMove    Action = "move"    // between locations
	ActUse     Action = "use"     // from location into project
	ActSplit   Action = "split"   // parent line (from) or piece line (to), always grouped
	ActRecount Action = "recount" // signed correction at location
	ActReturn  Action = "return"  // from location back to source
	ActSalvage Action = "salvage" // from project back to location
	ActOrder   Action = "order"   // outstanding order at source
	ActCancel  Action = "cancel"  // cancels part of an outstanding order
	ActRequire Action = "require" // minimum wanted at location
)

// Actions lists all known actions.
var Actions = []Action{ActDeliver, ActMove, ActUse, ActSplit, ActRecount, ActReturn, ActSalvage, ActOrder, ActCancel, ActRequire}

// endpoints returns the kinds of the from and to fields of an action, empty
// when the field is not used.
func (a Action) endpoints() (from, to Kind) {
	switch a {
	case ActDeliver:
		return KindSource, KindLocation
	case ActMove:
		return KindLocation, KindLocation
	case ActUse:
		return KindLocation, KindProject
	case ActSplit:
		return KindLocation, KindLocation
	case ActReturn:
		return KindLocation, KindSource
	case ActSalvage:
		return KindProject, KindLocation
	case ActOrder, ActCancel:
		return KindSource, ""
	}
	return "", ""
}

// Entry is one line of the ledger. Entries are never modified once written.
//
// An entry is identified by (Time, Origin, Seq); two entries with the same
// encoded line are the same entry, whatever file they were read from.
type Entry struct {
	Time     time.Time
	Origin   string // machine the entry was recorded on
	Seq      int    // order among entries sharing Time and Origin
	Action   Action
	Part     string
	From     string
	To       string
	Location string   // recount and require
	Qty      Quantity // magnitude, signed delta for recount
	Group    string   // transaction group id
	Of       int      // number of lines in the group
	Note     string

	file string // segment the entry was read from
	line int
}

// Source returns the segment file and line the entry was read from, if known.
func (e Entry) Source() (file string, line int) { return e.file, e.line }

// FromRef returns the reference of the From field, zero if unused.
func (e Entry) FromRef() Ref {
	k, _ := e.Action.endpoints()
	if k == "" || e.From == "" {
		return Ref{}
	}
	return Ref{k, e.From}
}

// ToRef returns the reference of the To field, zero if unused.
func (e Entry) ToRef() Ref {
	_, k := e.Action.endpoints()
	if k == "" || e.To == "" {
		return Ref{}
	}
	return Ref{k, e.To}
}

// Refs returns all entities referenced by the entry.
func (e Entry) Refs() []Ref {
	var refs []Ref
	if e.Part != "" {
		refs = append(refs, Part(e.Part))
	}
	for _, r := range []Ref{e.FromRef(), e.ToRef()} {
		if !r.IsZero() {
			refs = append(refs, r)
		}
	}
	if e.Location != "" {
		refs = append(refs, Location(e.Location))
	}
	return refs
}

// References reports whether the entry mentions ref.
func (e Entry) References(ref Ref) bool {
	for _, r := range e.Refs() {
		if r == ref {
			return true
		}
	}
	return false
}

// check returns why the entry cannot be replayed, or nil.
func (e Entry) check() error {
	if e.Part == "" {
		return fmt.Errorf("missing part")
	}
	if e.Action != ActRecount && e.Qty.IsNegative() {
		return fmt.Errorf("negative quantity %s", e.Qty)
	}
	need := func(names ...string) error {
		for _, n := range names {
			var v string
			switch n {
			case "from":
				v = e.From
			case "to":
				v = e.To
			case "location":
				v = e.Location
			}
			if v == "" {
				return fmt.Errorf("%s needs %q", e.Action, n)
			}
		}
		return nil
	}
	switch e.Action {
	case ActDeliver:
		return need("to") // the source is optional
	case ActUse, ActReturn, ActSalvage:
		return need("from", "to")
	case ActMove:
		if err := need("from", "to"); err != nil {
			return err
		}
		if e.From == e.To {
			return fmt.Errorf("move from %q onto itself", e.From)
		}
	case ActSplit:
		if e.Group == "" {
			return fmt.Errorf("split line outside of a group")
		}
		if (e.From == "") == (e.To == "") {
			return fmt.Errorf("split line needs exactly one of \"from\" or \"to\"")
		}
	case ActRecount, ActRequire:
		return need("location")
	case ActOrder, ActCancel:
		return need("from")
	default:
		return fmt.Errorf("unknown action %q", e.Action)
	}
	return nil
}

func (e Entry) String() string {
	b, err := e.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("<invalid entry: %v>", err)
	}
	return string(b)
}
