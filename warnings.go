package stockroom

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/rs/zerolog"
)

// Warning reports a problem found while reading the stores or replaying the
// ledger. The offending file, line or entry is skipped; nothing is fatal.
//
// A Warning is an error wrapping Err, when set, so that its class can be
// matched: errors.Is(w, ErrCorruptGroup).
type Warning struct {
	File    string // file path, if the warning is about a file
	Line    int    // 1-based line number, 0 if not applicable
	Entity  Ref    // entity concerned, may be zero
	Group   string // transaction group, may be empty
	Message string
	Err     error // class of the problem, may be nil
}

func (w Warning) Error() string { return w.String() }
func (w Warning) Unwrap() error { return w.Err }

func (w Warning) String() string {
	var b strings.Builder
	if w.File != "" {
		b.WriteString(w.File)
		if w.Line > 0 {
			fmt.Fprintf(&b, ":%d", w.Line)
		}
		b.WriteString(": ")
	}
	if !w.Entity.IsZero() {
		fmt.Fprintf(&b, "%s: ", w.Entity)
	}
	if w.Group != "" {
		fmt.Fprintf(&b, "group %s: ", w.Group)
	}
	b.WriteString(w.Message)
	return b.String()
}

// Warnings is a list of warnings.
type Warnings []Warning

// Err joins the warnings into a single error, nil when there are none.
func (ws Warnings) Err() error {
	errs := make([]error, len(ws))
	for i, w := range ws {
		errs[i] = w
	}
	return errors.Join(errs...)
}

// Sorted returns the warnings ordered by file, line then message.
func (ws Warnings) Sorted() Warnings {
	s := slices.Clone(ws)
	slices.SortStableFunc(s, func(a, b Warning) int {
		if c := strings.Compare(a.File, b.File); c != 0 {
			return c
		}
		if a.Line != b.Line {
			return a.Line - b.Line
		}
		return strings.Compare(a.String(), b.String())
	})
	return s
}

// Log writes each warning at Warn level.
func (ws Warnings) Log(log zerolog.Logger) {
	for _, w := range ws {
		ev := log.Warn()
		if w.File != "" {
			ev = ev.Str("file", w.File)
		}
		if w.Line > 0 {
			ev = ev.Int("line", w.Line)
		}
		if !w.Entity.IsZero() {
			ev = ev.Stringer("entity", w.Entity)
		}
		if w.Group != "" {
			ev = ev.Str("group", w.Group)
		}
		ev.Msg(w.Message)
	}
}

// Advisory is a non-blocking notice returned by a command: the command was
// recorded anyway.
type Advisory struct {
	Entity  Ref
	Message string // one of the Adv constants
	Detail  string
}

func (a Advisory) String() string {
	msg := a.Message
	if a.Detail != "" {
		msg += " (" + a.Detail + ")"
	}
	if a.Entity.IsZero() {
		return msg
	}
	return fmt.Sprintf("%s: %s", a.Entity, msg)
}

// Advisory messages.
const (
	AdvExceedsStock = "exceeds known stock"
	AdvExceedsOrder = "exceeds outstanding order"
	AdvExceedsUsed  = "exceeds quantity used in project"
	AdvMissingDef   = "no definition"
	AdvNoChange     = "recount matches known stock"
)
