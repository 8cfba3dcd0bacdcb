package stockroom

import (
	"fmt"
	"regexp"
	"strings"
)

// Kind is the type of an entity that can be defined in the definition store.
type Kind string

// Entity kinds.
const (
	KindPart     Kind = "part"
	KindLocation Kind = "location"
	KindProject  Kind = "project"
	KindSource   Kind = "source"
)

// Kinds lists all entity kinds in their canonical order.
var Kinds = []Kind{KindPart, KindLocation, KindProject, KindSource}

// ParseKind parses a kind name, singular or plural.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), "s"))
	switch k {
	case KindPart, KindLocation, KindProject, KindSource:
		return k, nil
	default:
		return "", fmt.Errorf("unknown kind %q", s)
	}
}

// dir returns the folder holding the kind's definition files.
func (k Kind) dir() string { return string(k) + "s" }

// rank orders kinds for display.
func (k Kind) rank() int {
	for i, x := range Kinds {
		if x == k {
			return i
		}
	}
	return len(Kinds)
}

// Ref identifies an entity by kind and id.
type Ref struct {
	Kind Kind
	ID   string
}

func (r Ref) String() string { return string(r.Kind) + ":" + r.ID }

// IsZero reports whether r names nothing.
func (r Ref) IsZero() bool { return r.ID == "" }

// Part returns a reference to a part.
func Part(id string) Ref { return Ref{KindPart, id} }

// Location returns a reference to a location.
func Location(id string) Ref { return Ref{KindLocation, id} }

// Project returns a reference to a project.
func Project(id string) Ref { return Ref{KindProject, id} }

// Source returns a reference to a source.
func Source(id string) Ref { return Ref{KindSource, id} }

// ParseRef parses "kind:id". A bare id is assumed to be a part.
func ParseRef(s string) (Ref, error) {
	kind, id, ok := strings.Cut(s, ":")
	if !ok {
		return Part(s), nil
	}
	k, err := ParseKind(kind)
	if err != nil {
		return Ref{}, err
	}
	if id == "" {
		return Ref{}, fmt.Errorf("missing id in %q", s)
	}
	return Ref{k, id}, nil
}

var reCleanupName = regexp.MustCompile(`[\s_/.]+`)

// NameToID derives an id from a display name: "Resistor 10k / 0805" becomes
// "resistor_10k_0805".
func NameToID(name string) string {
	return strings.ToLower(reCleanupName.ReplaceAllString(strings.TrimSpace(name), "_"))
}
