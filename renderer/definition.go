package renderer

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/etnz/stockroom"
)

// DefinitionMarkdown renders a definition with what the ledger knows about
// it: where a part is, what a location holds, what a project used and what
// a source delivered.
func DefinitionMarkdown(d *stockroom.Definition, x *stockroom.Index) string {
	r := &defRenderer{Builder: &strings.Builder{}}

	r.Printf("# %s\n\n", d.Title())
	r.Printf("- **%s** `%s`\n", d.Kind, d.ID)
	if d.Missing {
		r.Printf("- referenced by the ledger, but not defined\n")
	}
	if d.Summary != "" {
		r.Printf("- %s\n", d.Summary)
	}
	if len(d.Labels) > 0 {
		r.Printf("- labels: %s\n", strings.Join(d.Labels, ", "))
	}
	for _, k := range slices.Sorted(maps.Keys(d.Attributes)) {
		r.Printf("- %s: %s\n", k, d.Attributes[k])
	}
	if d.Kind == stockroom.KindPart {
		r.Printf("- unit: %s\n", d.CountingUnit())
		if !d.Price.IsZero() {
			r.Printf("- price: %s\n", d.Price)
		}
	}
	if d.Parent != "" {
		r.Printf("- in: %s\n", strings.Join(x.LocationPath(d.Parent), " > "))
	}
	if p := d.Path(); p != "" {
		r.Printf("- file: `%s`\n", p)
	}
	r.Printf("\n")

	s := x.Snapshot()
	switch d.Kind {
	case stockroom.KindPart:
		r.contents("Stored at", "Location", x.WhereIs(d.ID), func(c stockroom.Content) string { return c.Location })
	case stockroom.KindLocation:
		r.contents("Holds", "Part", x.ListContents(d.ID, false), func(c stockroom.Content) string { return c.Part.ID })
		if children := x.Children(d.ID); len(children) > 0 {
			r.Printf("## Contains\n\n")
			for _, c := range children {
				r.Printf("- %s\n", c)
			}
			r.Printf("\n")
		}
	case stockroom.KindProject:
		r.contents("Uses", "Part", x.ListConsumed(d.ID), func(c stockroom.Content) string { return c.Part.ID })
	case stockroom.KindSource:
		r.quantities("On order", s.OutstandingAt(d.ID))
		r.quantities("Delivered", s.DeliveredBy(d.ID))
	}

	if body := strings.TrimSpace(d.Body); body != "" {
		r.Printf("%s\n", body)
	}
	return r.String()
}

type defRenderer struct {
	*strings.Builder
}

func (r *defRenderer) Printf(format string, args ...any) {
	fmt.Fprintf(r, format, args...)
}

func (r *defRenderer) contents(title, column string, list []stockroom.Content, key func(stockroom.Content) string) {
	if len(list) == 0 {
		return
	}
	r.Printf("## %s\n\n", title)
	r.Printf("| %s | Quantity |\n", column)
	r.Printf("|:---|---:|\n")
	for _, c := range list {
		r.Printf("| %s | %s |\n", key(c), quantity(c.Qty, c.Part))
	}
	r.Printf("\n")
}

func (r *defRenderer) quantities(title string, m map[string]stockroom.Quantity) {
	if len(m) == 0 {
		return
	}
	r.Printf("## %s\n\n", title)
	r.Printf("| Part | Quantity |\n")
	r.Printf("|:---|---:|\n")
	for _, part := range slices.Sorted(maps.Keys(m)) {
		r.Printf("| %s | %s |\n", part, m[part])
	}
	r.Printf("\n")
}
