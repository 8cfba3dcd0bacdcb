package renderer

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/etnz/stockroom"
	md "github.com/nao1215/markdown"
)

// ShortagesMarkdown renders the stocks below their required quantity.
func ShortagesMarkdown(shortages []stockroom.Shortage, x *stockroom.Index) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Shortages")
	if len(shortages) == 0 {
		doc.PlainText("Every requirement is met.")
		return doc.String()
	}
	table := md.TableSet{Header: []string{"Part", "Location", "Required", "On hand", "Missing"}, Rows: [][]string{}}
	for _, s := range shortages {
		part, _ := x.Definition(stockroom.Part(s.Part))
		if part == nil {
			part = stockroom.NewDefinition(stockroom.KindPart, s.Part)
		}
		table.Rows = append(table.Rows, []string{
			s.Part,
			s.Location,
			quantity(s.Required, part),
			quantity(s.OnHand, part),
			quantity(s.Missing(), part),
		})
	}
	doc.Table(table)
	return doc.String()
}

// ValuationMarkdown renders the value of the parts held at a location.
func ValuationMarkdown(location *stockroom.Definition, values []stockroom.Money, unpriced []string) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("Value of %s", location.Title()))
	if len(values) == 0 {
		doc.PlainText("No priced part is stored here.")
	} else {
		table := md.TableSet{Header: []string{"Currency", "Value"}, Rows: [][]string{}}
		for _, v := range values {
			table.Rows = append(table.Rows, []string{orDash(v.Currency()), v.String()})
		}
		doc.Table(table)
	}
	if len(unpriced) > 0 {
		doc.PlainText(fmt.Sprintf("Without a price: %s.", strings.Join(unpriced, ", ")))
	}
	return doc.String()
}

// ResultMarkdown renders the entries recorded by a command and its
// advisories.
func ResultMarkdown(res *stockroom.Result) string {
	var b strings.Builder
	for _, e := range res.Entries {
		fmt.Fprintf(&b, "- %s\n", Entry(e))
	}
	ConditionalBlock(&b, func(w io.Writer) bool {
		fmt.Fprintf(w, "\n**Recorded anyway:**\n\n")
		for _, a := range res.Advisories {
			fmt.Fprintf(w, "- %s\n", a)
		}
		return len(res.Advisories) > 0
	})
	return b.String()
}

// WarningsMarkdown renders the problems found in the stores.
func WarningsMarkdown(ws stockroom.Warnings) string {
	var b strings.Builder
	b.WriteString("# Check\n\n")
	if len(ws) == 0 {
		b.WriteString("No problem found.\n")
		return b.String()
	}
	fmt.Fprintf(&b, "%d problem(s) found:\n\n", len(ws))
	for _, w := range ws {
		fmt.Fprintf(&b, "- %s\n", w)
	}
	return b.String()
}
