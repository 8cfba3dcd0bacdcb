package renderer

import (
	"bytes"
	"fmt"

	"github.com/etnz/stockroom"
	md "github.com/nao1215/markdown"
)

// SearchMarkdown renders search results, best first.
func SearchMarkdown(query string, matches []stockroom.Match) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("Search: %s", query))
	if len(matches) == 0 {
		doc.PlainText("No match.")
		return doc.String()
	}
	if matches[0].Fuzzy {
		doc.PlainText("No exact match, showing similar names.")
	}

	defs := make([]*stockroom.Definition, len(matches))
	for i, m := range matches {
		defs[i] = m.Def
	}
	doc.Table(definitionTable(defs))
	return doc.String()
}

// DefinitionsMarkdown renders a list of definitions under a title.
func DefinitionsMarkdown(title string, defs []*stockroom.Definition) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(title)
	if len(defs) == 0 {
		doc.PlainText("None.")
		return doc.String()
	}
	doc.Table(definitionTable(defs))
	return doc.String()
}

func definitionTable(defs []*stockroom.Definition) md.TableSet {
	table := md.TableSet{Header: []string{"Kind", "ID", "Name", "Summary"}, Rows: [][]string{}}
	for _, d := range defs {
		name := d.Title()
		if d.Missing {
			name += " (undefined)"
		}
		table.Rows = append(table.Rows, []string{string(d.Kind), d.ID, cell(name), cell(orDash(d.Summary))})
	}
	return table
}
