package renderer

import (
	"bytes"
	"fmt"
	"time"

	"github.com/etnz/stockroom"
	md "github.com/nao1215/markdown"
)

// HistoryMarkdown renders the entries referencing an entity, oldest first.
func HistoryMarkdown(def *stockroom.Definition, entries []stockroom.Entry) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("History of %s", def.Title()))
	if len(entries) == 0 {
		doc.PlainText("No movement recorded.")
		return doc.String()
	}

	table := md.TableSet{
		Header: []string{"Time", "Origin", "Movement", "Note"},
		Rows:   [][]string{},
	}
	for _, e := range entries {
		table.Rows = append(table.Rows, []string{
			e.Time.Local().Format(time.DateTime),
			e.Origin,
			cell(Entry(e)),
			cell(orDash(e.Note)),
		})
	}
	doc.Table(table)
	return doc.String()
}
