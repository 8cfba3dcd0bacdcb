package renderer

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/etnz/stockroom"
	md "github.com/nao1215/markdown"
)

// ContentsMarkdown renders the parts held at a location. path is the chain
// of containers down to the location.
func ContentsMarkdown(location *stockroom.Definition, path []string, contents []stockroom.Content, recursive bool) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("Contents of %s", location.Title()))
	if len(path) > 1 {
		doc.PlainText(fmt.Sprintf("In %s.", strings.Join(path[:len(path)-1], " > ")))
	}
	if len(contents) == 0 {
		doc.PlainText("Nothing is stored here.")
		return doc.String()
	}

	header := []string{"Part", "Name", "Quantity"}
	if recursive {
		header = []string{"Part", "Name", "Location", "Quantity"}
	}
	table := md.TableSet{Header: header, Rows: [][]string{}}
	for _, c := range contents {
		row := []string{c.Part.ID, cell(c.Part.Title())}
		if recursive {
			row = append(row, c.Location)
		}
		row = append(row, quantity(c.Qty, c.Part))
		table.Rows = append(table.Rows, row)
	}
	doc.Table(table)
	return doc.String()
}

// ConsumedMarkdown renders the parts used by a project.
func ConsumedMarkdown(project *stockroom.Definition, contents []stockroom.Content) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("Parts used in %s", project.Title()))
	if len(contents) == 0 {
		doc.PlainText("No part is used in this project.")
		return doc.String()
	}
	table := md.TableSet{Header: []string{"Part", "Name", "Quantity"}, Rows: [][]string{}}
	for _, c := range contents {
		table.Rows = append(table.Rows, []string{c.Part.ID, cell(c.Part.Title()), quantity(c.Qty, c.Part)})
	}
	doc.Table(table)
	return doc.String()
}

// quantity formats q in the counting unit of part.
func quantity(q stockroom.Quantity, part *stockroom.Definition) string {
	return q.String() + " " + part.CountingUnit()
}
