package stockroom

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// csvNamespace seeds the group id of imported rows.
var csvNamespace = uuid.MustParse("6f1d7c3e-2b7a-4e55-9a61-0c8f3d2e9b10")

// csvTimeLayouts are the accepted time formats of the time column, besides
// RFC 3339 and bare dates.
var csvTimeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// csvRow is a row of a stock movement export.
type csvRow struct {
	line     int
	time     time.Time
	part     string
	location string
	source   string
	project  string
	added    Quantity
	removed  Quantity
}

// ImportCSV records the stock movements of a CSV export, with a header line
// naming the columns part, location, source, project, added, removed and
// time (or t). Names are turned into ids. A row is read as:
//
//	added to a location from a source       deliver
//	added to a location from a project      salvage
//	added to a location                     recount by +added
//	removed from a location into a project  use
//	removed from a location                 recount by -removed
//
// The entries of a row form a group whose id derives from the content of r
// and the line number: importing the same file twice records nothing new.
func (inv *Inventory) ImportCSV(ctx context.Context, r io.Reader) (*Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("could not read csv: %w", err)
	}
	rows, err := parseCSV(data)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return &Result{}, nil
	}

	return inv.record(ctx, "import", func(c *draft) ([]Entry, error) {
		file := uuid.NewSHA1(csvNamespace, data)
		var entries []Entry
		for _, row := range rows {
			es, err := row.entries()
			if err != nil {
				return nil, err
			}
			group := uuid.NewSHA1(file, []byte(strconv.Itoa(row.line))).String()
			for i := range es {
				c.defined(es[i].Refs()...)
				es[i].Seq = len(entries) + i + 1
				es[i].Group = group
				es[i].Of = len(es)
			}
			entries = append(entries, es...)
		}
		return entries, nil
	})
}

func parseCSV(data []byte) ([]csvRow, error) {
	cr := csv.NewReader(strings.NewReader(string(data)))
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("invalid csv header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := cols["time"]; !ok {
		if i, ok := cols["t"]; ok {
			cols["time"] = i
		}
	}
	for _, name := range []string{"part", "location", "time"} {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("csv header has no %q column", name)
		}
	}
	field := func(rec []string, name string) string {
		if i, ok := cols[name]; ok && i < len(rec) {
			return strings.TrimSpace(rec[i])
		}
		return ""
	}

	var rows []csvRow
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("invalid csv: %w", err)
		}
		line, _ := cr.FieldPos(0)
		row := csvRow{
			line:     line,
			part:     NameToID(field(rec, "part")),
			location: NameToID(field(rec, "location")),
			source:   NameToID(field(rec, "source")),
			project:  NameToID(field(rec, "project")),
		}
		if row.time, err = parseCSVTime(field(rec, "time")); err != nil {
			return nil, fmt.Errorf("csv line %d: %w", line, err)
		}
		for name, q := range map[string]*Quantity{"added": &row.added, "removed": &row.removed} {
			s := field(rec, name)
			if s == "" {
				continue
			}
			if *q, err = ParseQuantity(s); err != nil {
				return nil, fmt.Errorf("csv line %d: invalid %s %q", line, name, s)
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseCSVTime(s string) (time.Time, error) {
	for _, layout := range csvTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return parseEntryTime(s)
}

// entries lowers a row to ledger entries, at most one per direction.
func (r csvRow) entries() ([]Entry, error) {
	op := fmt.Sprintf("import line %d", r.line)
	if r.part == "" {
		return nil, invalid(op, Ref{}, "missing part")
	}
	if r.location == "" {
		return nil, invalid(op, Part(r.part), "missing location")
	}
	if r.added.IsNegative() || r.removed.IsNegative() {
		return nil, invalid(op, Part(r.part), "quantities must not be negative")
	}
	note := fmt.Sprintf("imported from csv line %d", r.line)
	var list []Entry
	if r.added.IsPositive() {
		e := Entry{Time: r.time, Part: r.part, To: r.location, Qty: r.added, Note: note}
		switch {
		case r.source != "":
			e.Action, e.From = ActDeliver, r.source
		case r.project != "":
			e.Action, e.From = ActSalvage, r.project
		default:
			e = Entry{Time: r.time, Action: ActRecount, Part: r.part, Location: r.location, Qty: r.added, Note: note}
		}
		list = append(list, e)
	}
	if r.removed.IsPositive() {
		e := Entry{Time: r.time, Action: ActUse, Part: r.part, From: r.location, To: r.project, Qty: r.removed, Note: note}
		if r.project == "" {
			e = Entry{Time: r.time, Action: ActRecount, Part: r.part, Location: r.location, Qty: r.removed.Neg(), Note: note}
		}
		list = append(list, e)
	}
	if len(list) == 0 {
		return nil, invalid(op, Part(r.part), "nothing added nor removed")
	}
	return list, nil
}
