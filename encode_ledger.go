package stockroom

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/etnz/stockroom/date"
)

// maxLineSize bounds the length of a ledger line.
const maxLineSize = 1 << 20

// MarshalJSON encodes the entry with a stable key order. The result is the
// canonical form of the entry: two entries are identical when their
// canonical forms are.
func (e Entry) MarshalJSON() ([]byte, error) {
	return marshalObject(
		always("time", e.Time.UTC().Format(time.RFC3339Nano)),
		always("origin", e.Origin),
		omitZero("seq", e.Seq),
		always("action", e.Action),
		omitZero("part", e.Part),
		omitZero("from", e.From),
		omitZero("to", e.To),
		omitZero("location", e.Location),
		always("qty", e.Qty),
		omitZero("group", e.Group),
		omitZero("of", e.Of),
		omitZero("note", e.Note),
	)
}

// entryDTO is the wire form of an entry, used for decoding only.
type entryDTO struct {
	Time     string   `json:"time"`
	Origin   string   `json:"origin"`
	Seq      int      `json:"seq"`
	Action   Action   `json:"action"`
	Part     string   `json:"part"`
	From     string   `json:"from"`
	To       string   `json:"to"`
	Location string   `json:"location"`
	Qty      Quantity `json:"qty"`
	Group    string   `json:"group"`
	Of       int      `json:"of"`
	Note     string   `json:"note"`
}

// UnmarshalJSON decodes an entry. Unknown keys are ignored. A bare date is
// accepted as time, meaning the start of that day in UTC.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var dto entryDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return err
	}
	if dto.Action == "" {
		return errors.New("missing action")
	}
	t, err := parseEntryTime(dto.Time)
	if err != nil {
		return err
	}
	*e = Entry{
		Time:     t,
		Origin:   dto.Origin,
		Seq:      dto.Seq,
		Action:   Action(strings.ToLower(string(dto.Action))),
		Part:     dto.Part,
		From:     dto.From,
		To:       dto.To,
		Location: dto.Location,
		Qty:      dto.Qty,
		Group:    dto.Group,
		Of:       dto.Of,
		Note:     dto.Note,
	}
	return nil
}

func parseEntryTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, errors.New("missing time")
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), nil
	}
	d, err := date.Parse(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q", s)
	}
	return d.Start(), nil
}

// DecodeEntry decodes a single ledger line.
func DecodeEntry(line []byte) (Entry, error) {
	var e Entry
	err := e.UnmarshalJSON(line)
	return e, err
}

// EncodeEntry writes the canonical form of an entry followed by a newline.
func EncodeEntry(w io.Writer, e Entry) error {
	b, err := e.MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to encode entry: %w", err)
	}
	if _, err := w.Write(append(b, '\n')); err != nil {
		return fmt.Errorf("failed to write entry: %w", err)
	}
	return nil
}

// DecodeSegment reads all entries of a ledger segment. Lines that cannot be
// decoded are reported as warnings naming name and the line number, and
// skipped. The error is only about reading r.
func DecodeSegment(r io.Reader, name string) ([]Entry, Warnings, error) {
	var entries []Entry
	var warnings Warnings
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	line := 0
	for scanner.Scan() {
		line++
		b := scanner.Bytes()
		if len(strings.TrimSpace(string(b))) == 0 {
			continue
		}
		e, err := DecodeEntry(b)
		if err != nil {
			warnings = append(warnings, Warning{File: name, Line: line, Message: "malformed entry: " + err.Error()})
			continue
		}
		e.file, e.line = name, line
		entries = append(entries, e)
	}
	if err := scanner.Err(); err != nil {
		return entries, warnings, fmt.Errorf("could not read %s: %w", name, err)
	}
	return entries, warnings, nil
}
