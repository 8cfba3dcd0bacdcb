package stockroom

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Clock returns the current time. Tests replace it to get stable timestamps.
type Clock func() time.Time

// LedgerStore reads and appends ledger segments in a folder.
//
// Each origin (machine) writes to its own segment per day, so that a sync
// tool never has to merge concurrent writes to the same file. Segments are
// only ever appended to.
type LedgerStore struct {
	dir    string
	origin string
	clock  Clock

	mu   sync.Mutex // serializes appends
	last time.Time  // last stamped time
	seq  int        // last sequence number at last
}

// NewLedgerStore creates a store writing as origin into dir. A nil clock
// uses time.Now.
func NewLedgerStore(dir, origin string, clock Clock) *LedgerStore {
	if clock == nil {
		clock = time.Now
	}
	origin = NameToID(origin)
	if origin == "" {
		origin = "local"
	}
	return &LedgerStore{dir: dir, origin: origin, clock: clock}
}

// Dir returns the ledger folder.
func (s *LedgerStore) Dir() string { return s.dir }

// Origin returns the origin tag written in new entries.
func (s *LedgerStore) Origin() string { return s.origin }

// stamp sets the identity of entries appended together. Entries without a
// time get the clock time; (time, seq) always increases for this origin.
func (s *LedgerStore) stamp(entries []Entry) {
	now := s.clock().UTC()
	if now.After(s.last) {
		s.last, s.seq = now, 0
		s.resume(now)
	}
	for i := range entries {
		e := &entries[i]
		e.Origin = s.origin
		if e.Time.IsZero() {
			e.Time = s.last
			s.seq++
			e.Seq = s.seq
		}
		e.Time = e.Time.UTC()
	}
}

// resume continues the sequence of the entries already stamped at now in
// today's segment, by another process writing as the same origin within the
// same clock tick.
func (s *LedgerStore) resume(now time.Time) {
	f, err := os.Open(filepath.Join(s.dir, segmentName(now, s.origin)))
	if err != nil {
		return
	}
	defer f.Close()
	entries, _, _ := DecodeSegment(f, f.Name())
	for _, e := range entries {
		if e.Origin == s.origin && e.Time.Equal(now) && e.Seq > s.seq {
			s.seq = e.Seq
		}
	}
}

// Append writes entries at the end of today's segment, in a single write
// followed by a sync. It returns the entries as written, with their identity
// set. Entries with a time keep it and their Seq, only the origin is set.
//
// On failure the returned *AppendError names the segment, which may hold a
// partial group.
func (s *LedgerStore) Append(entries ...Entry) ([]Entry, error) {
	if len(entries) == 0 {
		return nil, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	entries = append([]Entry(nil), entries...)
	s.stamp(entries)

	var buf bytes.Buffer
	for _, e := range entries {
		if err := EncodeEntry(&buf, e); err != nil {
			return nil, err
		}
	}

	path := filepath.Join(s.dir, segmentName(s.last, s.origin))
	fail := func(n int, err error) error {
		return &AppendError{Segment: path, Group: entries[0].Group, Written: n, Err: err}
	}
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return nil, fail(0, err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fail(0, err)
	}
	defer f.Close()

	// a previous torn write left a partial line: end it so that ours is
	// read on its own.
	ok, err := lastByteIsNewline(f)
	if err != nil {
		return nil, fail(0, err)
	}
	data := buf.Bytes()
	if !ok {
		data = append([]byte{'\n'}, data...)
	}
	if n, err := f.Write(data); err != nil {
		return nil, fail(n, err)
	}
	if err := f.Sync(); err != nil {
		return nil, fail(len(data), err)
	}
	if err := f.Close(); err != nil {
		return nil, fail(len(data), err)
	}
	return entries, nil
}

// Scan reads all segments concurrently and returns them as a Journal.
// Malformed lines and unreadable segments are reported as warnings. When ctx
// is cancelled, Scan returns ctx.Err() and no journal.
func (s *LedgerStore) Scan(ctx context.Context) (*Journal, Warnings, error) {
	segments, err := findSegments(s.dir)
	if err != nil {
		return nil, nil, fmt.Errorf("could not list ledger segments: %w", err)
	}

	type result struct {
		entries  []Entry
		warnings Warnings
	}
	results := make([]result, len(segments))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxOpenFiles)
	for i, path := range segments {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			f, err := os.Open(path)
			if err != nil {
				results[i].warnings = Warnings{{File: path, Message: err.Error()}}
				return nil
			}
			defer f.Close()
			entries, warnings, err := DecodeSegment(f, path)
			if err != nil {
				warnings = append(warnings, Warning{File: path, Message: err.Error()})
			}
			results[i] = result{entries, warnings}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	var all []Entry
	var warnings Warnings
	for _, r := range results {
		all = append(all, r.entries...)
		warnings = append(warnings, r.warnings...)
	}
	return NewJournal(all), warnings, nil
}
