package stockroom

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestLedgerStore_Append(t *testing.T) {
	dir := t.TempDir()
	s := NewLedgerStore(dir, "Bench PC", tickingClock("2025-03-01T10:00:00Z"))
	if s.Origin() != "bench_pc" {
		t.Errorf("Origin() = %q, want bench_pc", s.Origin())
	}

	written, err := s.Append(
		Entry{Action: ActDeliver, Part: "r_10k", To: "drawer_a", Qty: Q(100)},
		Entry{Action: ActMove, Part: "r_10k", From: "drawer_a", To: "bin_3", Qty: Q(30)},
	)
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	for i, e := range written {
		if e.Origin != "bench_pc" || e.Seq != i+1 || !e.Time.Equal(testTime("2025-03-01T10:01:00Z")) {
			t.Errorf("entry %d identity = %s/%s/%d", i, e.Time, e.Origin, e.Seq)
		}
	}

	data, err := os.ReadFile(filepath.Join(dir, "2025-03-01_bench_pc.jsonl"))
	if err != nil {
		t.Fatal(err)
	}
	want := `{"time":"2025-03-01T10:01:00Z","origin":"bench_pc","seq":1,"action":"deliver","part":"r_10k","to":"drawer_a","qty":100}
{"time":"2025-03-01T10:01:00Z","origin":"bench_pc","seq":2,"action":"move","part":"r_10k","from":"drawer_a","to":"bin_3","qty":30}
`
	if diff := cmp.Diff(want, string(data)); diff != "" {
		t.Errorf("segment mismatch (-want +got):\n%s", diff)
	}
}

func TestLedgerStore_AppendSameTickTwoProcesses(t *testing.T) {
	dir := t.TempDir()
	at := testTime("2025-03-01T10:00:00Z")
	frozen := func() time.Time { return at }

	var written []Entry
	for _, part := range []string{"r_10k", "r_1k"} {
		// a new store per append, as each stk invocation opens its own.
		s := NewLedgerStore(dir, "bench", frozen)
		es, err := s.Append(Entry{Action: ActDeliver, Part: part, To: "drawer_a", Qty: Q(1)})
		if err != nil {
			t.Fatal(err)
		}
		written = append(written, es...)
	}
	if written[0].Seq != 1 || written[1].Seq != 2 {
		t.Errorf("seqs = %d, %d, want 1, 2", written[0].Seq, written[1].Seq)
	}

	j, warnings, err := NewLedgerStore(dir, "bench", frozen).Scan(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if j.Len() != 2 || len(warnings) != 0 || len(j.Warnings()) != 0 {
		t.Errorf("Scan() = %d entries, warnings %v %v", j.Len(), warnings, j.Warnings())
	}
}

func TestLedgerStore_AppendKeepsTime(t *testing.T) {
	s := NewLedgerStore(t.TempDir(), "", tickingClock("2025-03-01T10:00:00Z"))
	at := testTime("2024-12-24T18:00:00Z")
	written, err := s.Append(Entry{Time: at, Seq: 7, Action: ActRecount, Part: "r_10k", Location: "drawer_a", Qty: Q(3)})
	if err != nil {
		t.Fatal(err)
	}
	if e := written[0]; !e.Time.Equal(at) || e.Seq != 7 || e.Origin != "local" {
		t.Errorf("written = %v", e)
	}
}

func TestLedgerStore_AppendRepairsTornLine(t *testing.T) {
	dir := t.TempDir()
	torn := `{"time":"2025-03-01T09:00:00Z","origin":"bench","seq":1,"action":"deliv`
	path := writeFile(t, dir, "2025-03-01_bench.jsonl", torn)

	s := NewLedgerStore(dir, "bench", tickingClock("2025-03-01T10:00:00Z"))
	if _, err := s.Append(Entry{Action: ActDeliver, Part: "r_10k", To: "drawer_a", Qty: Q(5)}); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), torn+"\n{") {
		t.Errorf("the new entry is not on its own line:\n%s", data)
	}

	journal, warnings, err := s.Scan(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if journal.Len() != 1 || len(warnings) != 1 || warnings[0].Line != 1 {
		t.Errorf("Scan() = %d entries, warnings %v; want 1 entry and a warning on line 1", journal.Len(), warnings)
	}
}

func TestLedgerStore_AppendError(t *testing.T) {
	dir := t.TempDir()
	// a folder where the segment should be makes the open fail.
	if err := os.MkdirAll(filepath.Join(dir, "2025-03-01_bench.jsonl"), 0755); err != nil {
		t.Fatal(err)
	}
	s := NewLedgerStore(dir, "bench", tickingClock("2025-03-01T10:00:00Z"))
	_, err := s.Append(Entry{Action: ActDeliver, Part: "r_10k", To: "drawer_a", Qty: Q(5), Group: "g1", Of: 1})
	var appendErr *AppendError
	if !errors.As(err, &appendErr) {
		t.Fatalf("Append() error = %v, want an *AppendError", err)
	}
	if appendErr.Group != "g1" || appendErr.Written != 0 {
		t.Errorf("AppendError = %+v", appendErr)
	}
}

func TestLedgerStore_Scan(t *testing.T) {
	dir := t.TempDir()
	line1 := `{"time":"2025-03-01T10:00:00Z","origin":"bench","seq":1,"action":"deliver","part":"r_10k","to":"drawer_a","qty":100}`
	line2 := `{"time":"2025-03-02T10:00:00Z","origin":"laptop","seq":1,"action":"move","part":"r_10k","from":"drawer_a","to":"bin_3","qty":30}`
	writeFile(t, dir, "2025-03-01_bench.jsonl", line1+"\n")
	writeFile(t, dir, "2025-03-02_laptop.jsonl", line2+"\n")
	// a conflict copy left by a sync tool duplicates a line.
	writeFile(t, dir, "2025-03-01_bench.sync-conflict-20250302.jsonl", line1+"\n")
	// hidden folders are ignored.
	writeFile(t, dir, ".stversions/2025-03-01_bench.jsonl", line2+"\n"+line2+"\n")
	writeFile(t, dir, "README.txt", "not a segment")

	s := NewLedgerStore(dir, "bench", nil)
	journal, warnings, err := s.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}
	var got []string
	for e := range journal.Entries() {
		got = append(got, e.String())
	}
	if diff := cmp.Diff([]string{line1, line2}, got); diff != "" {
		t.Errorf("Scan() mismatch (-want +got):\n%s", diff)
	}
}

func TestLedgerStore_ScanMissingDir(t *testing.T) {
	s := NewLedgerStore(filepath.Join(t.TempDir(), "none"), "bench", nil)
	journal, _, err := s.Scan(context.Background())
	if err != nil || journal.Len() != 0 {
		t.Errorf("Scan() = %v, %v; want an empty journal", journal, err)
	}
}

func TestLedgerStore_ScanCancelled(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "2025-03-01_bench.jsonl", `{"time":"2025-03-01T10:00:00Z","action":"deliver","part":"a","to":"b","qty":1}`+"\n")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := NewLedgerStore(dir, "bench", nil).Scan(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Scan() error = %v, want context.Canceled", err)
	}
}
