package stockroom

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// entryOpts compares entries by their recorded fields only.
var entryOpts = cmp.Options{cmpopts.IgnoreUnexported(Entry{}), cmpopts.EquateEmpty()}

// testTime parses an RFC 3339 time or panics.
func testTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

// tickingClock returns a clock starting at start and advancing by a minute
// on every call.
func tickingClock(start string) Clock {
	t := testTime(start)
	return func() time.Time {
		t = t.Add(time.Minute)
		return t
	}
}

// writeFile writes content to dir/name, creating folders.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

// newTestInventory opens an inventory on fresh folders, with files written
// under root beforehand (paths relative to root, e.g. "definitions/parts/r1.md").
func newTestInventory(t *testing.T, files map[string]string) *Inventory {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		writeFile(t, root, name, content)
	}
	inv, err := Open(context.Background(), Options{
		Definitions: filepath.Join(root, "definitions"),
		Ledger:      filepath.Join(root, "ledger"),
		Origin:      "bench",
		Clock:       tickingClock("2025-03-01T10:00:00Z"),
	})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	return inv
}

// mustRecord fails the test when a command returns an error:
//
//	res := mustRecord(t)(inv.Deliver(ctx, ...))
func mustRecord(t *testing.T) func(*Result, error) *Result {
	t.Helper()
	return func(res *Result, err error) *Result {
		t.Helper()
		if err != nil {
			t.Fatalf("command failed: %v", err)
		}
		return res
	}
}

// onHand returns the current quantity of part at location as a string.
func onHand(inv *Inventory, part, location string) string {
	return inv.View().Snapshot.OnHand(part, location).String()
}
