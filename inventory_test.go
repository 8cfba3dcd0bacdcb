package stockroom

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

func TestInventory_RescanCancelledKeepsView(t *testing.T) {
	inv := newTestInventory(t, definedFiles)
	mustRecord(t)(inv.Deliver(context.Background(), "r_10k", "drawer_a", Q(10), "", ""))
	before := inv.View()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := inv.Rescan(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Rescan() error = %v, want context.Canceled", err)
	}
	if inv.View() != before {
		t.Error("a cancelled rescan replaced the view")
	}
}

func TestInventory_SeesFilesFromOtherMachines(t *testing.T) {
	inv := newTestInventory(t, definedFiles)
	mustRecord(t)(inv.Deliver(context.Background(), "r_10k", "drawer_a", Q(10), "", ""))

	// a sync tool brings the segment of another machine, with an entry at
	// the very same instant.
	writeFile(t, inv.ledger.Dir(), "2025-03-01_laptop.jsonl",
		`{"time":"2025-03-01T10:01:00Z","origin":"laptop","seq":1,"action":"move","part":"r_10k","from":"drawer_a","to":"bin_3","qty":4}`+"\n")
	if err := inv.Rescan(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := onHand(inv, "r_10k", "drawer_a"); got != "6" {
		t.Errorf("OnHand(drawer_a) = %s, want 6", got)
	}
	if got := onHand(inv, "r_10k", "bin_3"); got != "4" {
		t.Errorf("OnHand(bin_3) = %s, want 4", got)
	}
}

func TestInventory_Fsck(t *testing.T) {
	files := map[string]string{
		"definitions/parts/broken.md": "---\nname: [\n---\n",
		"ledger/2025-03-01_bench.jsonl": strings.Join([]string{
			`{"time":"2025-03-01T10:00:00Z","origin":"bench","seq":1,"action":"deliver","part":"a","to":"drawer_a","qty":5}`,
			`garbage`,
			`{"time":"2025-03-01T10:01:00Z","origin":"bench","seq":1,"action":"split","part":"a","from":"drawer_a","qty":5,"group":"g","of":2}`,
			`{"time":"2025-03-01T10:02:00Z","origin":"bench","seq":1,"action":"teleport","part":"a","to":"moon","qty":1}`,
		}, "\n") + "\n",
	}
	inv := newTestInventory(t, files)
	warnings, err := inv.Fsck(context.Background())
	if err != nil {
		t.Fatalf("Fsck() error = %v", err)
	}
	var got []string
	for _, w := range warnings {
		got = append(got, filepath.Base(w.File)+":"+w.Message)
	}
	want := []string{
		"broken.md:",
		"2025-03-01_bench.jsonl:malformed entry",
		"2025-03-01_bench.jsonl:" + ErrCorruptGroup.Error(),
		"2025-03-01_bench.jsonl:skipped split",
		"2025-03-01_bench.jsonl:skipped teleport",
	}
	if len(got) != len(want) {
		t.Fatalf("Fsck() = %q, want %d warnings", got, len(want))
	}
	for _, prefix := range want {
		found := false
		for _, g := range got {
			found = found || strings.HasPrefix(g, prefix)
		}
		if !found {
			t.Errorf("no warning starting with %q in %q", prefix, got)
		}
	}
	if got := onHand(inv, "a", "drawer_a"); got != "5" {
		t.Errorf("OnHand() = %s, want 5", got)
	}
	if !errors.Is(warnings.Err(), ErrCorruptGroup) {
		t.Errorf("Fsck() warnings do not match ErrCorruptGroup: %v", warnings.Err())
	}
}

func TestInventory_SaveDefinition(t *testing.T) {
	ctx := context.Background()
	inv := newTestInventory(t, definedFiles)
	mustRecord(t)(inv.Deliver(ctx, "cap_1u", "drawer_a", Q(10), "", ""))

	d, err := inv.Definition(Part("cap_1u"))
	if err != nil {
		t.Fatal(err)
	}
	if !d.Missing {
		t.Fatal("cap_1u should be a placeholder")
	}

	def := NewDefinition(KindPart, "cap_1u")
	def.Name = "Capacitor 1µF"
	if err := inv.SaveDefinition(ctx, def); err != nil {
		t.Fatalf("SaveDefinition() error = %v", err)
	}
	d, err = inv.Definition(Part("cap_1u"))
	if err != nil || d.Missing || d.Name != "Capacitor 1µF" {
		t.Errorf("Definition() = %+v, %v", d, err)
	}
	if got := onHand(inv, "cap_1u", "drawer_a"); got != "10" {
		t.Errorf("stock lost after save: %s", got)
	}
	if m := inv.Search("capacitor"); len(m) != 1 {
		t.Errorf("Search() = %v, want the new definition", matchIDs(m))
	}

	if _, err := inv.Definition(Project("nope")); !errors.Is(err, ErrNotFound) {
		t.Errorf("Definition(nope) error = %v, want ErrNotFound", err)
	}
}
