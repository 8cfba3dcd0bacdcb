package stockroom

import (
	"context"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestWatch_RescansOnChange(t *testing.T) {
	defer goleak.VerifyNone(t)

	inv := newTestInventory(t, definedFiles)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	views := make(chan *View, 8)
	done := make(chan error, 1)
	go func() {
		done <- inv.Watch(ctx, 20*time.Millisecond, func(v *View) { views <- v })
	}()

	// give the watcher time to register its folders.
	time.Sleep(100 * time.Millisecond)
	writeFile(t, inv.ledger.Dir(), "2025-03-01_laptop.jsonl",
		`{"time":"2025-03-01T10:00:00Z","origin":"laptop","seq":1,"action":"deliver","part":"r_10k","to":"drawer_a","qty":7}`+"\n")

	deadline := time.After(5 * time.Second)
	for found := false; !found; {
		select {
		case v := <-views:
			found = v.Snapshot.OnHand("r_10k", "drawer_a").Equal(Q(7))
		case <-deadline:
			t.Fatal("the new segment was not picked up")
		}
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Watch() did not return after cancel")
	}
}

func TestWatch_StopsWhenCancelled(t *testing.T) {
	defer goleak.VerifyNone(t)

	inv := newTestInventory(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := inv.Watch(ctx, 0, nil); err != nil {
		t.Errorf("Watch() error = %v", err)
	}
}
