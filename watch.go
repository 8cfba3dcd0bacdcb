package stockroom

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet time Watch waits for before rescanning.
const DefaultDebounce = 250 * time.Millisecond

// Watch rescans the stores whenever a definition file or a ledger segment
// changes, typically because a sync tool brought files from another machine.
// Bursts of changes are debounced. After each rescan, changed is called with
// the new view if not nil.
//
// Watch blocks until ctx is cancelled, then returns nil.
func (inv *Inventory) Watch(ctx context.Context, debounce time.Duration, changed func(*View)) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	for _, root := range []string{inv.defsDir, inv.ledger.Dir()} {
		if err := watchTree(w, root); err != nil {
			return err
		}
	}
	inv.log.Info().Str("definitions", inv.defsDir).Str("ledger", inv.ledger.Dir()).Msg("watching")

	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !relevant(w, ev) {
				continue
			}
			inv.log.Debug().Str("file", ev.Name).Stringer("op", ev.Op).Msg("change")
			timer.Reset(debounce)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			inv.log.Error().Err(err).Msg("watch")

		case <-timer.C:
			if err := inv.Rescan(ctx); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				inv.log.Error().Err(err).Msg("rescan failed")
				continue
			}
			if changed != nil {
				changed(inv.View())
			}
		}
	}
}

// watchTree adds root and all its visible subfolders to w. A missing root is
// created.
func watchTree(w *fsnotify.Watcher, root string) error {
	if root == "" {
		return nil
	}
	if err := os.MkdirAll(root, 0755); err != nil {
		return err
	}
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return w.Add(path)
	})
}

// relevant reports whether ev may change a view. New folders are watched too.
func relevant(w *fsnotify.Watcher, ev fsnotify.Event) bool {
	if ev.Has(fsnotify.Chmod) && !ev.Has(fsnotify.Write) {
		return false
	}
	base := filepath.Base(ev.Name)
	if strings.HasPrefix(base, ".") {
		return false
	}
	if ev.Has(fsnotify.Create) {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			_ = watchTree(w, ev.Name)
			return true
		}
	}
	switch filepath.Ext(base) {
	case segmentExt, definitionExt:
		return true
	}
	// a removed or renamed folder
	return ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename)
}
