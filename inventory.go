package stockroom

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/etnz/stockroom/date"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Options configures an Inventory.
type Options struct {
	Definitions string // definition files root
	Ledger      string // ledger segments root
	Origin      string // tag of this machine in new entries
	Clock       Clock  // defaults to time.Now
	Logger      *zerolog.Logger
}

// View is a consistent, immutable state of the inventory: definitions and
// ledger as read by one scan, replayed and indexed.
type View struct {
	Definitions *Definitions
	Journal     *Journal
	Snapshot    *Snapshot
	Index       *Index
	Warnings    Warnings // all problems, sorted

	defWarnings  Warnings // found while reading definition files
	scanWarnings Warnings // found while reading ledger segments
}

func newView(defs *Definitions, defWarnings Warnings, journal *Journal, scanWarnings Warnings) *View {
	snap := journal.Replay(time.Time{})
	var all Warnings
	all = append(all, defWarnings...)
	all = append(all, scanWarnings...)
	all = append(all, journal.Warnings()...)
	all = append(all, snap.Skipped()...)
	return &View{
		Definitions:  defs,
		Journal:      journal,
		Snapshot:     snap,
		Index:        NewIndex(defs, journal, snap),
		Warnings:     all.Sorted(),
		defWarnings:  defWarnings,
		scanWarnings: scanWarnings,
	}
}

// with returns a view including entries just appended.
func (v *View) with(entries ...Entry) *View {
	return newView(v.Definitions, v.defWarnings, v.Journal.With(entries...), v.scanWarnings)
}

// Inventory is the entry point of the engine. Reads are served from the
// last complete View and never block; commands are serialized.
type Inventory struct {
	defsDir string
	ledger  *LedgerStore
	log     zerolog.Logger

	mu   sync.Mutex // write path: commands, rescans and saves
	view atomic.Pointer[View]
}

// Open loads the stores and builds the first view.
func Open(ctx context.Context, opts Options) (*Inventory, error) {
	log := zerolog.Nop()
	if opts.Logger != nil {
		log = *opts.Logger
	}
	inv := &Inventory{
		defsDir: opts.Definitions,
		ledger:  NewLedgerStore(opts.Ledger, opts.Origin, opts.Clock),
		log:     log,
	}
	if err := inv.Rescan(ctx); err != nil {
		return nil, err
	}
	return inv, nil
}

// View returns the current view.
func (inv *Inventory) View() *View { return inv.view.Load() }

// Origin returns the tag of this machine in new entries.
func (inv *Inventory) Origin() string { return inv.ledger.Origin() }

// Rescan reloads both stores and swaps the view in. On error or
// cancellation, the current view is kept as is.
func (inv *Inventory) Rescan(ctx context.Context) error {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	return inv.rescan(ctx)
}

func (inv *Inventory) rescan(ctx context.Context) error {
	start := time.Now()
	var (
		defs        *Definitions
		defWarnings Warnings
		journal     *Journal
		scanWarning Warnings
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		defs, defWarnings, err = LoadDefinitions(gctx, inv.defsDir)
		return err
	})
	g.Go(func() (err error) {
		journal, scanWarning, err = inv.ledger.Scan(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		inv.log.Debug().Err(err).Msg("rescan aborted")
		return fmt.Errorf("rescan: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("rescan: %w", err)
	}

	v := newView(defs, defWarnings, journal, scanWarning)
	inv.view.Store(v)
	inv.log.Debug().
		Int("definitions", defs.Len()).
		Int("entries", journal.Len()).
		Int("warnings", len(v.Warnings)).
		Dur("took", time.Since(start)).
		Msg("rescanned")
	if n := len(v.Warnings); n > 0 {
		inv.log.Warn().Int("count", n).Msg("inventory has warnings, see fsck")
	}
	return nil
}

// Fsck rescans the stores and returns every problem found: malformed files
// and lines, duplicate definitions, conflicting entries, corrupt groups and
// skipped entries.
func (inv *Inventory) Fsck(ctx context.Context) (Warnings, error) {
	if err := inv.Rescan(ctx); err != nil {
		return nil, err
	}
	ws := inv.View().Warnings
	ws.Log(inv.log)
	return ws, nil
}

// Definition returns the definition of ref, possibly a placeholder.
func (inv *Inventory) Definition(ref Ref) (*Definition, error) {
	if d, ok := inv.View().Index.Definition(ref); ok {
		return d, nil
	}
	return nil, fmt.Errorf("%s: %w", ref, ErrNotFound)
}

// Search finds definitions by text.
func (inv *Inventory) Search(query string) []Match { return inv.View().Index.Search(query) }

// ListContents returns the parts held at location.
func (inv *Inventory) ListContents(location string, recursive bool) []Content {
	return inv.View().Index.ListContents(location, recursive)
}

// History returns the entries referencing ref within r.
func (inv *Inventory) History(ref Ref, r date.Range) []Entry {
	return inv.View().Index.History(ref, r)
}

// SaveDefinition writes def to its file and reloads the definitions.
func (inv *Inventory) SaveDefinition(ctx context.Context, def *Definition) error {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	if err := SaveDefinition(inv.defsDir, def); err != nil {
		return err
	}
	inv.log.Info().Stringer("entity", def.Ref()).Str("file", def.Path()).Msg("definition saved")

	defs, defWarnings, err := LoadDefinitions(ctx, inv.defsDir)
	if err != nil {
		return fmt.Errorf("reload definitions: %w", err)
	}
	cur := inv.view.Load()
	inv.view.Store(newView(defs, defWarnings, cur.Journal, cur.scanWarnings))
	return nil
}
