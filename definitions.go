package stockroom

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/natefinch/atomic"
	"golang.org/x/sync/errgroup"
)

// maxOpenFiles bounds the number of files read concurrently.
const maxOpenFiles = 16

// definitionExt is the extension of definition files.
const definitionExt = ".md"

// Definitions is an immutable set of definitions, indexed by reference.
type Definitions struct {
	dir  string
	defs map[Ref]*Definition
}

// NewDefinitions creates a set from a list of definitions. Later duplicates
// are ignored.
func NewDefinitions(defs ...*Definition) *Definitions {
	d := &Definitions{defs: make(map[Ref]*Definition, len(defs))}
	for _, def := range defs {
		if _, exists := d.defs[def.Ref()]; !exists {
			d.defs[def.Ref()] = def
		}
	}
	return d
}

// Dir returns the root folder of the definition files.
func (d *Definitions) Dir() string { return d.dir }

// Len returns the number of definitions.
func (d *Definitions) Len() int { return len(d.defs) }

// Get returns the definition of ref.
func (d *Definitions) Get(ref Ref) (*Definition, bool) {
	def, ok := d.defs[ref]
	return def, ok
}

// All iterates over the definitions ordered by kind then id.
func (d *Definitions) All() iter.Seq[*Definition] {
	refs := make([]Ref, 0, len(d.defs))
	for r := range d.defs {
		refs = append(refs, r)
	}
	slices.SortFunc(refs, compareRef)
	return func(yield func(*Definition) bool) {
		for _, r := range refs {
			if !yield(d.defs[r]) {
				return
			}
		}
	}
}

func compareRef(a, b Ref) int {
	if a.Kind != b.Kind {
		return a.Kind.rank() - b.Kind.rank()
	}
	return strings.Compare(a.ID, b.ID)
}

// LoadDefinitions reads all definition files under dir. Files that cannot be
// parsed and duplicate ids are reported as warnings and skipped; among
// duplicates the lexically first file wins.
//
// A missing dir is an empty store. When ctx is cancelled, nothing is returned
// but ctx.Err().
func LoadDefinitions(ctx context.Context, dir string) (*Definitions, Warnings, error) {
	type file struct {
		kind Kind
		path string
		def  *Definition
		err  error
	}
	var files []*file
	for _, kind := range Kinds {
		entries, err := os.ReadDir(filepath.Join(dir, kind.dir()))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, nil, fmt.Errorf("could not list %s definitions: %w", kind, err)
		}
		// ReadDir returns entries sorted by name.
		for _, e := range entries {
			if e.IsDir() || filepath.Ext(e.Name()) != definitionExt {
				continue
			}
			files = append(files, &file{kind: kind, path: filepath.Join(dir, kind.dir(), e.Name())})
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxOpenFiles)
	for _, f := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(f.path)
			if err != nil {
				f.err = err
				return nil
			}
			stem := strings.TrimSuffix(filepath.Base(f.path), definitionExt)
			f.def, f.err = DecodeDefinition(f.kind, stem, data)
			if f.def != nil {
				f.def.path = f.path
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	defs := &Definitions{dir: dir, defs: make(map[Ref]*Definition, len(files))}
	var warnings Warnings
	for _, f := range files {
		if f.err != nil {
			warnings = append(warnings, Warning{File: f.path, Message: f.err.Error()})
			continue
		}
		ref := f.def.Ref()
		if first, exists := defs.defs[ref]; exists {
			warnings = append(warnings, Warning{File: f.path, Entity: ref, Message: "duplicate id, already defined in " + first.path})
			continue
		}
		defs.defs[ref] = f.def
	}
	return defs, warnings, nil
}

// SaveDefinition writes one definition file under dir, atomically: readers
// see either the previous content or the new one. A definition read from a
// file is written back to the same file.
func SaveDefinition(dir string, def *Definition) error {
	if def.ID == "" {
		return invalid("save", def.Ref(), "missing id")
	}
	if strings.ContainsAny(def.ID, `/\`) {
		return invalid("save", def.Ref(), "id cannot contain a path separator")
	}
	path := def.path
	if path == "" {
		path = filepath.Join(dir, def.Kind.dir(), def.ID+definitionExt)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("could not create directory for %s: %w", def.Ref(), err)
	}
	var buf bytes.Buffer
	if err := EncodeDefinition(&buf, def); err != nil {
		return err
	}
	if err := atomic.WriteFile(path, &buf); err != nil {
		return fmt.Errorf("could not save %s: %w", def.Ref(), err)
	}
	def.path = path
	def.Missing = false
	return nil
}
