package cmd

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/etnz/stockroom"
	"github.com/etnz/stockroom/date"
	"github.com/etnz/stockroom/renderer"
	"github.com/google/subcommands"
)

type searchCmd struct {
	kind  string
	where string
}

func (*searchCmd) Name() string     { return "search" }
func (*searchCmd) Synopsis() string { return "find parts, locations, projects and sources" }
func (*searchCmd) Usage() string {
	return `stk search [-kind <kind>] [-where <jsonpath>] [<words>...]

  Finds definitions whose id, name, summary, labels, attributes or notes
  start with every given word. When nothing matches, similar ids and names
  are listed instead.

  With -where, selects the definitions matching a JSONPath expression on
  their front matter fields, for instance:

    stk search -kind part -where '$.attributes.package'
    stk search -where '$.labels[?(@ == "smd")]'
`
}

func (c *searchCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.kind, "kind", "", "restrict to a kind: part, location, project or source")
	f.StringVar(&c.where, "where", "", "JSONPath expression on the definition fields")
}

func (c *searchCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	query := strings.Join(f.Args(), " ")
	if query == "" && c.where == "" {
		return usage("nothing to search")
	}
	var kind stockroom.Kind
	if c.kind != "" {
		k, err := stockroom.ParseKind(c.kind)
		if err != nil {
			return usage("%v", err)
		}
		kind = k
	}

	inv, err := openInventory(ctx)
	if err != nil {
		return fail(err)
	}
	x := inv.View().Index

	if c.where != "" {
		defs, err := x.Where(ctx, kind, c.where)
		if err != nil {
			return fail(err)
		}
		printMarkdown(renderer.DefinitionsMarkdown(fmt.Sprintf("Where %s", c.where), defs))
		return subcommands.ExitSuccess
	}

	matches := x.Search(query)
	if kind != "" {
		var kept []stockroom.Match
		for _, m := range matches {
			if m.Def.Kind == kind {
				kept = append(kept, m)
			}
		}
		matches = kept
	}
	printMarkdown(renderer.SearchMarkdown(query, matches))
	return subcommands.ExitSuccess
}

type lsCmd struct {
	recursive bool
	project   string
}

func (*lsCmd) Name() string     { return "ls" }
func (*lsCmd) Synopsis() string { return "list the parts held at a location" }
func (*lsCmd) Usage() string {
	return `stk ls [-r] [<location>]
stk ls -in <project>

  Lists the parts held at a location, with -r including nested locations.
  Without a location, lists all locations. With -in, lists the parts used
  in a project.
`
}

func (c *lsCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.recursive, "r", false, "include nested locations")
	f.StringVar(&c.project, "in", "", "list the parts used in this project")
}

func (c *lsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() > 1 {
		return usage("at most one location")
	}
	inv, err := openInventory(ctx)
	if err != nil {
		return fail(err)
	}
	x := inv.View().Index

	switch {
	case c.project != "":
		def, err := inv.Definition(stockroom.Project(c.project))
		if err != nil {
			return fail(err)
		}
		printMarkdown(renderer.ConsumedMarkdown(def, x.ListConsumed(c.project)))
	case f.NArg() == 0:
		printMarkdown(renderer.DefinitionsMarkdown("Locations", x.All(stockroom.KindLocation)))
	default:
		id := f.Arg(0)
		def, err := inv.Definition(stockroom.Location(id))
		if err != nil {
			return fail(err)
		}
		printMarkdown(renderer.ContentsMarkdown(def, x.LocationPath(id), x.ListContents(id, c.recursive), c.recursive))
	}
	return subcommands.ExitSuccess
}

type historyCmd struct {
	period string
	span   string
}

func (*historyCmd) Name() string     { return "history" }
func (*historyCmd) Synopsis() string { return "list the movements of an entity" }
func (*historyCmd) Usage() string {
	return `stk history [-p <period> | -range <from>..<to>] <ref>

  Lists the ledger entries referencing a part, location, project or source,
  oldest first. The reference is "kind:id", or a bare id.

  -p restricts to the current day, week, month, quarter or year; -range to
  dates, either side of ".." being optional.
`
}

func (c *historyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.period, "p", "", "restrict to the current period: day, week, month, quarter or year")
	f.StringVar(&c.span, "range", "", "restrict to a range of dates: 2025-01-01..2025-03-31")
}

func (c *historyCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		return usage("one reference is required")
	}
	if c.period != "" && c.span != "" {
		return usage("-p and -range cannot be used together")
	}

	var r date.Range
	switch {
	case c.period != "":
		p, err := date.ParsePeriod(c.period)
		if err != nil {
			return usage("%v", err)
		}
		r = date.NewRange(date.Today(), p)
	case c.span != "":
		var err error
		if r, err = date.ParseRange(c.span); err != nil {
			return usage("%v", err)
		}
	}

	inv, err := openInventory(ctx)
	if err != nil {
		return fail(err)
	}
	ref, err := resolveRef(inv.View().Index, f.Arg(0))
	if err != nil {
		return fail(err)
	}
	def, err := inv.Definition(ref)
	if err != nil {
		return fail(err)
	}
	printMarkdown(renderer.HistoryMarkdown(def, inv.History(ref, r)))
	return subcommands.ExitSuccess
}

type showCmd struct{}

func (*showCmd) Name() string     { return "show" }
func (*showCmd) Synopsis() string { return "show a definition and its stock" }
func (*showCmd) Usage() string {
	return `stk show <ref>

  Shows a definition with what the ledger says about it: where a part is
  stored, what a location holds, what a project used, what a source has
  delivered or still has on order.
`
}

func (*showCmd) SetFlags(*flag.FlagSet) {}

func (*showCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		return usage("one reference is required")
	}
	inv, err := openInventory(ctx)
	if err != nil {
		return fail(err)
	}
	x := inv.View().Index
	ref, err := resolveRef(x, f.Arg(0))
	if err != nil {
		return fail(err)
	}
	def, err := inv.Definition(ref)
	if err != nil {
		return fail(err)
	}
	printMarkdown(renderer.DefinitionMarkdown(def, x))
	return subcommands.ExitSuccess
}

type valueCmd struct {
	recursive bool
}

func (*valueCmd) Name() string     { return "value" }
func (*valueCmd) Synopsis() string { return "compute the value of the parts held at a location" }
func (*valueCmd) Usage() string {
	return `stk value [-r=false] <location>

  Sums the unit price of the parts held at a location and its nested
  locations, per currency. Parts without a price are listed apart.
`
}

func (c *valueCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.recursive, "r", true, "include nested locations")
}

func (c *valueCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		return usage("one location is required")
	}
	inv, err := openInventory(ctx)
	if err != nil {
		return fail(err)
	}
	id := f.Arg(0)
	def, err := inv.Definition(stockroom.Location(id))
	if err != nil {
		return fail(err)
	}
	values, unpriced := inv.View().Index.Valuation(id, c.recursive)
	printMarkdown(renderer.ValuationMarkdown(def, values, unpriced))
	return subcommands.ExitSuccess
}

type shortCmd struct{}

func (*shortCmd) Name() string     { return "short" }
func (*shortCmd) Synopsis() string { return "list the parts below their required quantity" }
func (*shortCmd) Usage() string {
	return `stk short

  Lists the parts whose stock at a location is below the quantity set with
  stk require.
`
}

func (*shortCmd) SetFlags(*flag.FlagSet) {}

func (*shortCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	inv, err := openInventory(ctx)
	if err != nil {
		return fail(err)
	}
	v := inv.View()
	printMarkdown(renderer.ShortagesMarkdown(v.Snapshot.Shortages(), v.Index))
	return subcommands.ExitSuccess
}
