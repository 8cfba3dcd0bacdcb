package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/etnz/stockroom"
	"github.com/etnz/stockroom/renderer"
	"github.com/google/subcommands"
)

type newCmd struct {
	kind     string
	id       string
	name     string
	summary  string
	labels   string
	unit     string
	parent   string
	price    string
	currency string
}

func (*newCmd) Name() string     { return "new" }
func (*newCmd) Synopsis() string { return "create a definition file" }
func (*newCmd) Usage() string {
	return `stk new -kind <kind> -name <name> [-id <id>] [-summary <text>] [-labels <a,b>]
        [-unit <unit>] [-price <amount> -currency <code>] [-parent <location>]

  Creates the definition file of a part, location, project or source. The
  id defaults to one derived from the name. An id only referenced by the
  ledger so far gets its definition; an id already defined is an error.
  Edit the created file to add a description or any other field.
`
}

func (c *newCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.kind, "kind", "part", "part, location, project or source")
	f.StringVar(&c.id, "id", "", "id, derived from the name by default")
	f.StringVar(&c.name, "name", "", "display name")
	f.StringVar(&c.summary, "summary", "", "one line description")
	f.StringVar(&c.labels, "labels", "", "comma separated labels")
	f.StringVar(&c.unit, "unit", "", "counting unit of a part, pc by default")
	f.StringVar(&c.parent, "parent", "", "location containing this location")
	f.StringVar(&c.price, "price", "", "unit price of a part")
	f.StringVar(&c.currency, "currency", "EUR", "currency of the price")
}

func (c *newCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	kind, err := stockroom.ParseKind(c.kind)
	if err != nil {
		return usage("%v", err)
	}
	id := c.id
	if id == "" {
		id = stockroom.NameToID(c.name)
	}
	if id == "" {
		return usage("-name or -id is required")
	}
	if c.unit != "" && kind != stockroom.KindPart || c.price != "" && kind != stockroom.KindPart {
		return usage("-unit and -price only apply to parts")
	}
	if c.parent != "" && kind != stockroom.KindLocation {
		return usage("-parent only applies to locations")
	}

	def := stockroom.NewDefinition(kind, id)
	def.Name = c.name
	def.Summary = c.summary
	def.Unit = c.unit
	def.Parent = c.parent
	for _, l := range strings.Split(c.labels, ",") {
		if l = strings.TrimSpace(l); l != "" {
			def.Labels = append(def.Labels, l)
		}
	}
	if c.price != "" {
		if def.Price, err = stockroom.ParseMoney(c.price, c.currency); err != nil {
			return usage("%v", err)
		}
	}

	inv, err := openInventory(ctx)
	if err != nil {
		return fail(err)
	}
	if d, err := inv.Definition(def.Ref()); err == nil && !d.Missing {
		return fail(fmt.Errorf("%s is already defined in %s", def.Ref(), d.Path()))
	}
	if err := inv.SaveDefinition(ctx, def); err != nil {
		return fail(err)
	}
	saved, err := inv.Definition(def.Ref())
	if err != nil {
		return fail(err)
	}
	printMarkdown(renderer.DefinitionMarkdown(saved, inv.View().Index))
	return subcommands.ExitSuccess
}

type fsckCmd struct{}

func (*fsckCmd) Name() string     { return "fsck" }
func (*fsckCmd) Synopsis() string { return "check the definitions and the ledger" }
func (*fsckCmd) Usage() string {
	return `stk fsck

  Reports the problems found in the files: malformed definitions or ledger
  lines, duplicate ids, conflicting entries, incomplete split groups and
  entries that cannot be replayed. Exits with an error status when a
  problem is found.
`
}

func (*fsckCmd) SetFlags(*flag.FlagSet) {}

func (*fsckCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	inv, err := openInventory(ctx)
	if err != nil {
		return fail(err)
	}
	ws, err := inv.Fsck(ctx)
	if err != nil {
		return fail(err)
	}
	printMarkdown(renderer.WarningsMarkdown(ws))
	if len(ws) > 0 {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

type watchCmd struct {
	debounce time.Duration
}

func (*watchCmd) Name() string     { return "watch" }
func (*watchCmd) Synopsis() string { return "follow the changes made to the files" }
func (*watchCmd) Usage() string {
	return `stk watch [-debounce <duration>]

  Watches the definitions and the ledger folders and reloads them whenever
  a file changes, for instance when a sync tool brings in the entries
  recorded on another machine. Prints a line after each reload and the
  problems found. Stops on interrupt.
`
}

func (c *watchCmd) SetFlags(f *flag.FlagSet) {
	f.DurationVar(&c.debounce, "debounce", stockroom.DefaultDebounce, "wait for changes to settle for this long before reloading")
}

func (c *watchCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	inv, err := openInventory(ctx)
	if err != nil {
		return fail(err)
	}
	report := func(v *stockroom.View) {
		fmt.Fprintf(stdout, "%s: %d definitions, %d entries, %d problems\n",
			time.Now().Format(time.TimeOnly), v.Definitions.Len(), v.Journal.Len(), len(v.Warnings))
	}
	report(inv.View())
	if err := inv.Watch(ctx, c.debounce, report); err != nil {
		return fail(err)
	}
	return subcommands.ExitSuccess
}

type importCSVCmd struct{}

func (*importCSVCmd) Name() string     { return "import-csv" }
func (*importCSVCmd) Synopsis() string { return "record the movements of a CSV export" }
func (*importCSVCmd) Usage() string {
	return `stk import-csv <file.csv | ->

  Records stock movements from a CSV file with the columns
  part,location,source,project,added,removed,time. Rows are recorded as
  deliveries, uses, salvages or count corrections. Importing the same file
  twice records nothing new. See stk topic formats.
`
}

func (*importCSVCmd) SetFlags(*flag.FlagSet) {}

func (*importCSVCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		return usage("one file is required")
	}
	var r io.Reader = os.Stdin
	if name := f.Arg(0); name != "-" {
		file, err := os.Open(name)
		if err != nil {
			return fail(err)
		}
		defer file.Close()
		r = file
	}
	return record(ctx, func(inv *stockroom.Inventory) (*stockroom.Result, error) {
		res, err := inv.ImportCSV(ctx, r)
		if errors.Is(err, stockroom.ErrValidation) {
			return nil, fmt.Errorf("nothing imported: %w", err)
		}
		return res, err
	})
}
