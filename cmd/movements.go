package cmd

import (
	"context"
	"flag"

	"github.com/etnz/stockroom"
	"github.com/etnz/stockroom/renderer"
	"github.com/google/subcommands"
)

// record opens the inventory, runs a command on it and prints what was
// written.
func record(ctx context.Context, do func(inv *stockroom.Inventory) (*stockroom.Result, error)) subcommands.ExitStatus {
	inv, err := openInventory(ctx)
	if err != nil {
		return fail(err)
	}
	res, err := do(inv)
	if err != nil {
		return fail(err)
	}
	printMarkdown(renderer.ResultMarkdown(res))
	return subcommands.ExitSuccess
}

// movement holds the flags shared by the movement commands.
type movement struct {
	part string
	qty  quantityFlag
	note string
}

func (m *movement) setFlags(f *flag.FlagSet) {
	f.StringVar(&m.part, "part", "", "part id")
	f.Var(&m.qty, "q", "quantity, in the part counting unit")
	f.StringVar(&m.note, "m", "", "an optional note")
}

// check returns a usage error when the part or the quantity is missing.
func (m *movement) check() (subcommands.ExitStatus, bool) {
	if m.part == "" || !m.qty.set {
		return usage("-part and -q are required"), false
	}
	return subcommands.ExitSuccess, true
}

type deliverCmd struct {
	movement
	to, from string
}

func (*deliverCmd) Name() string     { return "deliver" }
func (*deliverCmd) Synopsis() string { return "record parts received at a location" }
func (*deliverCmd) Usage() string {
	return `stk deliver -part <part> -q <qty> -to <location> [-from <source>] [-m <note>]

  Records parts received at a location, optionally from a source where they
  were ordered. The delivery settles the outstanding order.
`
}

func (c *deliverCmd) SetFlags(f *flag.FlagSet) {
	c.setFlags(f)
	f.StringVar(&c.to, "to", "", "location receiving the parts")
	f.StringVar(&c.from, "from", "", "source delivering the parts")
}

func (c *deliverCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if st, ok := c.check(); !ok {
		return st
	}
	return record(ctx, func(inv *stockroom.Inventory) (*stockroom.Result, error) {
		return inv.Deliver(ctx, c.part, c.to, c.qty.q, c.from, c.note)
	})
}

type moveCmd struct {
	movement
	from, to string
}

func (*moveCmd) Name() string     { return "move" }
func (*moveCmd) Synopsis() string { return "record parts moved between two locations" }
func (*moveCmd) Usage() string {
	return `stk move -part <part> -q <qty> -from <location> -to <location> [-m <note>]

  Records parts moved from one location to another.
`
}

func (c *moveCmd) SetFlags(f *flag.FlagSet) {
	c.setFlags(f)
	f.StringVar(&c.from, "from", "", "location the parts leave")
	f.StringVar(&c.to, "to", "", "location the parts arrive at")
}

func (c *moveCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if st, ok := c.check(); !ok {
		return st
	}
	return record(ctx, func(inv *stockroom.Inventory) (*stockroom.Result, error) {
		return inv.Move(ctx, c.part, c.from, c.to, c.qty.q, c.note)
	})
}

type useCmd struct {
	movement
	from, project string
}

func (*useCmd) Name() string     { return "use" }
func (*useCmd) Synopsis() string { return "record parts consumed by a project" }
func (*useCmd) Usage() string {
	return `stk use -part <part> -q <qty> -from <location> -in <project> [-m <note>]

  Records parts taken from a location and built into a project.
`
}

func (c *useCmd) SetFlags(f *flag.FlagSet) {
	c.setFlags(f)
	f.StringVar(&c.from, "from", "", "location the parts are taken from")
	f.StringVar(&c.project, "in", "", "project using the parts")
}

func (c *useCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if st, ok := c.check(); !ok {
		return st
	}
	return record(ctx, func(inv *stockroom.Inventory) (*stockroom.Result, error) {
		return inv.UseInProject(ctx, c.part, c.from, c.project, c.qty.q, c.note)
	})
}

type splitCmd struct {
	movement
	at string
}

func (*splitCmd) Name() string     { return "split" }
func (*splitCmd) Synopsis() string { return "record a part cut into pieces" }
func (*splitCmd) Usage() string {
	return `stk split -part <part> -q <total> -at <location> [-m <note>] <piece>=<qty>...

  Records that a quantity of a part was turned into pieces, at the same
  location. Pieces quantities must add up to the total. The movement is
  written as one group: it is either replayed whole or not at all.

  Example: a 30 m wire cut into 10 cm and 20 cm pieces.

    stk split -part wire -q 30 -at drawer_a wire_10cm=10 wire_20cm=20
`
}

func (c *splitCmd) SetFlags(f *flag.FlagSet) {
	c.setFlags(f)
	f.StringVar(&c.at, "at", "", "location of the part")
}

func (c *splitCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if st, ok := c.check(); !ok {
		return st
	}
	pieces, err := parsePieces(f.Args())
	if err != nil {
		return usage("%v", err)
	}
	return record(ctx, func(inv *stockroom.Inventory) (*stockroom.Result, error) {
		return inv.SplitIntoPieces(ctx, c.part, c.at, c.qty.q, pieces, c.note)
	})
}

type recountCmd struct {
	movement
	at string
}

func (*recountCmd) Name() string     { return "recount" }
func (*recountCmd) Synopsis() string { return "record the count of a part at a location" }
func (*recountCmd) Usage() string {
	return `stk recount -part <part> -q <observed> -at <location> [-m <note>]

  Records how many units were actually counted. The ledger keeps the
  difference with the known stock, so that later movements recorded on
  other machines still add up.
`
}

func (c *recountCmd) SetFlags(f *flag.FlagSet) {
	c.setFlags(f)
	f.StringVar(&c.at, "at", "", "location counted")
}

func (c *recountCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if st, ok := c.check(); !ok {
		return st
	}
	return record(ctx, func(inv *stockroom.Inventory) (*stockroom.Result, error) {
		return inv.Recount(ctx, c.part, c.at, c.qty.q, c.note)
	})
}

type returnCmd struct {
	movement
	from, to string
}

func (*returnCmd) Name() string     { return "return" }
func (*returnCmd) Synopsis() string { return "record parts sent back to a source" }
func (*returnCmd) Usage() string {
	return `stk return -part <part> -q <qty> -from <location> -to <source> [-m <note>]

  Records parts sent back from a location to the source they came from.
`
}

func (c *returnCmd) SetFlags(f *flag.FlagSet) {
	c.setFlags(f)
	f.StringVar(&c.from, "from", "", "location the parts leave")
	f.StringVar(&c.to, "to", "", "source receiving the parts")
}

func (c *returnCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if st, ok := c.check(); !ok {
		return st
	}
	return record(ctx, func(inv *stockroom.Inventory) (*stockroom.Result, error) {
		return inv.Return(ctx, c.part, c.from, c.to, c.qty.q, c.note)
	})
}

type salvageCmd struct {
	movement
	project, to string
}

func (*salvageCmd) Name() string     { return "salvage" }
func (*salvageCmd) Synopsis() string { return "record parts recovered from a project" }
func (*salvageCmd) Usage() string {
	return `stk salvage -part <part> -q <qty> -from <project> -to <location> [-m <note>]

  Records parts taken back from a project into a location.
`
}

func (c *salvageCmd) SetFlags(f *flag.FlagSet) {
	c.setFlags(f)
	f.StringVar(&c.project, "from", "", "project the parts are recovered from")
	f.StringVar(&c.to, "to", "", "location receiving the parts")
}

func (c *salvageCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if st, ok := c.check(); !ok {
		return st
	}
	return record(ctx, func(inv *stockroom.Inventory) (*stockroom.Result, error) {
		return inv.Salvage(ctx, c.part, c.project, c.to, c.qty.q, c.note)
	})
}

type orderCmd struct {
	movement
	from string
}

func (*orderCmd) Name() string     { return "order" }
func (*orderCmd) Synopsis() string { return "record parts ordered from a source" }
func (*orderCmd) Usage() string {
	return `stk order -part <part> -q <qty> -from <source> [-m <note>]

  Records parts ordered and not delivered yet.
`
}

func (c *orderCmd) SetFlags(f *flag.FlagSet) {
	c.setFlags(f)
	f.StringVar(&c.from, "from", "", "source the parts are ordered from")
}

func (c *orderCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if st, ok := c.check(); !ok {
		return st
	}
	return record(ctx, func(inv *stockroom.Inventory) (*stockroom.Result, error) {
		return inv.Order(ctx, c.part, c.from, c.qty.q, c.note)
	})
}

type cancelCmd struct {
	movement
	from string
}

func (*cancelCmd) Name() string     { return "cancel" }
func (*cancelCmd) Synopsis() string { return "record an order that will not be delivered" }
func (*cancelCmd) Usage() string {
	return `stk cancel -part <part> -q <qty> -from <source> [-m <note>]

  Records that ordered parts are no longer expected.
`
}

func (c *cancelCmd) SetFlags(f *flag.FlagSet) {
	c.setFlags(f)
	f.StringVar(&c.from, "from", "", "source the parts were ordered from")
}

func (c *cancelCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if st, ok := c.check(); !ok {
		return st
	}
	return record(ctx, func(inv *stockroom.Inventory) (*stockroom.Result, error) {
		return inv.CancelOrder(ctx, c.part, c.from, c.qty.q, c.note)
	})
}

type requireCmd struct {
	movement
	at string
}

func (*requireCmd) Name() string     { return "require" }
func (*requireCmd) Synopsis() string { return "set the quantity of a part wanted at a location" }
func (*requireCmd) Usage() string {
	return `stk require -part <part> -q <qty> -at <location> [-m <note>]

  Sets the minimum quantity of a part wanted at a location. A quantity of 0
  removes the requirement. See stk short.
`
}

func (c *requireCmd) SetFlags(f *flag.FlagSet) {
	c.setFlags(f)
	f.StringVar(&c.at, "at", "", "location where the part is wanted")
}

func (c *requireCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if st, ok := c.check(); !ok {
		return st
	}
	return record(ctx, func(inv *stockroom.Inventory) (*stockroom.Result, error) {
		return inv.Require(ctx, c.part, c.at, c.qty.q, c.note)
	})
}
