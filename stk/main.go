// Command stk tracks parts, where they are stored and where they went.
//
// Run "stk help" for the list of commands and "stk topic" for the
// documentation. Unknown commands run the stk-<command> binary found in
// the PATH, if any. Shell completion is installed with COMP_INSTALL=1 stk.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/etnz/stockroom/cmd"
	"github.com/google/subcommands"
)

func main() {
	cmd.Completion().Complete("stk")

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	cmd.Register(commander)

	flag.Parse()
	if name := flag.Arg(0); name != "" && !cmd.Known(name) {
		if ran, code := cmd.RunExtension(name, flag.Args()[1:]); ran {
			os.Exit(code)
		}
	}
	os.Exit(int(commander.Execute(context.Background())))
}
