// Package cmd implements the sub-commands of the stk tool.
package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/stockroom"
	"github.com/etnz/stockroom/config"
	"github.com/google/subcommands"
	"github.com/rs/zerolog"
)

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var (
	rootDir        = flag.String(config.KeyRoot, "", "folder holding the definitions, the ledger and config.yaml (env STK_ROOT)")
	definitionsDir = flag.String(config.KeyDefinitions, "", "definitions folder, relative to the root (env STK_DEFINITIONS)")
	ledgerDir      = flag.String(config.KeyLedger, "", "ledger folder, relative to the root (env STK_LEDGER)")
	origin         = flag.String(config.KeyOrigin, "", "name of this machine in new entries, defaults to the host name (env STK_ORIGIN)")
	logLevel       = flag.String("log-level", "", "log level: debug, info, warn, error (env STK_LOG_LEVEL)")
)

// stdout receives the command output.
var stdout io.Writer = os.Stdout

// Commands returns the sub-commands, by group.
func Commands() map[string][]subcommands.Command {
	return map[string][]subcommands.Command{
		"movements": {
			&deliverCmd{}, &moveCmd{}, &useCmd{}, &splitCmd{}, &recountCmd{},
			&returnCmd{}, &salvageCmd{}, &orderCmd{}, &cancelCmd{}, &requireCmd{},
			&importCSVCmd{},
		},
		"queries": {
			&searchCmd{}, &lsCmd{}, &historyCmd{}, &showCmd{}, &valueCmd{}, &shortCmd{},
		},
		"maintenance": {
			&newCmd{}, &fsckCmd{}, &watchCmd{},
		},
		"help": {
			&topicCmd{},
		},
	}
}

// Register the sub-commands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	for group, cmds := range Commands() {
		for _, cmd := range cmds {
			c.Register(cmd, group)
		}
	}
}

// loadConfig resolves the configuration from the global flags.
func loadConfig() (*config.Config, error) {
	return config.Load(map[string]string{
		config.KeyRoot:        *rootDir,
		config.KeyDefinitions: *definitionsDir,
		config.KeyLedger:      *ledgerDir,
		config.KeyOrigin:      *origin,
		config.KeyLogLevel:    *logLevel,
	})
}

// newLogger writes human readable logs on stderr.
func newLogger(level zerolog.Level) zerolog.Logger {
	w := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// openInventory is the central function to open the stores.
func openInventory(ctx context.Context) (*stockroom.Inventory, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	log := newLogger(cfg.LogLevel)
	log.Debug().Str("root", cfg.Root).Str("config", cfg.File).Msg("configuration loaded")

	inv, err := stockroom.Open(ctx, stockroom.Options{
		Definitions: cfg.Definitions,
		Ledger:      cfg.Ledger,
		Origin:      cfg.Origin,
		Logger:      &log,
	})
	if err != nil {
		return nil, fmt.Errorf("open inventory in %s: %w", cfg.Root, err)
	}
	return inv, nil
}

// printMarkdown renders md for the terminal. It falls back to the raw
// markdown when rendering fails.
func printMarkdown(md string) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		fmt.Fprint(stdout, md)
		return
	}
	out, err := r.Render(md)
	if err != nil {
		fmt.Fprint(stdout, md)
		return
	}
	fmt.Fprint(stdout, out)
}

// fail reports err on stderr and returns the failure status.
func fail(err error) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return subcommands.ExitFailure
}

// usage reports a usage error on stderr.
func usage(format string, args ...any) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	return subcommands.ExitUsageError
}
