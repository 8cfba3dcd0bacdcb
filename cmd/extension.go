package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/etnz/stockroom/config"
)

// Environment passed to extensions, holding the resolved configuration.
const (
	EnvRoot        = config.EnvPrefix + "_ROOT"
	EnvDefinitions = config.EnvPrefix + "_DEFINITIONS"
	EnvLedger      = config.EnvPrefix + "_LEDGER"
	EnvOrigin      = config.EnvPrefix + "_ORIGIN"
	EnvLogLevel    = config.EnvPrefix + "_LOG_LEVEL"
)

// Known reports whether name is a built-in sub-command.
func Known(name string) bool {
	switch name {
	case "help", "flags", "commands":
		return true
	}
	for _, cmds := range Commands() {
		for _, c := range cmds {
			if c.Name() == name {
				return true
			}
		}
	}
	return false
}

// RunExtension attempts to find and execute an external stk-<subcommand> binary.
// It returns (true, exitCode) if an extension was found and executed,
// and (false, 0) if no extension was found.
func RunExtension(subcommand string, args []string) (bool, int) {
	lp, err := exec.LookPath("stk-" + subcommand)
	if err != nil {
		return false, 0
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return true, 1
	}

	cmd := exec.Command(lp, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = append(os.Environ(),
		EnvRoot+"="+cfg.Root,
		EnvDefinitions+"="+cfg.Definitions,
		EnvLedger+"="+cfg.Ledger,
		EnvOrigin+"="+cfg.Origin,
		EnvLogLevel+"="+cfg.LogLevel.String(),
	)

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return true, exitErr.ExitCode()
		}
		fmt.Fprintf(os.Stderr, "Error executing external command %q: %v\n", lp, err)
		return true, 1
	}
	return true, 0
}
