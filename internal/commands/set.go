package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"rewecart/internal/exitcode"
	"rewecart/internal/settings"
)

func init() {
	Register(&SetCmd{})
}

// SetCmd implements the set command.
type SetCmd struct{}

func (c *SetCmd) Name() string      { return "set" }
func (c *SetCmd) Aliases() []string { return nil }
func (c *SetCmd) Synopsis() string  { return "Change a setting" }
func (c *SetCmd) Usage() string     { return "rewecart set [common flags] <key> <value>" }
func (c *SetCmd) NeedsAuth() bool   { return false }

func (c *SetCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *SetCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	if len(args) < 2 {
		fmt.Fprintln(errOut, "error: key and value required")
		fmt.Fprintf(errOut, "keys: %s\n", strings.Join(settings.Keys(), ", "))
		return exitcode.UserError
	}

	st, err := loadState(ctx, env)
	if err != nil {
		return report(errOut, err)
	}

	updated := st.settings
	if err := updated.Set(args[0], strings.Join(args[1:], " ")); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		if errors.Is(err, settings.ErrUnknownKey) {
			fmt.Fprintf(errOut, "keys: %s\n", strings.Join(settings.Keys(), ", "))
		}
		return exitcode.UserError
	}

	if err := st.prefs.Save(ctx, updated); err != nil {
		return report(errOut, err)
	}

	if !env.Cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
