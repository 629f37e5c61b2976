package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"rewecart/internal/exitcode"
	"rewecart/internal/output"
)

func init() {
	Register(&SettingsCmd{})
}

// SettingsCmd implements the settings command.
type SettingsCmd struct {
	reset bool
}

// SetReset sets the reset flag (for testing).
func (c *SettingsCmd) SetReset(reset bool) {
	c.reset = reset
}

func (c *SettingsCmd) Name() string      { return "settings" }
func (c *SettingsCmd) Aliases() []string { return []string{"config"} }
func (c *SettingsCmd) Synopsis() string  { return "Show or reset the settings" }
func (c *SettingsCmd) Usage() string     { return "rewecart settings [common flags] [--reset]" }
func (c *SettingsCmd) NeedsAuth() bool   { return false }

func (c *SettingsCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.reset, "reset", false, "")
}

func (c *SettingsCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	st, err := loadState(ctx, env)
	if err != nil {
		return report(errOut, err)
	}

	current := st.settings
	if c.reset {
		current, err = st.prefs.Reset(ctx)
		if err != nil {
			return report(errOut, err)
		}
		if !env.Cfg.Quiet {
			fmt.Fprintln(out, "settings reset to defaults")
		}
	}

	output.FormatSettings(out, current)
	return exitcode.Success
}
