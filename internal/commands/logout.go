package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"rewecart/internal/config"
	"rewecart/internal/exitcode"
)

func init() {
	Register(&LogoutCmd{})
}

// LogoutCmd implements the logout command.
type LogoutCmd struct{}

func (c *LogoutCmd) Name() string      { return "logout" }
func (c *LogoutCmd) Aliases() []string { return nil }
func (c *LogoutCmd) Synopsis() string  { return "Remove the stored API token" }
func (c *LogoutCmd) Usage() string     { return "rewecart logout [common flags]" }
func (c *LogoutCmd) NeedsAuth() bool   { return false }

func (c *LogoutCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *LogoutCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	st, err := loadState(ctx, env)
	if err != nil {
		return report(errOut, err)
	}

	if env.Cfg.EnvToken() != "" {
		fmt.Fprintf(errOut, "warning: %s is set and still provides a token\n", config.TokenEnv)
	}

	if st.settings.APIToken == "" {
		if !env.Cfg.Quiet {
			fmt.Fprintln(out, "not logged in")
		}
		return exitcode.Success
	}

	st.settings.APIToken = ""
	if err := st.prefs.Save(ctx, st.settings); err != nil {
		fmt.Fprintf(errOut, "error: failed to remove token: %v\n", err)
		return exitcode.AuthError
	}

	if !env.Cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
