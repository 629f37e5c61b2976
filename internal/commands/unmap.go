package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"rewecart/internal/exitcode"
)

func init() {
	Register(&UnmapCmd{})
}

// UnmapCmd implements the unmap command.
type UnmapCmd struct{}

func (c *UnmapCmd) Name() string      { return "unmap" }
func (c *UnmapCmd) Aliases() []string { return nil }
func (c *UnmapCmd) Synopsis() string  { return "Forget the remembered product for a task" }
func (c *UnmapCmd) Usage() string     { return "rewecart unmap [common flags] <task...>" }
func (c *UnmapCmd) NeedsAuth() bool   { return false }

func (c *UnmapCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *UnmapCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	name := strings.TrimSpace(strings.Join(args, " "))
	if name == "" {
		fmt.Fprintln(errOut, "error: task name required")
		return exitcode.UserError
	}

	st, err := loadState(ctx, env)
	if err != nil {
		return report(errOut, err)
	}

	if _, ok, err := st.mappings.Get(ctx, name); err != nil {
		return report(errOut, err)
	} else if !ok {
		fmt.Fprintf(errOut, "error: no saved product for: %s\n", name)
		return exitcode.UserError
	}

	if err := st.mappings.Delete(ctx, name); err != nil {
		return report(errOut, err)
	}

	if !env.Cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
