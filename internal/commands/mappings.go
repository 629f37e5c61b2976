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
	Register(&MappingsCmd{})
}

// MappingsCmd implements the mappings command.
type MappingsCmd struct {
	clear bool
}

// SetClear sets the clear flag (for testing).
func (c *MappingsCmd) SetClear(clear bool) {
	c.clear = clear
}

func (c *MappingsCmd) Name() string      { return "mappings" }
func (c *MappingsCmd) Aliases() []string { return []string{"maps"} }
func (c *MappingsCmd) Synopsis() string  { return "List or clear remembered products" }
func (c *MappingsCmd) Usage() string     { return "rewecart mappings [common flags] [--clear]" }
func (c *MappingsCmd) NeedsAuth() bool   { return false }

func (c *MappingsCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.clear, "clear", false, "")
}

func (c *MappingsCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	st, err := loadState(ctx, env)
	if err != nil {
		return report(errOut, err)
	}

	if c.clear {
		if err := st.mappings.Clear(ctx); err != nil {
			return report(errOut, err)
		}
		if !env.Cfg.Quiet {
			fmt.Fprintln(out, "ok")
		}
		return exitcode.Success
	}

	all, err := st.mappings.All(ctx)
	if err != nil {
		return report(errOut, err)
	}
	if len(all) == 0 {
		if !env.Cfg.Quiet {
			fmt.Fprintln(out, "no saved products")
		}
		return exitcode.Success
	}

	output.FormatMappings(out, all)
	return exitcode.Success
}
