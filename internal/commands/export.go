package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"rewecart/internal/exitcode"
	"rewecart/internal/settings"
)

func init() {
	Register(&ExportCmd{})
}

// ExportCmd implements the export command.
type ExportCmd struct {
	file string
	now  func() time.Time
}

// SetFile sets the output file (for testing).
func (c *ExportCmd) SetFile(file string) {
	c.file = file
}

// SetClock sets the time source (for testing).
func (c *ExportCmd) SetClock(now func() time.Time) {
	c.now = now
}

func (c *ExportCmd) Name() string      { return "export" }
func (c *ExportCmd) Aliases() []string { return nil }
func (c *ExportCmd) Synopsis() string  { return "Export settings and saved products as JSON" }
func (c *ExportCmd) Usage() string     { return "rewecart export [common flags] [--out <file>]" }
func (c *ExportCmd) NeedsAuth() bool   { return false }

func (c *ExportCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.file, "out", "", "")
	fs.StringVar(&c.file, "o", "", "")
}

func (c *ExportCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	st, err := loadState(ctx, env)
	if err != nil {
		return report(errOut, err)
	}

	all, err := st.mappings.All(ctx)
	if err != nil {
		return report(errOut, err)
	}

	now := time.Now
	if c.now != nil {
		now = c.now
	}
	data, err := settings.NewDocument(st.settings, all, now()).Encode()
	if err != nil {
		return report(errOut, err)
	}

	if c.file == "" || c.file == "-" {
		out.Write(data)
		return exitcode.Success
	}

	if err := os.WriteFile(c.file, data, 0600); err != nil {
		fmt.Fprintf(errOut, "error: write export: %v\n", err)
		return exitcode.UserError
	}
	if !env.Cfg.Quiet {
		fmt.Fprintf(out, "exported %d saved products to %s\n", len(all), c.file)
	}
	return exitcode.Success
}
