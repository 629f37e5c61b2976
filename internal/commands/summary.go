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
	Register(&SummaryCmd{})
}

// SummaryCmd implements the summary command.
type SummaryCmd struct{}

func (c *SummaryCmd) Name() string      { return "summary" }
func (c *SummaryCmd) Aliases() []string { return []string{"status"} }
func (c *SummaryCmd) Synopsis() string  { return "Print the transfer summary" }
func (c *SummaryCmd) Usage() string     { return "rewecart summary [common flags]" }
func (c *SummaryCmd) NeedsAuth() bool   { return false }

func (c *SummaryCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *SummaryCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	st, err := loadState(ctx, env)
	if err != nil {
		return report(errOut, err)
	}

	sess, err := st.sessions.Load(ctx)
	if err != nil {
		return report(errOut, err)
	}

	if !env.Cfg.Quiet {
		fmt.Fprintf(out, "state:     %s\n", sess.State())
	}
	output.FormatSummary(out, sess.Summary())
	return exitcode.Success
}
