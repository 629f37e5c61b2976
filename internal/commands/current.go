package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"rewecart/internal/exitcode"
	"rewecart/internal/output"
	"rewecart/internal/transfer"
)

func init() {
	Register(&CurrentCmd{})
}

// CurrentCmd implements the current command.
type CurrentCmd struct{}

func (c *CurrentCmd) Name() string      { return "current" }
func (c *CurrentCmd) Aliases() []string { return []string{"next"} }
func (c *CurrentCmd) Synopsis() string  { return "Show the current task and its product candidates" }
func (c *CurrentCmd) Usage() string     { return "rewecart current [common flags]" }
func (c *CurrentCmd) NeedsAuth() bool   { return false }

func (c *CurrentCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *CurrentCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	st, err := loadState(ctx, env)
	if err != nil {
		return report(errOut, err)
	}

	sess, err := st.sessions.Load(ctx)
	if err != nil {
		return report(errOut, err)
	}

	cur, err := sess.Current()
	if errors.Is(err, transfer.ErrExhausted) {
		finish(out, env, st, sess)
		return exitcode.Success
	}
	if err != nil {
		return report(errOut, err)
	}

	res, err := resolveCurrent(ctx, env, st, sess, cur)
	if err != nil {
		return report(errOut, err)
	}

	output.FormatCurrent(out, cur)
	output.FormatResolution(out, res)
	mappingHint(out, cur, res)
	return exitcode.Success
}

// finish prints the end-of-transfer report.
func finish(out io.Writer, env *Env, st *state, sess *transfer.Session) {
	summary := sess.Summary()
	if st.settings.ShowNotifications && !env.Cfg.Quiet {
		fmt.Fprintf(out, "transfer complete: %d added, %d skipped\n", summary.CompletedCount, summary.SkippedCount)
	}
	output.FormatSummary(out, summary)
	if st.settings.AutoOpenCart && env.Storefront != nil && summary.CompletedCount > 0 {
		fmt.Fprintf(out, "cart: %s\n", env.Storefront.CartURL())
	}
}
