package commands

import (
	"context"
	"flag"
	"io"

	"rewecart/internal/exitcode"
)

func init() {
	Register(&SkipCmd{})
}

// SkipCmd implements the skip command.
type SkipCmd struct{}

func (c *SkipCmd) Name() string      { return "skip" }
func (c *SkipCmd) Aliases() []string { return nil }
func (c *SkipCmd) Synopsis() string  { return "Skip the current task" }
func (c *SkipCmd) Usage() string     { return "rewecart skip [common flags]" }
func (c *SkipCmd) NeedsAuth() bool   { return false }

func (c *SkipCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *SkipCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	st, err := loadState(ctx, env)
	if err != nil {
		return report(errOut, err)
	}

	sess, err := st.sessions.Load(ctx)
	if err != nil {
		return report(errOut, err)
	}
	if err := sess.Skip(); err != nil {
		return report(errOut, err)
	}
	if err := st.sessions.Save(ctx, sess); err != nil {
		return report(errOut, err)
	}

	showNext(out, env, st, sess)
	return exitcode.Success
}
