package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"rewecart/internal/exitcode"
	"rewecart/internal/output"
	"rewecart/internal/transfer"
)

func init() {
	Register(&StartCmd{})
}

// StartCmd implements the start command.
type StartCmd struct {
	sel taskSelection
}

// SetSelection sets the project, section and tag filters (for testing).
func (c *StartCmd) SetSelection(project, section, tag string) {
	c.sel = taskSelection{project: project, section: section, tag: tag}
}

func (c *StartCmd) Name() string      { return "start" }
func (c *StartCmd) Aliases() []string { return nil }
func (c *StartCmd) Synopsis() string  { return "Start a transfer over the tagged tasks" }
func (c *StartCmd) Usage() string {
	return "rewecart start [--project <name>] [--section <name>] [--tag <tag>]"
}
func (c *StartCmd) NeedsAuth() bool { return true }

func (c *StartCmd) RegisterFlags(fs *flag.FlagSet) {
	c.sel.register(fs)
}

func (c *StartCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	st, err := loadState(ctx, env)
	if err != nil {
		return report(errOut, err)
	}

	sess, err := startSession(ctx, env, st, c.sel)
	if err != nil {
		return report(errOut, err)
	}

	if !env.Cfg.Quiet {
		fmt.Fprintf(out, "transfer started: %d tasks\n", sess.Total())
		for i, task := range sess.Tasks {
			output.FormatTask(out, i+1, task)
		}
	}
	return exitcode.Success
}

// startSession fetches the selected tasks and stores a new session over
// them, replacing any earlier one.
func startSession(ctx context.Context, env *Env, st *state, sel taskSelection) (*transfer.Session, error) {
	tasks, err := sel.fetch(ctx, env.Svc, st.settings.DefaultTag)
	if err != nil {
		return nil, err
	}

	sess := transfer.Start(tasks)
	if err := st.sessions.Clear(ctx); err != nil {
		return nil, err
	}
	if err := st.sessions.Save(ctx, sess); err != nil {
		return nil, err
	}

	env.Log.Info().Str("session", sess.ID).Int("tasks", sess.Total()).Msg("transfer started")
	return sess, nil
}
