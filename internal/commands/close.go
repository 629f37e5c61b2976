package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"rewecart/internal/exitcode"
	"rewecart/internal/service"
	"rewecart/internal/tasksync"
	"rewecart/internal/transfer"
)

func init() {
	Register(&CloseCmd{})
}

// CloseCmd implements the close command.
type CloseCmd struct {
	all bool
}

// SetAll sets the all flag (for testing).
func (c *CloseCmd) SetAll(all bool) {
	c.all = all
}

func (c *CloseCmd) Name() string      { return "close" }
func (c *CloseCmd) Aliases() []string { return []string{"done"} }
func (c *CloseCmd) Synopsis() string  { return "Close the transferred tasks in Todoist" }
func (c *CloseCmd) Usage() string     { return "rewecart close [common flags] [--all]" }
func (c *CloseCmd) NeedsAuth() bool   { return true }

func (c *CloseCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.all, "all", false, "")
}

func (c *CloseCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	st, err := loadState(ctx, env)
	if err != nil {
		return report(errOut, err)
	}

	sess, err := st.sessions.Load(ctx)
	if err != nil {
		return report(errOut, err)
	}

	tasks := sess.Completed
	if c.all {
		tasks = append(append([]service.Task(nil), sess.Completed...), sess.Skipped...)
	}
	return closeTasks(ctx, env, st, sess, tasks, out, errOut)
}

// closeTasks closes every task not closed before and records the result in
// the session. Any failure yields BackendError.
func closeTasks(ctx context.Context, env *Env, st *state, sess *transfer.Session, tasks []service.Task, out, errOut io.Writer) int {
	var ids []string
	for _, t := range tasks {
		if !sess.IsClosed(t.ID) {
			ids = append(ids, t.ID)
		}
	}
	if len(ids) == 0 {
		if !env.Cfg.Quiet {
			fmt.Fprintln(out, "nothing to close")
		}
		return exitcode.Success
	}

	syncer := tasksync.New(env.Svc, env.Cfg.Sync.Spacing, env.Log)
	result := syncer.CloseTasks(ctx, ids)

	sess.MarkClosed(result.Closed)
	if err := st.sessions.Save(ctx, sess); err != nil {
		return report(errOut, err)
	}

	if !env.Cfg.Quiet {
		fmt.Fprintf(out, "closed %d of %d tasks\n", len(result.Closed), len(ids))
	}
	for _, f := range result.Failed {
		fmt.Fprintf(errOut, "error: failed to close task %s: %s\n", f.ID, f.Reason)
	}
	if len(result.Failed) > 0 {
		return exitcode.BackendError
	}
	return exitcode.Success
}
