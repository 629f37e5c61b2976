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
	Register(&TasksCmd{})
}

// TasksCmd implements the tasks command.
type TasksCmd struct {
	sel taskSelection
}

// SetSelection sets the project, section and tag filters (for testing).
func (c *TasksCmd) SetSelection(project, section, tag string) {
	c.sel = taskSelection{project: project, section: section, tag: tag}
}

func (c *TasksCmd) Name() string      { return "tasks" }
func (c *TasksCmd) Aliases() []string { return []string{"list"} }
func (c *TasksCmd) Synopsis() string  { return "List tasks carrying the shopping tag" }
func (c *TasksCmd) Usage() string {
	return "rewecart tasks [--project <name>] [--section <name>] [--tag <tag>]"
}
func (c *TasksCmd) NeedsAuth() bool { return true }

func (c *TasksCmd) RegisterFlags(fs *flag.FlagSet) {
	c.sel.register(fs)
}

func (c *TasksCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	st, err := loadState(ctx, env)
	if err != nil {
		return report(errOut, err)
	}

	tasks, err := c.sel.fetch(ctx, env.Svc, st.settings.DefaultTag)
	if err != nil {
		return report(errOut, err)
	}

	if len(tasks) == 0 {
		if !env.Cfg.Quiet {
			fmt.Fprintln(out, "no tasks found")
		}
		return exitcode.Success
	}

	for i, task := range tasks {
		output.FormatTask(out, i+1, task)
	}
	return exitcode.Success
}
