package commands

import (
	"context"
	"flag"
	"io"

	"rewecart/internal/exitcode"
	"rewecart/internal/output"
)

func init() {
	Register(&ProjectsCmd{})
}

// ProjectsCmd implements the projects command.
type ProjectsCmd struct{}

func (c *ProjectsCmd) Name() string      { return "projects" }
func (c *ProjectsCmd) Aliases() []string { return []string{"lists"} }
func (c *ProjectsCmd) Synopsis() string  { return "List projects and their sections" }
func (c *ProjectsCmd) Usage() string     { return "rewecart projects [common flags]" }
func (c *ProjectsCmd) NeedsAuth() bool   { return true }

func (c *ProjectsCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ProjectsCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	projects, err := env.Svc.ListProjects(ctx)
	if err != nil {
		return report(errOut, err)
	}

	for _, project := range projects {
		sections, err := env.Svc.ListSections(ctx, project.ID)
		if err != nil {
			return report(errOut, err)
		}
		output.FormatProject(out, project, sections)
	}

	return exitcode.Success
}
