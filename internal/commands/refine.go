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
	Register(&RefineCmd{})
}

// RefineCmd implements the refine command.
type RefineCmd struct{}

func (c *RefineCmd) Name() string      { return "refine" }
func (c *RefineCmd) Aliases() []string { return nil }
func (c *RefineCmd) Synopsis() string  { return "Search again with another term" }
func (c *RefineCmd) Usage() string     { return "rewecart refine [common flags] <term...>" }
func (c *RefineCmd) NeedsAuth() bool   { return false }

func (c *RefineCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *RefineCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	term := strings.TrimSpace(strings.Join(args, " "))
	if term == "" {
		fmt.Fprintln(errOut, "error: search term required")
		return exitcode.UserError
	}

	st, err := loadState(ctx, env)
	if err != nil {
		return report(errOut, err)
	}

	sess, err := st.sessions.Load(ctx)
	if err != nil {
		return report(errOut, err)
	}
	cur, err := sess.Current()
	if err != nil {
		return report(errOut, err)
	}

	if err := sess.Refine(cur.Name, term); err != nil {
		return report(errOut, err)
	}
	if err := st.sessions.Save(ctx, sess); err != nil {
		return report(errOut, err)
	}

	if env.Cfg.Quiet {
		return exitcode.Success
	}
	fmt.Fprintf(out, "search term for %q: %s\n", cur.Name, term)
	if _, mapped, err := st.mappings.Get(ctx, cur.Name); err == nil && mapped {
		fmt.Fprintf(out, "saved product in use; run: rewecart unmap %q to search again\n", cur.Name)
	}
	return exitcode.Success
}
