package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"rewecart/internal/exitcode"
	"rewecart/internal/matching"
	"rewecart/internal/output"
	"rewecart/internal/transfer"
)

func init() {
	Register(&SearchCmd{})
}

// SearchCmd implements the search command. It searches the storefront
// without touching the active transfer.
type SearchCmd struct{}

func (c *SearchCmd) Name() string      { return "search" }
func (c *SearchCmd) Aliases() []string { return []string{"find"} }
func (c *SearchCmd) Synopsis() string  { return "Search the storefront for products" }
func (c *SearchCmd) Usage() string     { return "rewecart search [common flags] <term...>" }
func (c *SearchCmd) NeedsAuth() bool   { return false }

func (c *SearchCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *SearchCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	query := strings.TrimSpace(strings.Join(args, " "))
	if query == "" {
		fmt.Fprintln(errOut, "error: search term required")
		return exitcode.UserError
	}
	if env.Storefront == nil {
		fmt.Fprintln(errOut, "error: no storefront configured")
		return exitcode.BackendError
	}

	st, err := loadState(ctx, env)
	if err != nil {
		return report(errOut, err)
	}

	term := matching.Sanitize(query)
	resolver := transfer.NewResolver(nil, env.Storefront, st.settings, env.Log)
	res, err := resolver.Resolve(ctx, query, term)
	if err != nil {
		return report(errOut, err)
	}

	fmt.Fprintf(out, "search: %s\n", term)
	output.FormatResolution(out, res)
	return exitcode.Success
}
