package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"rewecart/internal/exitcode"
	"rewecart/internal/settings"
)

func init() {
	Register(&ImportCmd{})
}

// ImportCmd implements the import command. The stored API token is kept.
type ImportCmd struct{}

func (c *ImportCmd) Name() string      { return "import" }
func (c *ImportCmd) Aliases() []string { return nil }
func (c *ImportCmd) Synopsis() string  { return "Import settings and saved products from JSON" }
func (c *ImportCmd) Usage() string     { return "rewecart import [common flags] <file|->" }
func (c *ImportCmd) NeedsAuth() bool   { return false }

func (c *ImportCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ImportCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	if len(args) != 1 || strings.TrimSpace(args[0]) == "" {
		fmt.Fprintln(errOut, "error: import file required")
		return exitcode.UserError
	}

	data, err := readImport(env, args[0])
	if err != nil {
		fmt.Fprintf(errOut, "error: read import: %v\n", err)
		return exitcode.UserError
	}

	doc, err := settings.ParseDocument(data)
	if err != nil {
		return report(errOut, err)
	}

	st, err := loadState(ctx, env)
	if err != nil {
		return report(errOut, err)
	}

	imported := doc.Settings
	imported.APIToken = st.settings.APIToken
	if err := st.prefs.Save(ctx, imported); err != nil {
		return report(errOut, err)
	}
	if err := st.mappings.PutAll(ctx, doc.Mappings); err != nil {
		return report(errOut, err)
	}

	env.Log.Info().Str("version", doc.Version).Int("mappings", len(doc.Mappings)).Msg("settings imported")
	if !env.Cfg.Quiet {
		fmt.Fprintf(out, "imported settings and %d saved products\n", len(doc.Mappings))
	}
	return exitcode.Success
}

func readImport(env *Env, name string) ([]byte, error) {
	if name == "-" {
		if env.In == nil {
			return nil, errors.New("no input on stdin")
		}
		return io.ReadAll(env.In)
	}
	return os.ReadFile(name)
}
