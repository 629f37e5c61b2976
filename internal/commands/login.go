package commands

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"rewecart/internal/exitcode"
	"rewecart/internal/service"
)

func init() {
	Register(&LoginCmd{})
}

// LoginCmd implements the login command.
type LoginCmd struct{}

func (c *LoginCmd) Name() string      { return "login" }
func (c *LoginCmd) Aliases() []string { return nil }
func (c *LoginCmd) Synopsis() string  { return "Store a Todoist API token" }
func (c *LoginCmd) Usage() string     { return "rewecart login [common flags] [<token>]" }
func (c *LoginCmd) NeedsAuth() bool   { return false }

func (c *LoginCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *LoginCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	if len(args) > 1 {
		fmt.Fprintln(errOut, "error: too many arguments")
		return exitcode.UserError
	}

	st, err := loadState(ctx, env)
	if err != nil {
		return report(errOut, err)
	}

	var token string
	if len(args) == 1 {
		token = strings.TrimSpace(args[0])
	} else {
		token, err = promptToken(env.In, errOut)
		if err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
	}
	if token == "" {
		fmt.Fprintln(errOut, "error: token required")
		return exitcode.UserError
	}

	if token == st.settings.APIToken {
		if !env.Cfg.Quiet {
			fmt.Fprintln(out, "already logged in")
		}
		return exitcode.Success
	}

	// Validate the token before storing it
	if env.NewService == nil {
		fmt.Fprintln(errOut, "error: no task service configured")
		return exitcode.AuthError
	}
	svc, err := env.NewService(ctx, env.Cfg, token)
	if err == nil {
		_, err = svc.ListProjects(ctx)
	}
	if err != nil {
		if errors.Is(err, service.ErrAuth) {
			fmt.Fprintln(errOut, "error: invalid token")
			return exitcode.AuthError
		}
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
		return exitcode.BackendError
	}

	st.settings.APIToken = token
	if err := st.prefs.Save(ctx, st.settings); err != nil {
		fmt.Fprintf(errOut, "error: failed to save token: %v\n", err)
		return exitcode.AuthError
	}

	env.Log.Debug().Msg("api token stored")
	if !env.Cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}

// promptToken reads a token from in, prompting on w.
func promptToken(in io.Reader, w io.Writer) (string, error) {
	if in == nil {
		return "", errors.New("token required")
	}
	fmt.Fprint(w, "Todoist API token: ")
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read token: %w", err)
	}
	return strings.TrimSpace(line), nil
}
