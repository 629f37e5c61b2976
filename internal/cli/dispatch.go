package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"

	"rewecart/internal/commands"
	"rewecart/internal/config"
	"rewecart/internal/exitcode"
	"rewecart/internal/logging"
	"rewecart/internal/service"
	"rewecart/internal/store"
)

// Deps builds the resources commands run against. Used to inject backends
// during dispatch.
type Deps struct {
	// Service creates the Todoist client for a token.
	Service commands.ServiceFactory

	// Store opens the persistent store. It is only called by commands
	// that read or write state.
	Store func(ctx context.Context, cfg *config.Config) (store.Store, error)

	// Storefront creates the product search. Nil disables searching.
	Storefront func(cfg *config.Config, log zerolog.Logger) (commands.Storefront, error)

	// In is read by prompting commands.
	In io.Reader
}

// Dispatcher handles command-line parsing and dispatch.
type Dispatcher struct {
	registry *commands.Registry
	deps     Deps
}

// NewDispatcher creates a new dispatcher with the given registry and dependencies.
func NewDispatcher(registry *commands.Registry, deps Deps) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		deps:     deps,
	}
}

// Run parses arguments and dispatches to the appropriate command.
// Returns the exit code.
func (d *Dispatcher) Run(ctx context.Context, args []string, out, errOut io.Writer) int {
	// No args -> show where the transfer stands
	if len(args) == 0 {
		return d.dispatch(ctx, "current", nil, out, errOut)
	}

	cmdName := args[0]

	// If first token starts with -, it's an error (flags require a command)
	if strings.HasPrefix(cmdName, "-") {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", cmdName)
		return exitcode.UserError
	}

	return d.dispatch(ctx, cmdName, args[1:], out, errOut)
}

func (d *Dispatcher) dispatch(ctx context.Context, cmdName string, args []string, out, errOut io.Writer) int {
	cmd, ok := d.registry.Find(cmdName)
	if !ok {
		if suggestion, ok := d.registry.Suggest(cmdName); ok {
			fmt.Fprintf(errOut, "error: unknown command: %s (did you mean %s?)\n", cmdName, suggestion)
		} else {
			fmt.Fprintf(errOut, "error: unknown command: %s\n", cmdName)
		}
		return exitcode.UserError
	}
	return d.dispatchCommand(ctx, cmd, args, out, errOut)
}

func (d *Dispatcher) dispatchCommand(ctx context.Context, cmd commands.Command, args []string, out, errOut io.Writer) int {
	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	fs.SetOutput(io.Discard) // We handle errors ourselves

	// Common flags
	var configDir string
	var quiet bool
	var debug bool

	fs.StringVar(&configDir, "config", "", "")
	fs.BoolVar(&quiet, "quiet", false, "")
	fs.BoolVar(&debug, "debug", false, "")

	cmd.RegisterFlags(fs)

	if err := fs.Parse(args); err != nil {
		return flagError(errOut, err)
	}

	// Check if first positional arg starts with - (should have been parsed as flag)
	positionalArgs := fs.Args()
	if len(positionalArgs) > 0 && strings.HasPrefix(positionalArgs[0], "-") && positionalArgs[0] != "-" {
		fmt.Fprintf(errOut, "error: unknown flag: %s\n", positionalArgs[0])
		return exitcode.UserError
	}

	cfg, err := config.New(configDir)
	if err != nil {
		fmt.Fprintf(errOut, "error: %s\n", err)
		return exitcode.UserError
	}
	cfg.Quiet = quiet
	cfg.Debug = debug

	log, logCloser, err := logging.New(cfg.Log, errOut, debug)
	if err != nil {
		fmt.Fprintf(errOut, "error: %s\n", err)
		return exitcode.UserError
	}
	if logCloser != nil {
		defer logCloser.Close()
	}

	env := &commands.Env{
		Cfg:        cfg,
		Log:        log.With().Str("command", cmd.Name()).Logger(),
		In:         d.deps.In,
		NewService: d.deps.Service,
	}
	if d.deps.Store != nil {
		env.OpenStore = func(ctx context.Context) (store.Store, error) {
			return d.deps.Store(ctx, cfg)
		}
	}
	defer func() {
		if err := env.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close store")
		}
	}()

	if d.deps.Storefront != nil {
		sf, err := d.deps.Storefront(cfg, log)
		if err != nil {
			fmt.Fprintf(errOut, "error: %s\n", err)
			return exitcode.UserError
		}
		env.Storefront = sf
	}

	if cmd.NeedsAuth() {
		if code := d.authenticate(ctx, env, errOut); code != exitcode.Success {
			return code
		}
	}

	env.Log.Debug().Strs("args", positionalArgs).Msg("dispatch")
	return cmd.Run(ctx, env, positionalArgs, out, errOut)
}

// authenticate sets env.Svc from the stored or environment token.
func (d *Dispatcher) authenticate(ctx context.Context, env *commands.Env, errOut io.Writer) int {
	token, err := commands.StoredToken(ctx, env)
	if err != nil {
		fmt.Fprintf(errOut, "error: %s\n", err)
		return exitcode.BackendError
	}
	if token == "" {
		fmt.Fprintf(errOut, "error: not logged in (run: rewecart login or set %s)\n", config.TokenEnv)
		return exitcode.AuthError
	}
	if d.deps.Service == nil {
		fmt.Fprintln(errOut, "error: no task service configured")
		return exitcode.AuthError
	}

	svc, err := d.deps.Service(ctx, env.Cfg, token)
	if err != nil {
		if errors.Is(err, service.ErrAuth) {
			fmt.Fprintf(errOut, "error: auth error: %s\n", err)
			return exitcode.AuthError
		}
		fmt.Fprintf(errOut, "error: backend error: %s\n", err)
		return exitcode.BackendError
	}
	env.Svc = svc
	return exitcode.Success
}

// flagError reports a flag parsing failure.
func flagError(errOut io.Writer, err error) int {
	errStr := err.Error()

	// Check for missing flag value
	if strings.HasPrefix(errStr, "flag needs an argument:") {
		flagName := strings.TrimSpace(strings.TrimPrefix(errStr, "flag needs an argument:"))
		fmt.Fprintf(errOut, "error: flag needs an argument: %s\n", flagName)
		return exitcode.UserError
	}

	if strings.HasPrefix(errStr, "flag provided but not defined:") {
		flagName := strings.TrimPrefix(errStr, "flag provided but not defined: ")
		fmt.Fprintf(errOut, "error: unknown flag: %s\n", flagName)
		return exitcode.UserError
	}

	fmt.Fprintf(errOut, "error: %s\n", errStr)
	return exitcode.UserError
}
