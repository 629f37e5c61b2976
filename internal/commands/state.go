package commands

import (
	"context"
	"errors"
	"fmt"
	"io"

	"rewecart/internal/exitcode"
	"rewecart/internal/mapping"
	"rewecart/internal/service"
	"rewecart/internal/settings"
	"rewecart/internal/transfer"
)

// state is the persisted data a command works on. Settings are loaded once
// per command run.
type state struct {
	settings settings.Settings
	prefs    *settings.Repository
	sessions *transfer.Repository
	mappings *mapping.Cache
}

func loadState(ctx context.Context, env *Env) (*state, error) {
	s, err := env.Store(ctx)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	prefs := settings.NewRepository(s)
	current, err := prefs.Load(ctx)
	if err != nil {
		return nil, err
	}

	return &state{
		settings: current,
		prefs:    prefs,
		sessions: transfer.NewRepository(s),
		mappings: mapping.New(s),
	}, nil
}

// Token returns the API token to use: the environment wins over settings.
func Token(env *Env, s settings.Settings) string {
	if env.Cfg != nil {
		if t := env.Cfg.EnvToken(); t != "" {
			return t
		}
	}
	return s.APIToken
}

// StoredToken loads settings and returns the effective API token.
func StoredToken(ctx context.Context, env *Env) (string, error) {
	st, err := loadState(ctx, env)
	if err != nil {
		return "", err
	}
	return Token(env, st.settings), nil
}

func (st *state) resolver(env *Env) *transfer.Resolver {
	return transfer.NewResolver(st.mappings, env.Storefront, st.settings, env.Log)
}

// resolveCurrent returns the candidates for the current task. Candidates
// shown earlier for the same task and term are reused.
func resolveCurrent(ctx context.Context, env *Env, st *state, sess *transfer.Session, cur transfer.CurrentTask) (transfer.Resolution, error) {
	pending, ok, err := st.sessions.LoadPending(ctx)
	if err != nil {
		return transfer.Resolution{}, err
	}
	if ok && pending.Matches(sess, cur) {
		return pending.Resolution(), nil
	}

	if env.Storefront == nil {
		return transfer.Resolution{}, errors.New("no storefront configured")
	}
	res, err := st.resolver(env).Resolve(ctx, cur.Name, cur.SearchTerm)
	if err != nil {
		return transfer.Resolution{}, err
	}
	if err := st.sessions.SavePending(ctx, transfer.NewPending(sess, cur, res)); err != nil {
		return transfer.Resolution{}, err
	}
	return res, nil
}

// mappingHint notes that a saved product shadows the refined search term.
func mappingHint(out io.Writer, cur transfer.CurrentTask, res transfer.Resolution) {
	if cur.Refined && res.Source == transfer.SourceMapping {
		fmt.Fprintf(out, "      saved product in use; run: rewecart unmap %q to search again\n", cur.Name)
	}
}

// usageError is a mistake in the command line rather than a failure.
type usageError struct{ msg string }

func (e *usageError) Error() string { return e.msg }

func usageErrorf(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

// report prints err on errOut and returns the matching exit code.
func report(errOut io.Writer, err error) int {
	var fetchErr *service.FetchError
	var usageErr *usageError
	switch {
	case errors.Is(err, service.ErrAuth):
		fmt.Fprintf(errOut, "error: auth error: %v (run: rewecart login)\n", err)
		return exitcode.AuthError
	case errors.Is(err, transfer.ErrNoActiveSession):
		fmt.Fprintln(errOut, "error: no active transfer (run: rewecart start)")
		return exitcode.UserError
	case errors.Is(err, transfer.ErrExhausted):
		fmt.Fprintln(errOut, "error: no tasks left (run: rewecart summary)")
		return exitcode.UserError
	case errors.Is(err, transfer.ErrEmptyTerm),
		errors.Is(err, service.ErrNotFound),
		errors.Is(err, service.ErrAmbiguous),
		errors.Is(err, settings.ErrUnknownKey),
		errors.Is(err, settings.ErrInvalidDocument),
		errors.As(err, &usageErr):
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	case errors.As(err, &fetchErr):
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
		return exitcode.BackendError
	default:
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.BackendError
	}
}
