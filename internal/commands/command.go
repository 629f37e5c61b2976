// Package commands provides the command interface and implementations.
package commands

import (
	"context"
	"errors"
	"flag"
	"io"

	"github.com/rs/zerolog"

	"rewecart/internal/config"
	"rewecart/internal/service"
	"rewecart/internal/store"
	"rewecart/internal/transfer"
)

// Command defines the interface for CLI commands.
type Command interface {
	// Name returns the primary command name.
	Name() string

	// Aliases returns alternative names for the command.
	Aliases() []string

	// Synopsis returns a short description for help output.
	Synopsis() string

	// Usage returns the usage string for help output.
	Usage() string

	// NeedsAuth returns true if the command talks to Todoist.
	NeedsAuth() bool

	// RegisterFlags registers command-specific flags.
	RegisterFlags(fs *flag.FlagSet)

	// Run executes the command.
	// env.Svc is nil if NeedsAuth() returns false.
	// args contains positional arguments after flag parsing.
	// Returns exit code.
	Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int
}

// Storefront searches the shop and knows its cart page.
type Storefront interface {
	transfer.RecordSource
	CartURL() string
}

// ServiceFactory creates a Service authenticated with token.
type ServiceFactory func(ctx context.Context, cfg *config.Config, token string) (service.Service, error)

// Env carries everything a command may need.
type Env struct {
	Cfg *config.Config
	Svc service.Service
	Log zerolog.Logger

	// In is read by commands that prompt.
	In io.Reader

	Storefront Storefront

	// NewService builds a Service for a token that is not stored yet.
	NewService ServiceFactory

	// OpenStore opens the persistent store on first use.
	OpenStore func(ctx context.Context) (store.Store, error)

	store store.Store
}

var errNoStore = errors.New("no store configured")

// Store returns the persistent store, opening it on first use.
func (e *Env) Store(ctx context.Context) (store.Store, error) {
	if e.store != nil {
		return e.store, nil
	}
	if e.OpenStore == nil {
		return nil, errNoStore
	}
	s, err := e.OpenStore(ctx)
	if err != nil {
		return nil, err
	}
	e.store = s
	return s, nil
}

// Close releases the store if it was opened.
func (e *Env) Close() error {
	if e.store == nil {
		return nil
	}
	err := e.store.Close()
	e.store = nil
	return err
}
