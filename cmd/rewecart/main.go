// Package main is the entry point for the rewecart CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"rewecart/internal/backend/todoist"
	"rewecart/internal/cli"
	"rewecart/internal/commands"
	"rewecart/internal/config"
	"rewecart/internal/service"
	"rewecart/internal/store"
	"rewecart/internal/store/redisstore"
	"rewecart/internal/store/sqlite"
	"rewecart/internal/storefront"
)

func main() {
	// Create context that cancels on interrupt
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	deps := cli.Deps{
		Service: func(ctx context.Context, cfg *config.Config, token string) (service.Service, error) {
			return todoist.New(ctx, cfg.Todoist.BaseURL, token)
		},
		Store:      openStore,
		Storefront: newStorefront,
		In:         os.Stdin,
	}

	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, deps)

	// Run and exit with code
	code := dispatcher.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	cancel()
	os.Exit(code)
}

func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.Store.Backend {
	case config.BackendSQLite:
		return sqlite.Open(ctx, cfg.Store.Path)
	case config.BackendRedis:
		return redisstore.Open(ctx, redisstore.Options{
			Address:  cfg.Store.Redis.Address,
			Password: cfg.Store.Redis.Password,
			DB:       cfg.Store.Redis.DB,
			Prefix:   cfg.Store.Redis.Prefix,
		})
	case config.BackendMemory:
		return store.NewMemory(), nil
	}
	return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
}

func newStorefront(cfg *config.Config, log zerolog.Logger) (commands.Storefront, error) {
	return storefront.New(cfg.Storefront.BaseURL, nil, log)
}
