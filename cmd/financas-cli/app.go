package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"financas/internal/cli"
	"financas/internal/config"
	"financas/internal/core"
	"financas/internal/ledger"
	"financas/internal/log"
	"financas/internal/render"
	"financas/internal/session"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"
)

// A CLI run is short lived, so global flags are fine.
var (
	userName = flag.String("user", session.DefaultUser, "Owner of the book to work on")
	raw      = flag.Bool("raw", false, "Print plain markdown instead of styled terminal output")
	verbose  = flag.Bool("v", false, "Log debug messages to stderr")
)

// app is an open book registry plus the settings commands need.
type app struct {
	cfg     *config.Config
	books   *session.Registry
	render  render.Renderer
	cleanup func() error
}

func openApp(ctx context.Context) (*app, error) {
	cli.LoadEnvFile()
	cfg := config.Load()

	level := "warn"
	if *verbose {
		level = "debug"
	}
	logger := log.New(log.Config{Level: log.ParseLevel(level), Component: log.ComponentCLI, Output: os.Stderr})
	log.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	res := cli.InitBackend(ctx, logger, cfg)
	books := session.NewRegistry(res.Store, session.Options{
		CacheSize:         1,
		TTL:               cfg.SessionTTL,
		DefaultCardBudget: cfg.CardBudget(),
		Events:            res.Events,
		Logger:            logger,
	})
	return &app{cfg: cfg, books: books, render: render.New(cfg.Currency), cleanup: res.Cleanup}, nil
}

// run opens the app, calls fn and closes the backend. Invalid input maps
// to a usage error.
func run(ctx context.Context, fn func(*app) error) subcommands.ExitStatus {
	a, err := openApp(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer func() {
		if err := a.cleanup(); err != nil {
			fmt.Fprintf(os.Stderr, "Error closing backend: %v\n", err)
		}
	}()

	if err := fn(a); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, core.ErrInvalidInput) {
			return subcommands.ExitUsageError
		}
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func (a *app) view(ctx context.Context, fn func(*ledger.Book) error) error {
	return a.books.View(ctx, *userName, fn)
}

func (a *app) update(ctx context.Context, table, op string, fn func(*ledger.Book) error) error {
	return a.books.Update(ctx, *userName, table, op, fn)
}

func today() core.Date { return core.DateOf(time.Now()) }

func printMarkdown(doc string) {
	if *raw {
		fmt.Print(doc)
		return
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(120))
	if err == nil {
		var out string
		if out, err = r.Render(doc); err == nil {
			fmt.Print(out)
			return
		}
	}
	fmt.Print(doc)
}
