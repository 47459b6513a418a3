package main

import (
	"context"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/linkshelf/internal/app"
	"github.com/MrSnakeDoc/linkshelf/internal/config"
	"github.com/MrSnakeDoc/linkshelf/internal/logger"
	"github.com/MrSnakeDoc/linkshelf/internal/store"
)

var (
	red   = color.New(color.FgRed)
	green = color.New(color.FgGreen)
	cyan  = color.New(color.FgCyan)
	bold  = color.New(color.Bold)
)

var rootCmd = &cobra.Command{
	Use:   "linkshelf",
	Short: "Self-hosted bookmark shelf with link previews",
	Long: `linkshelf keeps a shelf of bookmarks with active, archived and trashed
collections, fetches link previews in the background and persists the shelf
to SQLite, Turso or Redis.

Configuration comes from LINKSHELF_* environment variables (a .env file is
read when present). Running linkshelf without a command starts the server.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serveCmd.RunE(cmd, args)
	},
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		red.Fprintln(os.Stderr, "❌", err)
		os.Exit(1)
	}
}

// openBackend loads the configuration and connects the backend for the
// one-shot commands. Only errors are logged so command output stays clean.
func openBackend(ctx context.Context) (store.Backend, *config.Config, error) {
	cfg := config.Load()
	log := logger.New("error", cfg.PrettyLog)
	backend, err := app.OpenBackend(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}
	return backend, cfg, nil
}
