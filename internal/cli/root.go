package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mrlokans/bookpedia/internal/config"
	"github.com/mrlokans/bookpedia/internal/entrypoint"
)

// NewRootCommand builds the bookpedia command tree. cfg is shared by every
// subcommand; flags on the root override the database path.
func NewRootCommand(version string, cfg *config.Config) *cobra.Command {
	root := &cobra.Command{
		Use:   "bookpedia",
		Short: "Search the OpenLibrary catalog and keep a list of favourite books",
		Long: `Bookpedia searches the OpenLibrary catalog, shows work descriptions and
keeps favourite books in a local SQLite database.

Run without a subcommand to start the HTTP server.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			entrypoint.Run(cfg, version)
			return nil
		},
	}

	root.PersistentFlags().StringVar(&cfg.Database.Path, "db", cfg.Database.Path, "Path to the favourites database")

	root.AddCommand(
		newServeCommand(version, cfg),
		newSearchCommand(cfg),
		newDescribeCommand(cfg),
		newFavouritesCommand(cfg),
		newBackfillCommand(cfg),
	)
	return root
}

// Execute runs the command tree and exits non-zero on failure.
func Execute(version string) {
	cfg := config.NewConfig()
	root := NewRootCommand(version, cfg)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newServeCommand(version string, cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			entrypoint.Run(cfg, version)
			return nil
		},
	}
}

// openApp builds the data layer for one-shot commands. The task queue stays
// closed: commands do their work inline.
func openApp(cfg *config.Config) (*entrypoint.App, error) {
	return entrypoint.NewApp(cfg, entrypoint.AppOptions{QuietDatabase: true})
}

// commandContext cancels on Ctrl-C so an in-flight catalog request is abandoned.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
