package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mrlokans/bookpedia/internal/config"
	"github.com/mrlokans/bookpedia/internal/entities"
	"github.com/mrlokans/bookpedia/internal/entrypoint"
)

// normalizeWorkID accepts "OL45804W" or "/works/OL45804W".
func normalizeWorkID(raw string) (string, error) {
	id := strings.TrimSpace(raw)
	if i := strings.LastIndex(id, "/"); i >= 0 {
		id = id[i+1:]
	}
	if !entities.IsWorkID(id) {
		return "", fmt.Errorf("invalid work id %q, expected something like OL45804W", raw)
	}
	return id, nil
}

func newFavouritesCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "favourites",
		Aliases: []string{"fav", "favorites"},
		Short:   "Manage favourite books",
	}
	cmd.AddCommand(
		newFavouritesListCommand(cfg),
		newFavouritesAddCommand(cfg),
		newFavouritesRemoveCommand(cfg),
	)
	return cmd
}

func newFavouritesListCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List favourite books in the order they were added",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(cfg)
			if err != nil {
				return err
			}
			defer app.Close()

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			printBooks(cmd.OutOrStdout(), <-app.Books.ObserveFavorites(ctx))
			return nil
		},
	}
}

func newFavouritesAddCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:     "add <work-id>",
		Short:   "Fetch a work from the catalog and mark it as favourite",
		Example: "  bookpedia favourites add OL45804W",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := normalizeWorkID(args[0])
			if err != nil {
				return err
			}

			app, err := openApp(cfg)
			if err != nil {
				return err
			}
			defer app.Close()

			ctx, cancel := commandContext(cmd)
			defer cancel()

			book, err := fetchWork(ctx, app, id)
			if err != nil {
				return err
			}

			if _, err := app.Books.AddFavorite(ctx, book).Unwrap(); err != nil {
				return dataError(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%s)\n", book.Title, book.ID)
			return nil
		},
	}
}

func fetchWork(ctx context.Context, app *entrypoint.App, id string) (entities.Book, error) {
	res, err := app.Catalog.GetWork(ctx, id)
	if err != nil {
		return entities.Book{}, err
	}
	work, err := res.Unwrap()
	if err != nil {
		return entities.Book{}, dataError(err)
	}
	return entities.Book{
		ID:          id,
		Title:       work.Title,
		Authors:     []string{},
		Languages:   []string{},
		Description: work.Description.Value,
	}, nil
}

func newFavouritesRemoveCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <work-id>",
		Aliases: []string{"rm"},
		Short:   "Remove a book from favourites",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := normalizeWorkID(args[0])
			if err != nil {
				return err
			}

			app, err := openApp(cfg)
			if err != nil {
				return err
			}
			defer app.Close()

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			fav, err := app.Favourites.Get(ctx, id)
			if err != nil {
				return err
			}
			if fav == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "%s is not a favourite\n", id)
				return nil
			}

			app.Books.RemoveFavorite(ctx, id)
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s (%s)\n", fav.Title, id)
			return nil
		},
	}
}
