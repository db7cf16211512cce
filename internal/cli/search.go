package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mrlokans/bookpedia/internal/config"
	"github.com/mrlokans/bookpedia/internal/entities"
	"github.com/mrlokans/bookpedia/internal/result"
)

func newSearchCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search the catalog",
		Example: `  bookpedia search dune
  bookpedia search "the left hand of darkness"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.TrimSpace(strings.Join(args, " "))
			if query == "" {
				return fmt.Errorf("query must not be blank")
			}

			app, err := openApp(cfg)
			if err != nil {
				return err
			}
			defer app.Close()

			ctx, cancel := commandContext(cmd)
			defer cancel()

			res, err := app.Books.Search(ctx, query)
			if err != nil {
				return err
			}
			found, err := res.Unwrap()
			if err != nil {
				return dataError(err)
			}

			printBooks(cmd.OutOrStdout(), found)
			return nil
		},
	}
}

func printBooks(out io.Writer, found []entities.Book) {
	if len(found) == 0 {
		fmt.Fprintln(out, "No books found")
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tAUTHORS\tYEAR\tEDITIONS")
	for _, b := range found {
		year := "-"
		if b.FirstPublishYear != nil {
			year = *b.FirstPublishYear
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n", b.ID, b.Title, strings.Join(b.Authors, ", "), year, b.NumEditions)
	}
	w.Flush()
}

// dataError turns a DataError into the user-facing message.
func dataError(err error) error {
	var de result.DataError
	if errors.As(err, &de) {
		return fmt.Errorf("%s (%v)", result.ToUIText(de), de)
	}
	return err
}
