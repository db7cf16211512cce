package cli

import (
	"fmt"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/mrlokans/bookpedia/internal/config"
)

func newBackfillCommand(cfg *config.Config) *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "backfill",
		Short: "Fetch descriptions for favourites saved without one",
		Long: `Fetch descriptions for favourites saved without one. Stored descriptions
are never replaced. The server does the same on its backfill schedule.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(cfg)
			if err != nil {
				return err
			}
			defer app.Close()

			ctx, cancel := commandContext(cmd)
			defer cancel()

			ids, err := app.Enricher.PendingIDs(ctx)
			if err != nil {
				return err
			}
			if len(ids) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing to backfill")
				return nil
			}

			var bar *progressbar.ProgressBar
			if !quiet {
				bar = progressbar.NewOptions(len(ids),
					progressbar.OptionSetWriter(cmd.ErrOrStderr()),
					progressbar.OptionSetDescription("Backfilling descriptions"),
					progressbar.OptionShowCount(),
				)
			}

			var updated, failed int
			for _, id := range ids {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				res, err := app.Enricher.BackfillDescription(ctx, id)
				switch {
				case err != nil:
					failed++
					fmt.Fprintf(cmd.ErrOrStderr(), "\n%s: %v\n", id, err)
				case res.Updated:
					updated++
				}
				if bar != nil {
					_ = bar.Add(1)
				}
			}
			if bar != nil {
				_ = bar.Finish()
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Updated %d of %d favourites (%d failed)\n", updated, len(ids), failed)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Do not draw a progress bar")
	return cmd
}
