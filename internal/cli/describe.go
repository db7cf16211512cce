package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mrlokans/bookpedia/internal/config"
)

func newDescribeCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "describe <work-id>",
		Short: "Print the description of a work",
		Long: `Print the description of a work. A favourite's stored description is used
when present; otherwise the catalog is asked.`,
		Example: "  bookpedia describe OL45804W",
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

			res, err := app.Books.GetDescription(ctx, id)
			if err != nil {
				return err
			}
			desc, err := res.Unwrap()
			if err != nil {
				return dataError(err)
			}

			if desc == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "No description available")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), *desc)
			return nil
		},
	}
}
