package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/storefront/backend/internal/bootstrap"
)

// exportCmd writes a catalog snapshot
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a catalog snapshot",
	Long: `Read every category and product in one consistent transaction and write them
as JSON lines to the configured sink (export.sink = s3 or file).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(app *bootstrap.App) error {
			result, err := app.Snapshots.Export(cmd.Context())
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), result)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n  taken at %s: %d categories, %d products, %d bytes\n",
				result.Location, result.TakenAt.Format(time.RFC3339), result.Categories, result.Products, result.Bytes)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
}
