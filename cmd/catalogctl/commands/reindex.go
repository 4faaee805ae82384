package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/storefront/backend/internal/bootstrap"
)

// reindexCmd rebuilds the search index from the store
var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Rebuild the search index",
	Long: `Page through the product table and rebuild the in-memory search index.

Use it to check that every stored product indexes cleanly. The postgres backend
keeps its tsvector column in step with the rows and is left untouched.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(app *bootstrap.App) error {
			n, err := app.RebuildIndex(cmd.Context())
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), map[string]any{"backend": app.Config.Search.Backend, "documents": n})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s index: %d documents\n", app.Config.Search.Backend, n)
			return nil
		}, bootstrap.WithoutSnapshotSink())
	},
}

func init() {
	rootCmd.AddCommand(reindexCmd)
}
