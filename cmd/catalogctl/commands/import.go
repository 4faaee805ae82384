package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	importapp "github.com/storefront/backend/internal/application/import"
	"github.com/storefront/backend/internal/bootstrap"
)

var (
	// Import flags
	categoryFeedPath string
	productFeedPath  string
)

// importCmd loads the CSV feeds
var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import the catalog feeds",
	Long: `Import the category feed, if given, then the product feed.

Products are upserted by ASIN, so re-running the same feeds is safe.
Rows that fail to parse are skipped and listed in the report.

Examples:
  catalogctl import --products products.csv
  catalogctl import --categories categories.csv --products products.csv --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runImport(cmd)
	},
}

func init() {
	importCmd.Flags().StringVar(&categoryFeedPath, "categories", "", "Category feed CSV (id,category_name)")
	importCmd.Flags().StringVar(&productFeedPath, "products", "", "Product feed CSV")
	_ = importCmd.MarkFlagRequired("products")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command) error {
	products, err := os.Open(productFeedPath)
	if err != nil {
		return err
	}
	defer products.Close()

	var categories io.Reader
	if categoryFeedPath != "" {
		f, err := os.Open(categoryFeedPath)
		if err != nil {
			return err
		}
		defer f.Close()
		categories = f
	}

	return withApp(cmd.Context(), func(app *bootstrap.App) error {
		report, err := app.Importer.Import(cmd.Context(), categories, products)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), report)
		}
		if report.Categories != nil {
			printFeed(cmd.OutOrStdout(), "categories", report.Categories)
		}
		printFeed(cmd.OutOrStdout(), "products", report.Products)
		return nil
	}, bootstrap.WithoutSnapshotSink())
}

func printFeed(w io.Writer, name string, r *importapp.Result) {
	fmt.Fprintf(w, "%s: %d rows, %d imported, %d updated, %d skipped\n",
		name, r.TotalRows, r.ImportedRows, r.UpdatedRows, r.SkippedRows)
	for _, e := range r.Errors {
		fmt.Fprintf(w, "  %s\n", e.Error())
	}
	if r.IsTruncated {
		fmt.Fprintf(w, "  ... %d errors in total\n", r.TotalErrors)
	}
}
