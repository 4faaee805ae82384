package commands

import (
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
	"github.com/storefront/backend/internal/infrastructure/migration"
	"github.com/storefront/backend/migrations"
)

var (
	// Migrate flags
	migrationsDir string
	upSteps       int
	downSteps     int
	all           bool
	description   string
)

// migrateCmd represents the migrate command
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the Postgres schema",
	Long: `Apply and inspect the versioned Postgres schema.

The scripts compiled into the binary are used unless --dir points at a working copy.
sqlite databases are created on startup and need no migrations.

Subcommands:
  up      - Apply pending migrations
  down    - Roll back migrations
  status  - Show applied and pending migrations
  force   - Record a version without running scripts
  create  - Write a new numbered up/down pair`,
}

// migrateUpCmd applies pending migrations
var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply pending migrations",
	Long: `Apply pending migrations.

Examples:
  catalogctl migrate up              # Apply everything pending
  catalogctl migrate up --steps 1    # Apply the next migration`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrator(func(m *migration.Migrator) error {
			if upSteps > 0 {
				return m.Steps(upSteps)
			}
			return m.Up()
		})
	},
}

// migrateDownCmd rolls back migrations
var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back migrations",
	Long: `Roll back applied migrations.

Examples:
  catalogctl migrate down             # Roll back the last migration
  catalogctl migrate down --steps 2
  catalogctl migrate down --all       # Drop every storefront table`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrator(func(m *migration.Migrator) error {
			if all {
				return m.Down()
			}
			return m.Steps(-downSteps)
		})
	},
}

// migrateStatusCmd shows migration status
var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show migration status",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrator(func(m *migration.Migrator) error {
			st, err := m.Status()
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), st)
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "VERSION\tNAME\tSTATE")
			for _, e := range st.Applied {
				fmt.Fprintf(w, "%06d\t%s\tapplied\n", e.Version, e.Name)
			}
			for _, e := range st.Pending {
				fmt.Fprintf(w, "%06d\t%s\tpending\n", e.Version, e.Name)
			}
			if st.Dirty {
				fmt.Fprintf(w, "%06d\t\tdirty\n", st.Version)
			}
			return w.Flush()
		})
	},
}

// migrateForceCmd marks a version as applied
var migrateForceCmd = &cobra.Command{
	Use:   "force <version>",
	Short: "Record a schema version without running scripts",
	Long: `Record a schema version without running scripts.

Use it to clear the dirty flag after fixing a failed migration by hand.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		version, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid version %q", args[0])
		}
		return withMigrator(func(m *migration.Migrator) error {
			return m.Force(version)
		})
	},
}

// migrateCreateCmd writes a new migration pair
var migrateCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a new migration",
	Long: `Write the next numbered up/down pair into --dir (default ./migrations).

Examples:
  catalogctl migrate create "add product brand" --description "brand column on products"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := migrationsDir
		if dir == "" {
			dir = "migrations"
		}
		created, err := migration.Create(dir, args[0], description, time.Now())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), created.UpPath)
		fmt.Fprintln(cmd.OutOrStdout(), created.DownPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd, migrateStatusCmd, migrateForceCmd, migrateCreateCmd)

	migrateCmd.PersistentFlags().StringVar(&migrationsDir, "dir", "", "Read scripts from this directory instead of the embedded set")

	migrateUpCmd.Flags().IntVar(&upSteps, "steps", 0, "Number of migrations to apply (0 applies all)")

	migrateDownCmd.Flags().IntVar(&downSteps, "steps", 1, "Number of migrations to roll back")
	migrateDownCmd.Flags().BoolVar(&all, "all", false, "Roll back every migration")

	migrateCreateCmd.Flags().StringVar(&description, "description", "", "Description written into the script header")
}

// withMigrator connects to Postgres and runs fn with a ready Migrator
func withMigrator(fn func(m *migration.Migrator) error) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Database.Driver != "postgres" {
		return fmt.Errorf("migrations target postgres, database.driver is %q", cfg.Database.Driver)
	}

	db, err := sql.Open("postgres", cfg.Database.MigrationDSN())
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	var source fs.FS = migrations.FS
	if migrationsDir != "" {
		source = os.DirFS(migrationsDir)
	}
	m, err := migration.New(db, source, log)
	if err != nil {
		return err
	}
	defer m.Close()
	return fn(m)
}
