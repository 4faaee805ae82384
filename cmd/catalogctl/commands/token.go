package commands

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/storefront/backend/internal/infrastructure/auth"
)

var (
	// Token flags
	tokenSubject string
	tokenScopes  []string
	tokenTTL     time.Duration
)

// tokenCmd mints admin tokens
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint an admin API token",
	Long: `Sign a bearer token for the admin API with auth.secret.

Scopes:
  catalog:admin  - categories, products, import and export
  orders:admin   - customers and order lifecycle

Examples:
  catalogctl token --subject ops@example.com
  catalogctl token --subject importer --scope catalog:admin --ttl 1h`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.Auth.Secret == "" {
			return errors.New("auth.secret is not configured")
		}
		if tokenTTL > 0 {
			cfg.Auth.TokenTTL = tokenTTL
		}

		token, expiresAt, err := auth.NewTokenService(cfg.Auth).Issue(tokenSubject, tokenScopes...)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), map[string]any{"token": token, "expires_at": expiresAt.UTC()})
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenSubject, "subject", "", "Who the token is for")
	tokenCmd.Flags().StringSliceVar(&tokenScopes, "scope", []string{auth.ScopeCatalogAdmin, auth.ScopeOrdersAdmin}, "Granted scopes")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 0, "Lifetime, defaults to auth.token_ttl")
	_ = tokenCmd.MarkFlagRequired("subject")
	rootCmd.AddCommand(tokenCmd)
}
