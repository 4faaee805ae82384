package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/storefront/backend/internal/bootstrap"
)

// orderCmd groups order subcommands
var orderCmd = &cobra.Command{
	Use:   "order",
	Short: "Inspect and update orders",
	Long: `Inspect and update orders.

Subcommands:
  status  - Show the status of an order by number
  move    - Move an order to a new status by ID`,
}

// orderStatusCmd shows an order status
var orderStatusCmd = &cobra.Command{
	Use:   "status <order-number>",
	Short: "Show the status of an order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(app *bootstrap.App) error {
			status, err := app.Orders.GetOrderStatus(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), status)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s (terminal=%t)\n", status.OrderNumber, status.Status, status.Terminal)
			return nil
		}, bootstrap.WithoutSnapshotSink())
	},
}

// orderMoveCmd applies a status transition
var orderMoveCmd = &cobra.Command{
	Use:   "move <order-id> <status>",
	Short: "Move an order to a new status",
	Long: `Move an order along pending -> processing -> shipped -> delivered.
Orders can be cancelled while pending or processing.

Examples:
  catalogctl order move 42 processing
  catalogctl order move 42 cancelled`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil || id <= 0 {
			return fmt.Errorf("invalid order id %q", args[0])
		}
		return withApp(cmd.Context(), func(app *bootstrap.App) error {
			order, err := app.Orders.UpdateStatus(cmd.Context(), id, args[1])
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), order)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", order.OrderNumber, order.Status)
			return nil
		}, bootstrap.WithoutSnapshotSink())
	},
}

func init() {
	orderCmd.AddCommand(orderStatusCmd, orderMoveCmd)
	rootCmd.AddCommand(orderCmd)
}
