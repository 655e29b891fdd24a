package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/kitrader/kitrader/service"
)

var (
	tradeUser    string
	tradeComment string
)

var tradeCmd = &cobra.Command{
	Use:   "trade <buy|sell> <amount> <symbol>",
	Short: "Execute a manual order",
	Long: `Buy or sell an amount of an asset at the current price.

Example:
  kitrader trade -u alice buy 0.05 BTC -m "dip"`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("amount must be in decimal format, e.g. 500.25: %w", err)
		}

		svc, _, _, cleanup, err := buildService(mustConfig(), false)
		if err != nil {
			return err
		}
		defer cleanup()

		ctx, cancel := context.WithTimeout(context.Background(), waitInterval)
		defer cancel()

		msg, err := svc.Trade(ctx, service.TradeRequest{
			User:    tradeUser,
			Action:  args[0],
			Amount:  amount,
			Symbol:  args[2],
			Comment: tradeComment,
		})
		if err != nil {
			return err
		}
		fmt.Println(msg)
		return nil
	},
}

var tradeAllCmd = &cobra.Command{
	Use:   "tradeall <buy|sell> <symbol>",
	Short: "Buy with the whole balance or sell the whole position",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, _, _, cleanup, err := buildService(mustConfig(), false)
		if err != nil {
			return err
		}
		defer cleanup()

		ctx, cancel := context.WithTimeout(context.Background(), waitInterval)
		defer cancel()

		msg, err := svc.TradeAll(ctx, service.TradeAllRequest{
			User:    tradeUser,
			Action:  args[0],
			Symbol:  args[1],
			Comment: tradeComment,
		})
		if err != nil {
			return err
		}
		fmt.Println(msg)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tradeCmd, tradeAllCmd)

	for _, c := range []*cobra.Command{tradeCmd, tradeAllCmd} {
		c.Flags().StringVarP(&tradeUser, "user", "u", "", "user placing the order (required)")
		c.Flags().StringVarP(&tradeComment, "comment", "m", "", "free-text comment stored on the trade record")
		c.MarkFlagRequired("user")
	}
}
