package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var priceCmd = &cobra.Command{
	Use:   "price [symbol]",
	Short: "Show the current price for a pair",
	Long: `Query the configured feed for the current price of a trading pair.
Without an argument the default Bitcoin pair is used.

Example:
  kitrader price ETHUSD`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := mustConfig()
		f, err := buildFeed(cfg)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), waitInterval)
		defer cancel()

		symbol := ""
		if len(args) == 1 {
			symbol = args[0]
		}
		if symbol == "" {
			symbol = "BTC" + cfg.Trading.DefaultCurrency
		}
		price, err := f.GetPrice(ctx, symbol)
		if err != nil {
			return err
		}
		fmt.Printf("%s: %v\n", symbol, price)
		return nil
	},
}

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check the price feed is reachable",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := mustConfig()
		f, err := buildFeed(cfg)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), waitInterval)
		defer cancel()

		if err := f.Ping(ctx); err != nil {
			return err
		}
		fmt.Println("Price feed seems to be working.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(priceCmd, pingCmd)
}
