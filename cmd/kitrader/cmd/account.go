package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Manage paper-trading accounts",
}

var (
	accountUser     string
	accountBalance  float64
	accountCurrency string
	historyLimit    int
)

var accountNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Create an account",
	Long: `Create a paper-trading account for a user.

Example:
  kitrader account new -u alice --balance 500.25 --currency EUR`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireUser(); err != nil {
			return err
		}
		svc, _, _, cleanup, err := buildService(mustConfig(), false)
		if err != nil {
			return err
		}
		defer cleanup()

		msg, err := svc.NewAccount(accountUser, accountBalance, accountCurrency)
		if err != nil {
			return err
		}
		fmt.Println(msg)
		return nil
	},
}

var accountShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show an account summary with live equity",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireUser(); err != nil {
			return err
		}
		svc, _, _, cleanup, err := buildService(mustConfig(), false)
		if err != nil {
			return err
		}
		defer cleanup()

		ctx, cancel := context.WithTimeout(context.Background(), waitInterval)
		defer cancel()

		msg, err := svc.AccountSummary(ctx, accountUser, "", false)
		if err != nil {
			return err
		}
		fmt.Println(msg)
		return nil
	},
}

var accountHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Show an account's trade history",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireUser(); err != nil {
			return err
		}
		svc, _, _, cleanup, err := buildService(mustConfig(), false)
		if err != nil {
			return err
		}
		defer cleanup()

		msg, err := svc.History(accountUser, "", false, historyLimit)
		if err != nil {
			return err
		}
		fmt.Println(msg)
		return nil
	},
}

var accountDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete an account and all its state",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireUser(); err != nil {
			return err
		}
		svc, _, _, cleanup, err := buildService(mustConfig(), false)
		if err != nil {
			return err
		}
		defer cleanup()

		msg, err := svc.DeleteAccount(accountUser)
		if err != nil {
			return err
		}
		fmt.Println(msg)
		return nil
	},
}

var accountListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every registered user",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, reg, _, cleanup, err := buildService(mustConfig(), false)
		if err != nil {
			return err
		}
		defer cleanup()

		for _, user := range reg.Users() {
			fmt.Println(user)
		}
		return nil
	},
}

func requireUser() error {
	if accountUser == "" {
		return fmt.Errorf("--user is required")
	}
	return nil
}

func init() {
	rootCmd.AddCommand(accountCmd)
	accountCmd.AddCommand(accountNewCmd, accountShowCmd, accountHistoryCmd, accountDeleteCmd, accountListCmd)

	accountCmd.PersistentFlags().StringVarP(&accountUser, "user", "u", "", "user the account belongs to")

	accountNewCmd.Flags().Float64Var(&accountBalance, "balance", 0, "starting balance (default from config)")
	accountNewCmd.Flags().StringVar(&accountCurrency, "currency", "", "account currency (default from config)")
	accountHistoryCmd.Flags().IntVarP(&historyLimit, "limit", "n", 0, "show only the newest N trades")
}
