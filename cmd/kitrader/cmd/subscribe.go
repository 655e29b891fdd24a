package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var subscribeUser string

var subscribeCmd = &cobra.Command{
	Use:   "subscribe <symbol>",
	Short: "Auto-trade a symbol until interrupted",
	Long: `Open an auto-trading subscription and print its reports as positions are
opened and closed. The subscription balance, position cap, profit target and
stop-loss come from the config. Stop with Ctrl-C; accounts are saved on the
way out.

Example:
  kitrader subscribe -u alice BTCUSD`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, _, sched, cleanup, err := buildService(mustConfig(), true)
		if err != nil {
			return err
		}
		defer cleanup()

		msg, err := svc.Subscribe(context.Background(), subscribeUser, args[0])
		if err != nil {
			return err
		}
		fmt.Println(msg)

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

		for {
			select {
			case r, ok := <-sched.Reports():
				if !ok {
					return nil
				}
				fmt.Printf("\n%s\n", r.String())
			case <-sig:
				msg, err := svc.Unsubscribe(subscribeUser)
				if err != nil {
					return err
				}
				fmt.Println(msg)
				sched.Close()
				return nil
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(subscribeCmd)
	subscribeCmd.Flags().StringVarP(&subscribeUser, "user", "u", "", "subscriber (required)")
	subscribeCmd.MarkFlagRequired("user")
}
