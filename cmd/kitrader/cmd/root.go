package cmd

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/kitrader/kitrader/account"
	"github.com/kitrader/kitrader/autotrade"
	"github.com/kitrader/kitrader/config"
	"github.com/kitrader/kitrader/feed"
	"github.com/kitrader/kitrader/journal"
	"github.com/kitrader/kitrader/registry"
	"github.com/kitrader/kitrader/service"
)

var rootCmd = &cobra.Command{
	Use:   "kitrader",
	Short: "A simulated trading assistant with unattended auto-trading",
	Long: `KiTrader holds simulated trading accounts against a live price feed.

It provides tools for:
  - Creating and inspecting per-user paper-trading accounts
  - Manual buy/sell orders with fees and minimum trade enforcement
  - Unattended auto-trading with derived take-profit and stop-loss exits
  - An append-only journal of every executed trade`,
}

var cfgFile string

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initEnv)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "f", "", "path to config file (YAML or JSON)")
}

func initEnv() {
	// API tokens live in .env during development; missing file is fine.
	_ = godotenv.Load()
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
}

func loadConfig() (*config.Config, error) {
	if cfgFile == "" {
		return config.Default(), nil
	}
	return config.LoadFromFile(cfgFile)
}

func buildFeed(cfg *config.Config) (feed.Feed, error) {
	timeout, err := cfg.Feed.ParseTimeout()
	if err != nil {
		return nil, err
	}
	switch cfg.Feed.Exchange {
	case "bitstamp":
		return feed.NewBitstamp(timeout), nil
	case "binance":
		return feed.NewBinance(timeout), nil
	case "memory":
		return feed.NewMemory(), nil
	}
	return nil, fmt.Errorf("unknown feed exchange %q", cfg.Feed.Exchange)
}

func buildJournal(cfg *config.Config) (journal.Journal, error) {
	switch cfg.Journal.Type {
	case "sqlite":
		return journal.NewSQLite(cfg.Journal.DBPath)
	case "csv":
		return journal.NewCSV(cfg.Journal.TradesFile)
	}
	return journal.Nop{}, nil
}

func buildRegistry(cfg *config.Config) (*registry.Registry, error) {
	policy := account.MergeRebuys
	if cfg.Trading.RebuyPolicy == "replace" {
		policy = account.ReplaceRebuys
	}
	reg := registry.New(cfg.Accounts.Dir, cfg.Bot.Name, registry.Defaults{
		Balance:  cfg.Trading.DefaultBalance,
		Currency: cfg.Trading.DefaultCurrency,
		MinTrade: cfg.Trading.MinTrade,
		Policy:   policy,
	})
	if err := reg.Load(); err != nil {
		return nil, err
	}
	return reg, nil
}

// buildService assembles the full stack. The returned cleanup persists the
// accounts and closes the journal; call it on the way out.
func buildService(cfg *config.Config, withScheduler bool) (*service.Service, *registry.Registry, *autotrade.Scheduler, func(), error) {
	reg, err := buildRegistry(cfg)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	f, err := buildFeed(cfg)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	j, err := buildJournal(cfg)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	interval, err := cfg.Autotrade.ParseInterval()
	if err != nil {
		return nil, nil, nil, nil, err
	}

	book := autotrade.NewBook(f, autotrade.Params{
		Cap:          cfg.Autotrade.Cap,
		Balance:      cfg.Autotrade.Balance,
		ProfitPct:    cfg.Autotrade.ProfitPct,
		LossFraction: cfg.Autotrade.LossFraction,
		Fee:          cfg.Trading.Fee,
		MinTrade:     cfg.Trading.MinTrade,
		Currency:     cfg.Trading.DefaultCurrency,
	}, interval)

	var sched *autotrade.Scheduler
	if withScheduler {
		sched = autotrade.NewScheduler(book, interval)
	}

	svc := service.New(reg, f, book, sched, j, service.Options{
		Fee:             cfg.Trading.Fee,
		DefaultCurrency: cfg.Trading.DefaultCurrency,
		Interval:        interval,
	})

	cleanup := func() {
		if err := reg.Save(); err != nil {
			logrus.WithError(err).Error("save accounts")
		}
		if err := j.Close(); err != nil {
			logrus.WithError(err).Error("close journal")
		}
	}
	return svc, reg, sched, cleanup, nil
}

func mustConfig() *config.Config {
	cfg, err := loadConfig()
	if err != nil {
		logrus.WithError(err).Fatal("load config")
	}
	return cfg
}

// waitInterval is how long interactive commands wait on the feed.
const waitInterval = 30 * time.Second
