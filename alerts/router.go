package alerts

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/kitrader/kitrader/account"
	"github.com/kitrader/kitrader/feed"
	"github.com/kitrader/kitrader/journal"
	"github.com/kitrader/kitrader/registry"
)

// Router executes alerts against the shared system account exactly as a
// manual all-in trade would, with the same error surface.
type Router struct {
	registry *registry.Registry
	feed     feed.Feed
	journal  journal.Journal
	fee      float64
	log      *logrus.Entry
}

// NewRouter wires a router against the registry's system account.
func NewRouter(reg *registry.Registry, f feed.Feed, j journal.Journal, fee float64) *Router {
	if j == nil {
		j = journal.Nop{}
	}
	return &Router{
		registry: reg,
		feed:     f,
		journal:  j,
		fee:      fee,
		log:      logrus.WithField("component", "alerts"),
	}
}

// Route executes one alert: ensure the system account exists, resolve the
// current price, then buy or sell the whole balance or position.
func (r *Router) Route(ctx context.Context, alert Alert) (account.Trade, error) {
	acct, err := r.registry.EnsureSystem()
	if err != nil {
		return account.Trade{}, fmt.Errorf("system account: %w", err)
	}

	pair := strings.ToUpper(alert.Symbol)
	if !strings.Contains(pair, acct.Currency) {
		pair += acct.Currency
	}
	if !r.feed.SymbolExists(ctx, pair) {
		return account.Trade{}, &feed.UnknownSymbolError{Symbol: pair}
	}
	price, err := r.feed.GetPrice(ctx, pair)
	if err != nil {
		return account.Trade{}, fmt.Errorf("price for %s: %w", pair, err)
	}

	comment := "alert " + alert.Time.Format(time.RFC3339)
	var rec account.Trade
	switch alert.Direction {
	case account.ActionBuy:
		rec, err = acct.BuyAll(pair, price, r.fee, comment)
	case account.ActionSell:
		rec, err = acct.SellAll(pair, price, r.fee, comment)
	default:
		return account.Trade{}, fmt.Errorf("unknown alert direction %q", alert.Direction)
	}
	if err != nil {
		return account.Trade{}, err
	}

	if jerr := r.journal.RecordTrade(journal.FromTrade(acct.User, rec)); jerr != nil {
		r.log.WithError(jerr).Warn("journal alert trade")
	}
	r.log.WithFields(logrus.Fields{
		"action": rec.Action,
		"symbol": rec.Symbol,
		"amount": rec.Amount,
		"price":  rec.Price,
	}).Info("alert routed")
	return rec, nil
}

// Run polls for new alerts every interval and routes each one until the
// context is cancelled. Poll and routing failures are logged and retried on
// the next interval; a bad alert never stops the pump.
func (r *Router) Run(ctx context.Context, poller Poller, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			alerts, err := poller.PollNewAlerts()
			if err != nil {
				r.log.WithError(err).Warn("poll alerts")
				continue
			}
			for _, a := range alerts {
				if _, err := r.Route(ctx, a); err != nil {
					r.log.WithError(err).WithField("symbol", a.Symbol).Warn("route alert")
				}
			}
		}
	}
}
