// Package service is the surface the chat dispatcher calls into. It owns no
// trading logic: every operation resolves collaborators (registry, feed,
// autotrade book, journal), hands resolved prices to the ledger, and formats
// the outcome for a user-facing reply. Errors carry the concrete numbers
// behind each refusal, so the dispatcher can surface them verbatim.
package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/kitrader/kitrader/account"
	"github.com/kitrader/kitrader/autotrade"
	"github.com/kitrader/kitrader/feed"
	"github.com/kitrader/kitrader/journal"
	"github.com/kitrader/kitrader/registry"
)

// Service wires the trading components behind the dispatcher commands.
type Service struct {
	registry *registry.Registry
	feed     feed.Feed
	book     *autotrade.Book
	sched    *autotrade.Scheduler
	journal  journal.Journal

	fee             float64
	defaultCurrency string
	interval        time.Duration

	validate *validator.Validate
	log      *logrus.Entry
}

// Options carry the trading parameters the service needs from config.
type Options struct {
	Fee             float64
	DefaultCurrency string
	Interval        time.Duration
}

// New assembles a service. journal and sched may be nil; a nil journal
// discards records and a nil scheduler leaves timers to the caller.
func New(reg *registry.Registry, f feed.Feed, book *autotrade.Book, sched *autotrade.Scheduler, j journal.Journal, opts Options) *Service {
	if j == nil {
		j = journal.Nop{}
	}
	return &Service{
		registry:        reg,
		feed:            f,
		book:            book,
		sched:           sched,
		journal:         j,
		fee:             opts.Fee,
		defaultCurrency: strings.ToUpper(opts.DefaultCurrency),
		interval:        opts.Interval,
		validate:        validator.New(),
		log:             logrus.WithField("component", "service"),
	}
}

// Ping checks the price feed is reachable.
func (s *Service) Ping(ctx context.Context) (string, error) {
	if err := s.feed.Ping(ctx); err != nil {
		return "", err
	}
	return "Price feed seems to be working.", nil
}

// Price reports the current price of a pair; an empty symbol defaults to
// Bitcoin against the default currency.
func (s *Service) Price(ctx context.Context, symbol string) (string, error) {
	if symbol == "" {
		symbol = "BTC" + s.defaultCurrency
	}
	symbol = strings.ToUpper(symbol)
	price, err := s.feed.GetPrice(ctx, symbol)
	if err != nil {
		return "", err
	}
	return symbol + ": " + strconv.FormatFloat(price, 'f', -1, 64), nil
}

// NewAccount registers an account for user. Zero balance and empty currency
// fall back to the configured defaults.
func (s *Service) NewAccount(user string, balance float64, currency string) (string, error) {
	acct, err := s.registry.Create(user, balance, currency)
	if err != nil {
		return "", err
	}
	summary, _ := acct.Summary(nil)
	return "Your account was created successfully.\n\n" + summary, nil
}

// DeleteAccount removes the user's account, history included.
func (s *Service) DeleteAccount(user string) (string, error) {
	if err := s.registry.Delete(user); err != nil {
		return "", err
	}
	return "Your account has been deleted.", nil
}

// AccountSummary renders target's account for requester. An empty target
// means the requester's own account.
func (s *Service) AccountSummary(ctx context.Context, requester, target string, superuser bool) (string, error) {
	acct, err := s.authorized(requester, target, superuser)
	if err != nil {
		return "", err
	}
	return acct.Summary(func(pair string) (float64, error) {
		return s.feed.GetPrice(ctx, pair)
	})
}

// History renders target's most recent trades for requester.
func (s *Service) History(requester, target string, superuser bool, limit int) (string, error) {
	acct, err := s.authorized(requester, target, superuser)
	if err != nil {
		return "", err
	}
	return acct.HistoryText(limit), nil
}

func (s *Service) authorized(requester, target string, superuser bool) (*account.Account, error) {
	if target == "" {
		target = requester
	}
	if err := s.registry.Authorize(requester, target, superuser); err != nil {
		return nil, err
	}
	acct, ok := s.registry.Get(target)
	if !ok {
		return nil, &registry.NotFoundError{User: target}
	}
	return acct, nil
}
