package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/kitrader/kitrader/account"
	"github.com/kitrader/kitrader/feed"
	"github.com/kitrader/kitrader/journal"
	"github.com/kitrader/kitrader/registry"
)

// TradeRequest is one manual order as parsed by the dispatcher.
type TradeRequest struct {
	User    string  `validate:"required"`
	Action  string  `validate:"required"`
	Amount  float64 `validate:"gt=0"`
	Symbol  string  `validate:"required"`
	Comment string
}

// TradeAllRequest is a full-balance (buy) or full-position (sell) order.
type TradeAllRequest struct {
	User    string `validate:"required"`
	Action  string `validate:"required"`
	Symbol  string `validate:"required"`
	Comment string
}

// Trade executes a manual order and returns the rendered trade record.
func (s *Service) Trade(ctx context.Context, req TradeRequest) (string, error) {
	if err := s.validate.Struct(req); err != nil {
		return "", fmt.Errorf("invalid order: %w", err)
	}
	acct, action, pair, price, err := s.resolve(ctx, req.User, req.Action, req.Symbol)
	if err != nil {
		return "", err
	}

	var rec account.Trade
	if action == account.ActionBuy {
		rec, err = acct.Buy(pair, price, req.Amount, s.fee, req.Comment)
	} else {
		rec, err = acct.Sell(pair, price, req.Amount, s.fee, req.Comment)
	}
	if err != nil {
		return "", err
	}
	s.journalTrade(req.User, rec)
	return rec.Text(acct.Currency), nil
}

// TradeAll executes an all-in order: buy with the whole balance or sell the
// whole position.
func (s *Service) TradeAll(ctx context.Context, req TradeAllRequest) (string, error) {
	if err := s.validate.Struct(req); err != nil {
		return "", fmt.Errorf("invalid order: %w", err)
	}
	acct, action, pair, price, err := s.resolve(ctx, req.User, req.Action, req.Symbol)
	if err != nil {
		return "", err
	}

	var rec account.Trade
	if action == account.ActionBuy {
		rec, err = acct.BuyAll(pair, price, s.fee, req.Comment)
	} else {
		rec, err = acct.SellAll(pair, price, s.fee, req.Comment)
	}
	if err != nil {
		return "", err
	}
	s.journalTrade(req.User, rec)
	return rec.Text(acct.Currency), nil
}

// resolve looks up the account, parses the action, builds the full trading
// pair and fetches the current price. The ledger itself never sees the feed.
func (s *Service) resolve(ctx context.Context, user, action, symbol string) (*account.Account, account.Action, string, float64, error) {
	acct, ok := s.registry.Get(user)
	if !ok {
		return nil, "", "", 0, &registry.NotFoundError{User: user}
	}
	act, ok := account.ParseAction(action)
	if !ok {
		return nil, "", "", 0, fmt.Errorf("invalid order action %q: want BUY or SELL", action)
	}
	pair := strings.ToUpper(symbol)
	if !strings.Contains(pair, acct.Currency) {
		pair += acct.Currency
	}
	if !s.feed.SymbolExists(ctx, pair) {
		return nil, "", "", 0, &feed.UnknownSymbolError{Symbol: pair}
	}
	price, err := s.feed.GetPrice(ctx, pair)
	if err != nil {
		return nil, "", "", 0, fmt.Errorf("price for %s: %w", pair, err)
	}
	return acct, act, pair, price, nil
}

func (s *Service) journalTrade(user string, rec account.Trade) {
	if err := s.journal.RecordTrade(journal.FromTrade(user, rec)); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{"user": user, "trade": rec.ID}).
			Warn("journal trade")
	}
}
