package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kitrader/kitrader/autotrade"
)

// Subscribe opens an autotrade subscription for user on symbol and starts
// its timer. Resubscribing replaces the previous subscription.
func (s *Service) Subscribe(ctx context.Context, user, symbol string) (string, error) {
	pair := strings.ToUpper(symbol)
	if !strings.Contains(pair, s.defaultCurrency) {
		pair += s.defaultCurrency
	}
	m, err := s.book.Subscribe(ctx, user, pair)
	if err != nil {
		return "", err
	}
	if s.sched != nil {
		s.sched.Start(user)
	}
	return fmt.Sprintf("Now you're subscribed to %s, updated every %s.", m.Pair(), s.interval), nil
}

// Unsubscribe cancels the user's timer and drops the subscription.
func (s *Service) Unsubscribe(user string) (string, error) {
	if s.sched != nil {
		s.sched.Stop(user)
	}
	if err := s.book.Unsubscribe(user); err != nil {
		if errors.Is(err, autotrade.ErrNotSubscribed) {
			return "Already unsubscribed.", nil
		}
		return "", err
	}
	return "Unsubscribed successfully.", nil
}
