// Package feed provides current prices for trading pairs. Implementations
// wrap exchange ticker APIs; Memory serves fixed prices for tests and
// simulations. The ledger never calls a feed itself: callers resolve the
// price first and hand it down.
package feed

import (
	"context"
	"fmt"
)

// Feed is a read-only price source for trading pairs like "BTCUSD".
type Feed interface {
	// GetPrice returns the last traded price for the pair.
	GetPrice(ctx context.Context, symbol string) (float64, error)
	// SymbolExists reports whether the pair is tradable on this feed.
	SymbolExists(ctx context.Context, symbol string) bool
	// Ping checks that the feed is reachable.
	Ping(ctx context.Context) error
	// RequestsPerMinute is the feed's request budget, used to bound how many
	// autotrade subscribers can poll it concurrently.
	RequestsPerMinute() int
}

// UnknownSymbolError is returned for pairs the feed does not serve.
type UnknownSymbolError struct {
	Symbol string
}

func (e *UnknownSymbolError) Error() string {
	return fmt.Sprintf("invalid symbol: %s", e.Symbol)
}
