package account

import "fmt"

// BelowMinimumTradeError is returned when the notional of an order
// (amount * price) does not reach the account's minimum trade size.
type BelowMinimumTradeError struct {
	Symbol   string
	Amount   float64
	Price    float64
	Notional float64
	MinTrade float64
	Currency string
}

func (e *BelowMinimumTradeError) Error() string {
	// The notional keeps full precision: near the minimum, two decimals
	// would round it up to the very bound it failed to reach.
	return fmt.Sprintf("trade total must be at least %.2f %s, got %s %s (%s %s * %.2f %s)",
		e.MinTrade, e.Currency, fmtAmount(e.Notional), e.Currency,
		fmtAmount(e.Amount), e.Symbol, e.Price, e.Currency)
}

// InsufficientBalanceError is returned when a buy would overdraw the account.
// MaxAffordable is the largest amount that could be bought at the same price
// once proportional fees are taken out, so the caller can suggest a retry.
type InsufficientBalanceError struct {
	Symbol        string
	Balance       float64
	Price         float64
	MaxAffordable float64
	Currency      string
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance %.2f %s: maximum %s %s at price %.2f %s",
		e.Balance, e.Currency, fmtAmount(e.MaxAffordable), e.Symbol, e.Price, e.Currency)
}

// InsufficientPositionError is returned when a sell asks for more than is held.
type InsufficientPositionError struct {
	Symbol    string
	Requested float64
	Available float64
}

func (e *InsufficientPositionError) Error() string {
	return fmt.Sprintf("invalid amount %s %s: available %s %s",
		fmtAmount(e.Requested), e.Symbol, fmtAmount(e.Available), e.Symbol)
}

// NoOpenPositionError is returned by SellAll when nothing is held.
type NoOpenPositionError struct {
	Symbol string
}

func (e *NoOpenPositionError) Error() string {
	return fmt.Sprintf("no position open for %s", e.Symbol)
}

// PriceUnavailableError wraps a price lookup failure during an equity
// computation.
type PriceUnavailableError struct {
	Symbol string
	Err    error
}

func (e *PriceUnavailableError) Error() string {
	return fmt.Sprintf("price unavailable for %s: %v", e.Symbol, e.Err)
}

func (e *PriceUnavailableError) Unwrap() error { return e.Err }
