package account

import "fmt"

// Position is an open holding in a single symbol. Amount is always positive;
// a fully closed position is removed from the account, never kept at zero.
type Position struct {
	Symbol string  `json:"symbol"`
	Amount float64 `json:"amount"`
	// AvgPrice is the weighted-average entry price across merged buys.
	AvgPrice float64 `json:"avg_price"`
	// LastPrice is the price of the most recent trade touching this position,
	// used to mark equity on trade records without a live feed.
	LastPrice float64 `json:"last_price"`
}

func (p *Position) String() string {
	return fmt.Sprintf("%s: %s", p.Symbol, fmtAmount(p.Amount))
}
