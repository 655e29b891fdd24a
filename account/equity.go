package account

import (
	"sort"
	"strconv"
	"strings"
)

// PriceFn resolves the current price of a trading pair, e.g. "BTCUSD".
type PriceFn func(pair string) (float64, error)

// Equity is the cash balance plus every open position valued at the current
// price. It is a read-time aggregate: nothing is cached, every call hits the
// price source for each position.
func (a *Account) Equity(price PriceFn) (float64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	equity := a.Balance
	for _, p := range a.Positions {
		pair := p.Symbol + a.Currency
		current, err := price(pair)
		if err != nil {
			return 0, &PriceUnavailableError{Symbol: pair, Err: err}
		}
		equity += p.Amount * current
	}
	return equity, nil
}

// Return is the percent return of the cash balance against the balance the
// account was created with.
func (a *Account) Return() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.returnPct()
}

func (a *Account) returnPct() float64 {
	if a.InitialBalance == 0 {
		return 0
	}
	return (a.Balance/a.InitialBalance - 1) * 100
}

// Summary renders the account the way it is reported to users. When price is
// nil the equity line is marked at the last execution prices instead of the
// live feed.
func (a *Account) Summary(price PriceFn) (string, error) {
	var equity float64
	if price != nil {
		var err error
		if equity, err = a.Equity(price); err != nil {
			return "", err
		}
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if price == nil {
		equity = a.markedEquity()
	}

	var b strings.Builder
	b.WriteString("User: ")
	b.WriteString(a.User)
	b.WriteString("\nBalance: ")
	b.WriteString(fmtCash(a.Balance, a.Currency))
	b.WriteString("\nEquity: ")
	b.WriteString(fmtCash(equity, a.Currency))
	b.WriteString("\nReturn: ")
	b.WriteString(strconv.FormatFloat(a.returnPct(), 'f', 3, 64))
	b.WriteString("%")
	if len(a.Positions) > 0 {
		b.WriteString("\nPositions:")
		for _, p := range a.sortedPositions() {
			b.WriteString("\n\t- ")
			b.WriteString(p.String())
		}
	}
	return b.String(), nil
}

func (a *Account) sortedPositions() []*Position {
	out := make([]*Position, 0, len(a.Positions))
	for _, p := range a.Positions {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

// HistoryText renders the most recent trades, oldest first. limit <= 0 means
// the whole history.
func (a *Account) HistoryText(limit int) string {
	a.mu.Lock()
	defer a.mu.Unlock()

	if len(a.History) == 0 {
		return "No trades found."
	}
	records := a.History
	if limit > 0 && len(records) > limit {
		records = records[len(records)-limit:]
	}
	parts := make([]string, len(records))
	for i, t := range records {
		parts[i] = t.Text(a.Currency)
	}
	return strings.Join(parts, "\n\n")
}
