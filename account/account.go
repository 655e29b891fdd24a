package account

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/kitrader/kitrader/pkg/id"
)

// MergePolicy decides what happens when a symbol that already has an open
// position is bought again.
type MergePolicy string

const (
	// MergeRebuys folds the new amount into the existing position and keeps a
	// weighted-average cost basis. This is the default.
	MergeRebuys MergePolicy = "merge"
	// ReplaceRebuys discards the existing position and keeps only the new one.
	ReplaceRebuys MergePolicy = "replace"
)

// Account is a simulated trading account. The balance is cash in Currency;
// Positions maps canonical symbols to open positions. All mutation goes
// through Buy/Sell and friends, which are serialized by an internal mutex:
// an operation either fully applies or leaves the account untouched.
type Account struct {
	mu sync.Mutex

	User           string               `json:"user"`
	Balance        float64              `json:"balance"`
	Currency       string               `json:"currency"`
	InitialBalance float64              `json:"initial_balance"`
	MinTrade       float64              `json:"min_trade"`
	Policy         MergePolicy          `json:"merge_policy"`
	Positions      map[string]*Position `json:"positions"`
	History        []Trade              `json:"history"`
}

// New creates an account with the given starting balance. The currency is
// upper-cased; a negative minTrade is clamped to zero.
func New(user string, balance float64, currency string, minTrade float64) *Account {
	if minTrade < 0 {
		minTrade = 0
	}
	return &Account{
		User:           user,
		Balance:        balance,
		Currency:       strings.ToUpper(currency),
		InitialBalance: balance,
		MinTrade:       minTrade,
		Policy:         MergeRebuys,
		Positions:      make(map[string]*Position),
	}
}

// Validate checks the account invariants. It is used by the registry after
// decoding a persisted account.
func (a *Account) Validate() error {
	if a.User == "" {
		return fmt.Errorf("account has no user")
	}
	if a.Balance < 0 {
		return fmt.Errorf("account %s: negative balance %.2f", a.User, a.Balance)
	}
	if len(a.Currency) < 3 {
		return fmt.Errorf("account %s: invalid currency %q", a.User, a.Currency)
	}
	if a.Positions == nil {
		a.Positions = make(map[string]*Position)
	}
	for sym, p := range a.Positions {
		if p == nil || p.Amount <= 0 {
			return fmt.Errorf("account %s: position %s has non-positive amount", a.User, sym)
		}
	}
	if a.Policy == "" {
		a.Policy = MergeRebuys
	}
	return nil
}

// NormalizeSymbol canonicalizes a user-supplied symbol: non-alphabetic
// characters are dropped, the result is upper-cased and the account currency
// suffix is stripped. The canonical form is the only key ever stored.
func (a *Account) NormalizeSymbol(symbol string) string {
	var b strings.Builder
	for _, r := range symbol {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			b.WriteRune(r)
		}
	}
	s := strings.ToUpper(b.String())
	return strings.TrimSuffix(s, a.Currency)
}

// Get returns the held amount for a symbol, or 0 when no position is open.
func (a *Account) Get(symbol string) float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.held(a.NormalizeSymbol(symbol))
}

func (a *Account) held(sym string) float64 {
	if p, ok := a.Positions[sym]; ok {
		return p.Amount
	}
	return 0
}

// Buy opens or extends a position: amount units of symbol at the given price.
// The fee is feeRate of the notional and is debited on top of it.
func (a *Account) Buy(symbol string, price, amount, feeRate float64, comment string) (Trade, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.buy(symbol, price, amount, feeRate, amount*price, comment)
}

// BuyNotional spends up to `spend` of cash, fee included, on symbol at the
// given price: the fee is charged on the full spend and the bought amount is
// derived from what remains. Sizing this way lets a caller commit an exact
// cash budget without overdrawing on fees.
func (a *Account) BuyNotional(symbol string, price, spend, feeRate float64, comment string) (Trade, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if spend > a.Balance {
		spend = a.Balance
	}
	fee := feeRate * spend
	amount := (spend - fee) / price
	return a.buy(symbol, price, amount, feeRate, spend, comment)
}

// BuyAll buys as much of symbol as the whole balance affords, fees included.
func (a *Account) BuyAll(symbol string, price, feeRate float64, comment string) (Trade, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	fee := feeRate * a.Balance
	amount := (a.Balance - fee) / price
	return a.buy(symbol, price, amount, feeRate, a.Balance, comment)
}

// buy holds the mutex. feeBase is the cash figure the fee is computed from:
// the notional for plain buys, the committed budget for all-in buys.
func (a *Account) buy(symbol string, price, amount, feeRate, feeBase float64, comment string) (Trade, error) {
	sym := a.NormalizeSymbol(symbol)
	if a.Balance <= 0 {
		return Trade{}, &InsufficientBalanceError{
			Symbol:   sym,
			Balance:  a.Balance,
			Price:    price,
			Currency: a.Currency,
		}
	}
	open := amount * price
	if open < a.MinTrade {
		return Trade{}, &BelowMinimumTradeError{
			Symbol:   sym,
			Amount:   amount,
			Price:    price,
			Notional: open,
			MinTrade: a.MinTrade,
			Currency: a.Currency,
		}
	}
	fee := feeRate * feeBase
	if a.Balance < open+fee {
		return Trade{}, &InsufficientBalanceError{
			Symbol:        sym,
			Balance:       a.Balance,
			Price:         price,
			MaxAffordable: (a.Balance - feeRate*a.Balance) / price,
			Currency:      a.Currency,
		}
	}

	a.Balance -= open + fee

	if prev, ok := a.Positions[sym]; ok && a.Policy == MergeRebuys {
		total := prev.Amount + amount
		prev.AvgPrice = (prev.Amount*prev.AvgPrice + amount*price) / total
		prev.Amount = total
		prev.LastPrice = price
	} else {
		a.Positions[sym] = &Position{Symbol: sym, Amount: amount, AvgPrice: price, LastPrice: price}
	}

	return a.record(ActionBuy, sym, amount, price, open, fee, comment), nil
}

// Sell closes part or all of a position at the given price. The fee is
// feeRate of the notional and is taken out of the proceeds. Selling the
// exact held amount removes the position; a larger amount fails without
// touching the account.
func (a *Account) Sell(symbol string, price, amount, feeRate float64, comment string) (Trade, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.sell(a.NormalizeSymbol(symbol), price, amount, feeRate, comment)
}

// SellAll closes the whole position for symbol.
func (a *Account) SellAll(symbol string, price, feeRate float64, comment string) (Trade, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	sym := a.NormalizeSymbol(symbol)
	amount := a.held(sym)
	if amount == 0 {
		return Trade{}, &NoOpenPositionError{Symbol: sym}
	}
	return a.sell(sym, price, amount, feeRate, comment)
}

// sell holds the mutex. sym is already canonical: normalization happens once
// at each exported entry point, never here. Normalizing again would mangle
// bases whose name ends with the account currency (TUSD on a USD account).
func (a *Account) sell(sym string, price, amount, feeRate float64, comment string) (Trade, error) {
	close := amount * price
	if close < a.MinTrade {
		return Trade{}, &BelowMinimumTradeError{
			Symbol:   sym,
			Amount:   amount,
			Price:    price,
			Notional: close,
			MinTrade: a.MinTrade,
			Currency: a.Currency,
		}
	}
	held := a.held(sym)
	if amount > held {
		return Trade{}, &InsufficientPositionError{
			Symbol:    sym,
			Requested: amount,
			Available: held,
		}
	}

	fee := feeRate * close
	a.Balance += close - fee

	if amount == held {
		delete(a.Positions, sym)
	} else {
		p := a.Positions[sym]
		p.Amount -= amount
		p.LastPrice = price
	}

	return a.record(ActionSell, sym, amount, price, close, fee, comment), nil
}

// record appends a trade to the history. The equity noted on the record marks
// every remaining position at its most recent execution price; live equity is
// always recomputed through Equity.
func (a *Account) record(action Action, sym string, amount, price, notional, fee float64, comment string) Trade {
	t := Trade{
		ID:       id.New(),
		Time:     time.Now(),
		Action:   action,
		Symbol:   sym,
		Amount:   amount,
		Price:    price,
		Notional: notional,
		Fee:      fee,
		Equity:   a.markedEquity(),
		Comment:  comment,
	}
	a.History = append(a.History, t)
	return t
}

func (a *Account) markedEquity() float64 {
	equity := a.Balance
	for _, p := range a.Positions {
		equity += p.Amount * p.LastPrice
	}
	return equity
}
