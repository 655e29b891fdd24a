// Package autotrade runs one unattended position per subscriber: each tick
// either opens a position sized from the subscription balance or closes it
// once the price crosses a derived take-profit or stop-loss threshold. All
// balance and fee arithmetic goes through the account ledger.
package autotrade

import (
	"errors"
	"sync"
	"time"

	"github.com/kitrader/kitrader/account"
)

// Params configure every subscription's state machine.
type Params struct {
	// Cap bounds the cash a single entry commits, fee included.
	Cap float64
	// Balance is the isolated sub-ledger a new subscription starts with.
	Balance float64
	// ProfitPct is the take-profit percentage over the gross entry cost.
	ProfitPct float64
	// LossFraction scales ProfitPct for the stop-loss. Keeping it below 1
	// makes the stop tighter than the target: losses are cut earlier than
	// profits are taken.
	LossFraction float64
	Fee          float64
	MinTrade     float64
	Currency     string
}

// openPosition is the OPEN state. A nil pointer is FLAT, so exactly one of
// the two states can hold at a time.
type openPosition struct {
	Amount     float64
	StopProfit float64
	StopLoss   float64
}

// Machine is the per-subscriber position state machine. Its sub-ledger is a
// dedicated account, isolated from any manually traded one.
type Machine struct {
	mu     sync.Mutex
	user   string
	pair   string
	params Params
	acct   *account.Account
	open   *openPosition
}

// NewMachine creates a flat machine for user trading pair.
func NewMachine(user, pair string, params Params) *Machine {
	return &Machine{
		user:   user,
		pair:   pair,
		params: params,
		acct:   account.New(user, params.Balance, params.Currency, params.MinTrade),
	}
}

// User returns the subscriber.
func (m *Machine) User() string { return m.user }

// Pair returns the trading pair polled on each tick.
func (m *Machine) Pair() string { return m.pair }

// Balance returns the current sub-ledger balance.
func (m *Machine) Balance() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.acct.Balance
}

// Open reports whether a position is currently held and, if so, its
// thresholds.
func (m *Machine) Open() (amount, stopProfit, stopLoss float64, open bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.open == nil {
		return 0, 0, 0, false
	}
	return m.open.Amount, m.open.StopProfit, m.open.StopLoss, true
}

// Tick advances the state machine with the current price. It returns a
// report when a position was opened or closed, and nil for a silent no-op
// tick. An error leaves the state exactly as it was.
func (m *Machine) Tick(price float64) (*Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.open == nil {
		return m.tryOpen(price)
	}
	switch {
	case price >= m.open.StopProfit:
		return m.close(price, KindSell)
	case price <= m.open.StopLoss:
		return m.close(price, KindStopLoss)
	}
	return nil, nil
}

func (m *Machine) tryOpen(price float64) (*Report, error) {
	if m.acct.Balance <= m.params.MinTrade {
		return nil, nil
	}

	spend := m.acct.Balance
	if spend > m.params.Cap {
		spend = m.params.Cap
	}
	rec, err := m.acct.BuyNotional(m.pair, price, spend, m.params.Fee, "autotrade entry")
	if err != nil {
		// Sizing is net of fee, so a sub-balance just above MinTrade can
		// still produce a notional below it. Stay flat instead of erroring
		// the same way on every tick.
		var minErr *account.BelowMinimumTradeError
		if errors.As(err, &minErr) {
			return nil, nil
		}
		return nil, err
	}

	// The gross entry cost (net notional plus fee) is the figure the profit
	// target grows from; the exit fee is added on top so the target is net
	// of both fees. The stop gives back only a fraction of the target move.
	gross := rec.Notional + rec.Fee
	target := gross * (1 + m.params.ProfitPct)
	stopProfit := (target + m.params.Fee*target) / rec.Amount
	lossPct := m.params.ProfitPct * m.params.LossFraction
	stopLoss := (rec.Notional - gross*lossPct) / rec.Amount

	m.open = &openPosition{
		Amount:     rec.Amount,
		StopProfit: stopProfit,
		StopLoss:   stopLoss,
	}
	return &Report{
		Kind:       KindOpened,
		User:       m.user,
		Symbol:     rec.Symbol,
		Currency:   m.acct.Currency,
		Time:       time.Now(),
		Price:      price,
		Amount:     rec.Amount,
		StopProfit: stopProfit,
		StopLoss:   stopLoss,
		Balance:    m.acct.Balance,
		ReturnPct:  m.acct.Return(),
	}, nil
}

func (m *Machine) close(price float64, kind Kind) (*Report, error) {
	comment := "autotrade take profit"
	if kind == KindStopLoss {
		comment = "autotrade stop loss"
	}
	rec, err := m.acct.SellAll(m.pair, price, m.params.Fee, comment)
	if err != nil {
		return nil, err
	}
	m.open = nil
	return &Report{
		Kind:      kind,
		User:      m.user,
		Symbol:    rec.Symbol,
		Currency:  m.acct.Currency,
		Time:      time.Now(),
		Price:     price,
		Amount:    rec.Amount,
		Balance:   m.acct.Balance,
		ReturnPct: m.acct.Return(),
	}, nil
}
