// Package journal keeps an append-only record of every executed trade across
// all users. It is reporting infrastructure: the per-account history remains
// the ledger's source of truth.
package journal

import (
	"time"

	"github.com/kitrader/kitrader/account"
)

// TradeRecord is one executed order as stored in the journal.
type TradeRecord struct {
	TradeID  string
	User     string
	Action   string
	Symbol   string
	Amount   float64
	Price    float64
	Notional float64
	Fee      float64
	Equity   float64
	Time     time.Time
	Comment  string
}

// FromTrade converts a ledger trade into a journal record for user.
func FromTrade(user string, t account.Trade) TradeRecord {
	return TradeRecord{
		TradeID:  t.ID,
		User:     user,
		Action:   string(t.Action),
		Symbol:   t.Symbol,
		Amount:   t.Amount,
		Price:    t.Price,
		Notional: t.Notional,
		Fee:      t.Fee,
		Equity:   t.Equity,
		Time:     t.Time,
		Comment:  t.Comment,
	}
}

type Journal interface {
	RecordTrade(TradeRecord) error
	Close() error
}

// Nop discards every record. Used when journaling is disabled.
type Nop struct{}

func (Nop) RecordTrade(TradeRecord) error { return nil }
func (Nop) Close() error                  { return nil }
