package account

import (
	"strconv"
	"strings"
	"time"
)

// Action is the side of a trade.
type Action string

const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
)

// ParseAction maps user input to an Action, case-insensitively.
func ParseAction(s string) (Action, bool) {
	switch Action(strings.ToUpper(strings.TrimSpace(s))) {
	case ActionBuy:
		return ActionBuy, true
	case ActionSell:
		return ActionSell, true
	}
	return "", false
}

// Trade is an immutable record of an executed order. Records are appended to
// the account history and never mutated or removed.
type Trade struct {
	ID       string    `json:"id"`
	Time     time.Time `json:"time"`
	Action   Action    `json:"action"`
	Symbol   string    `json:"symbol"`
	Amount   float64   `json:"amount"`
	Price    float64   `json:"price"`
	Notional float64   `json:"notional"`
	Fee      float64   `json:"fee"`
	Equity   float64   `json:"equity"`
	Comment  string    `json:"comment,omitempty"`
}

// Text renders the record the way it is reported to users.
func (t Trade) Text(currency string) string {
	icon := "\U0001F4C8" // chart up
	if t.Action == ActionSell {
		icon = "\U0001F4C9" // chart down
	}
	var b strings.Builder
	b.WriteString(t.Time.Format("02-01-2006 15:04:05"))
	b.WriteString("\n")
	b.WriteString(icon)
	b.WriteString(" ")
	b.WriteString(string(t.Action))
	b.WriteString(" ")
	b.WriteString(fmtAmount(t.Amount))
	b.WriteString(" ")
	b.WriteString(t.Symbol)
	b.WriteString(" at ")
	b.WriteString(fmtCash(t.Price, currency))
	b.WriteString(" for ")
	b.WriteString(fmtCash(t.Notional, currency))
	b.WriteString(" with ")
	b.WriteString(fmtCash(t.Fee, currency))
	b.WriteString(" fees.\nEquity: ")
	b.WriteString(fmtCash(t.Equity, currency))
	if t.Comment != "" {
		b.WriteString("\nComment: ")
		b.WriteString(t.Comment)
	}
	return b.String()
}

// amountDecimals bounds how many decimals of an asset amount are shown.
const amountDecimals = 7

func fmtAmount(v float64) string {
	s := strconv.FormatFloat(v, 'f', amountDecimals, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimRight(s, ".")
	if s == "" || s == "-" {
		return "0"
	}
	return s
}

func fmtCash(v float64, currency string) string {
	return strconv.FormatFloat(v, 'f', 2, 64) + " " + currency
}
