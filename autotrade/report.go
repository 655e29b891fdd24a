package autotrade

import (
	"fmt"
	"strconv"
	"time"
)

// Kind tags what a tick did.
type Kind string

const (
	KindOpened   Kind = "OPENED"
	KindSell     Kind = "SELL"
	KindStopLoss Kind = "STOP LOSS"
)

// Report describes a state transition. Silent ticks produce no report at
// all; whether "nothing happened" is worth telling the subscriber is the
// dispatcher's call.
type Report struct {
	Kind       Kind
	User       string
	Symbol     string
	Currency   string
	Time       time.Time
	Price      float64
	Amount     float64
	StopProfit float64
	StopLoss   float64
	Balance    float64
	ReturnPct  float64
}

func (r *Report) String() string {
	switch r.Kind {
	case KindOpened:
		return fmt.Sprintf("BUY %s %s at %.2f %s.\nTarget: %.2f %s. Stop loss: %.2f %s.\nRemaining balance: %.2f %s",
			fmtAmount(r.Amount), r.Symbol, r.Price, r.Currency,
			r.StopProfit, r.Currency, r.StopLoss, r.Currency,
			r.Balance, r.Currency)
	case KindStopLoss:
		return fmt.Sprintf("STOP LOSS: SELL %s %s at %.2f %s.\nBalance: %.2f %s. Return: %.3f%%",
			fmtAmount(r.Amount), r.Symbol, r.Price, r.Currency,
			r.Balance, r.Currency, r.ReturnPct)
	default:
		return fmt.Sprintf("SELL %s %s at %.2f %s.\nBalance: %.2f %s. Return: %.3f%%",
			fmtAmount(r.Amount), r.Symbol, r.Price, r.Currency,
			r.Balance, r.Currency, r.ReturnPct)
	}
}

func fmtAmount(v float64) string {
	s := strconv.FormatFloat(v, 'f', 7, 64)
	for len(s) > 0 && s[len(s)-1] == '0' {
		s = s[:len(s)-1]
	}
	if len(s) > 0 && s[len(s)-1] == '.' {
		s = s[:len(s)-1]
	}
	return s
}
