// Package alerts turns externally delivered trade alerts into all-in orders
// on the shared system account. The alert source (a mail poller in
// production) is a collaborator behind the Poller interface and is trusted
// to deliver each alert at most once; no deduplication happens here.
package alerts

import (
	"fmt"
	"strings"
	"time"

	"github.com/kitrader/kitrader/account"
)

// Alert is one already-parsed trading signal.
type Alert struct {
	Time      time.Time
	Direction account.Action
	Symbol    string
}

// Poller lazily pulls new alerts, at most once each.
type Poller interface {
	PollNewAlerts() ([]Alert, error)
}

// ParseAlert parses an alert subject of the form "BUY BTCUSD".
func ParseAlert(at time.Time, text string) (Alert, error) {
	fields := strings.Fields(text)
	if len(fields) != 2 {
		return Alert{}, fmt.Errorf("malformed alert %q", text)
	}
	action, ok := account.ParseAction(fields[0])
	if !ok {
		return Alert{}, fmt.Errorf("malformed alert %q: unknown direction %q", text, fields[0])
	}
	return Alert{Time: at, Direction: action, Symbol: strings.ToUpper(fields[1])}, nil
}
