package alerts

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kitrader/kitrader/account"
	"github.com/kitrader/kitrader/feed"
	"github.com/kitrader/kitrader/registry"
)

func newRouter(t *testing.T) (*Router, *registry.Registry, *feed.Memory) {
	t.Helper()

	f := feed.NewMemory()
	f.Set("BTCUSD", 30000)
	reg := registry.New(t.TempDir(), "kitrader", registry.Defaults{
		Balance:  1000,
		Currency: "USD",
		MinTrade: 5,
	})
	return NewRouter(reg, f, nil, 0.005), reg, f
}

func TestParseAlert(t *testing.T) {
	t.Parallel()

	now := time.Now()
	a, err := ParseAlert(now, "BUY BTCUSD")
	require.NoError(t, err)
	assert.Equal(t, account.ActionBuy, a.Direction)
	assert.Equal(t, "BTCUSD", a.Symbol)
	assert.Equal(t, now, a.Time)

	a, err = ParseAlert(now, "sell ethusd")
	require.NoError(t, err)
	assert.Equal(t, account.ActionSell, a.Direction)
	assert.Equal(t, "ETHUSD", a.Symbol)

	for _, text := range []string{"", "BUY", "BUY BTC USD", "HOLD BTCUSD"} {
		_, err := ParseAlert(now, text)
		assert.Error(t, err, "text %q", text)
	}
}

func TestRouteCreatesSystemAccount(t *testing.T) {
	t.Parallel()

	r, reg, _ := newRouter(t)
	require.False(t, reg.Exists("kitrader"))

	rec, err := r.Route(context.Background(), Alert{
		Time: time.Now(), Direction: account.ActionBuy, Symbol: "BTC",
	})
	require.NoError(t, err)

	assert.Equal(t, account.ActionBuy, rec.Action)
	assert.Equal(t, "BTC", rec.Symbol)
	// all-in with the default balance: (1000 - 5) / 30000
	assert.InDelta(t, 995.0/30000, rec.Amount, 1e-9)

	sys, ok := reg.Get("kitrader")
	require.True(t, ok)
	assert.InDelta(t, 0.0, sys.Balance, 1e-9)
}

func TestRouteBuyThenSell(t *testing.T) {
	t.Parallel()

	r, reg, f := newRouter(t)
	_, err := r.Route(context.Background(), Alert{
		Time: time.Now(), Direction: account.ActionBuy, Symbol: "BTCUSD",
	})
	require.NoError(t, err)

	f.Set("BTCUSD", 31000)
	rec, err := r.Route(context.Background(), Alert{
		Time: time.Now(), Direction: account.ActionSell, Symbol: "BTCUSD",
	})
	require.NoError(t, err)
	assert.Equal(t, account.ActionSell, rec.Action)

	sys, _ := reg.Get("kitrader")
	assert.Greater(t, sys.Balance, 1000.0)
	assert.Empty(t, sys.Positions)
	assert.Len(t, sys.History, 2)
}

func TestRouteErrorsMatchManualTrades(t *testing.T) {
	t.Parallel()

	r, _, f := newRouter(t)

	_, err := r.Route(context.Background(), Alert{
		Time: time.Now(), Direction: account.ActionSell, Symbol: "BTC",
	})
	var noPos *account.NoOpenPositionError
	assert.ErrorAs(t, err, &noPos)

	_, err = r.Route(context.Background(), Alert{
		Time: time.Now(), Direction: account.ActionBuy, Symbol: "NOPE",
	})
	var unknown *feed.UnknownSymbolError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "NOPEUSD", unknown.Symbol)

	f.Fail(assert.AnError)
	_, err = r.Route(context.Background(), Alert{
		Time: time.Now(), Direction: account.ActionBuy, Symbol: "BTC",
	})
	assert.Error(t, err)
}

type stubPoller struct {
	alerts chan []Alert
}

func (p *stubPoller) PollNewAlerts() ([]Alert, error) {
	select {
	case a := <-p.alerts:
		return a, nil
	default:
		return nil, nil
	}
}

func TestRunRoutesPolledAlerts(t *testing.T) {
	t.Parallel()

	r, reg, _ := newRouter(t)
	p := &stubPoller{alerts: make(chan []Alert, 1)}
	p.alerts <- []Alert{{Time: time.Now(), Direction: account.ActionBuy, Symbol: "BTC"}}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		r.Run(ctx, p, 5*time.Millisecond)
	}()

	require.Eventually(t, func() bool {
		sys, ok := reg.Get("kitrader")
		return ok && len(sys.History) == 1
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	<-done
}
