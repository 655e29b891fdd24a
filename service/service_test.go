package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kitrader/kitrader/account"
	"github.com/kitrader/kitrader/autotrade"
	"github.com/kitrader/kitrader/feed"
	"github.com/kitrader/kitrader/registry"
)

func newService(t *testing.T) (*Service, *feed.Memory) {
	t.Helper()

	f := feed.NewMemory()
	f.Set("BTCUSD", 30000)
	f.Set("ETHUSD", 2000)

	reg := registry.New(t.TempDir(), "kitrader", registry.Defaults{
		Balance:  1000,
		Currency: "USD",
		MinTrade: 5,
		Policy:   account.MergeRebuys,
	})
	book := autotrade.NewBook(f, autotrade.Params{
		Cap:          50,
		Balance:      50,
		ProfitPct:    0.02,
		LossFraction: 0.5,
		Fee:          0.0025,
		MinTrade:     5,
		Currency:     "USD",
	}, time.Minute)

	svc := New(reg, f, book, nil, nil, Options{
		Fee:             0.005,
		DefaultCurrency: "USD",
		Interval:        time.Minute,
	})
	return svc, f
}

func TestNewAccountRendersSummary(t *testing.T) {
	t.Parallel()

	svc, _ := newService(t)
	msg, err := svc.NewAccount("alice", 0, "")
	require.NoError(t, err)
	assert.Contains(t, msg, "created successfully")
	assert.Contains(t, msg, "Balance: 1000.00 USD")

	_, err = svc.NewAccount("alice", 0, "")
	var exists *registry.AlreadyExistsError
	assert.ErrorAs(t, err, &exists)
}

func TestTradeBuyAndSell(t *testing.T) {
	t.Parallel()

	svc, _ := newService(t)
	_, err := svc.NewAccount("alice", 0, "")
	require.NoError(t, err)

	msg, err := svc.Trade(context.Background(), TradeRequest{
		User: "alice", Action: "buy", Amount: 0.01, Symbol: "btc", Comment: "dip",
	})
	require.NoError(t, err)
	assert.Contains(t, msg, "BUY 0.01 BTC at 30000.00 USD")
	assert.Contains(t, msg, "Comment: dip")

	msg, err = svc.Trade(context.Background(), TradeRequest{
		User: "alice", Action: "SELL", Amount: 0.01, Symbol: "BTCUSD",
	})
	require.NoError(t, err)
	assert.Contains(t, msg, "SELL 0.01 BTC")
}

func TestTradeValidation(t *testing.T) {
	t.Parallel()

	svc, _ := newService(t)
	_, err := svc.NewAccount("alice", 0, "")
	require.NoError(t, err)

	tests := []struct {
		name string
		req  TradeRequest
	}{
		{"no user", TradeRequest{Action: "buy", Amount: 1, Symbol: "BTC"}},
		{"no action", TradeRequest{User: "alice", Amount: 1, Symbol: "BTC"}},
		{"zero amount", TradeRequest{User: "alice", Action: "buy", Symbol: "BTC"}},
		{"negative amount", TradeRequest{User: "alice", Action: "buy", Amount: -1, Symbol: "BTC"}},
		{"no symbol", TradeRequest{User: "alice", Action: "buy", Amount: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Trade(context.Background(), tt.req)
			assert.ErrorContains(t, err, "invalid order")
		})
	}
}

func TestTradeRejectsUnknownThings(t *testing.T) {
	t.Parallel()

	svc, _ := newService(t)
	_, err := svc.NewAccount("alice", 0, "")
	require.NoError(t, err)

	_, err = svc.Trade(context.Background(), TradeRequest{
		User: "ghost", Action: "buy", Amount: 1, Symbol: "BTC",
	})
	var notFound *registry.NotFoundError
	assert.ErrorAs(t, err, &notFound)

	_, err = svc.Trade(context.Background(), TradeRequest{
		User: "alice", Action: "hold", Amount: 1, Symbol: "BTC",
	})
	assert.ErrorContains(t, err, "want BUY or SELL")

	_, err = svc.Trade(context.Background(), TradeRequest{
		User: "alice", Action: "buy", Amount: 1, Symbol: "NOPE",
	})
	var unknown *feed.UnknownSymbolError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "NOPEUSD", unknown.Symbol)
}

func TestTradeSurfacesLedgerErrors(t *testing.T) {
	t.Parallel()

	svc, _ := newService(t)
	_, err := svc.NewAccount("alice", 0, "")
	require.NoError(t, err)

	_, err = svc.Trade(context.Background(), TradeRequest{
		User: "alice", Action: "buy", Amount: 1, Symbol: "BTC",
	})
	var balErr *account.InsufficientBalanceError
	require.ErrorAs(t, err, &balErr)
	assert.Greater(t, balErr.MaxAffordable, 0.0)

	_, err = svc.Trade(context.Background(), TradeRequest{
		User: "alice", Action: "sell", Amount: 1, Symbol: "ETH",
	})
	var posErr *account.InsufficientPositionError
	assert.ErrorAs(t, err, &posErr)
}

func TestTradeAll(t *testing.T) {
	t.Parallel()

	svc, _ := newService(t)
	_, err := svc.NewAccount("alice", 0, "")
	require.NoError(t, err)

	msg, err := svc.TradeAll(context.Background(), TradeAllRequest{
		User: "alice", Action: "buy", Symbol: "ETH",
	})
	require.NoError(t, err)
	// 1000 all-in at 2000 with fee 0.005: (1000 - 5) / 2000
	assert.Contains(t, msg, "BUY 0.4975 ETH")

	msg, err = svc.TradeAll(context.Background(), TradeAllRequest{
		User: "alice", Action: "sell", Symbol: "ETH",
	})
	require.NoError(t, err)
	assert.Contains(t, msg, "SELL 0.4975 ETH")

	_, err = svc.TradeAll(context.Background(), TradeAllRequest{
		User: "alice", Action: "sell", Symbol: "ETH",
	})
	var noPos *account.NoOpenPositionError
	assert.ErrorAs(t, err, &noPos)
}

func TestAccountSummaryAuthorization(t *testing.T) {
	t.Parallel()

	svc, _ := newService(t)
	_, err := svc.NewAccount("alice", 0, "")
	require.NoError(t, err)
	_, err = svc.NewAccount("bob", 0, "")
	require.NoError(t, err)

	msg, err := svc.AccountSummary(context.Background(), "alice", "", false)
	require.NoError(t, err)
	assert.Contains(t, msg, "User: alice")

	_, err = svc.AccountSummary(context.Background(), "alice", "bob", false)
	var denied *registry.AuthorizationDeniedError
	assert.ErrorAs(t, err, &denied)

	_, err = svc.AccountSummary(context.Background(), "admin", "ghost", true)
	assert.Error(t, err)
}

func TestHistory(t *testing.T) {
	t.Parallel()

	svc, _ := newService(t)
	_, err := svc.NewAccount("alice", 0, "")
	require.NoError(t, err)

	msg, err := svc.History("alice", "", false, 10)
	require.NoError(t, err)
	assert.Equal(t, "No trades found.", msg)

	_, err = svc.Trade(context.Background(), TradeRequest{
		User: "alice", Action: "buy", Amount: 0.01, Symbol: "BTC", Comment: "first",
	})
	require.NoError(t, err)

	msg, err = svc.History("alice", "", false, 10)
	require.NoError(t, err)
	assert.Contains(t, msg, "Comment: first")
}

func TestPriceAndPing(t *testing.T) {
	t.Parallel()

	svc, f := newService(t)

	msg, err := svc.Price(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "BTCUSD: 30000", msg)

	msg, err = svc.Price(context.Background(), "ethusd")
	require.NoError(t, err)
	assert.Equal(t, "ETHUSD: 2000", msg)

	_, err = svc.Price(context.Background(), "NOPEUSD")
	assert.Error(t, err)

	msg, err = svc.Ping(context.Background())
	require.NoError(t, err)
	assert.Contains(t, msg, "working")

	f.Set("BTCUSD", 31000.5)
	msg, err = svc.Price(context.Background(), "BTCUSD")
	require.NoError(t, err)
	assert.Equal(t, "BTCUSD: 31000.5", msg)
}

func TestSubscribeAndUnsubscribe(t *testing.T) {
	t.Parallel()

	svc, _ := newService(t)

	msg, err := svc.Subscribe(context.Background(), "alice", "btc")
	require.NoError(t, err)
	assert.Contains(t, msg, "subscribed to BTCUSD")
	assert.Contains(t, msg, "1m0s")

	_, err = svc.Subscribe(context.Background(), "alice", "NOPE")
	var unknown *feed.UnknownSymbolError
	assert.ErrorAs(t, err, &unknown)

	msg, err = svc.Unsubscribe("alice")
	require.NoError(t, err)
	assert.Equal(t, "Unsubscribed successfully.", msg)

	msg, err = svc.Unsubscribe("alice")
	require.NoError(t, err)
	assert.Equal(t, "Already unsubscribed.", msg)
}
