package journal

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kitrader/kitrader/account"
)

func newSQLite(t *testing.T) *SQLite {
	t.Helper()
	j, err := NewSQLite(filepath.Join(t.TempDir(), "trades.db"))
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

func record(id, user string, at time.Time) TradeRecord {
	return TradeRecord{
		TradeID:  id,
		User:     user,
		Action:   "BUY",
		Symbol:   "BTC",
		Amount:   0.01,
		Price:    30000,
		Notional: 300,
		Fee:      1.5,
		Equity:   998.5,
		Time:     at,
		Comment:  "test",
	}
}

func TestSQLiteRecordAndGet(t *testing.T) {
	j := newSQLite(t)
	want := record("t1", "alice", time.Now().UTC().Truncate(time.Second))
	require.NoError(t, j.RecordTrade(want))

	got, err := j.GetTrade("t1")
	require.NoError(t, err)
	assert.Equal(t, want.User, got.User)
	assert.Equal(t, want.Action, got.Action)
	assert.Equal(t, want.Symbol, got.Symbol)
	assert.InDelta(t, want.Amount, got.Amount, 1e-12)
	assert.InDelta(t, want.Fee, got.Fee, 1e-12)
	assert.True(t, want.Time.Equal(got.Time), "want %v got %v", want.Time, got.Time)

	_, err = j.GetTrade("missing")
	assert.ErrorContains(t, err, "not found")
}

func TestSQLiteListTradesByUser(t *testing.T) {
	j := newSQLite(t)
	base := time.Now().UTC().Truncate(time.Second)
	for i := 0; i < 5; i++ {
		rec := record("alice-"+string(rune('a'+i)), "alice", base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, j.RecordTrade(rec))
	}
	require.NoError(t, j.RecordTrade(record("bob-a", "bob", base)))

	all, err := j.ListTradesByUser("alice", 0)
	require.NoError(t, err)
	require.Len(t, all, 5)
	for i := 1; i < len(all); i++ {
		assert.True(t, all[i].Time.After(all[i-1].Time), "out of order at %d", i)
	}

	last2, err := j.ListTradesByUser("alice", 2)
	require.NoError(t, err)
	require.Len(t, last2, 2)
	assert.Equal(t, "alice-d", last2[0].TradeID)
	assert.Equal(t, "alice-e", last2[1].TradeID)

	none, err := j.ListTradesByUser("ghost", 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSQLiteListTradesBetween(t *testing.T) {
	j := newSQLite(t)
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		rec := record("t"+string(rune('0'+i)), "alice", base.Add(time.Duration(i)*time.Hour))
		require.NoError(t, j.RecordTrade(rec))
	}

	// [base+1h, base+3h): two records, the end bound excluded
	got, err := j.ListTradesBetween(base.Add(time.Hour), base.Add(3*time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "t1", got[0].TradeID)
	assert.Equal(t, "t2", got[1].TradeID)
}

func TestFromTrade(t *testing.T) {
	t.Parallel()

	at := time.Now()
	rec := FromTrade("alice", account.Trade{
		ID: "x1", Time: at, Action: account.ActionSell, Symbol: "ETH",
		Amount: 1.5, Price: 2000, Notional: 3000, Fee: 15, Equity: 4000, Comment: "c",
	})
	assert.Equal(t, "x1", rec.TradeID)
	assert.Equal(t, "alice", rec.User)
	assert.Equal(t, "SELL", rec.Action)
	assert.InDelta(t, 3000.0, rec.Notional, 1e-12)
	assert.Equal(t, at, rec.Time)
}
