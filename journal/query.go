package journal

import (
	"database/sql"
	"fmt"
	"time"
)

// GetTrade returns a single journaled trade by ID.
func (j *SQLite) GetTrade(tradeID string) (TradeRecord, error) {
	row := j.db.QueryRow(`
		SELECT trade_id, user, action, symbol, amount, price, notional, fee, equity, time, comment
		FROM trades
		WHERE trade_id = ?`, tradeID)

	rec, err := scanTrade(row)
	if err == sql.ErrNoRows {
		return TradeRecord{}, fmt.Errorf("trade %q not found", tradeID)
	}
	return rec, err
}

// ListTradesByUser returns the user's trades ordered by time, newest last.
// limit <= 0 returns everything.
func (j *SQLite) ListTradesByUser(user string, limit int) ([]TradeRecord, error) {
	q := `
		SELECT trade_id, user, action, symbol, amount, price, notional, fee, equity, time, comment
		FROM trades
		WHERE user = ?
		ORDER BY time ASC`
	args := []any{user}
	if limit > 0 {
		// Window the newest N while keeping ascending order for display.
		q = `SELECT * FROM (
			SELECT trade_id, user, action, symbol, amount, price, notional, fee, equity, time, comment
			FROM trades
			WHERE user = ?
			ORDER BY time DESC
			LIMIT ?
		) ORDER BY time ASC`
		args = append(args, limit)
	}
	return j.listTrades(q, args...)
}

// ListTradesBetween returns trades executed within [start, end).
func (j *SQLite) ListTradesBetween(start, end time.Time) ([]TradeRecord, error) {
	return j.listTrades(`
		SELECT trade_id, user, action, symbol, amount, price, notional, fee, equity, time, comment
		FROM trades
		WHERE time >= ? AND time < ?
		ORDER BY time ASC`, start, end)
}

func (j *SQLite) listTrades(query string, args ...any) ([]TradeRecord, error) {
	rows, err := j.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TradeRecord
	for rows.Next() {
		rec, err := scanTrade(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTrade(s scanner) (TradeRecord, error) {
	var rec TradeRecord
	err := s.Scan(
		&rec.TradeID,
		&rec.User,
		&rec.Action,
		&rec.Symbol,
		&rec.Amount,
		&rec.Price,
		&rec.Notional,
		&rec.Fee,
		&rec.Equity,
		&rec.Time,
		&rec.Comment,
	)
	return rec, err
}
