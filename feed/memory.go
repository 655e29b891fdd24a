package feed

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Memory is an in-process feed backed by a price table. It is used by tests
// and by simulation runs without network access.
type Memory struct {
	mu     sync.RWMutex
	prices map[string]float64
	// Err, when set, is returned by every GetPrice call. Tests use it to
	// simulate a feed outage.
	err error
}

// NewMemory creates an empty in-memory feed.
func NewMemory() *Memory {
	return &Memory{prices: make(map[string]float64)}
}

// Set stores the current price for a pair.
func (m *Memory) Set(symbol string, price float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prices[strings.ToUpper(symbol)] = price
}

// Fail makes every subsequent GetPrice return err; nil restores the feed.
func (m *Memory) Fail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func (m *Memory) GetPrice(_ context.Context, symbol string) (float64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.err != nil {
		return 0, m.err
	}
	symbol = strings.ToUpper(symbol)
	p, ok := m.prices[symbol]
	if !ok {
		return 0, fmt.Errorf("no price for %q", symbol)
	}
	return p, nil
}

func (m *Memory) SymbolExists(_ context.Context, symbol string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.prices[strings.ToUpper(symbol)]
	return ok
}

func (m *Memory) Ping(context.Context) error { return nil }

// RequestsPerMinute is effectively unbounded for an in-process feed.
func (m *Memory) RequestsPerMinute() int { return 6000 }
