package autotrade

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/kitrader/kitrader/feed"
)

// CapacityExceededError is returned when the subscriber limit derived from
// the feed's request budget is reached.
type CapacityExceededError struct {
	Limit int
}

func (e *CapacityExceededError) Error() string {
	return fmt.Sprintf("cannot subscribe: maximum of %d subscribers reached", e.Limit)
}

// ErrNotSubscribed is returned when ticking or unsubscribing a user that has
// no subscription.
var ErrNotSubscribed = errors.New("not subscribed")

// Book holds every active subscription. Each subscriber polls the feed once
// per tick, so the capacity is bounded by the feed's per-minute request
// budget spread over the tick interval.
type Book struct {
	mu       sync.Mutex
	feed     feed.Feed
	params   Params
	capacity int
	subs     map[string]*Machine
	log      *logrus.Entry
}

// NewBook creates a book for subscriptions ticking every interval.
func NewBook(f feed.Feed, params Params, interval time.Duration) *Book {
	capacity := int(interval.Seconds()) * f.RequestsPerMinute() / 60
	if capacity < 1 {
		capacity = 1
	}
	return &Book{
		feed:     f,
		params:   params,
		capacity: capacity,
		subs:     make(map[string]*Machine),
		log:      logrus.WithField("component", "autotrade"),
	}
}

// Capacity returns the maximum number of concurrent subscribers.
func (b *Book) Capacity() int { return b.capacity }

// Len returns the number of active subscriptions.
func (b *Book) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Subscribe starts a fresh subscription for user on pair. Resubscribing
// replaces the existing subscription, discarding its state.
func (b *Book) Subscribe(ctx context.Context, user, pair string) (*Machine, error) {
	pair = strings.ToUpper(pair)

	b.mu.Lock()
	_, resub := b.subs[user]
	if !resub && len(b.subs) >= b.capacity {
		limit := b.capacity
		b.mu.Unlock()
		return nil, &CapacityExceededError{Limit: limit}
	}
	b.mu.Unlock()

	// Existence check happens outside the lock: it hits the network.
	if !b.feed.SymbolExists(ctx, pair) {
		return nil, &feed.UnknownSymbolError{Symbol: pair}
	}

	m := NewMachine(user, pair, b.params)

	b.mu.Lock()
	defer b.mu.Unlock()
	if !resub && len(b.subs) >= b.capacity {
		return nil, &CapacityExceededError{Limit: b.capacity}
	}
	b.subs[user] = m
	b.log.WithFields(logrus.Fields{"user": user, "pair": pair}).Info("subscribed")
	return m, nil
}

// Unsubscribe drops the user's subscription and its sub-ledger.
func (b *Book) Unsubscribe(user string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[user]; !ok {
		return ErrNotSubscribed
	}
	delete(b.subs, user)
	b.log.WithField("user", user).Info("unsubscribed")
	return nil
}

// Get returns the user's machine, if subscribed.
func (b *Book) Get(user string) (*Machine, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	m, ok := b.subs[user]
	return m, ok
}

// Tick resolves the current price for the user's pair and advances their
// state machine. A feed failure is returned without touching the machine;
// the caller is expected to retry on the next tick.
func (b *Book) Tick(ctx context.Context, user string) (*Report, error) {
	m, ok := b.Get(user)
	if !ok {
		return nil, ErrNotSubscribed
	}
	price, err := b.feed.GetPrice(ctx, m.Pair())
	if err != nil {
		return nil, fmt.Errorf("price for %s: %w", m.Pair(), err)
	}
	return m.Tick(price)
}
