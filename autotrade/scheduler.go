package autotrade

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Scheduler drives subscriptions with one timer goroutine each. Reports are
// funneled onto a single channel for the dispatcher; tick goroutines share
// no state beyond the book.
type Scheduler struct {
	book     *Book
	interval time.Duration
	reports  chan Report

	mu    sync.Mutex
	stops map[string]chan struct{}
	wg    sync.WaitGroup
	log   *logrus.Entry
}

// NewScheduler creates a scheduler ticking every interval.
func NewScheduler(book *Book, interval time.Duration) *Scheduler {
	return &Scheduler{
		book:     book,
		interval: interval,
		reports:  make(chan Report, 64),
		stops:    make(map[string]chan struct{}),
		log:      logrus.WithField("component", "scheduler"),
	}
}

// Reports is the channel state transitions are delivered on.
func (s *Scheduler) Reports() <-chan Report { return s.reports }

// Start begins ticking for user. The first tick fires immediately, matching
// a fresh subscription opening its position without waiting a full interval.
// Starting an already started user restarts their timer.
func (s *Scheduler) Start(user string) {
	s.mu.Lock()
	if stop, ok := s.stops[user]; ok {
		close(stop)
	}
	stop := make(chan struct{})
	s.stops[user] = stop
	s.mu.Unlock()

	s.wg.Add(1)
	go s.run(user, stop)
}

// Stop cancels the user's timer. The subscription itself is left to the book.
func (s *Scheduler) Stop(user string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if stop, ok := s.stops[user]; ok {
		close(stop)
		delete(s.stops, user)
	}
}

// Close stops every timer and waits for the tick goroutines to drain, then
// closes the reports channel.
func (s *Scheduler) Close() {
	s.mu.Lock()
	for user, stop := range s.stops {
		close(stop)
		delete(s.stops, user)
	}
	s.mu.Unlock()
	s.wg.Wait()
	close(s.reports)
}

func (s *Scheduler) run(user string, stop chan struct{}) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.tick(user, stop)
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.tick(user, stop)
		}
	}
}

func (s *Scheduler) tick(user string, stop chan struct{}) {
	r, err := s.book.Tick(context.Background(), user)
	if err != nil {
		if errors.Is(err, ErrNotSubscribed) {
			return
		}
		// Feed failures leave the machine untouched; retry next tick.
		s.log.WithError(err).WithField("user", user).Warn("tick failed, retrying next interval")
		return
	}
	if r == nil {
		return
	}
	select {
	case s.reports <- *r:
	case <-stop:
	}
}
