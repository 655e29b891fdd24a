package id

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewIsUniqueAndSortable(t *testing.T) {
	t.Parallel()

	seen := make(map[string]bool)
	prev := ""
	for i := 0; i < 1000; i++ {
		s := New()
		assert.Len(t, s, 26)
		assert.False(t, seen[s], "duplicate id %s", s)
		seen[s] = true
		if prev != "" {
			assert.Greater(t, s, prev, "ids must be monotonic within a process")
		}
		prev = s
	}
}

func TestNewIsSafeForConcurrentUse(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	seen := make(map[string]bool)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				s := New()
				mu.Lock()
				if seen[s] {
					t.Errorf("duplicate id %s", s)
				}
				seen[s] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
}
