// Package id mints identifiers for trade records. IDs are ULIDs, so sorting
// them reproduces creation order across the journal and account histories.
package id

import (
	cryptorand "crypto/rand"
	"encoding/binary"
	"math/rand"
	"sync"

	"github.com/oklog/ulid/v2"
)

// generator serializes a monotonic ULID source so records minted within the
// same millisecond still sort in creation order.
type generator struct {
	mu  sync.Mutex
	src *ulid.MonotonicEntropy
}

var gen = newGenerator()

func newGenerator() *generator {
	var seed [8]byte
	_, _ = cryptorand.Read(seed[:])
	r := rand.New(rand.NewSource(int64(binary.LittleEndian.Uint64(seed[:]))))
	return &generator{src: ulid.Monotonic(r, 0)}
}

// New returns a fresh 26-character ULID.
func New() string {
	gen.mu.Lock()
	defer gen.mu.Unlock()
	return ulid.MustNew(ulid.Now(), gen.src).String()
}
