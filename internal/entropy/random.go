// Package entropy provides the randomness sources injected into template
// selection and decoration rolls.
// Seeded sources reproduce a history from a seed; Crypto draws from the OS.
package entropy

import (
	"crypto/rand"
	"encoding/binary"
	"hash/fnv"
	mrand "math/rand"
	"sync"
)

// Source yields uniform random values. Implementations document whether they
// are safe for concurrent use.
type Source interface {
	// Float64 returns a value in [0, 1).
	Float64() float64
	// Intn returns a value in [0, n). It panics if n <= 0.
	Intn(n int) int
	// Int63 returns a non-negative 63-bit value.
	Int63() int64
}

// Seeded is a deterministic source. It is not safe for concurrent use; give
// each goroutine its own, or wrap it with NewLocked.
type Seeded struct {
	rng *mrand.Rand
}

// NewSeeded creates a deterministic source from seed.
func NewSeeded(seed int64) *Seeded {
	return &Seeded{rng: mrand.New(mrand.NewSource(seed))}
}

func (s *Seeded) Float64() float64 { return s.rng.Float64() }
func (s *Seeded) Intn(n int) int   { return s.rng.Intn(n) }
func (s *Seeded) Int63() int64     { return s.rng.Int63() }

// Locked serializes access to an underlying source.
type Locked struct {
	mu  sync.Mutex
	src Source
}

// NewLocked wraps src so it can be shared between goroutines.
func NewLocked(src Source) *Locked {
	return &Locked{src: src}
}

func (l *Locked) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.src.Float64()
}

func (l *Locked) Intn(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.src.Intn(n)
}

func (l *Locked) Int63() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.src.Int63()
}

// Crypto draws from crypto/rand. It is safe for concurrent use.
type Crypto struct{}

func (Crypto) Float64() float64 { return cryptoRandFloat() }

func (Crypto) Int63() int64 {
	return int64(cryptoUint64() >> 1)
}

func (Crypto) Intn(n int) int {
	if n <= 0 {
		panic("entropy: invalid argument to Intn")
	}
	// Reject the tail so every residue is equally likely.
	bound := uint64(n)
	limit := ^uint64(0) - (^uint64(0) % bound)
	for {
		v := cryptoUint64()
		if v < limit {
			return int(v % bound)
		}
	}
}

func cryptoUint64() uint64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// crypto/rand.Read does not fail on supported platforms.
		panic("entropy: crypto/rand unavailable: " + err.Error())
	}
	return binary.LittleEndian.Uint64(buf[:])
}

// cryptoRandFloat uses 53 bits for a uniform float64 in [0, 1).
func cryptoRandFloat() float64 {
	n := cryptoUint64() >> 11
	return float64(n) / float64(1<<53)
}

// Fork derives an independent deterministic stream from src. It consumes one
// draw from src; the label separates streams forked at the same point.
func Fork(src Source, label string) *Seeded {
	h := fnv.New64a()
	h.Write([]byte(label))
	return NewSeeded(src.Int63() ^ int64(h.Sum64()>>1))
}

// Derive returns a seed for a named sub-stream of a base seed, so a history
// can be rebuilt one part at a time.
func Derive(seed int64, label string) int64 {
	h := fnv.New64a()
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(seed))
	h.Write(buf[:])
	h.Write([]byte(label))
	return int64(h.Sum64() >> 1)
}
