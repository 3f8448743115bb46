package entropy

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeededIsDeterministic(t *testing.T) {
	a, b := NewSeeded(42), NewSeeded(42)
	for i := 0; i < 100; i++ {
		assert.Equal(t, a.Intn(1000), b.Intn(1000))
		assert.Equal(t, a.Float64(), b.Float64())
	}
}

func TestForkIsDeterministicAndLabelled(t *testing.T) {
	x := Fork(NewSeeded(7), "disease")
	y := Fork(NewSeeded(7), "disease")
	z := Fork(NewSeeded(7), "artifact")

	xs, ys, zs := make([]int, 20), make([]int, 20), make([]int, 20)
	for i := range xs {
		xs[i], ys[i], zs[i] = x.Intn(1<<30), y.Intn(1<<30), z.Intn(1<<30)
	}
	assert.Equal(t, xs, ys)
	assert.NotEqual(t, xs, zs)
}

func TestDerive(t *testing.T) {
	assert.Equal(t, Derive(1, "realm-3"), Derive(1, "realm-3"))
	assert.NotEqual(t, Derive(1, "realm-3"), Derive(1, "realm-4"))
	assert.NotEqual(t, Derive(1, "realm-3"), Derive(2, "realm-3"))
	assert.GreaterOrEqual(t, Derive(99, "x"), int64(0))
}

func TestCryptoRanges(t *testing.T) {
	var c Crypto
	for i := 0; i < 1000; i++ {
		f := c.Float64()
		assert.True(t, f >= 0 && f < 1)
		n := c.Intn(7)
		assert.True(t, n >= 0 && n < 7)
		assert.GreaterOrEqual(t, c.Int63(), int64(0))
	}
	assert.Panics(t, func() { c.Intn(0) })
}

func TestLockedConcurrentUse(t *testing.T) {
	src := NewLocked(NewSeeded(1))
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				_ = src.Intn(10)
				_ = src.Float64()
			}
		}()
	}
	wg.Wait()
}
