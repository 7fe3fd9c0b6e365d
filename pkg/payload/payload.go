// Package payload generates pseudo-random payloads for echo tests.
package payload

import (
	"math/rand"

	"go.linkcheck.dev/linkcheck/pkg/linkcheck"
)

// RandomPool is a block of uniformly random bytes which payloads are sliced from.
// A pool is filled once per test run and is never written to afterwards.
type RandomPool struct {
	data      []byte
	maxOffset int
	maxLen    int
}

// NewRandomPool fills a pool of maxOffset + maxLen bytes from rng.
func NewRandomPool(rng *rand.Rand, maxOffset, maxLen int) *RandomPool {
	if maxOffset < 0 || maxLen < 0 {
		panic("payload: negative pool bounds")
	}
	data := make([]byte, maxOffset+maxLen)
	for i := range data {
		data[i] = byte(rng.Intn(256))
	}
	return &RandomPool{
		data:      data,
		maxOffset: maxOffset,
		maxLen:    maxLen,
	}
}

func (p *RandomPool) Len() int {
	return len(p.data)
}

// MaxLen is the longest payload the pool can serve at any offset up to MaxOffset.
func (p *RandomPool) MaxLen() int {
	return p.maxLen
}

func (p *RandomPool) MaxOffset() int {
	return p.maxOffset
}

// Slice returns the pool bytes at [offset, offset+n).
// The result has its capacity clipped so appending to it can never write into the pool.
func (p *RandomPool) Slice(offset, n int) linkcheck.Payload {
	return linkcheck.Payload(p.data[offset : offset+n : offset+n])
}

// Generator produces payloads.
type Generator interface {
	Generate() linkcheck.Payload
}

// WindowGenerator picks a random length in [0, maxLen] and a random offset in
// [0, maxOffset] and returns that window of a RandomPool.
type WindowGenerator struct {
	rng  *rand.Rand
	pool *RandomPool
}

func NewWindowGenerator(rng *rand.Rand, pool *RandomPool) *WindowGenerator {
	return &WindowGenerator{rng: rng, pool: pool}
}

func (g *WindowGenerator) Generate() linkcheck.Payload {
	n := g.rng.Intn(g.pool.MaxLen() + 1)
	off := g.rng.Intn(g.pool.MaxOffset() + 1)
	return g.pool.Slice(off, n)
}
