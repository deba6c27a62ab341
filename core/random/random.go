// Package random defines the random source consumed by the traffic generator
// and the passenger exchange.
package random

import (
	"math/rand"
	"time"
)

// Source yields pseudo random numbers. *rand.Rand satisfies it.
type Source interface {
	// Float64 returns a number in [0.0, 1.0).
	Float64() float64
	// Intn returns a number in [0, n). n must be positive.
	Intn(n int) int
}

// New returns a seeded source. A zero seed picks one from the wall clock.
func New(seed int64) Source {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// Sequence replays scripted values and is meant for tests. Once a list is
// exhausted the corresponding method returns zero.
type Sequence struct {
	Floats []float64
	Ints   []int
}

func (s *Sequence) Float64() float64 {
	if len(s.Floats) == 0 {
		return 0
	}
	f := s.Floats[0]
	s.Floats = s.Floats[1:]
	return f
}

// Intn returns the next scripted int clamped into [0, n).
func (s *Sequence) Intn(n int) int {
	if len(s.Ints) == 0 {
		return 0
	}
	v := s.Ints[0]
	s.Ints = s.Ints[1:]
	if v >= n {
		v = n - 1
	}
	if v < 0 {
		v = 0
	}
	return v
}
