package random

import "testing"

func TestSeededSourceIsDeterministic(t *testing.T) {
	a, b := New(42), New(42)
	for i := 0; i < 10; i++ {
		if a.Intn(100) != b.Intn(100) {
			t.Fatalf("sources with same seed diverged at %d", i)
		}
	}
}

func TestSequence(t *testing.T) {
	s := &Sequence{Floats: []float64{0.25}, Ints: []int{7, -1}}
	if s.Float64() != 0.25 || s.Float64() != 0 {
		t.Fatalf("unexpected floats")
	}
	if got := s.Intn(4); got != 3 {
		t.Fatalf("expected clamp to 3 got %d", got)
	}
	if got := s.Intn(4); got != 0 {
		t.Fatalf("expected clamp to 0 got %d", got)
	}
	if got := s.Intn(4); got != 0 {
		t.Fatalf("expected exhausted sequence to return 0 got %d", got)
	}
}
