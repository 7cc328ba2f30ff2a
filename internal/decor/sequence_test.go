package decor

import (
	"reflect"
	"testing"
)

func take(s *Sequence, k int) []int {
	out := make([]int, k)
	for i := range out {
		out[i] = s.Next()
	}
	return out
}

func TestCounterCycles(t *testing.T) {
	s := NewCounter(3)
	if got := take(s, 7); !reflect.DeepEqual(got, []int{0, 1, 2, 0, 1, 2, 0}) {
		t.Fatalf("got %v", got)
	}
	s.Reset()
	if s.Next() != 0 {
		t.Fatalf("reset did not restart")
	}
	if NewCounter(0).Len() != 1 {
		t.Fatalf("n must be at least 1")
	}
}

func TestShuffledDeterministic(t *testing.T) {
	a := take(NewShuffled(5, 42), 15)
	b := take(NewShuffled(5, 42), 15)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("same seed differs: %v vs %v", a, b)
	}
	for c := 0; c < 3; c++ {
		seen := map[int]bool{}
		for _, v := range a[c*5 : c*5+5] {
			if v < 0 || v >= 5 || seen[v] {
				t.Fatalf("cycle %d not a permutation: %v", c, a)
			}
			seen[v] = true
		}
	}
}

func TestIndependentOwners(t *testing.T) {
	a, b := NewCounter(4), NewCounter(4)
	a.Next()
	a.Next()
	if b.Next() != 0 {
		t.Fatalf("sequences share state")
	}
}

func TestVariantStable(t *testing.T) {
	s := NewCounter(4)
	v := s.Variant("item-1")
	if v != s.Variant("item-1") || v < 0 || v >= 4 {
		t.Fatalf("variant unstable: %d", v)
	}
	if s.Next() != 0 {
		t.Fatalf("Variant advanced the sequence")
	}
}
