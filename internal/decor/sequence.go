/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package decor hands out variant indices for decorative shapes such as
// the hand-drawn selection outline. The sequence is owned by whoever renders
// and is never shared through package state, so two canvases draw
// independently and tests can pin the output with a seed.
package decor

import (
	"math/rand/v2"
	"sync"
)

// Sequence yields indices in [0, n). Safe for concurrent use.
type Sequence struct {
	mu   sync.Mutex
	n    int
	next int
	rng  *rand.Rand
	perm []int
}

// NewCounter cycles 0, 1, ..., n-1, 0, ...
func NewCounter(n int) *Sequence {
	if n < 1 {
		n = 1
	}
	return &Sequence{n: n}
}

// NewShuffled walks a fresh seeded permutation of [0, n) per cycle.
// Equal seeds give equal sequences.
func NewShuffled(n int, seed uint64) *Sequence {
	s := NewCounter(n)
	s.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	return s
}

func (s *Sequence) Len() int { return s.n }

// Next returns the next variant index.
func (s *Sequence) Next() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rng == nil {
		v := s.next
		s.next = (s.next + 1) % s.n
		return v
	}
	if s.next == 0 || s.perm == nil {
		s.perm = s.rng.Perm(s.n)
		s.next = 0
	}
	v := s.perm[s.next]
	s.next = (s.next + 1) % s.n
	return v
}

// Variant maps a stable key (e.g. an item id) to an index without advancing
// the sequence, so a redraw of the same item keeps its shape.
func (s *Sequence) Variant(key string) int {
	var h uint32 = 2166136261
	for i := 0; i < len(key); i++ {
		h ^= uint32(key[i])
		h *= 16777619
	}
	return int(h % uint32(s.n))
}

// Reset starts the sequence over.
func (s *Sequence) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next = 0
	s.perm = nil
}
