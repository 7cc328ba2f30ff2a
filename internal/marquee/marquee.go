/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package marquee implements rubber-band selection over empty canvas space.
// Coordinates are container-local pixels.
package marquee

import (
	"gocollage/internal/domain"
	"gocollage/internal/vector"
)

// Selector tracks one rubber-band session at a time.
type Selector struct {
	active   bool
	start    vector.Pt
	current  vector.Pt
	additive bool
}

// Begin starts a session at p. additive is fixed for the whole session.
func (s *Selector) Begin(p vector.Pt, additive bool) {
	s.active = true
	s.start, s.current = p, p
	s.additive = additive
}

// Move updates the current corner. Ignored when no session is active.
func (s *Selector) Move(p vector.Pt) {
	if s.active {
		s.current = p
	}
}

func (s *Selector) Active() bool   { return s.active }
func (s *Selector) Additive() bool { return s.active && s.additive }

// Rect is the axis-aligned box spanned by the start and current points.
func (s *Selector) Rect() (vector.Rect, bool) {
	if !s.active {
		return vector.Rect{}, false
	}
	return vector.FromPoints(s.start, s.current), true
}

// End closes the session and returns the ids of all transforms whose pixel
// box overlaps the rubber band, in the order given, and the additive flag
// recorded at Begin. An unmeasured container yields no hits.
func (s *Selector) End(ts []domain.ItemTransform, container vector.Size) ([]string, bool) {
	if !s.active {
		return nil, false
	}
	r := vector.FromPoints(s.start, s.current)
	additive := s.additive
	*s = Selector{}
	return Hits(r, ts, container), additive
}

// Cancel drops the session without computing hits.
func (s *Selector) Cancel() { *s = Selector{} }

// Hits lists the ids whose unrotated pixel box intersects r.
func Hits(r vector.Rect, ts []domain.ItemTransform, container vector.Size) []string {
	if !container.Measured() {
		return nil
	}
	var out []string
	for _, t := range ts {
		if r.Intersects(t.PixelBounds(container)) {
			out = append(out, t.ID)
		}
	}
	return out
}
