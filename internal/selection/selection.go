/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package selection tracks which canvas items are currently selected.
//
// The set remembers insertion order because bulk depth commands assign new
// depths in selection order. It does not validate identities; callers drop
// stale ones with Retain when the item collection changes.
package selection

// Set is an ordered set of item identities. The zero value is an empty set.
// Every mutator reports whether the set changed.
type Set struct {
	ids   []string
	index map[string]int
}

// New returns a set containing ids (duplicates ignored).
func New(ids ...string) *Set {
	s := &Set{}
	s.replace(ids)
	return s
}

// Select replaces the set with {id}, or toggles id when additive is true.
func (s *Set) Select(id string, additive bool) bool {
	if !additive {
		if len(s.ids) == 1 && s.ids[0] == id {
			return false
		}
		s.replace([]string{id})
		return true
	}
	if s.IsSelected(id) {
		s.remove(id)
	} else {
		s.add(id)
	}
	return true
}

// SelectMultiple unions ids into the set when additive, otherwise replaces it.
func (s *Set) SelectMultiple(ids []string, additive bool) bool {
	if !additive {
		return s.replace(ids)
	}
	changed := false
	for _, id := range ids {
		if s.add(id) {
			changed = true
		}
	}
	return changed
}

// SelectAll replaces the set with ids.
func (s *Set) SelectAll(ids []string) bool { return s.replace(ids) }

// DeselectAll empties the set.
func (s *Set) DeselectAll() bool {
	if len(s.ids) == 0 {
		return false
	}
	s.ids = nil
	s.index = nil
	return true
}

// Deselect removes id if present.
func (s *Set) Deselect(id string) bool { return s.remove(id) }

// IsSelected reports membership.
func (s *Set) IsSelected(id string) bool {
	_, ok := s.index[id]
	return ok
}

// IDs returns a copy of the members in insertion order.
func (s *Set) IDs() []string { return append([]string(nil), s.ids...) }

func (s *Set) Len() int { return len(s.ids) }

// Retain drops every member for which keep returns false.
func (s *Set) Retain(keep func(id string) bool) bool {
	var kept []string
	for _, id := range s.ids {
		if keep(id) {
			kept = append(kept, id)
		}
	}
	if len(kept) == len(s.ids) {
		return false
	}
	s.replace(kept)
	return true
}

func (s *Set) add(id string) bool {
	if s.IsSelected(id) {
		return false
	}
	if s.index == nil {
		s.index = make(map[string]int)
	}
	s.index[id] = len(s.ids)
	s.ids = append(s.ids, id)
	return true
}

func (s *Set) remove(id string) bool {
	i, ok := s.index[id]
	if !ok {
		return false
	}
	s.ids = append(s.ids[:i], s.ids[i+1:]...)
	delete(s.index, id)
	for j := i; j < len(s.ids); j++ {
		s.index[s.ids[j]] = j
	}
	return true
}

// replace sets the members to ids and reports whether anything differs.
func (s *Set) replace(ids []string) bool {
	var next []string
	seen := make(map[string]int, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = len(next)
		next = append(next, id)
	}
	same := len(next) == len(s.ids)
	if same {
		for i := range next {
			if next[i] != s.ids[i] {
				same = false
				break
			}
		}
	}
	s.ids = next
	s.index = seen
	return !same
}
