/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package input

// Document is the document-scope listener registry. Pointer events that the
// host cannot attribute to a specific item are dispatched here and fan out
// to every active capture in registration order.
//
// Document is not safe for concurrent use; it lives on the UI goroutine.
type Document struct {
	next      int
	listeners []listener
}

type listener struct {
	id int
	h  Handler
}

type subscription struct {
	doc *Document
	id  int
}

func (s *subscription) Release() {
	if s.doc == nil {
		return
	}
	s.doc.remove(s.id)
	s.doc = nil
}

// Capture registers h until the returned subscription is released.
func (d *Document) Capture(h Handler) Subscription {
	d.next++
	d.listeners = append(d.listeners, listener{id: d.next, h: h})
	return &subscription{doc: d, id: d.next}
}

// Listeners returns the number of active captures.
func (d *Document) Listeners() int { return len(d.listeners) }

// Move dispatches a pointer move to all captures.
func (d *Document) Move(p Pointer) {
	for _, l := range d.snapshot() {
		l.h.PointerMove(p)
	}
}

// Up dispatches a pointer release to all captures. Handlers usually release
// their own subscription from inside PointerUp.
func (d *Document) Up(p Pointer) {
	for _, l := range d.snapshot() {
		l.h.PointerUp(p)
	}
}

// snapshot lets handlers release themselves while being dispatched.
func (d *Document) snapshot() []listener {
	return append([]listener(nil), d.listeners...)
}

func (d *Document) remove(id int) {
	for i, l := range d.listeners {
		if l.id == id {
			d.listeners = append(d.listeners[:i], d.listeners[i+1:]...)
			return
		}
	}
}
