/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package canvas

import (
	"gocollage/internal/domain"
)

// TransformPatch carries the fields of one item that changed. Nil fields are
// unchanged. Removed marks an item that left the canvas.
type TransformPatch struct {
	ID       string
	X        *float64
	Y        *float64
	Width    *float64
	Height   *float64
	Rotation *float64
	ZIndex   *int
	Removed  bool
}

// Apply merges the patch into t.
func (p TransformPatch) Apply(t domain.ItemTransform) domain.ItemTransform {
	if p.X != nil {
		t.X = *p.X
	}
	if p.Y != nil {
		t.Y = *p.Y
	}
	if p.Width != nil {
		t.Width = *p.Width
	}
	if p.Height != nil {
		t.Height = *p.Height
	}
	if p.Rotation != nil {
		t.Rotation = *p.Rotation
	}
	if p.ZIndex != nil {
		t.ZIndex = *p.ZIndex
	}
	return t
}

// Diff returns the patch turning a into b, false when nothing changed.
func Diff(a, b domain.ItemTransform) (TransformPatch, bool) {
	p := TransformPatch{ID: b.ID}
	changed := false
	set := func(dst **float64, x, y float64) {
		if x != y {
			v := y
			*dst = &v
			changed = true
		}
	}
	set(&p.X, a.X, b.X)
	set(&p.Y, a.Y, b.Y)
	set(&p.Width, a.Width, b.Width)
	set(&p.Height, a.Height, b.Height)
	set(&p.Rotation, a.Rotation, b.Rotation)
	if a.ZIndex != b.ZIndex {
		z := b.ZIndex
		p.ZIndex = &z
		changed = true
	}
	return p, changed
}

// Full is the patch carrying every field of t.
func Full(t domain.ItemTransform) TransformPatch {
	x, y, w, h, r, z := t.X, t.Y, t.Width, t.Height, t.Rotation, t.ZIndex
	return TransformPatch{ID: t.ID, X: &x, Y: &y, Width: &w, Height: &h, Rotation: &r, ZIndex: &z}
}

// PersistedEvent reports a successful write of one storage key.
type PersistedEvent struct {
	Key   string
	Items int
}

type listeners[T any] struct {
	next int
	fns  []entry[T]
}

type entry[T any] struct {
	id int
	fn func(T)
}

func (l *listeners[T]) add(fn func(T)) func() {
	l.next++
	id := l.next
	l.fns = append(l.fns, entry[T]{id: id, fn: fn})
	return func() {
		for i, e := range l.fns {
			if e.id == id {
				l.fns = append(l.fns[:i:i], l.fns[i+1:]...)
				return
			}
		}
	}
}

func (l *listeners[T]) emit(v T) {
	for _, e := range append([]entry[T](nil), l.fns...) {
		e.fn(v)
	}
}

type events struct {
	sel        listeners[[]string]
	transforms listeners[TransformPatch]
	saved      listeners[PersistedEvent]
}

func (e *events) selection(ids []string)     { e.sel.emit(ids) }
func (e *events) transform(p TransformPatch) { e.transforms.emit(p) }
func (e *events) persisted(p PersistedEvent) { e.saved.emit(p) }

// OnSelectionChanged subscribes to selection changes. The callback receives
// the selection in selection order. The returned func unsubscribes.
func (c *Canvas) OnSelectionChanged(fn func(ids []string)) func() { return c.events.sel.add(fn) }

// OnTransformChanged subscribes to per-item transform patches.
func (c *Canvas) OnTransformChanged(fn func(TransformPatch)) func() {
	return c.events.transforms.add(fn)
}

// OnPersisted subscribes to successful storage writes.
func (c *Canvas) OnPersisted(fn func(PersistedEvent)) func() { return c.events.saved.add(fn) }
