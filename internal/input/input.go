/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package input models pointer events and the document-scope capture used
// while a gesture is in progress.
//
// A gesture that starts on one item must keep receiving moves and the final
// release even when the pointer leaves that item, so the gesture subscribes
// at document scope for its duration and releases the subscription on every
// exit path.
package input

import "gocollage/internal/vector"

// Modifiers is a bitmask of keyboard modifiers held during a pointer event.
type Modifiers uint8

const (
	ModShift Modifiers = 1 << iota
	ModCtrl
	ModAlt
	ModMeta
)

func (m Modifiers) Has(f Modifiers) bool { return m&f != 0 }

// Additive reports whether the modifiers request additive selection
// (Shift, Ctrl or Meta).
func (m Modifiers) Additive() bool { return m.Has(ModShift) || m.Has(ModCtrl) || m.Has(ModMeta) }

// Pointer is one pointer sample in screen coordinates.
type Pointer struct {
	X, Y float64
	Mods Modifiers
}

func (p Pointer) Pt() vector.Pt { return vector.Pt{X: p.X, Y: p.Y} }

// Handler receives captured pointer moves and the final release.
type Handler interface {
	PointerMove(p Pointer)
	PointerUp(p Pointer)
}

// Subscription is a scoped capture. Release is idempotent.
type Subscription interface {
	Release()
}

// Capturer hands out document-scope subscriptions.
type Capturer interface {
	Capture(h Handler) Subscription
}
