/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package canvas

import (
	"log/slog"

	"gocollage/internal/gesture"
	"gocollage/internal/input"
	"gocollage/internal/vector"
)

// Pointer coordinates are screen pixels; the canvas subtracts the container
// origin where it needs container-local values.

// PointerDownItem handles a press on an item body. Shift toggles the item in
// the selection; a plain press on an unselected item replaces the selection.
// A drag starts only when the item ends up selected.
func (c *Canvas) PointerDownItem(id string, p input.Pointer) bool {
	if c.busy() {
		return false
	}
	if _, ok := c.Transform(id); !ok {
		return false
	}
	if p.Mods.Has(input.ModShift) {
		c.setSelection(c.sel.Select(id, true))
	} else if !c.sel.IsSelected(id) {
		c.setSelection(c.sel.Select(id, false))
	}
	if !c.sel.IsSelected(id) {
		return false
	}
	return c.begin(c.gestures.BeginDrag(id, p), "drag", id)
}

// PointerDownHandle starts a resize on a selected item.
func (c *Canvas) PointerDownHandle(id string, h gesture.Handle, p input.Pointer) bool {
	if c.busy() || !c.sel.IsSelected(id) {
		return false
	}
	return c.begin(c.gestures.BeginResize(id, h, p), "resize", id)
}

// PointerDownRotate starts a rotation on a selected item.
func (c *Canvas) PointerDownRotate(id string, p input.Pointer) bool {
	if c.busy() || !c.sel.IsSelected(id) {
		return false
	}
	return c.begin(c.gestures.BeginRotate(id, p), "rotate", id)
}

// PointerDownEmpty starts a marquee on the empty canvas. Shift, Ctrl or Meta
// make it additive.
func (c *Canvas) PointerDownEmpty(p input.Pointer) bool {
	if c.busy() || !c.container.Size().Measured() {
		return false
	}
	c.band.Begin(c.local(p), p.Mods.Additive())
	return true
}

// PointerDown routes a press by hit testing: handles of selected items
// first, then item bodies top-most first, then the empty canvas.
func (c *Canvas) PointerDown(p input.Pointer) bool {
	local := c.local(p)
	if hit, ok := c.HandleAt(local); ok {
		if hit.Rotate {
			return c.PointerDownRotate(hit.ID, p)
		}
		return c.PointerDownHandle(hit.ID, hit.Handle, p)
	}
	if id, ok := c.HitTest(local); ok {
		return c.PointerDownItem(id, p)
	}
	return c.PointerDownEmpty(p)
}

// PointerMove feeds the marquee or the captured gesture.
func (c *Canvas) PointerMove(p input.Pointer) {
	if c.band.Active() {
		c.band.Move(c.local(p))
		return
	}
	c.doc.Move(p)
}

// PointerUp ends the marquee or the gesture. A marquee that hit nothing
// leaves the selection unchanged.
func (c *Canvas) PointerUp(p input.Pointer) {
	if c.band.Active() {
		c.band.Move(c.local(p))
		hits, additive := c.band.End(c.transforms, c.container.Size())
		if len(hits) > 0 {
			c.setSelection(c.sel.SelectMultiple(hits, additive))
		}
		return
	}
	c.doc.Up(p)
}

func (c *Canvas) busy() bool {
	return c.disposed || c.gestures.State() != gesture.Idle || c.band.Active()
}

func (c *Canvas) local(p input.Pointer) vector.Pt { return p.Pt().Sub(c.container.Min()) }

func (c *Canvas) begin(err error, kind, id string) bool {
	if err != nil {
		c.log.Debug("gesture rejected", slog.String("kind", kind), slog.String("item", id), slog.Any("err", err))
		return false
	}
	return true
}

func (c *Canvas) setSelection(changed bool) {
	if changed {
		c.events.selection(c.sel.IDs())
	}
}
