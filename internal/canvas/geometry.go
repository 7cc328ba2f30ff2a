/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package canvas

import (
	"gocollage/internal/gesture"
	"gocollage/internal/vector"
)

// Spot is one interactive hotspot of a selected item, in container-local
// pixels. Rotate marks the rotation hotspot above the top edge.
type Spot struct {
	ID     string
	Handle gesture.Handle
	Rotate bool
	Center vector.Pt
	Rect   vector.Rect
}

// Bounds returns the unrotated box of id in container-local pixels.
func (c *Canvas) Bounds(id string) (vector.Rect, bool) {
	t, ok := c.Transform(id)
	if !ok || !c.container.Size().Measured() {
		return vector.Rect{}, false
	}
	return t.PixelBounds(c.container.Size()), true
}

// HitTest returns the top-most item whose rotated box contains the
// container-local point.
func (c *Canvas) HitTest(p vector.Pt) (string, bool) {
	items := c.Items()
	for i := len(items) - 1; i >= 0; i-- {
		t := items[i].Transform
		box, ok := c.Bounds(t.ID)
		if !ok {
			return "", false
		}
		q := vector.RotateAbout(box.Center(), -t.Rotation).Apply(p)
		if box.Contains(q) {
			return t.ID, true
		}
	}
	return "", false
}

// Handles returns the eight resize handles and the rotation hotspot of id,
// rotated with the item.
func (c *Canvas) Handles(id string) ([]Spot, bool) {
	t, _ := c.Transform(id)
	box, ok := c.Bounds(id)
	if !ok {
		return nil, false
	}
	rot := vector.RotateAbout(box.Center(), t.Rotation)
	half := c.opts.HandleSize / 2
	spot := func(p vector.Pt) (vector.Pt, vector.Rect) {
		q := rot.Apply(p)
		return q, vector.R(q.X-half, q.Y-half, c.opts.HandleSize, c.opts.HandleSize)
	}
	mid := box.Center()
	minP, maxP := box.Min(), box.Max()
	local := map[gesture.Handle]vector.Pt{
		gesture.HandleNW: minP,
		gesture.HandleN:  {X: mid.X, Y: minP.Y},
		gesture.HandleNE: {X: maxP.X, Y: minP.Y},
		gesture.HandleE:  {X: maxP.X, Y: mid.Y},
		gesture.HandleSE: maxP,
		gesture.HandleS:  {X: mid.X, Y: maxP.Y},
		gesture.HandleSW: {X: minP.X, Y: maxP.Y},
		gesture.HandleW:  {X: minP.X, Y: mid.Y},
	}
	out := make([]Spot, 0, len(gesture.Handles)+1)
	for _, h := range gesture.Handles {
		ctr, r := spot(local[h])
		out = append(out, Spot{ID: id, Handle: h, Center: ctr, Rect: r})
	}
	ctr, r := spot(vector.Pt{X: mid.X, Y: minP.Y - c.opts.RotateOffset})
	out = append(out, Spot{ID: id, Rotate: true, Center: ctr, Rect: r})
	return out, true
}

// HandleAt returns the hotspot of a selected item under the container-local
// point, top-most item first.
func (c *Canvas) HandleAt(p vector.Pt) (Spot, bool) {
	items := c.Items()
	for i := len(items) - 1; i >= 0; i-- {
		if !items[i].Selected {
			continue
		}
		spots, ok := c.Handles(items[i].Transform.ID)
		if !ok {
			return Spot{}, false
		}
		for _, s := range spots {
			if s.Rect.Contains(p) {
				return s, true
			}
		}
	}
	return Spot{}, false
}

// Spot returns the hotspot of id for h, or the rotation hotspot when rotate is set.
func (c *Canvas) Spot(id string, h gesture.Handle, rotate bool) (Spot, bool) {
	spots, ok := c.Handles(id)
	if !ok {
		return Spot{}, false
	}
	for _, s := range spots {
		if s.Rotate == rotate && (rotate || s.Handle == h) {
			return s, true
		}
	}
	return Spot{}, false
}
