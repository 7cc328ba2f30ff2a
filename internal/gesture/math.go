/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package gesture

// Transform math for drag, resize and rotate. Every function derives the new
// transform from the gesture's start snapshot and the total pointer delta,
// never from the previous frame, so rounding errors do not accumulate.

import (
	"fmt"
	"math"
	"strings"

	"gocollage/internal/domain"
	"gocollage/internal/vector"
)

// Handle identifies one of the eight resize hotspots.
type Handle string

const (
	HandleN  Handle = "n"
	HandleS  Handle = "s"
	HandleE  Handle = "e"
	HandleW  Handle = "w"
	HandleNE Handle = "ne"
	HandleNW Handle = "nw"
	HandleSE Handle = "se"
	HandleSW Handle = "sw"
)

// Handles lists all resize handles, corners first.
var Handles = []Handle{HandleNW, HandleNE, HandleSE, HandleSW, HandleN, HandleE, HandleS, HandleW}

// ParseHandle accepts a handle name case-insensitively.
func ParseHandle(s string) (Handle, error) {
	h := Handle(strings.ToLower(strings.TrimSpace(s)))
	for _, k := range Handles {
		if k == h {
			return h, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrBadHandle, s)
}

func (h Handle) Corner() bool { return len(h) == 2 }

// movesX reports whether the handle sits on the left edge, so the right edge is the anchor.
func (h Handle) movesX() bool { return h == HandleW || h == HandleNW || h == HandleSW }

// movesY reports whether the handle sits on the top edge, so the bottom edge is the anchor.
func (h Handle) movesY() bool { return h == HandleN || h == HandleNW || h == HandleNE }

// DragTo moves start by a pixel delta inside a container of the given size.
// No clamping: items may leave the container.
func DragTo(start domain.ItemTransform, container vector.Size, delta vector.Pt) domain.ItemTransform {
	px := container.ToPixels(start.Position()).Add(delta)
	pct := container.ToPercent(px)
	out := start
	out.X, out.Y = pct.X, pct.Y
	return out
}

// ResizeTo applies a pointer delta to the given handle. With lockAspect the
// start ratio is kept; corner handles then follow the dominant delta
// component. Both dimensions end up at least minSize, and handles on the
// left/top edges shift the position so the opposite edge stays put.
func ResizeTo(start domain.ItemTransform, container vector.Size, h Handle, d vector.Pt, lockAspect bool, minSize float64) domain.ItemTransform {
	if minSize <= 0 {
		minSize = domain.MinItemSize
	}
	w0, h0 := start.Width, start.Height
	ratio := 1.0
	if w0 > 0 && h0 > 0 {
		ratio = w0 / h0
	}

	w, ht := w0, h0
	switch h {
	case HandleE, HandleW:
		if h == HandleE {
			w = w0 + d.X
		} else {
			w = w0 - d.X
		}
		if lockAspect {
			w, ht = fitWidth(w, ratio, minSize)
		} else {
			w = math.Max(w, minSize)
		}
	case HandleS, HandleN:
		if h == HandleS {
			ht = h0 + d.Y
		} else {
			ht = h0 - d.Y
		}
		if lockAspect {
			w, ht = fitHeight(ht, ratio, minSize)
		} else {
			ht = math.Max(ht, minSize)
		}
	case HandleSE, HandleSW, HandleNE, HandleNW:
		// sign per corner: growing means moving away from the anchored corner
		sx, sy := 1.0, 1.0
		if h.movesX() {
			sx = -1
		}
		if h.movesY() {
			sy = -1
		}
		if lockAspect {
			w, ht = fitWidth(w0+math.Max(sx*d.X, sy*d.Y), ratio, minSize)
		} else {
			w = math.Max(w0+sx*d.X, minSize)
			ht = math.Max(h0+sy*d.Y, minSize)
		}
	default:
		return start
	}

	out := start
	out.Width, out.Height = w, ht
	if h.movesX() || h.movesY() {
		px := container.ToPixels(start.Position())
		if h.movesX() {
			px.X += w0 - w
		}
		if h.movesY() {
			px.Y += h0 - ht
		}
		pct := container.ToPercent(px)
		if h.movesX() {
			out.X = pct.X
		}
		if h.movesY() {
			out.Y = pct.Y
		}
	}
	return out
}

// fitWidth floors w first, then derives the height; when the derived height
// would fall under the floor both grow so the ratio survives.
func fitWidth(w, ratio, minSize float64) (float64, float64) {
	w = math.Max(w, minSize)
	ht := w / ratio
	if ht < minSize {
		ht = minSize
		w = ht * ratio
	}
	return w, ht
}

func fitHeight(ht, ratio, minSize float64) (float64, float64) {
	ht = math.Max(ht, minSize)
	w := ht * ratio
	if w < minSize {
		w = minSize
		ht = w / ratio
	}
	return w, ht
}

// RotateTo adds the angular delta swept around the centre to the start
// rotation, optionally snapping to step degrees.
func RotateTo(startRotation, startAngle, angle float64, snap bool, step float64) float64 {
	r := startRotation + (angle - startAngle)
	if snap {
		r = vector.SnapAngle(r, step)
	}
	return r
}
