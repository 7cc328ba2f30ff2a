/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ui

import (
	"image"
	"image/color"
	"image/draw"
	"math"
	"sync"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"gocollage/internal/canvas"
	"gocollage/internal/catalog"
	"gocollage/internal/decor"
	"gocollage/internal/domain"
	"gocollage/internal/vector"
)

// Palette holds the decorative colours used for placeholders and selection
// outlines. Items pick a colour through a decor.Sequence.
var Palette = []color.NRGBA{
	{R: 220, G: 120, B: 120, A: 255},
	{R: 120, G: 180, B: 220, A: 255},
	{R: 240, G: 190, B: 90, A: 255},
	{R: 130, G: 200, B: 140, A: 255},
	{R: 180, G: 140, B: 210, A: 255},
}

// Background is the canvas fill.
var Background = color.NRGBA{R: 30, G: 30, B: 34, A: 255}

// ImageCache loads catalog images once, scaled to a bounded edge. Failed
// loads are remembered and render as placeholders.
type ImageCache struct {
	mu      sync.Mutex
	maxEdge int
	images  map[string]image.Image
}

func NewImageCache(maxEdge int) *ImageCache {
	if maxEdge <= 0 {
		maxEdge = 512
	}
	return &ImageCache{maxEdge: maxEdge, images: make(map[string]image.Image)}
}

// Get returns the image for d, or nil when it cannot be decoded.
func (c *ImageCache) Get(d domain.ItemDescriptor) image.Image {
	c.mu.Lock()
	defer c.mu.Unlock()
	if img, ok := c.images[d.ID]; ok {
		return img
	}
	var img image.Image
	if d.Image != "" {
		if w, h, err := catalog.Probe(d.Image); err == nil {
			tw, th := catalog.FitLongerEdge(w, h, float64(min(c.maxEdge, max(w, h))))
			img, _ = catalog.Thumbnail(d.Image, int(math.Round(tw)), int(math.Round(th)))
		}
	}
	c.images[d.ID] = img
	return img
}

// Compose paints the items bottom to top into dst. scale maps container
// pixels to dst pixels. Items without an image are drawn as solid boxes in
// their decorative colour.
func Compose(dst draw.Image, items []canvas.Item, container vector.Size, scale float64, images func(domain.ItemDescriptor) image.Image, dec *decor.Sequence) {
	draw.Draw(dst, dst.Bounds(), image.NewUniform(Background), image.Point{}, draw.Src)
	if !container.Measured() {
		return
	}
	for _, it := range items {
		t := it.Transform
		box := t.PixelBounds(container)
		var src image.Image
		if images != nil {
			src = images(it.Descriptor)
		}
		sr := image.Rect(0, 0, int(math.Ceil(box.W)), int(math.Ceil(box.H)))
		if src == nil {
			src = image.NewUniform(Palette[dec.Variant(t.ID)])
		} else {
			sr = src.Bounds()
		}
		if sr.Empty() {
			continue
		}
		m := itemMatrix(box, t.Rotation, sr, scale)
		xdraw.ApproxBiLinear.Transform(dst, f64.Aff3{m.A, m.C, m.E, m.B, m.D, m.F}, src, sr, xdraw.Over, nil)
	}
}

// itemMatrix maps source pixels onto the rotated item box in dst pixels.
func itemMatrix(box vector.Rect, rotation float64, sr image.Rectangle, scale float64) vector.Affine2D {
	c := box.Center()
	sw, sh := float64(sr.Dx()), float64(sr.Dy())
	return vector.Scale(scale, scale).
		Mul(vector.RotateAbout(c, rotation)).
		Mul(vector.Translate(c.X, c.Y)).
		Mul(vector.Scale(box.W/sw, box.H/sh)).
		Mul(vector.Translate(-float64(sr.Min.X)-sw/2, -float64(sr.Min.Y)-sh/2))
}

// Outline returns the four corners of the rotated item box, clockwise from
// the top-left, in container pixels.
func Outline(t domain.ItemTransform, container vector.Size) [4]vector.Pt {
	box := t.PixelBounds(container)
	rot := vector.RotateAbout(box.Center(), t.Rotation)
	mn, mx := box.Min(), box.Max()
	return [4]vector.Pt{
		rot.Apply(mn),
		rot.Apply(vector.Pt{X: mx.X, Y: mn.Y}),
		rot.Apply(mx),
		rot.Apply(vector.Pt{X: mn.X, Y: mx.Y}),
	}
}
