/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

// This file defines the data model of the collage canvas: the immutable item
// descriptors supplied by the catalog and the mutable per-item transforms.
//
// Positions are percentages of the container and sizes are absolute pixels.
// The asymmetry is deliberate: images keep their size when the container
// width changes, while their placement scales with it.

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"gocollage/internal/vector"
)

const (
	// MinItemSize is the floor in pixels for width and height.
	MinItemSize = 50.0
	// RotationSnapStep is the increment used when rotation snapping is requested.
	RotationSnapStep = 15.0
	// DefaultItemSize is the default longer edge for catalog items without an explicit size.
	DefaultItemSize = 180.0
)

// ItemDescriptor is one catalog entry. It is created when the catalog is
// loaded and never mutated afterwards.
type ItemDescriptor struct {
	ID       string  `json:"id" yaml:"id"`
	Image    string  `json:"image" yaml:"image"`
	Label    string  `json:"label,omitempty" yaml:"label,omitempty"`
	Width    float64 `json:"width" yaml:"width"`
	Height   float64 `json:"height" yaml:"height"`
	X        float64 `json:"x" yaml:"x"` // percent of container width
	Y        float64 `json:"y" yaml:"y"` // percent of container height
	Rotation float64 `json:"rotation" yaml:"rotation"`
}

// ItemTransform is the mutable geometry of one item. The JSON shape is the
// persisted schema.
type ItemTransform struct {
	ID       string  `json:"id"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Rotation float64 `json:"rotation"`
	ZIndex   int     `json:"zIndex"`
}

// Position returns the percent position.
func (t ItemTransform) Position() vector.Pt { return vector.Pt{X: t.X, Y: t.Y} }

// PixelBounds returns the unrotated box of the item inside a container of the given size.
func (t ItemTransform) PixelBounds(container vector.Size) vector.Rect {
	p := container.ToPixels(t.Position())
	return vector.R(p.X, p.Y, t.Width, t.Height)
}

// DefaultTransform derives the initial transform for a descriptor.
func DefaultTransform(d ItemDescriptor, z int) ItemTransform {
	return ItemTransform{
		ID:       d.ID,
		X:        d.X,
		Y:        d.Y,
		Width:    d.Width,
		Height:   d.Height,
		Rotation: d.Rotation,
		ZIndex:   z,
	}
}

// Catalog is an ordered, read-only list of descriptors with id lookup.
// The order doubles as the stable tie-break for equal depths.
type Catalog struct {
	items []ItemDescriptor
	index map[string]int
}

// NewCatalog validates ids (non-empty, unique) and builds the lookup.
func NewCatalog(items []ItemDescriptor) (Catalog, error) {
	c := Catalog{items: make([]ItemDescriptor, 0, len(items)), index: make(map[string]int, len(items))}
	for i, it := range items {
		id := strings.TrimSpace(it.ID)
		if id == "" {
			return Catalog{}, fmt.Errorf("catalog item %d: empty id", i)
		}
		if _, dup := c.index[id]; dup {
			return Catalog{}, fmt.Errorf("catalog item %d: duplicate id %q", i, id)
		}
		it.ID = id
		c.index[id] = len(c.items)
		c.items = append(c.items, it)
	}
	return c, nil
}

// ErrUnknownItem is returned when an id is not part of the catalog.
var ErrUnknownItem = errors.New("unknown item")

func (c Catalog) Len() int { return len(c.items) }

// Items returns a copy of the descriptors in catalog order.
func (c Catalog) Items() []ItemDescriptor { return append([]ItemDescriptor(nil), c.items...) }

// IDs returns the identities in catalog order.
func (c Catalog) IDs() []string {
	ids := make([]string, len(c.items))
	for i, it := range c.items {
		ids[i] = it.ID
	}
	return ids
}

func (c Catalog) Get(id string) (ItemDescriptor, bool) {
	i, ok := c.index[id]
	if !ok {
		return ItemDescriptor{}, false
	}
	return c.items[i], true
}

// Rank returns the catalog position of id, or Len() for unknown ids so they sort last.
func (c Catalog) Rank(id string) int {
	if i, ok := c.index[id]; ok {
		return i
	}
	return len(c.items)
}

// Without returns a catalog without the given identities, keeping order.
func (c Catalog) Without(removed map[string]bool) Catalog {
	if len(removed) == 0 {
		return c
	}
	out := Catalog{index: make(map[string]int, len(c.items))}
	for _, it := range c.items {
		if removed[it.ID] {
			continue
		}
		out.index[it.ID] = len(out.items)
		out.items = append(out.items, it)
	}
	return out
}

// DefaultTransforms derives one transform per descriptor; depth follows
// catalog order starting at 1.
func (c Catalog) DefaultTransforms() []ItemTransform {
	out := make([]ItemTransform, len(c.items))
	for i, d := range c.items {
		out[i] = DefaultTransform(d, i+1)
	}
	return out
}

// IndexOf returns the slice index of the transform with the given id, or -1.
func IndexOf(ts []ItemTransform, id string) int {
	for i := range ts {
		if ts[i].ID == id {
			return i
		}
	}
	return -1
}

// DepthOrder returns the indices of ts sorted by depth ascending. Equal
// depths keep the order given by rank (usually Catalog.Rank).
func DepthOrder(ts []ItemTransform, rank func(id string) int) []int {
	idx := make([]int, len(ts))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		ta, tb := ts[idx[a]], ts[idx[b]]
		if ta.ZIndex != tb.ZIndex {
			return ta.ZIndex < tb.ZIndex
		}
		if rank != nil {
			return rank(ta.ID) < rank(tb.ID)
		}
		return false
	})
	return idx
}

// CloneTransforms returns a shallow copy of ts.
func CloneTransforms(ts []ItemTransform) []ItemTransform {
	return append([]ItemTransform(nil), ts...)
}
