/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package commands implements the selection-targeted depth and reset
// commands. Every command takes the current transforms and the selection in
// selection order and returns a new slice; the input is never modified.
// An empty selection is a no-op and reports changed == false.
package commands

import (
	"gocollage/internal/domain"
)

// Name identifies a command for logging, key bindings and the CLI.
type Name string

const (
	BringToFront  Name = "front"
	BringForward  Name = "forward"
	SendBackward  Name = "backward"
	SendToBack    Name = "back"
	Delete        Name = "delete"
	ResetSize     Name = "reset-size"
	ResetRotation Name = "reset-rotation"
	SelectAll     Name = "select-all"
	DeselectAll   Name = "deselect-all"
	Undo          Name = "undo"
	Redo          Name = "redo"
)

// Selection-targeted commands, in menu order.
var Targeted = []Name{BringToFront, BringForward, SendBackward, SendToBack, Delete, ResetSize, ResetRotation}

// Dispatcher resolves descriptor defaults and catalog tie-breaks.
type Dispatcher struct {
	catalog domain.Catalog
}

func NewDispatcher(c domain.Catalog) *Dispatcher { return &Dispatcher{catalog: c} }

// SetCatalog replaces the catalog used for defaults, e.g. after a reset.
func (d *Dispatcher) SetCatalog(c domain.Catalog) { d.catalog = c }

// Apply runs a targeted command by name. Delete returns the shrunk slice.
func (d *Dispatcher) Apply(name Name, ts []domain.ItemTransform, sel []string) ([]domain.ItemTransform, bool) {
	switch name {
	case BringToFront:
		return d.BringToFront(ts, sel)
	case SendToBack:
		return d.SendToBack(ts, sel)
	case BringForward:
		return d.BringForward(ts, sel)
	case SendBackward:
		return d.SendBackward(ts, sel)
	case Delete:
		out, removed := d.Delete(ts, sel)
		return out, len(removed) > 0
	case ResetSize:
		return d.ResetSize(ts, sel)
	case ResetRotation:
		return d.ResetRotation(ts, sel)
	}
	return ts, false
}

// BringToFront assigns max+1, max+2, ... to the selection in selection order.
func (d *Dispatcher) BringToFront(ts []domain.ItemTransform, sel []string) ([]domain.ItemTransform, bool) {
	if len(sel) == 0 || len(ts) == 0 {
		return ts, false
	}
	out := domain.CloneTransforms(ts)
	next := maxDepth(out) + 1
	changed := false
	for _, id := range sel {
		if i := domain.IndexOf(out, id); i >= 0 {
			changed = changed || out[i].ZIndex != next
			out[i].ZIndex = next
			next++
		}
	}
	return out, changed
}

// SendToBack assigns min-k .. min-1 to the k selected items in selection
// order, so the first selected ends up lowest.
func (d *Dispatcher) SendToBack(ts []domain.ItemTransform, sel []string) ([]domain.ItemTransform, bool) {
	if len(sel) == 0 || len(ts) == 0 {
		return ts, false
	}
	out := domain.CloneTransforms(ts)
	var idx []int
	for _, id := range sel {
		if i := domain.IndexOf(out, id); i >= 0 {
			idx = append(idx, i)
		}
	}
	next := minDepth(out) - len(idx)
	changed := false
	for _, i := range idx {
		changed = changed || out[i].ZIndex != next
		out[i].ZIndex = next
		next++
	}
	return out, changed
}

// BringForward swaps each selected item's depth with the item one step
// above it in the depth order taken before any swap. Adjacent selected items
// moving together may not both advance.
func (d *Dispatcher) BringForward(ts []domain.ItemTransform, sel []string) ([]domain.ItemTransform, bool) {
	return d.step(ts, sel, 1)
}

// SendBackward is the mirror of BringForward.
func (d *Dispatcher) SendBackward(ts []domain.ItemTransform, sel []string) ([]domain.ItemTransform, bool) {
	return d.step(ts, sel, -1)
}

func (d *Dispatcher) step(ts []domain.ItemTransform, sel []string, dir int) ([]domain.ItemTransform, bool) {
	if len(sel) == 0 || len(ts) < 2 {
		return ts, false
	}
	out := domain.CloneTransforms(ts)
	order := domain.DepthOrder(out, d.catalog.Rank)
	pos := make(map[string]int, len(order))
	for p, i := range order {
		pos[out[i].ID] = p
	}
	changed := false
	for _, id := range sel {
		p, ok := pos[id]
		if !ok {
			continue
		}
		n := p + dir
		if n < 0 || n >= len(order) {
			continue
		}
		a, b := order[p], order[n]
		if out[a].ZIndex != out[b].ZIndex {
			changed = true
		}
		out[a].ZIndex, out[b].ZIndex = out[b].ZIndex, out[a].ZIndex
	}
	return out, changed
}

// Delete drops the selected transforms and returns the ids actually removed.
func (d *Dispatcher) Delete(ts []domain.ItemTransform, sel []string) ([]domain.ItemTransform, []string) {
	if len(sel) == 0 {
		return ts, nil
	}
	drop := make(map[string]bool, len(sel))
	for _, id := range sel {
		drop[id] = true
	}
	out := make([]domain.ItemTransform, 0, len(ts))
	var removed []string
	for _, t := range ts {
		if drop[t.ID] {
			removed = append(removed, t.ID)
			continue
		}
		out = append(out, t)
	}
	if len(removed) == 0 {
		return ts, nil
	}
	return out, removed
}

// ResetSize restores the descriptor's default width and height.
func (d *Dispatcher) ResetSize(ts []domain.ItemTransform, sel []string) ([]domain.ItemTransform, bool) {
	return d.reset(ts, sel, func(t *domain.ItemTransform, def domain.ItemDescriptor) {
		t.Width, t.Height = def.Width, def.Height
	})
}

// ResetRotation restores the descriptor's default rotation.
func (d *Dispatcher) ResetRotation(ts []domain.ItemTransform, sel []string) ([]domain.ItemTransform, bool) {
	return d.reset(ts, sel, func(t *domain.ItemTransform, def domain.ItemDescriptor) {
		t.Rotation = def.Rotation
	})
}

func (d *Dispatcher) reset(ts []domain.ItemTransform, sel []string, apply func(*domain.ItemTransform, domain.ItemDescriptor)) ([]domain.ItemTransform, bool) {
	if len(sel) == 0 {
		return ts, false
	}
	out := domain.CloneTransforms(ts)
	changed := false
	for _, id := range sel {
		i := domain.IndexOf(out, id)
		def, ok := d.catalog.Get(id)
		if i < 0 || !ok {
			continue
		}
		before := out[i]
		apply(&out[i], def)
		changed = changed || before != out[i]
	}
	return out, changed
}

func maxDepth(ts []domain.ItemTransform) int {
	m := ts[0].ZIndex
	for _, t := range ts[1:] {
		if t.ZIndex > m {
			m = t.ZIndex
		}
	}
	return m
}

func minDepth(ts []domain.ItemTransform) int {
	m := ts[0].ZIndex
	for _, t := range ts[1:] {
		if t.ZIndex < m {
			m = t.ZIndex
		}
	}
	return m
}
