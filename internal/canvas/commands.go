/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package canvas

import (
	"encoding/json"
	"log/slog"

	"gocollage/internal/commands"
	"gocollage/internal/domain"
	"gocollage/internal/undo"
)

// Select selects id; additive toggles it instead of replacing the selection.
func (c *Canvas) Select(id string, additive bool) bool {
	if _, ok := c.Transform(id); !ok {
		return false
	}
	changed := c.sel.Select(id, additive)
	c.setSelection(changed)
	return changed
}

// SelectMultiple selects the live ids among ids.
func (c *Canvas) SelectMultiple(ids []string, additive bool) bool {
	known := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := c.Transform(id); ok {
			known = append(known, id)
		}
	}
	changed := c.sel.SelectMultiple(known, additive)
	c.setSelection(changed)
	return changed
}

// SelectAll selects every live item in catalog order.
func (c *Canvas) SelectAll() bool {
	changed := c.sel.SelectAll(c.live().IDs())
	c.setSelection(changed)
	return changed
}

func (c *Canvas) DeselectAll() bool {
	changed := c.sel.DeselectAll()
	c.setSelection(changed)
	return changed
}

func (c *Canvas) Deselect(id string) bool {
	changed := c.sel.Deselect(id)
	c.setSelection(changed)
	return changed
}

func (c *Canvas) BringToFront() bool    { return c.Run(commands.BringToFront) }
func (c *Canvas) BringForward() bool    { return c.Run(commands.BringForward) }
func (c *Canvas) SendBackward() bool    { return c.Run(commands.SendBackward) }
func (c *Canvas) SendToBack() bool      { return c.Run(commands.SendToBack) }
func (c *Canvas) DeleteSelection() bool { return c.Run(commands.Delete) }
func (c *Canvas) ResetSize() bool       { return c.Run(commands.ResetSize) }
func (c *Canvas) ResetRotation() bool   { return c.Run(commands.ResetRotation) }

// Run executes a command by name. Targeted commands act on the selection,
// record one undo step and persist once. Commands are refused while a
// gesture or marquee is active.
func (c *Canvas) Run(name commands.Name) bool {
	switch name {
	case commands.SelectAll:
		return c.SelectAll()
	case commands.DeselectAll:
		return c.DeselectAll()
	case commands.Undo:
		return c.Undo()
	case commands.Redo:
		return c.Redo()
	}
	if c.busy() {
		return false
	}
	sel := c.sel.IDs()
	out, changed := c.disp.Apply(name, c.transforms, sel)
	if !changed {
		return false
	}
	c.history.Record(c.current(string(name)))
	if name == commands.Delete {
		c.deleteSelected(out, sel)
		return true
	}
	c.replaceAll(out)
	c.persist()
	c.log.Debug("command applied", slog.String("command", string(name)), slog.Int("selected", len(sel)))
	return true
}

func (c *Canvas) deleteSelected(out []domain.ItemTransform, sel []string) {
	for _, id := range sel {
		if domain.IndexOf(out, id) < 0 && domain.IndexOf(c.transforms, id) >= 0 {
			c.deleted = append(c.deleted, id)
		}
	}
	c.replaceAll(out)
	c.setSelection(c.sel.DeselectAll())
	c.persistDeleted()
	c.persist()
	c.log.Info("items deleted", slog.Int("count", len(sel)), slog.Int("remaining", len(out)))
}

// Undo restores the state before the most recent edit.
func (c *Canvas) Undo() bool {
	if c.busy() {
		return false
	}
	s, ok := c.history.Undo(c.current("undo"))
	if !ok {
		return false
	}
	return c.restore(s)
}

// Redo reapplies the most recently undone edit.
func (c *Canvas) Redo() bool {
	if c.busy() {
		return false
	}
	s, ok := c.history.Redo(c.current("redo"))
	if !ok {
		return false
	}
	return c.restore(s)
}

func (c *Canvas) CanUndo() bool { return c.history.CanUndo() }
func (c *Canvas) CanRedo() bool { return c.history.CanRedo() }

func (c *Canvas) restore(s undo.Snapshot) bool {
	var st state
	if err := json.Unmarshal(s.Blob, &st); err != nil {
		c.log.Warn("decode undo snapshot failed", slog.String("label", s.Label), slog.Any("err", err))
		return false
	}
	deletedChanged := !sameIDs(c.deleted, st.Deleted)
	c.deleted = st.Deleted
	c.replaceAll(st.Transforms)
	c.setSelection(c.sel.Retain(func(id string) bool { return domain.IndexOf(c.transforms, id) >= 0 }))
	if deletedChanged {
		c.persistDeleted()
	}
	c.persist()
	c.log.Debug("history restored", slog.String("label", s.Label))
	return true
}

// ResetLayout clears every persisted key and restores catalog defaults,
// deleted items included. The reset itself can be undone.
func (c *Canvas) ResetLayout() bool {
	if c.busy() {
		return false
	}
	c.history.Record(c.current("reset"))
	if !c.store.Reset(c.ctx) {
		c.log.Warn("reset did not clear storage")
	}
	c.deleted = nil
	c.replaceAll(c.full.DefaultTransforms())
	c.setSelection(c.sel.Retain(func(id string) bool { return domain.IndexOf(c.transforms, id) >= 0 }))
	c.log.Info("layout reset", slog.Int("items", len(c.transforms)))
	return true
}

func sameIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
