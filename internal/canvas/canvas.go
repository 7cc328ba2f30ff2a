/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package canvas is the composition root of the collage engine. It owns the
// catalog, the live transforms, the selection, the gesture controller, the
// marquee, the command dispatcher, the edit history and the container
// measurement, and raises selection, transform and persisted events.
//
// A Canvas is not safe for concurrent use; drive it from the UI goroutine.
package canvas

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"gocollage/internal/commands"
	"gocollage/internal/domain"
	"gocollage/internal/gesture"
	"gocollage/internal/input"
	applog "gocollage/internal/log"
	"gocollage/internal/marquee"
	"gocollage/internal/selection"
	"gocollage/internal/storage"
	"gocollage/internal/undo"
	"gocollage/internal/vector"
)

const (
	DefaultHandleSize   = 10.0
	DefaultRotateOffset = 24.0
)

// Options configure a Canvas. A nil Store keeps everything in memory.
type Options struct {
	Name         string
	Store        *storage.TransformStore
	History      undo.Config
	HandleSize   float64
	RotateOffset float64
	Logger       *slog.Logger
	Now          func() time.Time
}

// Item is one entry of the render list.
type Item struct {
	Descriptor domain.ItemDescriptor
	Transform  domain.ItemTransform
	Selected   bool
}

type Canvas struct {
	ctx     context.Context
	opts    Options
	log     *slog.Logger
	store   *storage.TransformStore
	full    domain.Catalog
	deleted []string

	transforms []domain.ItemTransform
	container  vector.Rect

	sel      *selection.Set
	doc      *input.Document
	gestures *gesture.Controller
	band     marquee.Selector
	disp     *commands.Dispatcher
	history  *undo.Manager

	events   events
	disposed bool
}

// New loads the persisted state for cat. Identities recorded as deleted are
// left out, so the transform count always equals the live catalog size.
func New(ctx context.Context, cat domain.Catalog, opts Options) *Canvas {
	if opts.HandleSize <= 0 {
		opts.HandleSize = DefaultHandleSize
	}
	if opts.RotateOffset <= 0 {
		opts.RotateOffset = DefaultRotateOffset
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Name == "" {
		opts.Name = "default"
	}
	l := opts.Logger
	if l == nil {
		l = applog.WithComponent("canvas")
	}
	l = l.With(slog.String("canvas", opts.Name))
	store := opts.Store
	if store == nil {
		store = storage.NewTransformStore(nil)
	}

	c := &Canvas{
		ctx:     applog.ContextWithCanvas(ctx, opts.Name),
		opts:    opts,
		log:     l,
		store:   store,
		full:    cat,
		sel:     selection.New(),
		doc:     &input.Document{},
		disp:    commands.NewDispatcher(cat),
		history: undo.NewManager(opts.History),
	}
	c.gestures = gesture.NewController(target{c}, c.doc, gesture.Options{Logger: l})

	for _, id := range store.LoadDeleted(c.ctx) {
		if _, ok := cat.Get(id); ok {
			c.deleted = append(c.deleted, id)
		}
	}
	c.transforms = store.Load(c.ctx, c.live())
	l.Info("canvas ready", slog.Int("items", len(c.transforms)), slog.Int("deleted", len(c.deleted)))
	return c
}

// live is the catalog without deleted identities.
func (c *Canvas) live() domain.Catalog {
	if len(c.deleted) == 0 {
		return c.full
	}
	m := make(map[string]bool, len(c.deleted))
	for _, id := range c.deleted {
		m[id] = true
	}
	return c.full.Without(m)
}

// SetContainer records the measured container rectangle in screen coordinates.
func (c *Canvas) SetContainer(r vector.Rect) { c.container = r }

func (c *Canvas) Container() vector.Rect { return c.container }

// Catalog returns the full catalog, deleted items included.
func (c *Canvas) Catalog() domain.Catalog { return c.full }

// Deleted returns the identities removed from the canvas.
func (c *Canvas) Deleted() []string { return append([]string(nil), c.deleted...) }

// Items returns the live items bottom to top: depth ascending, ties in catalog order.
func (c *Canvas) Items() []Item {
	order := domain.DepthOrder(c.transforms, c.full.Rank)
	out := make([]Item, 0, len(order))
	for _, i := range order {
		t := c.transforms[i]
		d, _ := c.full.Get(t.ID)
		out = append(out, Item{Descriptor: d, Transform: t, Selected: c.sel.IsSelected(t.ID)})
	}
	return out
}

// Transforms returns a copy of the live transforms in stored order.
func (c *Canvas) Transforms() []domain.ItemTransform { return domain.CloneTransforms(c.transforms) }

func (c *Canvas) Transform(id string) (domain.ItemTransform, bool) {
	i := domain.IndexOf(c.transforms, id)
	if i < 0 {
		return domain.ItemTransform{}, false
	}
	return c.transforms[i], true
}

func (c *Canvas) Descriptor(id string) (domain.ItemDescriptor, bool) { return c.full.Get(id) }

// Selection returns the selected identities in selection order.
func (c *Canvas) Selection() []string { return c.sel.IDs() }

func (c *Canvas) IsSelected(id string) bool { return c.sel.IsSelected(id) }

// Gesture reports the active gesture kind.
func (c *Canvas) Gesture() gesture.Kind { return c.gestures.State() }

// Marquee returns the rubber band in container-local pixels while one is drawn.
func (c *Canvas) Marquee() (vector.Rect, bool) { return c.band.Rect() }

// CrashSnapshot implements crash.Source.
func (c *Canvas) CrashSnapshot() []domain.ItemTransform { return c.Transforms() }

// HistoryStats reports undo bookkeeping.
func (c *Canvas) HistoryStats() (bytes, undoDepth, redoDepth int) { return c.history.Stats() }

// Dispose ends any active gesture, keeping its last values, drops a
// marquee in progress and unsubscribes every listener. The canvas stays
// readable.
func (c *Canvas) Dispose() {
	if c.disposed {
		return
	}
	c.gestures.Dispose()
	c.band.Cancel()
	c.events = events{}
	c.disposed = true
	c.log.Debug("canvas disposed")
}

// state is the undo snapshot payload.
type state struct {
	Transforms []domain.ItemTransform `json:"transforms"`
	Deleted    []string               `json:"deleted,omitempty"`
}

func (c *Canvas) snapshot(label string, ts []domain.ItemTransform, deleted []string) undo.Snapshot {
	b, err := json.Marshal(state{Transforms: ts, Deleted: deleted})
	if err != nil {
		c.log.Warn("encode undo snapshot failed", slog.Any("err", err))
	}
	return undo.Snapshot{Label: label, Blob: b, TS: c.opts.Now()}
}

func (c *Canvas) current(label string) undo.Snapshot {
	return c.snapshot(label, c.transforms, c.deleted)
}

func (c *Canvas) persist() {
	if c.store.Save(c.ctx, c.transforms) {
		c.events.persisted(PersistedEvent{Key: storage.CurrentKey, Items: len(c.transforms)})
	}
}

func (c *Canvas) persistDeleted() {
	if c.store.SaveDeleted(c.ctx, c.deleted) {
		c.events.persisted(PersistedEvent{Key: storage.DeletedKey, Items: len(c.deleted)})
	}
}

// replaceAll swaps in ts and emits a patch per changed or removed item.
func (c *Canvas) replaceAll(ts []domain.ItemTransform) {
	old := c.transforms
	c.transforms = ts
	for _, t := range ts {
		if i := domain.IndexOf(old, t.ID); i >= 0 {
			if p, ok := Diff(old[i], t); ok {
				c.events.transform(p)
			}
			continue
		}
		c.events.transform(Full(t))
	}
	for _, t := range old {
		if domain.IndexOf(ts, t.ID) < 0 {
			c.events.transform(TransformPatch{ID: t.ID, Removed: true})
		}
	}
}

// target adapts the canvas to gesture.Target without widening its API.
type target struct{ c *Canvas }

func (t target) Transform(id string) (domain.ItemTransform, bool) { return t.c.Transform(id) }
func (t target) Container() vector.Rect                           { return t.c.container }

func (t target) Update(next domain.ItemTransform) {
	c := t.c
	i := domain.IndexOf(c.transforms, next.ID)
	if i < 0 {
		return
	}
	prev := c.transforms[i]
	c.transforms[i] = next
	if p, ok := Diff(prev, next); ok {
		c.events.transform(p)
	}
}

// Commit records the pre-gesture state and persists once per gesture.
func (t target) Commit(id string, start, final domain.ItemTransform) {
	c := t.c
	if start == final {
		return
	}
	pre := domain.CloneTransforms(c.transforms)
	if i := domain.IndexOf(pre, id); i >= 0 {
		pre[i] = start
	}
	c.history.Record(c.snapshot("gesture:"+id, pre, c.deleted))
	c.persist()
}
