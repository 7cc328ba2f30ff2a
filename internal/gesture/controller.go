/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package gesture runs the pointer-driven drag, resize and rotate state
// machine. At most one gesture is active at a time; while active it holds a
// document-scope capture so moves and the release are seen even when the
// pointer leaves the item.
package gesture

import (
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"gocollage/internal/domain"
	"gocollage/internal/input"
	applog "gocollage/internal/log"
	"gocollage/internal/vector"
)

var (
	ErrGestureActive = errors.New("gesture already active")
	ErrNoContainer   = errors.New("container not measured")
	ErrUnknownItem   = domain.ErrUnknownItem
	ErrBadHandle     = errors.New("unknown resize handle")
)

// Kind is the controller state.
type Kind int

const (
	Idle Kind = iota
	Dragging
	Resizing
	Rotating
)

func (k Kind) String() string {
	switch k {
	case Dragging:
		return "drag"
	case Resizing:
		return "resize"
	case Rotating:
		return "rotate"
	default:
		return "idle"
	}
}

// Target owns the transforms a gesture manipulates.
type Target interface {
	// Transform returns the current transform of id.
	Transform(id string) (domain.ItemTransform, bool)
	// Container returns the measured container rectangle in screen coordinates.
	Container() vector.Rect
	// Update receives every intermediate frame.
	Update(t domain.ItemTransform)
	// Commit is called once when the gesture ends.
	Commit(id string, start, final domain.ItemTransform)
}

// Options tune the controller. Zero values fall back to the package defaults.
type Options struct {
	MinSize  float64
	SnapStep float64
	Logger   *slog.Logger
}

// Session describes the active gesture. Start values are captured at
// pointer-down and never change during the gesture.
type Session struct {
	ID           string
	Kind         Kind
	ItemID       string
	Handle       Handle
	StartPointer vector.Pt
	Start        domain.ItemTransform
	Last         domain.ItemTransform

	container  vector.Rect
	center     vector.Pt
	startAngle float64
	sub        input.Subscription
}

// Controller is not safe for concurrent use.
type Controller struct {
	target Target
	doc    input.Capturer
	opts   Options
	log    *slog.Logger
	active *Session
}

func NewController(target Target, doc input.Capturer, opts Options) *Controller {
	if opts.MinSize <= 0 {
		opts.MinSize = domain.MinItemSize
	}
	if opts.SnapStep <= 0 {
		opts.SnapStep = domain.RotationSnapStep
	}
	l := opts.Logger
	if l == nil {
		l = applog.WithComponent("gesture")
	}
	return &Controller{target: target, doc: doc, opts: opts, log: l}
}

// State returns the current kind, Idle when no gesture runs.
func (c *Controller) State() Kind {
	if c.active == nil {
		return Idle
	}
	return c.active.Kind
}

// Session returns a copy of the active session.
func (c *Controller) Session() (Session, bool) {
	if c.active == nil {
		return Session{}, false
	}
	s := *c.active
	s.sub = nil
	return s, true
}

func (c *Controller) BeginDrag(id string, p input.Pointer) error {
	_, err := c.begin(Dragging, id, "", p)
	return err
}

func (c *Controller) BeginResize(id string, h Handle, p input.Pointer) error {
	if _, err := ParseHandle(string(h)); err != nil {
		return err
	}
	_, err := c.begin(Resizing, id, h, p)
	return err
}

// BeginRotate records the item centre and the initial pointer angle around it.
func (c *Controller) BeginRotate(id string, p input.Pointer) error {
	s, err := c.begin(Rotating, id, "", p)
	if err != nil {
		return err
	}
	s.center = s.Start.PixelBounds(s.container.Size()).Translate(s.container.Min()).Center()
	s.startAngle = vector.AngleDeg(s.center, p.Pt())
	return nil
}

func (c *Controller) begin(kind Kind, id string, h Handle, p input.Pointer) (*Session, error) {
	if c.active != nil {
		return nil, ErrGestureActive
	}
	t, ok := c.target.Transform(id)
	if !ok {
		return nil, ErrUnknownItem
	}
	box := c.target.Container()
	if !box.Size().Measured() {
		return nil, ErrNoContainer
	}
	s := &Session{
		ID:           uuid.NewString(),
		Kind:         kind,
		ItemID:       id,
		Handle:       h,
		StartPointer: p.Pt(),
		Start:        t,
		Last:         t,
		container:    box,
	}
	c.active = s
	s.sub = c.doc.Capture(c)
	applog.WithSession(c.log, s.ID).Debug("gesture start", "kind", kind.String(), "item", id, "handle", string(h))
	return s, nil
}

// PointerMove recomputes the transform from the start snapshot.
func (c *Controller) PointerMove(p input.Pointer) {
	s := c.active
	if s == nil {
		return
	}
	size := s.container.Size()
	delta := p.Pt().Sub(s.StartPointer)
	var next domain.ItemTransform
	switch s.Kind {
	case Dragging:
		next = DragTo(s.Start, size, delta)
	case Resizing:
		next = ResizeTo(s.Start, size, s.Handle, delta, !p.Mods.Has(input.ModShift), c.opts.MinSize)
	case Rotating:
		next = s.Start
		next.Rotation = RotateTo(s.Start.Rotation, s.startAngle, vector.AngleDeg(s.center, p.Pt()), p.Mods.Has(input.ModShift), c.opts.SnapStep)
	default:
		return
	}
	s.Last = next
	c.target.Update(next)
}

// PointerUp ends the gesture, keeping the last computed values.
func (c *Controller) PointerUp(input.Pointer) { c.end("pointer up") }

// Dispose ends any active gesture. Called when the owning canvas goes away.
func (c *Controller) Dispose() { c.end("dispose") }

func (c *Controller) end(reason string) {
	s := c.active
	if s == nil {
		return
	}
	c.active = nil
	if s.sub != nil {
		s.sub.Release()
	}
	applog.WithSession(c.log, s.ID).Debug("gesture end", "kind", s.Kind.String(), "item", s.ItemID, "reason", reason)
	c.target.Commit(s.ItemID, s.Start, s.Last)
}
