//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package ui

import (
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	fcanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"gocollage/internal/canvas"
	"gocollage/internal/commands"
	"gocollage/internal/config"
	"gocollage/internal/decor"
	"gocollage/internal/input"
	applog "gocollage/internal/log"
	"gocollage/internal/vector"
	"gocollage/internal/version"
)

// Run opens a window around the canvas and blocks until it is closed.
func Run(c *canvas.Canvas, cfg config.CanvasConfig) error {
	l := applog.WithComponent("ui")
	l.Info("starting UI", slog.String("version", version.String()))
	defer c.Dispose()

	fyneApp := app.NewWithID("gocollage")
	w := fyneApp.NewWindow("GoCollage")
	// Restore window size from preferences (with sane minimums)
	prefs := fyneApp.Preferences()
	winW := prefs.IntWithFallback("window.width", int(cfg.Width))
	winH := prefs.IntWithFallback("window.height", int(cfg.Height))
	if winW < 640 {
		winW = 640
	}
	if winH < 480 {
		winH = 480
	}
	w.Resize(fyne.NewSize(float32(winW), float32(winH)))

	status := widget.NewLabel("Ready")
	cc := NewCollageCanvas(c, decor.NewShuffled(len(Palette), uint64(time.Now().UnixNano())))

	c.OnSelectionChanged(func(ids []string) {
		status.SetText(fmt.Sprintf("%d selected", len(ids)))
	})
	c.OnPersisted(func(e canvas.PersistedEvent) {
		status.SetText(fmt.Sprintf("Saved %s (%d) at %s", e.Key, e.Items, time.Now().Format("15:04:05")))
	})

	run := func(name commands.Name) func() {
		return func() {
			if c.Run(name) {
				l.Debug("command", slog.String("name", string(name)))
			}
			cc.Refresh()
		}
	}
	toolbar := container.NewHBox(
		widget.NewButton("Front", run(commands.BringToFront)),
		widget.NewButton("Forward", run(commands.BringForward)),
		widget.NewButton("Backward", run(commands.SendBackward)),
		widget.NewButton("Back", run(commands.SendToBack)),
		widget.NewSeparator(),
		widget.NewButton("Reset size", run(commands.ResetSize)),
		widget.NewButton("Reset rotation", run(commands.ResetRotation)),
		widget.NewButton("Delete", run(commands.Delete)),
		widget.NewSeparator(),
		widget.NewButton("Undo", run(commands.Undo)),
		widget.NewButton("Redo", run(commands.Redo)),
		widget.NewButton("Reset layout", func() {
			c.ResetLayout()
			cc.Refresh()
		}),
	)

	w.SetContent(container.NewBorder(toolbar, status, nil, nil, cc))
	bindKeys(w, cc)
	w.SetOnClosed(func() {
		sz := w.Canvas().Size()
		prefs.SetInt("window.width", int(sz.Width))
		prefs.SetInt("window.height", int(sz.Height))
		l.Info("window closed")
	})
	w.ShowAndRun()
	return nil
}

// bindKeys registers the canvas key map: chords with the primary modifier as
// shortcuts for both Ctrl and Super, plain keys through the typed-key hook.
func bindKeys(w fyne.Window, cc *CollageCanvas) {
	for _, b := range canvas.Keymap {
		if !b.Primary {
			continue
		}
		for _, primary := range []fyne.KeyModifier{fyne.KeyModifierControl, fyne.KeyModifierSuper} {
			mod := primary
			mods := input.ModCtrl
			if primary == fyne.KeyModifierSuper {
				mods = input.ModMeta
			}
			if b.Shift {
				mod |= fyne.KeyModifierShift
				mods |= input.ModShift
			}
			key := b.Key
			w.Canvas().AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyName(key), Modifier: mod}, func(fyne.Shortcut) {
				cc.Key(key, mods)
			})
		}
	}
	w.Canvas().SetOnTypedKey(func(ev *fyne.KeyEvent) { cc.Key(string(ev.Name), 0) })
}

// CollageCanvas renders a canvas.Canvas and forwards pointer input to it.
// Widget coordinates double as screen coordinates; the container origin is (0,0).
type CollageCanvas struct {
	widget.BaseWidget
	c      *canvas.Canvas
	dec    *decor.Sequence
	images *ImageCache
	last   input.Pointer
}

func NewCollageCanvas(c *canvas.Canvas, dec *decor.Sequence) *CollageCanvas {
	cc := &CollageCanvas{c: c, dec: dec, images: NewImageCache(512)}
	cc.ExtendBaseWidget(cc)
	c.OnTransformChanged(func(canvas.TransformPatch) { cc.Refresh() })
	c.OnSelectionChanged(func([]string) { cc.Refresh() })
	return cc
}

func modsOf(m fyne.KeyModifier) input.Modifiers {
	var out input.Modifiers
	if m&fyne.KeyModifierShift != 0 {
		out |= input.ModShift
	}
	if m&fyne.KeyModifierControl != 0 {
		out |= input.ModCtrl
	}
	if m&fyne.KeyModifierAlt != 0 {
		out |= input.ModAlt
	}
	if m&fyne.KeyModifierSuper != 0 {
		out |= input.ModMeta
	}
	return out
}

// currentMods reads the live modifier state; drag events do not carry it.
func currentMods(fallback input.Modifiers) input.Modifiers {
	if a := fyne.CurrentApp(); a != nil {
		if d, ok := a.Driver().(desktop.Driver); ok {
			return modsOf(d.CurrentKeyModifiers())
		}
	}
	return fallback
}

func pointerAt(pos fyne.Position, mods input.Modifiers) input.Pointer {
	return input.Pointer{X: float64(pos.X), Y: float64(pos.Y), Mods: mods}
}

// MouseDown implements desktop.Mouseable.
func (cc *CollageCanvas) MouseDown(e *desktop.MouseEvent) {
	if e.Button != desktop.MouseButtonPrimary {
		return
	}
	cc.last = pointerAt(e.Position, modsOf(e.Modifier))
	cc.c.PointerDown(cc.last)
	cc.Refresh()
}

// MouseUp implements desktop.Mouseable.
func (cc *CollageCanvas) MouseUp(e *desktop.MouseEvent) {
	cc.release(pointerAt(e.Position, modsOf(e.Modifier)))
}

// Dragged implements fyne.Draggable.
func (cc *CollageCanvas) Dragged(e *fyne.DragEvent) {
	cc.last = pointerAt(e.Position, currentMods(cc.last.Mods))
	cc.c.PointerMove(cc.last)
	if _, ok := cc.c.Marquee(); ok {
		cc.Refresh()
	}
}

func (cc *CollageCanvas) DragEnd() { cc.release(cc.last) }

func (cc *CollageCanvas) release(p input.Pointer) {
	cc.c.PointerUp(p)
	cc.Refresh()
}

// Key runs the command bound to the chord.
func (cc *CollageCanvas) Key(key string, mods input.Modifiers) {
	if cc.c.HandleKey(key, mods) {
		cc.Refresh()
	}
}

func (cc *CollageCanvas) CreateRenderer() fyne.WidgetRenderer {
	r := &collageRenderer{cc: cc}
	r.raster = fcanvas.NewRaster(r.paint)
	r.band = fcanvas.NewRectangle(color.NRGBA{R: 0, G: 170, B: 255, A: 40})
	r.band.StrokeColor = color.NRGBA{R: 0, G: 170, B: 255, A: 255}
	r.band.StrokeWidth = 1
	r.band.Hide()
	r.rebuild()
	return r
}

type collageRenderer struct {
	cc      *CollageCanvas
	raster  *fcanvas.Raster
	band    *fcanvas.Rectangle
	objects []fyne.CanvasObject
}

func (r *collageRenderer) Destroy()                     {}
func (r *collageRenderer) Objects() []fyne.CanvasObject { return r.objects }
func (r *collageRenderer) MinSize() fyne.Size           { return fyne.NewSize(320, 240) }

func (r *collageRenderer) Refresh() {
	r.rebuild()
	r.raster.Refresh()
	fcanvas.Refresh(r.cc)
}

func (r *collageRenderer) Layout(size fyne.Size) {
	r.cc.c.SetContainer(vector.R(0, 0, float64(size.Width), float64(size.Height)))
	r.raster.Move(fyne.NewPos(0, 0))
	r.raster.Resize(size)
	r.rebuild()
}

// paint composes the items at the raster's pixel density.
func (r *collageRenderer) paint(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	scale := 1.0
	if sz := r.cc.Size(); sz.Width > 0 {
		scale = float64(w) / float64(sz.Width)
	}
	Compose(img, r.cc.c.Items(), r.cc.c.Container().Size(), scale, r.cc.images.Get, r.cc.dec)
	return img
}

func toPos(p vector.Pt) fyne.Position { return fyne.NewPos(float32(p.X), float32(p.Y)) }

// rebuild recreates the selection overlay: a rotated outline per selected
// item, its handles, the rotation hotspot and the marquee band.
func (r *collageRenderer) rebuild() {
	c := r.cc.c
	size := c.Container().Size()
	objs := []fyne.CanvasObject{r.raster}
	if size.Measured() {
		for _, it := range c.Items() {
			if !it.Selected {
				continue
			}
			col := Palette[r.cc.dec.Variant(it.Transform.ID)]
			pts := Outline(it.Transform, size)
			for i := range pts {
				ln := fcanvas.NewLine(col)
				ln.StrokeWidth = 2
				ln.Position1 = toPos(pts[i])
				ln.Position2 = toPos(pts[(i+1)%len(pts)])
				objs = append(objs, ln)
			}
			spots, _ := c.Handles(it.Transform.ID)
			for _, s := range spots {
				var o fyne.CanvasObject
				if s.Rotate {
					o = fcanvas.NewCircle(color.NRGBA{R: 255, G: 170, B: 0, A: 255})
				} else {
					h := fcanvas.NewRectangle(color.White)
					h.StrokeColor = col
					h.StrokeWidth = 1
					o = h
				}
				o.Resize(fyne.NewSize(float32(s.Rect.W), float32(s.Rect.H)))
				o.Move(toPos(s.Rect.Min()))
				objs = append(objs, o)
			}
		}
	}
	if b, ok := c.Marquee(); ok {
		r.band.Move(toPos(b.Min()))
		r.band.Resize(fyne.NewSize(float32(b.W), float32(b.H)))
		r.band.Show()
	} else {
		r.band.Hide()
	}
	r.objects = append(objs, r.band)
}
