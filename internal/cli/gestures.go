/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package cli

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"gocollage/internal/canvas"
	"gocollage/internal/domain"
	"gocollage/internal/gesture"
	"gocollage/internal/input"
	"gocollage/internal/vector"
)

// maxRotateStep keeps each simulated rotation well inside the range where
// the pointer angle does not wrap around.
const maxRotateStep = 90.0

type notFoundError struct{ id string }

func (e notFoundError) Error() string { return fmt.Sprintf("item not found: %s", e.id) }

func parseFloats(args []string) ([]float64, error) {
	out := make([]float64, len(args))
	for i, s := range args {
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", s)
		}
		out[i] = v
	}
	return out, nil
}

// pointer converts a container-local point to a screen pointer.
func pointer(c *canvas.Canvas, local vector.Pt, mods input.Modifiers) input.Pointer {
	p := local.Add(c.Container().Min())
	return input.Pointer{X: p.X, Y: p.Y, Mods: mods}
}

func writeTransform(w io.Writer, t domain.ItemTransform) {
	fmt.Fprintf(w, "%s x=%.2f%% y=%.2f%% w=%.1f h=%.1f rot=%.1f z=%d\n", t.ID, t.X, t.Y, t.Width, t.Height, t.Rotation, t.ZIndex)
}

func printResult(cmd *cobra.Command, c *canvas.Canvas, id string) {
	if t, ok := c.Transform(id); ok {
		writeTransform(cmd.OutOrStdout(), t)
	}
}

func newDragCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "drag <id> <dx> <dy>",
		Short: "Move an item by a pixel delta",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := parseFloats(args[1:])
			if err != nil {
				return err
			}
			c, err := app.Canvas(cmd.Context())
			if err != nil {
				return err
			}
			id := args[0]
			box, ok := c.Bounds(id)
			if !ok {
				return notFoundError{id: id}
			}
			start := box.Center()
			if !c.PointerDownItem(id, pointer(c, start, 0)) {
				return fmt.Errorf("drag %s: gesture not started", id)
			}
			end := pointer(c, start.Add(vector.Pt{X: d[0], Y: d[1]}), 0)
			c.PointerMove(end)
			c.PointerUp(end)
			printResult(cmd, c, id)
			return nil
		},
	}
}

func newResizeCmd(app *App) *cobra.Command {
	var free bool
	cmd := &cobra.Command{
		Use:   "resize <id> <handle> <dx> <dy>",
		Short: "Drag a resize handle (n s e w ne nw se sw) by a pixel delta",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := gesture.ParseHandle(args[1])
			if err != nil {
				return err
			}
			d, err := parseFloats(args[2:])
			if err != nil {
				return err
			}
			c, err := app.Canvas(cmd.Context())
			if err != nil {
				return err
			}
			id := args[0]
			if !c.Select(id, false) && !c.IsSelected(id) {
				return notFoundError{id: id}
			}
			spot, _ := c.Spot(id, h, false)
			var mods input.Modifiers
			if free {
				mods = input.ModShift
			}
			if !c.PointerDownHandle(id, h, pointer(c, spot.Center, 0)) {
				return fmt.Errorf("resize %s: gesture not started", id)
			}
			end := pointer(c, spot.Center.Add(vector.Pt{X: d[0], Y: d[1]}), mods)
			c.PointerMove(end)
			c.PointerUp(end)
			printResult(cmd, c, id)
			return nil
		},
	}
	cmd.Flags().BoolVar(&free, "free", false, "Resize without keeping the aspect ratio (Shift)")
	return cmd
}

func newRotateCmd(app *App) *cobra.Command {
	var snap bool
	cmd := &cobra.Command{
		Use:   "rotate <id> <degrees>",
		Short: "Turn an item with the rotation hotspot",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := parseFloats(args[1:])
			if err != nil {
				return err
			}
			c, err := app.Canvas(cmd.Context())
			if err != nil {
				return err
			}
			id := args[0]
			if !c.Select(id, false) && !c.IsSelected(id) {
				return notFoundError{id: id}
			}
			// only the final step snaps, so the result is the snapped total
			for remaining := v[0]; math.Abs(remaining) > 1e-9; {
				step := math.Max(-maxRotateStep, math.Min(maxRotateStep, remaining))
				remaining -= step
				var mods input.Modifiers
				if snap && math.Abs(remaining) <= 1e-9 {
					mods = input.ModShift
				}
				if err := rotateOnce(c, id, step, mods); err != nil {
					return err
				}
			}
			printResult(cmd, c, id)
			return nil
		},
	}
	cmd.Flags().BoolVar(&snap, "snap", false, "Snap to 15 degree steps (Shift)")
	return cmd
}

func rotateOnce(c *canvas.Canvas, id string, deg float64, mods input.Modifiers) error {
	spot, _ := c.Spot(id, "", true)
	box, ok := c.Bounds(id)
	if !ok {
		return notFoundError{id: id}
	}
	if !c.PointerDownRotate(id, pointer(c, spot.Center, 0)) {
		return fmt.Errorf("rotate %s: gesture not started", id)
	}
	end := pointer(c, vector.RotateAbout(box.Center(), deg).Apply(spot.Center), mods)
	c.PointerMove(end)
	c.PointerUp(end)
	return nil
}

func newMarqueeCmd(app *App) *cobra.Command {
	var additive bool
	cmd := &cobra.Command{
		Use:   "marquee <x0> <y0> <x1> <y1>",
		Short: "Rubber-band select in container pixels and print the selection",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := parseFloats(args)
			if err != nil {
				return err
			}
			c, err := app.Canvas(cmd.Context())
			if err != nil {
				return err
			}
			var mods input.Modifiers
			if additive {
				mods = input.ModShift
			}
			if !c.PointerDownEmpty(pointer(c, vector.Pt{X: v[0], Y: v[1]}, mods)) {
				return fmt.Errorf("marquee not started")
			}
			end := pointer(c, vector.Pt{X: v[2], Y: v[3]}, 0)
			c.PointerMove(end)
			c.PointerUp(end)
			writeSelection(cmd.OutOrStdout(), c.Selection())
			return nil
		},
	}
	cmd.Flags().BoolVar(&additive, "additive", false, "Add to the selection (Shift)")
	return cmd
}

func writeSelection(w io.Writer, ids []string) {
	if len(ids) == 0 {
		fmt.Fprintln(w, "selected: (none)")
		return
	}
	fmt.Fprintf(w, "selected: %s\n", strings.Join(ids, " "))
}
