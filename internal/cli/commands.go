/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"gocollage/internal/canvas"
	"gocollage/internal/commands"
	"gocollage/internal/config"
	"gocollage/internal/input"
	"gocollage/internal/ui"
	"gocollage/internal/version"
)

var targetedHelp = map[commands.Name]string{
	commands.BringToFront:  "Raise the items above every other item",
	commands.BringForward:  "Swap each item with its upper neighbour",
	commands.SendBackward:  "Swap each item with its lower neighbour",
	commands.SendToBack:    "Lower the items below every other item",
	commands.Delete:        "Remove the items from the canvas",
	commands.ResetSize:     "Restore the catalog size",
	commands.ResetRotation: "Restore the catalog rotation",
}

// newTargetedCmds builds one command per selection-targeted canvas command.
// The ids become the selection, in the given order.
func newTargetedCmds(app *App) []*cobra.Command {
	out := make([]*cobra.Command, 0, len(commands.Targeted))
	for _, name := range commands.Targeted {
		out = append(out, &cobra.Command{
			Use:   string(name) + " <id>...",
			Short: targetedHelp[name],
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				c, err := app.Canvas(cmd.Context())
				if err != nil {
					return err
				}
				if err := selectIDs(c, args); err != nil {
					return err
				}
				report(cmd, string(name), c.Run(name))
				return nil
			},
		})
	}
	return out
}

func selectIDs(c *canvas.Canvas, ids []string) error {
	for _, id := range ids {
		if _, ok := c.Transform(id); !ok {
			return notFoundError{id: id}
		}
	}
	c.SelectMultiple(ids, false)
	return nil
}

func report(cmd *cobra.Command, what string, changed bool) {
	if changed {
		fmt.Fprintf(cmd.OutOrStdout(), "%s: done\n", what)
		return
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: no change\n", what)
}

func newKeyCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "key <chord> [id...]",
		Short: "Press a key chord (e.g. ctrl+], delete, ctrl+0) with the ids selected",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, mods, err := parseChord(args[0])
			if err != nil {
				return err
			}
			c, err := app.Canvas(cmd.Context())
			if err != nil {
				return err
			}
			if err := selectIDs(c, args[1:]); err != nil {
				return err
			}
			name, ok := canvas.Lookup(key, mods)
			if !ok {
				return fmt.Errorf("no binding for %q", args[0])
			}
			report(cmd, string(name), c.HandleKey(key, mods))
			return nil
		},
	}
}

// parseChord splits "ctrl+shift+z" into the key and its modifiers.
func parseChord(s string) (string, input.Modifiers, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", 0, errors.New("empty key chord")
	}
	parts := strings.Split(s, "+")
	key := parts[len(parts)-1]
	var mods input.Modifiers
	for _, p := range parts[:len(parts)-1] {
		switch strings.ToLower(strings.TrimSpace(p)) {
		case "ctrl", "control":
			mods |= input.ModCtrl
		case "shift":
			mods |= input.ModShift
		case "alt", "option":
			mods |= input.ModAlt
		case "meta", "cmd", "super":
			mods |= input.ModMeta
		default:
			return "", 0, fmt.Errorf("unknown modifier %q", p)
		}
	}
	if key == "" {
		return "", 0, fmt.Errorf("missing key in %q", s)
	}
	return key, mods, nil
}

func newResetCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Forget every stored transform and deletion",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.Canvas(cmd.Context())
			if err != nil {
				return err
			}
			report(cmd, "reset", c.ResetLayout())
			return nil
		},
	}
}

func newUICmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "ui",
		Short: "Launch the desktop canvas (build with -tags fyne)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.Canvas(cmd.Context())
			if err != nil {
				return err
			}
			return ui.Run(c, app.cfg.Canvas)
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "GoCollage %s\n", version.String())
		},
	}
}

func newPGPasswordCmd() *cobra.Command {
	var remove bool
	cmd := &cobra.Command{
		Use:   "pg-password",
		Short: "Store the Postgres password (read from stdin) in the OS keychain",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if remove {
				if err := config.SetPostgresPassword(""); err != nil {
					return fmt.Errorf("clear password: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "password removed")
				return nil
			}
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			pw := strings.TrimRight(line, "\r\n")
			if pw == "" {
				if err != nil {
					return fmt.Errorf("read password: %w", err)
				}
				return errors.New("empty password")
			}
			if err := config.SetPostgresPassword(pw); err != nil {
				return fmt.Errorf("store password: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "password stored")
			return nil
		},
	}
	cmd.Flags().BoolVar(&remove, "clear", false, "Remove the stored password")
	return cmd
}
