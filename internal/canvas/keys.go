/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package canvas

import (
	"strings"

	"gocollage/internal/commands"
	"gocollage/internal/input"
)

// Binding maps a key chord to a command.
type Binding struct {
	Key     string
	Primary bool // Ctrl, or Meta on macOS
	Shift   bool
	Command commands.Name
}

// Keymap lists the default key bindings. Keys use the names of the UI
// toolkit's key events, compared case-insensitively.
var Keymap = []Binding{
	{Key: "Delete", Command: commands.Delete},
	{Key: "BackSpace", Command: commands.Delete},
	{Key: "Escape", Command: commands.DeselectAll},
	{Key: "A", Primary: true, Command: commands.SelectAll},
	{Key: "]", Command: commands.BringForward},
	{Key: "[", Command: commands.SendBackward},
	{Key: "]", Primary: true, Command: commands.BringToFront},
	{Key: "[", Primary: true, Command: commands.SendToBack},
	{Key: "Z", Primary: true, Command: commands.Undo},
	{Key: "Z", Primary: true, Shift: true, Command: commands.Redo},
	{Key: "Y", Primary: true, Command: commands.Redo},
	{Key: "0", Command: commands.ResetRotation},
	{Key: "0", Primary: true, Command: commands.ResetSize},
}

// Lookup finds the command bound to key with the given modifiers.
func Lookup(key string, mods input.Modifiers) (commands.Name, bool) {
	primary := mods.Has(input.ModCtrl) || mods.Has(input.ModMeta)
	shift := mods.Has(input.ModShift)
	for _, b := range Keymap {
		if strings.EqualFold(b.Key, key) && b.Primary == primary && b.Shift == shift {
			return b.Command, true
		}
	}
	return "", false
}

// HandleKey runs the command bound to the chord. It reports whether a
// binding matched and changed something.
func (c *Canvas) HandleKey(key string, mods input.Modifiers) bool {
	name, ok := Lookup(key, mods)
	if !ok {
		return false
	}
	return c.Run(name)
}
