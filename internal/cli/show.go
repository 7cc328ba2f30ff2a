/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"gocollage/internal/canvas"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5f9fb0"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6c757d"))
	cellStyle   = lipgloss.NewStyle().PaddingRight(2)
)

func newShowCmd(app *App) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the layout bottom to top",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.Canvas(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				b, err := json.MarshalIndent(c.Transforms(), "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(b))
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), renderTable(c.Items(), c.Deleted()))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the stored transform records as JSON")
	return cmd
}

func renderTable(items []canvas.Item, deleted []string) string {
	header := []string{"ID", "X%", "Y%", "W", "H", "ROT", "Z", "IMAGE"}
	rows := make([][]string, 0, len(items))
	for _, it := range items {
		t := it.Transform
		rows = append(rows, []string{
			t.ID,
			strconv.FormatFloat(t.X, 'f', 2, 64),
			strconv.FormatFloat(t.Y, 'f', 2, 64),
			strconv.FormatFloat(t.Width, 'f', 1, 64),
			strconv.FormatFloat(t.Height, 'f', 1, 64),
			strconv.FormatFloat(t.Rotation, 'f', 1, 64),
			strconv.Itoa(t.ZIndex),
			it.Descriptor.Image,
		})
	}
	widths := make([]int, len(header))
	for _, r := range append([][]string{header}, rows...) {
		for i, cell := range r {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}
	line := func(r []string, style lipgloss.Style) string {
		cells := make([]string, len(r))
		for i, cell := range r {
			cells[i] = cellStyle.Width(widths[i] + 2).Render(style.Render(cell))
		}
		return strings.TrimRight(lipgloss.JoinHorizontal(lipgloss.Top, cells...), " ")
	}

	var b strings.Builder
	b.WriteString(line(header, headerStyle))
	b.WriteByte('\n')
	for _, r := range rows {
		b.WriteString(line(r, lipgloss.NewStyle()))
		b.WriteByte('\n')
	}
	if len(deleted) > 0 {
		b.WriteString(mutedStyle.Render("deleted: " + strings.Join(deleted, ", ")))
		b.WriteByte('\n')
	}
	return b.String()
}
