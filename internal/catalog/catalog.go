/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package catalog loads the ordered item descriptors a canvas starts from.
// A catalog is a YAML or JSON document with an items list, or a directory of
// images. Missing default sizes come from the image's intrinsic dimensions
// scaled so the longer edge is domain.DefaultItemSize; missing positions are
// laid out on a grid.
package catalog

import (
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	gojsonschema "github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"gocollage/internal/domain"
	applog "gocollage/internal/log"
)

//go:embed schema/catalog.schema.json
var schemaFS embed.FS

// entry mirrors domain.ItemDescriptor with optional numeric fields.
type entry struct {
	ID       string   `yaml:"id"`
	Image    string   `yaml:"image"`
	Label    string   `yaml:"label"`
	Width    *float64 `yaml:"width"`
	Height   *float64 `yaml:"height"`
	X        *float64 `yaml:"x"`
	Y        *float64 `yaml:"y"`
	Rotation *float64 `yaml:"rotation"`
}

type document struct {
	Items []entry `yaml:"items"`
}

// Load reads a catalog file or, when path is a directory, every image in it.
func Load(path string) (domain.Catalog, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return domain.Catalog{}, fmt.Errorf("open catalog: %w", err)
	}
	if fi.IsDir() {
		return FromDir(path)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return domain.Catalog{}, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(b, filepath.Dir(path))
}

// Parse decodes a YAML or JSON catalog. Relative image paths resolve
// against baseDir.
func Parse(data []byte, baseDir string) (domain.Catalog, error) {
	if err := validate(data); err != nil {
		return domain.Catalog{}, err
	}
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return domain.Catalog{}, fmt.Errorf("decode catalog: %w", err)
	}
	l := applog.WithComponent("catalog")
	items := make([]domain.ItemDescriptor, 0, len(doc.Items))
	for i, e := range doc.Items {
		img := e.Image
		if img != "" && baseDir != "" && !filepath.IsAbs(img) {
			img = filepath.Join(baseDir, img)
		}
		d := domain.ItemDescriptor{ID: e.ID, Image: img, Label: e.Label}
		d.Width, d.Height = resolveSize(e.Width, e.Height, img, l)
		gx, gy := GridPosition(i, len(doc.Items))
		d.X, d.Y = value(e.X, gx), value(e.Y, gy)
		d.Rotation = value(e.Rotation, 0)
		items = append(items, d)
	}
	return domain.NewCatalog(items)
}

// FromDir builds a catalog from the images in dir, sorted by file name.
// The id is the file name without extension.
func FromDir(dir string) (domain.Catalog, error) {
	ents, err := os.ReadDir(dir)
	if err != nil {
		return domain.Catalog{}, fmt.Errorf("read catalog dir: %w", err)
	}
	var names []string
	for _, e := range ents {
		if !e.IsDir() && IsImage(e.Name()) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	if len(names) == 0 {
		return domain.Catalog{}, errors.New("catalog dir contains no images")
	}
	l := applog.WithComponent("catalog")
	items := make([]domain.ItemDescriptor, 0, len(names))
	for i, n := range names {
		p := filepath.Join(dir, n)
		d := domain.ItemDescriptor{ID: strings.TrimSuffix(n, filepath.Ext(n)), Image: p}
		d.Width, d.Height = resolveSize(nil, nil, p, l)
		d.X, d.Y = GridPosition(i, len(names))
		items = append(items, d)
	}
	return domain.NewCatalog(items)
}

// GridPosition places item i of n on a square-ish grid, in percent.
func GridPosition(i, n int) (float64, float64) {
	if n < 1 {
		n = 1
	}
	cols := int(math.Ceil(math.Sqrt(float64(n))))
	rows := (n + cols - 1) / cols
	col, row := i%cols, i/cols
	return 5 + float64(col)*90/float64(cols), 5 + float64(row)*90/float64(rows)
}

func resolveSize(w, h *float64, img string, l *slog.Logger) (float64, float64) {
	if w != nil && h != nil {
		return *w, *h
	}
	iw, ih, err := Probe(img)
	if err != nil {
		if img != "" {
			l.Warn("image size unavailable, using default", slog.String("image", img), slog.Any("err", err))
		}
		return value(w, domain.DefaultItemSize), value(h, domain.DefaultItemSize)
	}
	switch {
	case w != nil:
		return *w, *w * float64(ih) / float64(iw)
	case h != nil:
		return *h * float64(iw) / float64(ih), *h
	default:
		return FitLongerEdge(iw, ih, domain.DefaultItemSize)
	}
}

// FitLongerEdge scales w x h so the longer edge equals edge.
func FitLongerEdge(w, h int, edge float64) (float64, float64) {
	if w <= 0 || h <= 0 {
		return edge, edge
	}
	if w >= h {
		return edge, edge * float64(h) / float64(w)
	}
	return edge * float64(w) / float64(h), edge
}

func value(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}

func validate(data []byte) error {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("decode catalog: %w", err)
	}
	if doc == nil {
		return errors.New("catalog is empty")
	}
	sb, err := schemaFS.ReadFile("schema/catalog.schema.json")
	if err != nil {
		return err
	}
	res, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(sb), gojsonschema.NewGoLoader(doc))
	if err != nil {
		return fmt.Errorf("validate catalog: %w", err)
	}
	if !res.Valid() {
		issues := make([]string, 0, len(res.Errors()))
		for _, e := range res.Errors() {
			issues = append(issues, e.String())
		}
		return fmt.Errorf("invalid catalog: %s", strings.Join(issues, "; "))
	}
	return nil
}
