package catalog

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/bmp"
)

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.NRGBA{R: 255, A: 255})
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func writeBMP(t *testing.T, path string, w, h int) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := bmp.Encode(f, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatal(err)
	}
}

func TestParseYAML(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "wide.png"), 400, 200)
	writeBMP(t, filepath.Join(dir, "tall.bmp"), 50, 100)
	doc := []byte(`
items:
  - id: wide
    image: wide.png
    label: Wide one
  - id: tall
    image: tall.bmp
    x: 40
    y: 60
    rotation: -12
  - id: fixed
    image: missing.png
    width: 120
    height: 80
  - id: half
    image: wide.png
    width: 100
  - id: lost
    image: missing.png
`)
	cat, err := Parse(doc, dir)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cat.Len() != 5 {
		t.Fatalf("len = %d", cat.Len())
	}
	check := func(id string, w, h float64) {
		t.Helper()
		d, ok := cat.Get(id)
		if !ok || d.Width != w || d.Height != h {
			t.Fatalf("%s: got %+v, want %vx%v", id, d, w, h)
		}
	}
	check("wide", 180, 90)
	check("tall", 90, 180)
	check("fixed", 120, 80)
	check("half", 100, 50)
	check("lost", 180, 180)

	tall, _ := cat.Get("tall")
	if tall.X != 40 || tall.Y != 60 || tall.Rotation != -12 {
		t.Fatalf("explicit position lost: %+v", tall)
	}
	wide, _ := cat.Get("wide")
	if wide.Image != filepath.Join(dir, "wide.png") || wide.Label != "Wide one" {
		t.Fatalf("image path not resolved: %+v", wide)
	}
	if wide.X != 5 || wide.Y != 5 {
		t.Fatalf("grid position = (%v,%v)", wide.X, wide.Y)
	}
}

func TestParseJSON(t *testing.T) {
	cat, err := Parse([]byte(`{"items":[{"id":"a","width":60,"height":70,"x":1,"y":2},{"id":"b","width":50,"height":50}]}`), "")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if ids := cat.IDs(); len(ids) != 2 || ids[0] != "a" || ids[1] != "b" {
		t.Fatalf("ids = %v", ids)
	}
}

func TestParseRejects(t *testing.T) {
	for name, doc := range map[string]string{
		"empty":        ``,
		"no items":     `title: x`,
		"missing id":   `items: [{image: a.png}]`,
		"duplicate id": `items: [{id: a, width: 60, height: 60}, {id: a, width: 60, height: 60}]`,
		"zero width":   `items: [{id: a, width: 0, height: 60}]`,
		"bad yaml":     `items: [`,
	} {
		if _, err := Parse([]byte(doc), ""); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestLoadFileAndDir(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "b.png"), 10, 10)
	writePNG(t, filepath.Join(dir, "a.png"), 30, 10)
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	cat, err := Load(dir)
	if err != nil {
		t.Fatalf("load dir: %v", err)
	}
	if ids := cat.IDs(); len(ids) != 2 || ids[0] != "a" || ids[1] != "b" {
		t.Fatalf("ids = %v", ids)
	}
	a, _ := cat.Get("a")
	if a.Width != 180 || a.Height != 60 {
		t.Fatalf("a = %+v", a)
	}

	file := filepath.Join(dir, "catalog.yaml")
	if err := os.WriteFile(file, []byte("items:\n  - id: one\n    image: a.png\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cat, err = Load(file)
	if err != nil {
		t.Fatalf("load file: %v", err)
	}
	if one, _ := cat.Get("one"); one.Width != 180 || one.Height != 60 {
		t.Fatalf("one = %+v", one)
	}
	if _, err := Load(filepath.Join(dir, "nope.yaml")); err == nil {
		t.Fatalf("expected error")
	}
	if _, err := FromDir(t.TempDir()); err == nil {
		t.Fatalf("expected error for empty dir")
	}
}

func TestGridPosition(t *testing.T) {
	seen := map[[2]float64]bool{}
	for i := 0; i < 7; i++ {
		x, y := GridPosition(i, 7)
		if x < 5 || x >= 95 || y < 5 || y >= 95 {
			t.Fatalf("item %d off grid: %v,%v", i, x, y)
		}
		k := [2]float64{x, y}
		if seen[k] {
			t.Fatalf("item %d overlaps", i)
		}
		seen[k] = true
	}
}

func TestThumbnail(t *testing.T) {
	p := filepath.Join(t.TempDir(), "img.png")
	writePNG(t, p, 64, 32)
	img, err := Thumbnail(p, 16, 8)
	if err != nil {
		t.Fatalf("thumbnail: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 16 || b.Dy() != 8 {
		t.Fatalf("bounds = %v", b)
	}
	if _, _, err := Probe(""); err == nil {
		t.Fatalf("expected error")
	}
	if w, h := FitLongerEdge(0, 5, 180); w != 180 || h != 180 {
		t.Fatalf("degenerate fit = %vx%v", w, h)
	}
}
