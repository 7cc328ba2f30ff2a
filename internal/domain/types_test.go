package domain

import (
	"encoding/json"
	"strings"
	"testing"

	"gocollage/internal/vector"
)

func sampleCatalog(t *testing.T) Catalog {
	t.Helper()
	c, err := NewCatalog([]ItemDescriptor{
		{ID: "a", Image: "a.png", Width: 180, Height: 120, X: 10, Y: 20, Rotation: -5},
		{ID: "b", Image: "b.png", Width: 100, Height: 100, X: 50, Y: 50},
		{ID: "c", Image: "c.png", Width: 90, Height: 160, X: 70, Y: 5, Rotation: 12},
	})
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}
	return c
}

func TestNewCatalogRejectsBadIDs(t *testing.T) {
	if _, err := NewCatalog([]ItemDescriptor{{ID: " "}}); err == nil {
		t.Fatalf("expected error for empty id")
	}
	_, err := NewCatalog([]ItemDescriptor{{ID: "x"}, {ID: "x"}})
	if err == nil || !strings.Contains(err.Error(), "duplicate") {
		t.Fatalf("expected duplicate error, got %v", err)
	}
}

func TestDefaultTransformsFollowCatalog(t *testing.T) {
	c := sampleCatalog(t)
	ts := c.DefaultTransforms()
	if len(ts) != c.Len() {
		t.Fatalf("cardinality mismatch: %d vs %d", len(ts), c.Len())
	}
	for i, tr := range ts {
		d, _ := c.Get(tr.ID)
		if tr.ZIndex != i+1 || tr.X != d.X || tr.Y != d.Y || tr.Width != d.Width || tr.Height != d.Height || tr.Rotation != d.Rotation {
			t.Fatalf("transform %d does not mirror descriptor: %+v vs %+v", i, tr, d)
		}
	}
}

func TestWithoutKeepsOrder(t *testing.T) {
	c := sampleCatalog(t).Without(map[string]bool{"b": true})
	if got := strings.Join(c.IDs(), ","); got != "a,c" {
		t.Fatalf("ids = %s", got)
	}
	if c.Rank("c") != 1 || c.Rank("b") != 2 {
		t.Fatalf("unexpected ranks")
	}
}

func TestDepthOrderStableTieBreak(t *testing.T) {
	c := sampleCatalog(t)
	ts := []ItemTransform{{ID: "c", ZIndex: 2}, {ID: "b", ZIndex: 2}, {ID: "a", ZIndex: 5}}
	order := DepthOrder(ts, c.Rank)
	var ids []string
	for _, i := range order {
		ids = append(ids, ts[i].ID)
	}
	if got := strings.Join(ids, ","); got != "b,c,a" {
		t.Fatalf("order = %s", got)
	}
}

func TestPixelBounds(t *testing.T) {
	tr := ItemTransform{X: 50, Y: 25, Width: 100, Height: 80}
	r := tr.PixelBounds(vector.Size{W: 1000, H: 400})
	if r != vector.R(500, 100, 100, 80) {
		t.Fatalf("bounds = %+v", r)
	}
}

func TestTransformJSONShape(t *testing.T) {
	b, err := json.Marshal(ItemTransform{ID: "x", X: 10, Y: 10, Width: 180, Height: 180, ZIndex: 1})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"id":"x","x":10,"y":10,"width":180,"height":180,"rotation":0,"zIndex":1}`
	if string(b) != want {
		t.Fatalf("json = %s", b)
	}
}
