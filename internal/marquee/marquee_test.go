package marquee

import (
	"reflect"
	"testing"

	"gocollage/internal/domain"
	"gocollage/internal/vector"
)

var container = vector.Size{W: 1000, H: 1000}

func items() []domain.ItemTransform {
	return []domain.ItemTransform{
		{ID: "inside", X: 10, Y: 10, Width: 50, Height: 50},
		{ID: "edge", X: 28, Y: 10, Width: 100, Height: 100},
		{ID: "outside", X: 80, Y: 80, Width: 60, Height: 60},
		{ID: "around", X: 0, Y: 0, Width: 900, Height: 900},
		{ID: "below", X: 10, Y: 40, Width: 50, Height: 50},
	}
}

func TestSelectorHits(t *testing.T) {
	var s Selector
	s.Begin(vector.Pt{X: 300, Y: 300}, true)
	s.Move(vector.Pt{X: 50, Y: 50})
	r, ok := s.Rect()
	if !ok || r != vector.R(50, 50, 250, 250) {
		t.Fatalf("rect = %+v %v", r, ok)
	}
	hits, additive := s.End(items(), container)
	if !additive {
		t.Fatalf("additive flag lost")
	}
	want := []string{"inside", "edge", "around"}
	if !reflect.DeepEqual(hits, want) {
		t.Fatalf("hits = %v, want %v", hits, want)
	}
	if s.Active() {
		t.Fatalf("session still active")
	}
}

func TestContainment(t *testing.T) {
	band := vector.R(200, 200, 400, 400)
	ts := []domain.ItemTransform{
		{ID: "in1", X: 25, Y: 25, Width: 50, Height: 50},
		{ID: "in2", X: 50, Y: 30, Width: 80, Height: 120},
		{ID: "out1", X: 0, Y: 0, Width: 100, Height: 100},
		{ID: "out2", X: 70, Y: 70, Width: 50, Height: 50},
	}
	hits := Hits(band, ts, container)
	got := map[string]bool{}
	for _, h := range hits {
		got[h] = true
	}
	for _, tr := range ts {
		box := tr.PixelBounds(container)
		if band.ContainsRect(box) && !got[tr.ID] {
			t.Fatalf("%s fully inside but not hit", tr.ID)
		}
		if !band.Intersects(box) && got[tr.ID] {
			t.Fatalf("%s outside but hit", tr.ID)
		}
	}
	if len(hits) != 2 {
		t.Fatalf("hits = %v", hits)
	}
}

func TestUnmeasuredContainer(t *testing.T) {
	var s Selector
	s.Begin(vector.Pt{}, false)
	s.Move(vector.Pt{X: 1000, Y: 1000})
	if hits, _ := s.End(items(), vector.Size{}); len(hits) != 0 {
		t.Fatalf("expected no hits, got %v", hits)
	}
}

func TestIdleSelector(t *testing.T) {
	var s Selector
	s.Move(vector.Pt{X: 5, Y: 5})
	if _, ok := s.Rect(); ok {
		t.Fatalf("idle selector has a rect")
	}
	if hits, additive := s.End(items(), container); hits != nil || additive {
		t.Fatalf("idle end = %v %v", hits, additive)
	}
	s.Begin(vector.Pt{X: 1, Y: 1}, true)
	s.Cancel()
	if s.Active() || s.Additive() {
		t.Fatalf("cancel left state")
	}
}
