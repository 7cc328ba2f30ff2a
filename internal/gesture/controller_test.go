package gesture

import (
	"errors"
	"math"
	"testing"

	"gocollage/internal/domain"
	"gocollage/internal/input"
	applog "gocollage/internal/log"
	"gocollage/internal/vector"
)

type fakeTarget struct {
	items   map[string]domain.ItemTransform
	box     vector.Rect
	frames  int
	commits []string
}

func (f *fakeTarget) Transform(id string) (domain.ItemTransform, bool) {
	t, ok := f.items[id]
	return t, ok
}
func (f *fakeTarget) Container() vector.Rect { return f.box }
func (f *fakeTarget) Update(t domain.ItemTransform) {
	f.items[t.ID] = t
	f.frames++
}
func (f *fakeTarget) Commit(id string, _, _ domain.ItemTransform) { f.commits = append(f.commits, id) }

func newFixture(t domain.ItemTransform) (*fakeTarget, *input.Document, *Controller) {
	ft := &fakeTarget{items: map[string]domain.ItemTransform{t.ID: t}, box: vector.R(0, 0, 1000, 1000)}
	doc := &input.Document{}
	return ft, doc, NewController(ft, doc, Options{Logger: applog.Discard()})
}

func near(a, b float64) bool { return vector.NearlyEqual(a, b, 1e-9) }

func TestDragScenario(t *testing.T) {
	ft, doc, c := newFixture(domain.ItemTransform{ID: "a", X: 50, Y: 50, Width: 100, Height: 100, ZIndex: 1})
	if err := c.BeginDrag("a", input.Pointer{X: 600, Y: 600}); err != nil {
		t.Fatalf("begin: %v", err)
	}
	if doc.Listeners() != 1 {
		t.Fatalf("expected capture, got %d listeners", doc.Listeners())
	}
	doc.Move(input.Pointer{X: 620, Y: 590})
	doc.Up(input.Pointer{X: 620, Y: 590})
	got := ft.items["a"]
	if !near(got.X, 52) || !near(got.Y, 49) {
		t.Fatalf("position = (%v,%v), want (52,49)", got.X, got.Y)
	}
	if got.Width != 100 || got.Height != 100 || got.ZIndex != 1 {
		t.Fatalf("drag changed other fields: %+v", got)
	}
	if doc.Listeners() != 0 {
		t.Fatalf("capture not released")
	}
	if c.State() != Idle || len(ft.commits) != 1 {
		t.Fatalf("state=%v commits=%v", c.State(), ft.commits)
	}
}

func TestDragUsesStartSnapshot(t *testing.T) {
	ft, doc, c := newFixture(domain.ItemTransform{ID: "a", X: 10, Y: 10, Width: 100, Height: 100})
	_ = c.BeginDrag("a", input.Pointer{X: 0, Y: 0})
	for i := 1; i <= 50; i++ {
		doc.Move(input.Pointer{X: float64(i), Y: float64(i)})
	}
	doc.Move(input.Pointer{X: 100, Y: -100})
	got := ft.items["a"]
	if !near(got.X, 20) || !near(got.Y, 0) {
		t.Fatalf("got (%v,%v)", got.X, got.Y)
	}
	if ft.frames != 51 {
		t.Fatalf("frames = %d", ft.frames)
	}
}

func TestExclusiveGesture(t *testing.T) {
	ft, doc, c := newFixture(domain.ItemTransform{ID: "a", Width: 100, Height: 100})
	ft.items["b"] = domain.ItemTransform{ID: "b", Width: 100, Height: 100}
	if err := c.BeginDrag("a", input.Pointer{}); err != nil {
		t.Fatal(err)
	}
	if err := c.BeginRotate("b", input.Pointer{}); !errors.Is(err, ErrGestureActive) {
		t.Fatalf("expected ErrGestureActive, got %v", err)
	}
	if doc.Listeners() != 1 {
		t.Fatalf("second begin must not capture")
	}
	c.Dispose()
	if doc.Listeners() != 0 || c.State() != Idle {
		t.Fatalf("dispose did not release")
	}
	c.Dispose()
	if len(ft.commits) != 1 {
		t.Fatalf("commits = %v", ft.commits)
	}
}

func TestBeginErrors(t *testing.T) {
	ft, doc, c := newFixture(domain.ItemTransform{ID: "a", Width: 100, Height: 100})
	if err := c.BeginDrag("nope", input.Pointer{}); !errors.Is(err, ErrUnknownItem) {
		t.Fatalf("expected ErrUnknownItem, got %v", err)
	}
	if err := c.BeginResize("a", Handle("x"), input.Pointer{}); !errors.Is(err, ErrBadHandle) {
		t.Fatalf("expected ErrBadHandle, got %v", err)
	}
	ft.box = vector.R(0, 0, 0, 0)
	if err := c.BeginDrag("a", input.Pointer{}); !errors.Is(err, ErrNoContainer) {
		t.Fatalf("expected ErrNoContainer, got %v", err)
	}
	if doc.Listeners() != 0 || c.State() != Idle {
		t.Fatalf("failed begin left state behind")
	}
}

func TestResizeCornerKeepsAspect(t *testing.T) {
	start := domain.ItemTransform{ID: "a", X: 10, Y: 10, Width: 200, Height: 100}
	size := vector.Size{W: 1000, H: 1000}
	for _, h := range []Handle{HandleNW, HandleNE, HandleSE, HandleSW} {
		for _, d := range []vector.Pt{{X: 30, Y: -70}, {X: -400, Y: 10}, {X: 5, Y: 90}} {
			got := ResizeTo(start, size, h, d, true, domain.MinItemSize)
			if !near(got.Width/got.Height, 2) {
				t.Fatalf("%s %v: ratio %v", h, d, got.Width/got.Height)
			}
			if got.Width < 50 || got.Height < 50 {
				t.Fatalf("%s %v: below floor %vx%v", h, d, got.Width, got.Height)
			}
		}
	}
}

func TestResizeDominantDelta(t *testing.T) {
	start := domain.ItemTransform{ID: "a", X: 0, Y: 0, Width: 100, Height: 100}
	size := vector.Size{W: 1000, H: 1000}
	got := ResizeTo(start, size, HandleSE, vector.Pt{X: 10, Y: 40}, true, 50)
	if !near(got.Width, 140) || !near(got.Height, 140) {
		t.Fatalf("se: %vx%v", got.Width, got.Height)
	}
	got = ResizeTo(start, size, HandleNW, vector.Pt{X: -30, Y: -10}, true, 50)
	if !near(got.Width, 130) || !near(got.Height, 130) {
		t.Fatalf("nw: %vx%v", got.Width, got.Height)
	}
}

func TestResizeAnchorsOppositeEdge(t *testing.T) {
	start := domain.ItemTransform{ID: "a", X: 20, Y: 20, Width: 100, Height: 100}
	size := vector.Size{W: 1000, H: 1000}
	b0 := start.PixelBounds(size)
	got := ResizeTo(start, size, HandleNW, vector.Pt{X: -50, Y: -20}, false, 50)
	b := got.PixelBounds(size)
	if !near(b.Max().X, b0.Max().X) || !near(b.Max().Y, b0.Max().Y) {
		t.Fatalf("nw moved bottom-right: %v vs %v", b.Max(), b0.Max())
	}
	got = ResizeTo(start, size, HandleW, vector.Pt{X: 80, Y: 0}, false, 50)
	b = got.PixelBounds(size)
	if !near(got.Width, 50) || !near(b.Max().X, b0.Max().X) {
		t.Fatalf("w clamp: width %v right %v", got.Width, b.Max().X)
	}
	if got.Y != start.Y {
		t.Fatalf("w changed y")
	}
	got = ResizeTo(start, size, HandleSE, vector.Pt{X: 30, Y: 30}, false, 50)
	if got.X != start.X || got.Y != start.Y {
		t.Fatalf("se moved origin")
	}
}

func TestResizeFreeWithShift(t *testing.T) {
	ft, doc, c := newFixture(domain.ItemTransform{ID: "a", Width: 100, Height: 100})
	_ = c.BeginResize("a", HandleSE, input.Pointer{X: 100, Y: 100})
	doc.Move(input.Pointer{X: 160, Y: 110, Mods: input.ModShift})
	got := ft.items["a"]
	if !near(got.Width, 160) || !near(got.Height, 110) {
		t.Fatalf("free resize: %vx%v", got.Width, got.Height)
	}
	doc.Move(input.Pointer{X: 160, Y: 110})
	got = ft.items["a"]
	if !near(got.Width, 160) || !near(got.Height, 160) {
		t.Fatalf("locked resize: %vx%v", got.Width, got.Height)
	}
	doc.Up(input.Pointer{})
}

func TestResizeMinimumFloor(t *testing.T) {
	start := domain.ItemTransform{ID: "a", Width: 60, Height: 60}
	size := vector.Size{W: 500, H: 500}
	for _, h := range Handles {
		got := ResizeTo(start, size, h, vector.Pt{X: -500, Y: -500}, false, 50)
		got2 := ResizeTo(start, size, h, vector.Pt{X: 500, Y: 500}, false, 50)
		for _, g := range []domain.ItemTransform{got, got2} {
			if g.Width < 50 || g.Height < 50 {
				t.Fatalf("%s: %vx%v", h, g.Width, g.Height)
			}
		}
	}
	// tall item locked: height floor forces width up too
	tall := domain.ItemTransform{ID: "b", Width: 60, Height: 120}
	got := ResizeTo(tall, size, HandleE, vector.Pt{X: -100}, true, 50)
	if !near(got.Width, 50) || !near(got.Height, 100) {
		t.Fatalf("tall: %vx%v", got.Width, got.Height)
	}
	wide := domain.ItemTransform{ID: "c", Width: 120, Height: 60}
	got = ResizeTo(wide, size, HandleE, vector.Pt{X: -100}, true, 50)
	if !near(got.Width, 100) || !near(got.Height, 50) {
		t.Fatalf("wide: %vx%v", got.Width, got.Height)
	}
}

func TestRotateSnap(t *testing.T) {
	ft, doc, c := newFixture(domain.ItemTransform{ID: "a", X: 0, Y: 0, Width: 100, Height: 100, Rotation: 7})
	ft.box = vector.R(50, 50, 1000, 1000)
	// centre is (100,100) on screen
	if err := c.BeginRotate("a", input.Pointer{X: 200, Y: 100}); err != nil {
		t.Fatal(err)
	}
	doc.Move(input.Pointer{X: 100, Y: 200})
	if got := ft.items["a"].Rotation; !near(got, 97) {
		t.Fatalf("rotation = %v, want 97", got)
	}
	doc.Move(input.Pointer{X: 100, Y: 200, Mods: input.ModShift})
	got := ft.items["a"].Rotation
	if math.Mod(got, 15) != 0 || !near(got, 90) {
		t.Fatalf("snapped rotation = %v", got)
	}
	doc.Up(input.Pointer{})
	if ft.items["a"].Width != 100 || ft.items["a"].X != 0 {
		t.Fatalf("rotate changed geometry")
	}
}

func TestRotateTo(t *testing.T) {
	for _, tc := range []struct{ start, a0, a1 float64 }{{0, 0, 22}, {-3, 10, -40}, {720, 0, 181}} {
		got := RotateTo(tc.start, tc.a0, tc.a1, true, 15)
		if math.Mod(got, 15) != 0 {
			t.Fatalf("%v not a multiple of 15", got)
		}
	}
	if got := RotateTo(5, 0, 10, false, 15); got != 15 {
		t.Fatalf("unsnapped = %v", got)
	}
}

func TestParseHandle(t *testing.T) {
	if h, err := ParseHandle(" NE "); err != nil || h != HandleNE {
		t.Fatalf("got %v %v", h, err)
	}
	if _, err := ParseHandle("north"); err == nil {
		t.Fatalf("expected error")
	}
}
