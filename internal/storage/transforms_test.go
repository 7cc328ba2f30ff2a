package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"reflect"
	"testing"

	"gocollage/internal/domain"
)

func testCatalog(t *testing.T, ids ...string) domain.Catalog {
	t.Helper()
	var items []domain.ItemDescriptor
	for i, id := range ids {
		items = append(items, domain.ItemDescriptor{ID: id, Width: 180, Height: 180, X: float64(10 * i), Y: 5})
	}
	c, err := domain.NewCatalog(items)
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	return c
}

func TestLoadLegacyUpgrade(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	if err := kv.Set(ctx, LegacyKey, []byte(`[{"id":"x","x":10,"y":10,"zIndex":1}]`)); err != nil {
		t.Fatal(err)
	}
	s := NewTransformStore(kv)
	cat := testCatalog(t, "x")

	got := s.Load(ctx, cat)
	want := []domain.ItemTransform{{ID: "x", X: 10, Y: 10, Width: 180, Height: 180, Rotation: 0, ZIndex: 1}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Load = %+v, want %+v", got, want)
	}
	if _, err := kv.Get(ctx, LegacyKey); !errors.Is(err, ErrNotFound) {
		t.Fatalf("legacy key still present: %v", err)
	}
	raw, err := kv.Get(ctx, CurrentKey)
	if err != nil {
		t.Fatalf("current key not written: %v", err)
	}
	if err := ValidateTransforms(raw); err != nil {
		t.Fatalf("upgraded record invalid: %v", err)
	}

	again := s.Load(ctx, cat)
	if !reflect.DeepEqual(again, want) {
		t.Fatalf("second Load = %+v", again)
	}
	raw2, _ := kv.Get(ctx, CurrentKey)
	if !bytes.Equal(raw, raw2) {
		t.Fatalf("second load rewrote the record:\n%s\n%s", raw, raw2)
	}
}

func TestLoadLegacyShapeUnderCurrentKey(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	_ = kv.Set(ctx, CurrentKey, []byte(`[{"id":"a","x":1,"y":2,"zIndex":3,"rotation":45},{"id":"b","x":3,"y":4,"width":90,"height":60,"rotation":0,"zIndex":1}]`))
	got := NewTransformStore(kv).Load(ctx, testCatalog(t, "b", "a"))
	if got[0].ID != "a" || got[0].Width != 180 || got[0].Rotation != 45 || got[0].ZIndex != 3 {
		t.Fatalf("backfill wrong: %+v", got[0])
	}
	if got[1].Width != 90 || got[1].Height != 60 {
		t.Fatalf("complete entry altered: %+v", got[1])
	}
	var stored []map[string]any
	raw, _ := kv.Get(ctx, CurrentKey)
	_ = json.Unmarshal(raw, &stored)
	if _, ok := stored[0]["width"]; !ok {
		t.Fatalf("upgrade not persisted: %s", raw)
	}
}

func TestSaveLoadIdempotent(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	s := NewTransformStore(kv)
	cat := testCatalog(t, "a", "b", "c")
	ts := []domain.ItemTransform{
		{ID: "c", X: 12.345678901, Y: -3, Width: 51.5, Height: 77, Rotation: -375.25, ZIndex: 9},
		{ID: "a", X: 0.1, Y: 0.2, Width: 180, Height: 180, Rotation: 15, ZIndex: -2},
		{ID: "b", X: 150, Y: 99.99, Width: 300, Height: 50, Rotation: 0, ZIndex: 9},
	}
	if !s.Save(ctx, ts) {
		t.Fatalf("save failed")
	}
	before, _ := kv.Get(ctx, CurrentKey)
	loaded := s.Load(ctx, cat)
	if !reflect.DeepEqual(loaded, ts) {
		t.Fatalf("loaded %+v", loaded)
	}
	s.Save(ctx, loaded)
	after, _ := kv.Get(ctx, CurrentKey)
	if !bytes.Equal(before, after) {
		t.Fatalf("round trip changed bytes:\n%s\n%s", before, after)
	}
}

func TestLoadFallsBackToDefaults(t *testing.T) {
	ctx := context.Background()
	cat := testCatalog(t, "a", "b")
	cases := map[string]string{
		"corrupt":         `[{"id":"a",`,
		"wrong type":      `{"id":"a"}`,
		"missing field":   `[{"id":"a","x":1,"zIndex":1},{"id":"b","x":1,"y":1,"zIndex":2}]`,
		"cardinality":     `[{"id":"a","x":1,"y":1,"zIndex":1}]`,
		"unknown id":      `[{"id":"a","x":1,"y":1,"zIndex":1},{"id":"z","x":1,"y":1,"zIndex":2}]`,
		"duplicate id":    `[{"id":"a","x":1,"y":1,"zIndex":1},{"id":"a","x":1,"y":1,"zIndex":2}]`,
		"fractional zidx": `[{"id":"a","x":1,"y":1,"zIndex":1.5},{"id":"b","x":1,"y":1,"zIndex":2}]`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			kv := NewMemoryKV()
			_ = kv.Set(ctx, CurrentKey, []byte(raw))
			got := NewTransformStore(kv).Load(ctx, cat)
			if !reflect.DeepEqual(got, cat.DefaultTransforms()) {
				t.Fatalf("got %+v", got)
			}
		})
	}
}

func TestIdentitySetMatchesCatalog(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	s := NewTransformStore(kv)
	cat := testCatalog(t, "a", "b", "c")
	for i := 0; i < 2; i++ {
		got := s.Load(ctx, cat)
		ids := map[string]bool{}
		for _, tr := range got {
			ids[tr.ID] = true
		}
		if len(got) != cat.Len() || len(ids) != cat.Len() {
			t.Fatalf("identity set mismatch: %+v", got)
		}
		for _, id := range cat.IDs() {
			if !ids[id] {
				t.Fatalf("missing %s", id)
			}
		}
		s.Save(ctx, got)
	}
}

func TestDefaults(t *testing.T) {
	got := NewTransformStore(nil).Load(context.Background(), testCatalog(t, "a", "b"))
	want := []domain.ItemTransform{
		{ID: "a", X: 0, Y: 5, Width: 180, Height: 180, ZIndex: 1},
		{ID: "b", X: 10, Y: 5, Width: 180, Height: 180, ZIndex: 2},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("defaults = %+v", got)
	}
	s := NewTransformStore(nil)
	if s.Save(context.Background(), got) || s.Reset(context.Background()) || s.LoadDeleted(context.Background()) != nil {
		t.Fatalf("nil backend must be inert")
	}
}

type brokenKV struct{}

func (brokenKV) Get(context.Context, string) ([]byte, error) { return nil, errors.New("disk gone") }
func (brokenKV) Set(context.Context, string, []byte) error   { return errors.New("disk gone") }
func (brokenKV) Delete(context.Context, string) error        { return errors.New("disk gone") }
func (brokenKV) Close() error                                { return nil }

func TestBrokenBackend(t *testing.T) {
	ctx := context.Background()
	cat := testCatalog(t, "a")
	s := NewTransformStore(brokenKV{})
	if got := s.Load(ctx, cat); !reflect.DeepEqual(got, cat.DefaultTransforms()) {
		t.Fatalf("got %+v", got)
	}
	if s.Save(ctx, cat.DefaultTransforms()) {
		t.Fatalf("save reported success")
	}
	if s.SaveDeleted(ctx, []string{"a"}) {
		t.Fatalf("save deleted reported success")
	}
}

func TestResetAndTombstones(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	s := NewTransformStore(kv)
	cat := testCatalog(t, "a", "b")
	s.Save(ctx, []domain.ItemTransform{{ID: "a", X: 50, Y: 50, Width: 60, Height: 60, ZIndex: 7}, {ID: "b", Width: 60, Height: 60}})
	if !s.SaveDeleted(ctx, []string{"c"}) {
		t.Fatalf("save deleted failed")
	}
	if got := s.LoadDeleted(ctx); !reflect.DeepEqual(got, []string{"c"}) {
		t.Fatalf("deleted = %v", got)
	}
	_ = kv.Set(ctx, LegacyKey, []byte(`[]`))
	if !s.Reset(ctx) {
		t.Fatalf("reset failed")
	}
	if len(kv.Keys()) != 0 {
		t.Fatalf("keys left after reset: %v", kv.Keys())
	}
	if got := s.Load(ctx, cat); !reflect.DeepEqual(got, cat.DefaultTransforms()) {
		t.Fatalf("after reset: %+v", got)
	}
	s.SaveDeleted(ctx, []string{"a"})
	s.SaveDeleted(ctx, nil)
	if _, err := kv.Get(ctx, DeletedKey); !errors.Is(err, ErrNotFound) {
		t.Fatalf("empty tombstone list should remove the key")
	}
	_ = kv.Set(ctx, DeletedKey, []byte(`["a","a"]`))
	if got := s.LoadDeleted(ctx); got != nil {
		t.Fatalf("invalid tombstones accepted: %v", got)
	}
}

func TestLoadRestoresLatestBackup(t *testing.T) {
	ctx := context.Background()
	kv, err := OpenFileKV(t.TempDir(), 3)
	if err != nil {
		t.Fatal(err)
	}
	s := NewTransformStore(kv)
	cat := testCatalog(t, "a")
	good := []domain.ItemTransform{{ID: "a", X: 33, Y: 44, Width: 70, Height: 80, Rotation: 30, ZIndex: 2}}
	s.Save(ctx, good)
	// second write backs up the good value, then corrupt the current file
	s.Save(ctx, good)
	if err := os.WriteFile(kv.path(CurrentKey), []byte("{oops"), 0o644); err != nil {
		t.Fatal(err)
	}
	if got := s.Load(ctx, cat); !reflect.DeepEqual(got, good) {
		t.Fatalf("restore = %+v", got)
	}
	raw, _ := kv.Get(ctx, CurrentKey)
	if ValidateTransforms(raw) != nil {
		t.Fatalf("restored value not written back: %s", raw)
	}
}

func TestLoadMismatchIgnoresBackup(t *testing.T) {
	ctx := context.Background()
	kv, err := OpenFileKV(t.TempDir(), 5)
	if err != nil {
		t.Fatal(err)
	}
	s := NewTransformStore(kv)
	three := testCatalog(t, "a", "b", "c")
	two := testCatalog(t, "a", "b")

	layout := three.DefaultTransforms()
	layout[0].X = 77
	s.Save(ctx, layout)
	s.Save(ctx, layout)

	shrunk := s.Load(ctx, two)
	if !reflect.DeepEqual(shrunk, two.DefaultTransforms()) {
		t.Fatalf("shrunk catalog = %+v", shrunk)
	}
	s.Save(ctx, shrunk)

	got := s.Load(ctx, three)
	if !reflect.DeepEqual(got, three.DefaultTransforms()) {
		t.Fatalf("grown catalog = %+v, want defaults", got)
	}
	raw, _ := kv.Get(ctx, CurrentKey)
	var recs []record
	if err := json.Unmarshal(raw, &recs); err != nil || len(recs) != 2 {
		t.Fatalf("current key rewritten: %s", raw)
	}
}

func TestWriteCrashSnapshot(t *testing.T) {
	dir := t.TempDir()
	ts := []domain.ItemTransform{{ID: "a", Width: 60, Height: 60, ZIndex: 1}}
	p, err := WriteCrashSnapshot(dir, ts)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	b, err := os.ReadFile(p)
	if err != nil {
		t.Fatal(err)
	}
	if err := ValidateTransforms(b); err != nil {
		t.Fatalf("snapshot invalid: %v", err)
	}
}
