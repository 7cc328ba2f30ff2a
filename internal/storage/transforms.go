/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"time"

	"gocollage/internal/domain"
	applog "gocollage/internal/log"
)

// Persisted keys.
const (
	CurrentKey = "collage-item-transforms-v2"
	LegacyKey  = "collage-item-positions-v1"
	DeletedKey = "collage-deleted-items-v1"
)

// errMismatch marks stored data that is well formed but does not match the
// catalog's identity set. Such data is replaced by defaults, never by a backup.
var errMismatch = errors.New("stored transforms do not match catalog")

// record is the on-disk shape. Pointer fields detect the legacy schema,
// which lacks width, height and rotation.
type record struct {
	ID       string   `json:"id"`
	X        float64  `json:"x"`
	Y        float64  `json:"y"`
	Width    *float64 `json:"width"`
	Height   *float64 `json:"height"`
	Rotation *float64 `json:"rotation"`
	ZIndex   float64  `json:"zIndex"`
}

func (r record) legacy() bool { return r.Width == nil || r.Height == nil || r.Rotation == nil }

// TransformStore loads and saves the transform collection. A nil KV makes
// every operation a no-op that yields defaults.
type TransformStore struct {
	kv  KV
	log *slog.Logger
}

func NewTransformStore(kv KV) *TransformStore {
	return &TransformStore{kv: kv, log: applog.WithComponent("storage")}
}

// Load returns one transform per catalog item. Stored order is kept so that
// saving the result reproduces the stored bytes.
func (s *TransformStore) Load(ctx context.Context, cat domain.Catalog) []domain.ItemTransform {
	l := applog.WithOperation(s.log, "load")
	if s.kv == nil {
		l.Debug("no backend, using defaults")
		return cat.DefaultTransforms()
	}

	key := CurrentKey
	raw, err := s.kv.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		key = LegacyKey
		raw, err = s.kv.Get(ctx, key)
	}
	if errors.Is(err, ErrNotFound) {
		l.Debug("nothing stored, using defaults")
		return cat.DefaultTransforms()
	}
	if err != nil {
		l.Warn("read failed, using defaults", slog.String("key", key), slog.Any("err", err))
		return cat.DefaultTransforms()
	}

	ts, migrated, err := decodeTransforms(raw, cat)
	if err != nil && key == CurrentKey && !errors.Is(err, errMismatch) {
		if bts, ok := s.fromBackup(ctx, cat); ok {
			l.Warn("stored transforms unusable, restored latest backup", slog.Any("err", err))
			// write the restored value back so the next load sees it directly
			ts, migrated, err = bts, true, nil
		}
	}
	if err != nil {
		l.Warn("stored transforms unusable, using defaults", slog.String("key", key), slog.Any("err", err))
		return cat.DefaultTransforms()
	}

	if migrated || key == LegacyKey {
		if s.Save(ctx, ts) && key == LegacyKey {
			if err := s.kv.Delete(ctx, LegacyKey); err != nil {
				l.Warn("remove legacy key failed", slog.Any("err", err))
			}
		}
		l.Info("upgraded stored transforms", slog.String("from", key), slog.Int("items", len(ts)))
	}
	return ts
}

func (s *TransformStore) fromBackup(ctx context.Context, cat domain.Catalog) ([]domain.ItemTransform, bool) {
	br, ok := s.kv.(BackupReader)
	if !ok {
		return nil, false
	}
	b, err := br.LatestBackup(ctx, CurrentKey)
	if err != nil {
		return nil, false
	}
	ts, _, err := decodeTransforms(b, cat)
	return ts, err == nil
}

// decodeTransforms validates raw and matches it against the catalog. The
// bool reports whether any entry was backfilled from descriptor defaults.
func decodeTransforms(raw []byte, cat domain.Catalog) ([]domain.ItemTransform, bool, error) {
	if err := ValidateTransforms(raw); err != nil {
		return nil, false, err
	}
	var recs []record
	if err := json.Unmarshal(raw, &recs); err != nil {
		return nil, false, fmt.Errorf("decode transforms: %w", err)
	}
	if len(recs) != cat.Len() {
		return nil, false, fmt.Errorf("%w: stored %d, catalog %d", errMismatch, len(recs), cat.Len())
	}
	seen := make(map[string]bool, len(recs))
	out := make([]domain.ItemTransform, 0, len(recs))
	migrated := false
	for _, r := range recs {
		d, ok := cat.Get(r.ID)
		if !ok {
			return nil, false, fmt.Errorf("%w: stored id %q: %w", errMismatch, r.ID, domain.ErrUnknownItem)
		}
		if seen[r.ID] {
			return nil, false, fmt.Errorf("%w: duplicate stored id %q", errMismatch, r.ID)
		}
		seen[r.ID] = true
		t := domain.ItemTransform{
			ID:       r.ID,
			X:        r.X,
			Y:        r.Y,
			Width:    d.Width,
			Height:   d.Height,
			Rotation: d.Rotation,
			ZIndex:   int(math.Round(r.ZIndex)),
		}
		if r.legacy() {
			migrated = true
		}
		if r.Width != nil {
			t.Width = *r.Width
		}
		if r.Height != nil {
			t.Height = *r.Height
		}
		if r.Rotation != nil {
			t.Rotation = *r.Rotation
		}
		out = append(out, t)
	}
	return out, migrated, nil
}

// Save writes ts under the current key. Failures are logged, never
// returned; the result reports whether the write happened.
func (s *TransformStore) Save(ctx context.Context, ts []domain.ItemTransform) bool {
	if s.kv == nil {
		return false
	}
	if ts == nil {
		ts = []domain.ItemTransform{}
	}
	b, err := json.Marshal(ts)
	if err != nil {
		s.log.Warn("encode transforms failed", slog.Any("err", err))
		return false
	}
	if err := s.kv.Set(ctx, CurrentKey, b); err != nil {
		s.log.Warn("save transforms failed", slog.Any("err", err))
		return false
	}
	return true
}

// Reset forgets all stored state, including tombstones.
func (s *TransformStore) Reset(ctx context.Context) bool {
	if s.kv == nil {
		return false
	}
	ok := true
	for _, key := range []string{CurrentKey, LegacyKey, DeletedKey} {
		if err := s.kv.Delete(ctx, key); err != nil {
			s.log.Warn("reset failed", slog.String("key", key), slog.Any("err", err))
			ok = false
		}
	}
	return ok
}

// LoadDeleted returns the logically deleted identities. Unreadable lists
// are treated as empty.
func (s *TransformStore) LoadDeleted(ctx context.Context) []string {
	if s.kv == nil {
		return nil
	}
	raw, err := s.kv.Get(ctx, DeletedKey)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		s.log.Warn("read tombstones failed", slog.Any("err", err))
		return nil
	}
	if err := ValidateDeleted(raw); err != nil {
		s.log.Warn("tombstones unusable", slog.Any("err", err))
		return nil
	}
	var ids []string
	if err := json.Unmarshal(raw, &ids); err != nil {
		s.log.Warn("decode tombstones failed", slog.Any("err", err))
		return nil
	}
	return ids
}

// SaveDeleted stores the tombstone list; an empty list removes the key.
func (s *TransformStore) SaveDeleted(ctx context.Context, ids []string) bool {
	if s.kv == nil {
		return false
	}
	if len(ids) == 0 {
		if err := s.kv.Delete(ctx, DeletedKey); err != nil {
			s.log.Warn("clear tombstones failed", slog.Any("err", err))
			return false
		}
		return true
	}
	b, err := json.Marshal(ids)
	if err != nil {
		s.log.Warn("encode tombstones failed", slog.Any("err", err))
		return false
	}
	if err := s.kv.Set(ctx, DeletedKey, b); err != nil {
		s.log.Warn("save tombstones failed", slog.Any("err", err))
		return false
	}
	return true
}

// WriteCrashSnapshot writes ts to dir/crash-transforms-<stamp>.json and
// returns the path.
func WriteCrashSnapshot(dir string, ts []domain.ItemTransform) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create crash dir: %w", err)
	}
	b, err := json.MarshalIndent(ts, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}
	p := filepath.Join(dir, "crash-transforms-"+time.Now().Format("20060102-150405")+".json")
	if err := writeFileSync(p, append(b, '\n')); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}
	return p, nil
}
