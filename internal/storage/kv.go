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
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
)

// ErrNotFound is returned by KV.Get for absent keys.
var ErrNotFound = errors.New("key not found")

// KV is the persistence backend. Delete of an absent key is not an error.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// BackupReader is implemented by backends that keep previous values.
type BackupReader interface {
	LatestBackup(ctx context.Context, key string) ([]byte, error)
}

var keyPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9._-]*$`)

func checkKey(key string) error {
	if !keyPattern.MatchString(key) {
		return fmt.Errorf("invalid key %q", key)
	}
	return nil
}

// Backend names accepted by Open.
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// Options select and configure a backend.
type Options struct {
	Backend     string
	Dir         string // file: data directory; sqlite: directory of collage.sqlite
	DSN         string // postgres connection string
	Password    string // injected into DSN when it carries none
	KeepBackups int    // file backend; 0 disables backups
}

// Open returns the configured backend.
func Open(ctx context.Context, o Options) (KV, error) {
	switch strings.ToLower(strings.TrimSpace(o.Backend)) {
	case BackendMemory:
		return NewMemoryKV(), nil
	case BackendFile, "":
		return OpenFileKV(o.Dir, o.KeepBackups)
	case BackendSQLite:
		return OpenSQLiteKV(ctx, o.Dir)
	case BackendPostgres:
		return OpenPostgresKV(ctx, o.DSN, o.Password)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", o.Backend)
	}
}

// MemoryKV keeps values in process memory. Safe for concurrent use.
type MemoryKV struct {
	mu sync.RWMutex
	m  map[string][]byte
}

func NewMemoryKV() *MemoryKV { return &MemoryKV{m: make(map[string][]byte)} }

func (k *MemoryKV) Get(_ context.Context, key string) ([]byte, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	v, ok := k.m[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (k *MemoryKV) Set(_ context.Context, key string, value []byte) error {
	if err := checkKey(key); err != nil {
		return err
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	k.m[key] = append([]byte(nil), value...)
	return nil
}

func (k *MemoryKV) Delete(_ context.Context, key string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	delete(k.m, key)
	return nil
}

// Keys returns the stored keys in no particular order.
func (k *MemoryKV) Keys() []string {
	k.mu.RLock()
	defer k.mu.RUnlock()
	out := make([]string, 0, len(k.m))
	for key := range k.m {
		out = append(out, key)
	}
	return out
}

func (k *MemoryKV) Close() error { return nil }
