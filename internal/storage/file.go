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
	"io"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	applog "gocollage/internal/log"
)

const (
	BackupsDirName = "backups"
	valueExt       = ".json"
	backupExt      = ".bak"
)

// FileKV stores one file per key under Dir. Writes go to a temp file in the
// same directory, are fsynced and renamed over the target; the previous value
// is copied to Dir/backups first and old backups are pruned to Keep.
type FileKV struct {
	Dir  string
	Keep int
	log  *slog.Logger
}

func OpenFileKV(dir string, keep int) (*FileKV, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("storage dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	l := applog.WithComponent("storage").With(slog.String("backend", BackendFile), slog.String("dir", dir))
	return &FileKV{Dir: dir, Keep: keep, log: l}, nil
}

func (k *FileKV) path(key string) string { return filepath.Join(k.Dir, key+valueExt) }

func (k *FileKV) Get(_ context.Context, key string) ([]byte, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	b, err := os.ReadFile(k.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return b, nil
}

func (k *FileKV) Set(_ context.Context, key string, value []byte) error {
	if err := checkKey(key); err != nil {
		return err
	}
	target := k.path(key)
	if err := k.backup(key); err != nil {
		return err
	}

	temp := filepath.Join(k.Dir, fmt.Sprintf(".%s.tmp-%d-%d", key, os.Getpid(), rand.Int()))
	if err := writeFileSync(temp, value); err != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("write temp %s: %w", key, err)
	}
	// Windows refuses to rename over an existing file
	if _, err := os.Stat(target); err == nil {
		_ = os.Remove(target)
	}
	if err := os.Rename(temp, target); err != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("replace %s: %w", key, err)
	}
	return nil
}

// Delete backs up the current value before removing it.
func (k *FileKV) Delete(_ context.Context, key string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	if err := k.backup(key); err != nil {
		return err
	}
	if err := os.Remove(k.path(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (k *FileKV) Close() error { return nil }

// Backups lists the backup files of key, oldest first.
func (k *FileKV) Backups(key string) ([]string, error) {
	ents, err := os.ReadDir(filepath.Join(k.Dir, BackupsDirName))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read backups dir: %w", err)
	}
	prefix := key + valueExt + "."
	var out []string
	for _, e := range ents {
		name := e.Name()
		if strings.HasPrefix(name, prefix) && strings.HasSuffix(name, backupExt) {
			out = append(out, filepath.Join(k.Dir, BackupsDirName, name))
		}
	}
	sort.Strings(out) // timestamp in name yields lexicographic order
	return out, nil
}

// LatestBackup returns the newest backup of key.
func (k *FileKV) LatestBackup(_ context.Context, key string) ([]byte, error) {
	list, err := k.Backups(key)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, ErrNotFound
	}
	b, err := os.ReadFile(list[len(list)-1])
	if err != nil {
		return nil, fmt.Errorf("read latest backup: %w", err)
	}
	return b, nil
}

func (k *FileKV) backup(key string) error {
	if k.Keep <= 0 {
		return nil
	}
	src := k.path(key)
	if _, err := os.Stat(src); err != nil {
		return nil
	}
	stamp := time.Now().Format("20060102-150405.000000000")
	dst := filepath.Join(k.Dir, BackupsDirName, fmt.Sprintf("%s%s.%s%s", key, valueExt, stamp, backupExt))
	if err := copyFile(src, dst); err != nil {
		return fmt.Errorf("backup %s: %w", key, err)
	}
	k.prune(key)
	return nil
}

func (k *FileKV) prune(key string) {
	list, err := k.Backups(key)
	if err != nil || len(list) <= k.Keep {
		return
	}
	for _, p := range list[:len(list)-k.Keep] {
		if err := os.Remove(p); err != nil {
			k.log.Warn("prune backup failed", slog.String("path", p), slog.Any("err", err))
		}
	}
}

// writeFileSync writes data to a file, ensures it is flushed to disk.
func writeFileSync(path string, data []byte) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := f.Write(data); err != nil {
		return err
	}
	return f.Sync()
}

// copyFile copies a file from src to dst (overwrites dst if exists).
func copyFile(src, dst string) (err error) {
	sf, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sf.Close(); err == nil {
			err = cerr
		}
	}()
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	df, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := df.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := io.Copy(df, sf); err != nil {
		return err
	}
	return df.Sync()
}
