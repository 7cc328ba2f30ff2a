/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package crash

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gocollage/internal/domain"
)

func TestWriteReportCreatesFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	path, err := writeReport(dir, "boom", []byte("stacktrace"))
	if err != nil {
		t.Fatalf("writeReport error: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	s := string(b)
	if !strings.Contains(s, "GoCollage Crash Report") {
		t.Fatalf("report header missing")
	}
	if !strings.Contains(s, "Panic: boom") || !strings.Contains(s, "stacktrace") {
		t.Fatalf("panic content missing: %s", s)
	}
}

type fixedSource []domain.ItemTransform

func (f fixedSource) CrashSnapshot() []domain.ItemTransform { return f }

func silenceStderr(t *testing.T) {
	t.Helper()
	oldStderr := os.Stderr
	r, w, _ := os.Pipe()
	os.Stderr = w
	t.Cleanup(func() {
		_ = w.Close()
		os.Stderr = oldStderr
		_, _ = io.Copy(io.Discard, r)
	})
}

// TestRecoverWritesReportAndSnapshot runs Recover with an injected exitFn.
func TestRecoverWritesReportAndSnapshot(t *testing.T) {
	silenceStderr(t)
	called := 0
	oldExit := exitFn
	exitFn = func(code int) { called = code }
	defer func() { exitFn = oldExit }()

	dir := t.TempDir()
	src := fixedSource{{ID: "a", X: 1, Y: 2, Width: 60, Height: 60, ZIndex: 1}}
	func() {
		defer Recover(dir, src)
		panic("boom")
	}()

	var report, snapshot string
	files, _ := os.ReadDir(dir)
	for _, f := range files {
		switch {
		case strings.HasPrefix(f.Name(), "crash-") && strings.HasSuffix(f.Name(), ".log"):
			report = filepath.Join(dir, f.Name())
		case strings.HasPrefix(f.Name(), "crash-transforms-"):
			snapshot = filepath.Join(dir, f.Name())
		}
	}
	if report == "" || snapshot == "" {
		t.Fatalf("expected report and snapshot, got %v", files)
	}
	b, _ := os.ReadFile(report)
	if !bytes.Contains(b, []byte("Panic: boom")) {
		t.Fatalf("report does not contain panic: %s", string(b))
	}
	s, _ := os.ReadFile(snapshot)
	if !bytes.Contains(s, []byte(`"id": "a"`)) {
		t.Fatalf("snapshot content: %s", s)
	}
	if called != 2 {
		t.Fatalf("expected exit code 2, got %d", called)
	}
}

func TestRecoverWithoutPanic(t *testing.T) {
	called := false
	oldExit := exitFn
	exitFn = func(int) { called = true }
	defer func() { exitFn = oldExit }()
	func() {
		defer Recover(t.TempDir(), nil)
	}()
	if called {
		t.Fatalf("exit called without panic")
	}
}

type dirAwareSource struct {
	fixedSource
	dir string
}

func (d dirAwareSource) CrashDir() string { return d.dir }

func TestRecoverUsesSourceDir(t *testing.T) {
	silenceStderr(t)
	oldExit := exitFn
	exitFn = func(int) {}
	defer func() { exitFn = oldExit }()

	dir := t.TempDir()
	func() {
		defer Recover("", dirAwareSource{dir: dir})
		panic("late config")
	}()
	files, _ := os.ReadDir(dir)
	if len(files) != 2 {
		t.Fatalf("expected report and snapshot in source dir, got %v", files)
	}
}
