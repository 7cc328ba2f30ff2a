/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// AppConfig is the user-editable configuration persisted to a YAML file in the user scope.
// Environment variables are treated as read-only overrides at runtime.
//
// config_version: bump when the structure changes in a backward-incompatible way.
// Unknown fields are ignored on unmarshal.

type CanvasConfig struct {
	// Width/Height give the container size used when no window measures it (CLI).
	Width        float64 `yaml:"width"`
	Height       float64 `yaml:"height"`
	HandleSize   float64 `yaml:"handle_size"`
	RotateOffset float64 `yaml:"rotate_offset"`
}

type StorageConfig struct {
	Backend     string `yaml:"backend"` // "file" | "sqlite" | "postgres" | "memory"
	Dir         string `yaml:"dir"`
	DSN         string `yaml:"dsn"`
	KeepBackups int    `yaml:"keep_backups"` // -1 disables backups
	// The postgres password is not stored on disk; it lives in the OS keychain.
}

type HistoryConfig struct {
	MaxDepth   int `yaml:"max_depth"`
	MaxBytes   int `yaml:"max_bytes"`
	CoalesceMs int `yaml:"coalesce_ms"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

type AppConfig struct {
	ConfigVersion int           `yaml:"config_version"`
	Canvas        CanvasConfig  `yaml:"canvas"`
	Storage       StorageConfig `yaml:"storage"`
	History       HistoryConfig `yaml:"history"`
	Logging       LoggingConfig `yaml:"logging"`
}

// Defaults returns the application defaults. Storage.Dir stays empty and
// resolves to DataDir() at use.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		Canvas:        CanvasConfig{Width: 1200, Height: 800, HandleSize: 10, RotateOffset: 24},
		Storage:       StorageConfig{Backend: "file", KeepBackups: 5},
		History:       HistoryConfig{MaxDepth: 100, MaxBytes: 8 * 1024 * 1024, CoalesceMs: 0},
		Logging:       LoggingConfig{Level: "info", Format: "console", Source: false, File: ""},
	}
}

// Env var names used as overrides.
const (
	EnvCanvasWidth     = "GCL_CANVAS_WIDTH"
	EnvCanvasHeight    = "GCL_CANVAS_HEIGHT"
	EnvStorageBackend  = "GCL_STORAGE_BACKEND"
	EnvStorageDir      = "GCL_STORAGE_DIR"
	EnvStorageDSN      = "GCL_PG_DSN"
	EnvKeepBackups     = "GCL_KEEP_BACKUPS"
	EnvHistoryMaxDepth = "GCL_HISTORY_MAX_DEPTH"
	EnvHistoryCoalesce = "GCL_HISTORY_COALESCE_MS"
	// EnvLogLevel Logging envs
	EnvLogLevel  = "GCL_LOG_LEVEL"
	EnvLogFormat = "GCL_LOG_FORMAT"
	EnvLogSource = "GCL_LOG_SOURCE"
	EnvLogFile   = "GCL_LOG_FILE"
)

// configBase returns the per-user application directory.
func configBase() (string, error) {
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" { // fallback
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "GoCollage")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "GoCollage")
	default: // linux and others
		if x := os.Getenv("XDG_CONFIG_HOME"); x != "" {
			base = filepath.Join(x, "gocollage")
		} else {
			base = filepath.Join(os.Getenv("HOME"), ".config", "gocollage")
		}
	}
	if base == "" || base == "gocollage" {
		return "", errors.New("cannot resolve config directory")
	}
	return base, nil
}

// ConfigPath returns the per-user config file path.
func ConfigPath() (string, error) {
	base, err := configBase()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "config.yaml"), nil
}

// DataDir is the default storage directory for the file and sqlite backends.
func DataDir() (string, error) {
	base, err := configBase()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "data"), nil
}

// Load reads the user config file (if present), applies defaults, and merges environment overrides.
func Load() (AppConfig, error) {
	path, err := ConfigPath()
	if err != nil {
		cfg := Defaults()
		applyEnvOverrides(&cfg)
		return cfg, err
	}
	return LoadFile(path)
}

// LoadFile is Load for an explicit path. A missing file yields defaults; a
// malformed one is an error.
func LoadFile(path string) (AppConfig, error) {
	cfg := Defaults()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return cfg, fmt.Errorf("read config: %w", err)
	default:
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
		mergeInto(&cfg, &fileCfg)
	}
	applyEnvOverrides(&cfg)
	return cfg, nil
}

// Save writes the user config YAML.
func Save(cfg AppConfig) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveFile(path, cfg)
}

func SaveFile(path string, cfg AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	if src.Canvas.Width > 0 {
		dst.Canvas.Width = src.Canvas.Width
	}
	if src.Canvas.Height > 0 {
		dst.Canvas.Height = src.Canvas.Height
	}
	if src.Canvas.HandleSize > 0 {
		dst.Canvas.HandleSize = src.Canvas.HandleSize
	}
	if src.Canvas.RotateOffset > 0 {
		dst.Canvas.RotateOffset = src.Canvas.RotateOffset
	}
	if v := strings.TrimSpace(src.Storage.Backend); v != "" {
		dst.Storage.Backend = strings.ToLower(v)
	}
	if v := strings.TrimSpace(src.Storage.Dir); v != "" {
		dst.Storage.Dir = v
	}
	if v := strings.TrimSpace(src.Storage.DSN); v != "" {
		dst.Storage.DSN = v
	}
	if src.Storage.KeepBackups != 0 {
		dst.Storage.KeepBackups = max(src.Storage.KeepBackups, 0)
	}
	if src.History.MaxDepth > 0 {
		dst.History.MaxDepth = src.History.MaxDepth
	}
	if src.History.MaxBytes > 0 {
		dst.History.MaxBytes = src.History.MaxBytes
	}
	if src.History.CoalesceMs > 0 {
		dst.History.CoalesceMs = src.History.CoalesceMs
	}
	// logging
	if strings.TrimSpace(src.Logging.Level) != "" {
		dst.Logging.Level = strings.ToLower(strings.TrimSpace(src.Logging.Level))
	}
	if strings.TrimSpace(src.Logging.Format) != "" {
		dst.Logging.Format = strings.ToLower(strings.TrimSpace(src.Logging.Format))
	}
	dst.Logging.Source = src.Logging.Source
	if strings.TrimSpace(src.Logging.File) != "" {
		dst.Logging.File = strings.TrimSpace(src.Logging.File)
	}
}

func applyEnvOverrides(cfg *AppConfig) {
	if n, ok := envFloat(EnvCanvasWidth); ok && n > 0 {
		cfg.Canvas.Width = n
	}
	if n, ok := envFloat(EnvCanvasHeight); ok && n > 0 {
		cfg.Canvas.Height = n
	}
	if v := strings.TrimSpace(os.Getenv(EnvStorageBackend)); v != "" {
		cfg.Storage.Backend = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvStorageDir)); v != "" {
		cfg.Storage.Dir = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvStorageDSN)); v != "" {
		cfg.Storage.DSN = v
	}
	if n, ok := envInt(EnvKeepBackups); ok && n >= 0 {
		cfg.Storage.KeepBackups = n
	}
	if n, ok := envInt(EnvHistoryMaxDepth); ok && n > 0 {
		cfg.History.MaxDepth = n
	}
	if n, ok := envInt(EnvHistoryCoalesce); ok && n >= 0 {
		cfg.History.CoalesceMs = n
	}
	// logging overrides
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		lv := strings.ToLower(v)
		cfg.Logging.Source = lv == "1" || lv == "true" || lv == "on" || lv == "yes"
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

func envInt(name string) (int, bool) {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	return n, err == nil
}

func envFloat(name string) (float64, bool) {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return 0, false
	}
	n, err := strconv.ParseFloat(v, 64)
	return n, err == nil
}

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	names := map[string]string{
		"canvas.width":         EnvCanvasWidth,
		"canvas.height":        EnvCanvasHeight,
		"storage.backend":      EnvStorageBackend,
		"storage.dir":          EnvStorageDir,
		"storage.dsn":          EnvStorageDSN,
		"storage.keep_backups": EnvKeepBackups,
		"history.max_depth":    EnvHistoryMaxDepth,
		"history.coalesce_ms":  EnvHistoryCoalesce,
		"logging.level":        EnvLogLevel,
		"logging.format":       EnvLogFormat,
		"logging.source":       EnvLogSource,
		"logging.file":         EnvLogFile,
	}
	if n, ok := names[key]; ok && os.Getenv(n) != "" {
		return n, true
	}
	return "", false
}

// Coalesce returns the undo coalescing window.
func (h HistoryConfig) Coalesce() time.Duration {
	return time.Duration(h.CoalesceMs) * time.Millisecond
}

// ResolvedDir returns Dir or the per-user data directory.
func (s StorageConfig) ResolvedDir() (string, error) {
	if strings.TrimSpace(s.Dir) != "" {
		return s.Dir, nil
	}
	return DataDir()
}
