/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package cli is the command line surface of gocollage. Every mutating
// command drives the canvas through the same pointer and command API the
// desktop binding uses.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"gocollage/internal/canvas"
	"gocollage/internal/catalog"
	"gocollage/internal/config"
	"gocollage/internal/domain"
	applog "gocollage/internal/log"
	"gocollage/internal/storage"
	"gocollage/internal/undo"
	"gocollage/internal/vector"
)

// App holds the global flags and the lazily opened canvas of one invocation.
type App struct {
	ConfigFile  string
	CatalogPath string
	Backend     string
	StoreDir    string
	Ephemeral   bool

	cfg    config.AppConfig
	kv     storage.KV
	canvas *canvas.Canvas
	log    *slog.Logger
}

func New() *App { return &App{cfg: config.Defaults(), log: applog.WithComponent("cli")} }

// NewRootCmd builds the command tree around a fresh App.
func NewRootCmd() *cobra.Command { return New().RootCmd() }

func (a *App) RootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "gocollage",
		Short:        "Freeform collage layout engine",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Show the layout of a catalog
  gocollage --catalog items.yaml show

  # Move an item 20px right and 10px up
  gocollage --catalog items.yaml drag hero 20 -10

  # Raise two items above everything else
  gocollage --catalog items.yaml front hero logo
`),
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return a.setup(cmd)
	}
	cmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		return a.Close()
	}

	cmd.PersistentFlags().StringVar(&a.ConfigFile, "config", "", "Config file (default: per-user config path)")
	cmd.PersistentFlags().StringVar(&a.CatalogPath, "catalog", "", "Catalog file (YAML/JSON) or image directory")
	cmd.PersistentFlags().StringVar(&a.Backend, "backend", "", "Storage backend (file|sqlite|postgres|memory)")
	cmd.PersistentFlags().StringVar(&a.StoreDir, "store", "", "Storage directory for the file and sqlite backends")
	cmd.PersistentFlags().BoolVar(&a.Ephemeral, "ephemeral", false, "Keep the layout in memory only")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newShowCmd(a))
	cmd.AddCommand(newDragCmd(a))
	cmd.AddCommand(newResizeCmd(a))
	cmd.AddCommand(newRotateCmd(a))
	cmd.AddCommand(newMarqueeCmd(a))
	for _, c := range newTargetedCmds(a) {
		cmd.AddCommand(c)
	}
	cmd.AddCommand(newKeyCmd(a))
	cmd.AddCommand(newResetCmd(a))
	cmd.AddCommand(newUICmd(a))
	cmd.AddCommand(newPGPasswordCmd())
	return cmd
}

func (a *App) setup(cmd *cobra.Command) error {
	var (
		cfg config.AppConfig
		err error
	)
	if a.ConfigFile != "" {
		cfg, err = config.LoadFile(a.ConfigFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	a.cfg = cfg
	applog.Init(applog.Options{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		AddSource: cfg.Logging.Source,
		File:      cfg.Logging.File,
		Output:    cmd.ErrOrStderr(),
	})
	a.log = applog.WithComponent("cli")
	return nil
}

// Canvas opens the catalog and the configured store on first use.
func (a *App) Canvas(ctx context.Context) (*canvas.Canvas, error) {
	if a.canvas != nil {
		return a.canvas, nil
	}
	if strings.TrimSpace(a.CatalogPath) == "" {
		return nil, errors.New("--catalog is required")
	}
	cat, err := catalog.Load(a.CatalogPath)
	if err != nil {
		return nil, err
	}
	kv, err := a.openStore(ctx)
	if err != nil {
		return nil, err
	}
	a.kv = kv
	c := canvas.New(ctx, cat, canvas.Options{
		Name:  filepath.Base(a.CatalogPath),
		Store: storage.NewTransformStore(kv),
		History: undo.Config{
			MaxDepth:    a.cfg.History.MaxDepth,
			MaxBytes:    a.cfg.History.MaxBytes,
			MinInterval: a.cfg.History.Coalesce(),
		},
		HandleSize:   a.cfg.Canvas.HandleSize,
		RotateOffset: a.cfg.Canvas.RotateOffset,
		Logger:       applog.WithComponent("canvas"),
	})
	c.SetContainer(vector.R(0, 0, a.cfg.Canvas.Width, a.cfg.Canvas.Height))
	a.canvas = c
	return c, nil
}

func (a *App) openStore(ctx context.Context) (storage.KV, error) {
	backend := a.cfg.Storage.Backend
	if a.Backend != "" {
		backend = a.Backend
	}
	if a.Ephemeral {
		backend = storage.BackendMemory
	}
	dir := a.StoreDir
	if dir == "" {
		d, err := a.cfg.Storage.ResolvedDir()
		if err != nil {
			return nil, fmt.Errorf("resolve storage dir: %w", err)
		}
		dir = d
	}
	opts := storage.Options{
		Backend:     backend,
		Dir:         dir,
		DSN:         a.cfg.Storage.DSN,
		KeepBackups: max(a.cfg.Storage.KeepBackups, 0),
	}
	if strings.EqualFold(backend, storage.BackendPostgres) {
		pw, err := config.PostgresPassword()
		if err != nil {
			a.log.Warn("keyring unavailable, connecting without stored password", slog.Any("err", err))
		}
		opts.Password = pw
	}
	kv, err := storage.Open(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("open %s storage: %w", backend, err)
	}
	a.log.Debug("storage opened", slog.String("backend", backend), slog.String("dir", dir))
	return kv, nil
}

// Close ends any active gesture and closes the store.
func (a *App) Close() error {
	if a.canvas != nil {
		a.canvas.Dispose()
	}
	if a.kv == nil {
		return nil
	}
	err := a.kv.Close()
	a.kv = nil
	return err
}

// CrashSnapshot lets crash.Recover save the open layout.
func (a *App) CrashSnapshot() []domain.ItemTransform {
	if a.canvas == nil {
		return nil
	}
	return a.canvas.CrashSnapshot()
}

// CrashDir is where crash reports go: the storage directory when known.
func (a *App) CrashDir() string {
	if a.StoreDir != "" {
		return a.StoreDir
	}
	if d, err := a.cfg.Storage.ResolvedDir(); err == nil {
		return d
	}
	return ""
}
