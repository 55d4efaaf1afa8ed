// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const defaultReloadDebounce = 500 * time.Millisecond

// levelReloader applies log.level changes from the config file while the
// server runs. Other settings need a restart.
type levelReloader struct {
	path     string
	level    zap.AtomicLevel
	logger   *zap.Logger
	watcher  *fsnotify.Watcher
	debounce time.Duration
}

func newLevelReloader(path string, level zap.AtomicLevel, logger *zap.Logger) (*levelReloader, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	// Watch the directory: editors often replace the file instead of writing it.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
	}

	return &levelReloader{
		path:     filepath.Clean(path),
		level:    level,
		logger:   logger,
		watcher:  watcher,
		debounce: defaultReloadDebounce,
	}, nil
}

// Run watches until ctx is done.
func (r *levelReloader) Run(ctx context.Context) error {
	defer func() { _ = r.watcher.Close() }()

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-r.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != r.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			pending = time.After(r.debounce)

		case <-pending:
			pending = nil
			r.reload()

		case err, ok := <-r.watcher.Errors:
			if !ok {
				return nil
			}
			r.logger.Warn("config watcher error", zap.Error(err))
		}
	}
}

func (r *levelReloader) reload() {
	v := viper.New()
	v.SetConfigFile(r.path)
	if err := v.ReadInConfig(); err != nil {
		r.logger.Warn("config reload failed, keeping current log level", zap.String("file", r.path), zap.Error(err))
		return
	}
	if !v.IsSet("log.level") {
		return
	}

	next := parseLogLevel(v.GetString("log.level"))
	if next == r.level.Level() {
		return
	}
	r.level.SetLevel(next)
	r.logger.Info("log level changed", zap.Stringer("level", next))
}
