// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// watcher.go - Drift watcher for the settings file.
//
// Watches the settings file's parent directory (the file itself may be
// atomically replaced, which breaks a direct watch) and reports, after a
// debounce window, when the on-disk content no longer matches the hash of
// the profile the user last activated.

package configfile

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/jeranaias/ccswitch/internal/logging"
)

// DriftEvent reports a settings file change that diverged from the
// expected content hash.
type DriftEvent struct {
	Path         string
	ExpectedHash string
	ActualHash   string
	At           time.Time
}

// DriftWatcher watches the settings file for external modification.
type DriftWatcher struct {
	svc      *Service
	watcher  *fsnotify.Watcher
	debounce time.Duration
	events   chan DriftEvent
	log      zerolog.Logger

	mu       sync.Mutex
	expected string
	dirty    bool
	lastHit  time.Time

	ctx    context.Context
	cancel context.CancelFunc
}

// NewDriftWatcher creates a watcher for the service's settings file.
// expectedHash is the content hash the file should currently carry; an
// empty hash disables drift reporting until SetExpectedHash is called.
func NewDriftWatcher(svc *Service, expectedHash string, debounce time.Duration) (*DriftWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if debounce <= 0 {
		debounce = 2 * time.Second
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &DriftWatcher{
		svc:      svc,
		watcher:  watcher,
		debounce: debounce,
		events:   make(chan DriftEvent, 8),
		log:      logging.For("drift"),
		expected: expectedHash,
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

// Events returns the drift event channel.
func (w *DriftWatcher) Events() <-chan DriftEvent {
	return w.events
}

// SetExpectedHash updates the hash the settings file is expected to
// match, typically after an activation rewrote the file.
func (w *DriftWatcher) SetExpectedHash(hash string) {
	w.mu.Lock()
	w.expected = hash
	w.mu.Unlock()
}

// Watch starts the event and debounce goroutines.
func (w *DriftWatcher) Watch() error {
	// Atomic replacement swaps the inode, so watch the directory and
	// filter for the settings file by name.
	if err := w.watcher.Add(filepath.Dir(w.svc.SettingsPath())); err != nil {
		return err
	}
	go w.processEvents()
	go w.processPending()
	return nil
}

// Close stops watching and releases resources.
func (w *DriftWatcher) Close() error {
	w.cancel()
	return w.watcher.Close()
}

func (w *DriftWatcher) processEvents() {
	target := w.svc.SettingsPath()
	for {
		select {
		case <-w.ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Name != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			w.mu.Lock()
			w.dirty = true
			w.lastHit = time.Now()
			w.mu.Unlock()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn().Err(err).Msg("watch error")
		}
	}
}

// processPending waits out the debounce window after the last change
// before comparing hashes, so editors that write in bursts produce one
// drift event instead of several.
func (w *DriftWatcher) processPending() {
	ticker := time.NewTicker(w.debounce / 2)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			w.mu.Lock()
			ready := w.dirty && time.Since(w.lastHit) >= w.debounce
			expected := w.expected
			if ready {
				w.dirty = false
			}
			w.mu.Unlock()

			if !ready || expected == "" {
				continue
			}
			w.check(expected)
		}
	}
}

func (w *DriftWatcher) check(expected string) {
	actual, err := w.svc.CurrentHash()
	if err != nil {
		actual = ""
	}
	if actual == expected {
		return
	}

	ev := DriftEvent{
		Path:         w.svc.SettingsPath(),
		ExpectedHash: expected,
		ActualHash:   actual,
		At:           time.Now(),
	}
	w.log.Warn().Str("path", ev.Path).Msg("settings file changed outside profile management")

	select {
	case w.events <- ev:
	default:
		// A full channel means the consumer already has unread drift
		// events; dropping this one loses nothing actionable.
	}
}
