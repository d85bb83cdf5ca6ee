// Copyright (c) 2025 Million Media
// SPDX-License-Identifier: AGPL-3.0-or-later

package trigger

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// =============================================================================
// SPOOL WATCHER
// =============================================================================

// SpoolFileName is the trigger spool inside the state directory. A host
// integration writes a JSON Trigger there; the watcher picks it up and
// removes it.
const SpoolFileName = "trigger.json"

// defaultDebounce coalesces the write bursts editors and scripts produce
// for a single logical spool update.
const defaultDebounce = 100 * time.Millisecond

// Watcher watches the state directory for spool writes and hands accepted
// questions to a callback.
type Watcher struct {
	dir      string
	ledger   Ledger
	onAccept func(question string)
	debounce time.Duration

	watcher *fsnotify.Watcher
	cancel  context.CancelFunc

	mu      sync.Mutex
	pending *time.Timer
}

// NewWatcher builds a spool watcher over the state directory. onAccept runs
// on the watcher goroutine for every trigger that passes filtering and
// de-duplication.
func NewWatcher(stateDir string, ledger Ledger, onAccept func(question string)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		dir:      stateDir,
		ledger:   ledger,
		onAccept: onAccept,
		debounce: defaultDebounce,
		watcher:  fsw,
	}, nil
}

// Start begins watching. Any spool file already present is processed first,
// covering triggers written while the client was not running.
func (w *Watcher) Start() error {
	if err := w.watcher.Add(w.dir); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel

	w.consumeSpool()
	go w.loop(ctx)
	return nil
}

// Close stops watching and releases the underlying watcher.
func (w *Watcher) Close() error {
	if w.cancel != nil {
		w.cancel()
	}
	return w.watcher.Close()
}

func (w *Watcher) spoolPath() string {
	return filepath.Join(w.dir, SpoolFileName)
}

func (w *Watcher) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != SpoolFileName {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			w.scheduleConsume()

		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			// Watch errors are not fatal; the spool is also checked at
			// start, so a missed event only delays a trigger.
		}
	}
}

// scheduleConsume debounces rapid successive writes into one read.
func (w *Watcher) scheduleConsume() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.pending != nil {
		w.pending.Stop()
	}
	w.pending = time.AfterFunc(w.debounce, w.consumeSpool)
}

// consumeSpool reads, deletes, and processes the spool file.
func (w *Watcher) consumeSpool() {
	raw, err := os.ReadFile(w.spoolPath())
	if err != nil {
		return
	}
	// Remove before processing so a failed trigger cannot loop.
	_ = os.Remove(w.spoolPath())

	var t Trigger
	if err := json.Unmarshal(raw, &t); err != nil {
		return
	}

	question, err := Process(t, w.ledger)
	if err != nil || question == "" {
		return
	}
	w.onAccept(question)
}
