// Copyright (c) 2025 Million Media
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/MillionMedia2/ask-herbie-interface/internal/util"
)

// =============================================================================
// TRIGGER LEDGER
// =============================================================================

// ledgerFileName inside the base directory.
const ledgerFileName = "triggers.json"

// maxLedgerEntries bounds the ledger to the most recent entries.
const maxLedgerEntries = 10

// TriggerLedger records (question, nonce) pairs that already started a
// conversation, so a stale trigger re-presented after a restart cannot
// start a second one.
type TriggerLedger struct {
	store   *StateStore
	entries []ledgerEntry
}

type ledgerEntry struct {
	Question string `json:"question"`
	Nonce    string `json:"nonce"`
}

// LoadTriggerLedger reads the ledger from the state directory. A missing
// file yields an empty ledger.
func LoadTriggerLedger(store *StateStore) (*TriggerLedger, error) {
	l := &TriggerLedger{store: store}

	raw, err := os.ReadFile(l.path())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return l, nil
		}
		return nil, &StateError{Message: "failed to read trigger ledger", Cause: err}
	}
	if err := json.Unmarshal(raw, &l.entries); err != nil {
		// A corrupt ledger only risks one duplicate conversation; start
		// fresh rather than failing the whole boot.
		l.entries = nil
	}
	return l, nil
}

func (l *TriggerLedger) path() string {
	return filepath.Join(l.store.BaseDir, ledgerFileName)
}

// Seen reports whether the (question, nonce) pair was already processed.
func (l *TriggerLedger) Seen(question, nonce string) bool {
	for _, e := range l.entries {
		if e.Question == question && e.Nonce == nonce {
			return true
		}
	}
	return false
}

// Record remembers a processed pair and persists the ledger, keeping only
// the most recent entries.
func (l *TriggerLedger) Record(question, nonce string) error {
	if l.Seen(question, nonce) {
		return nil
	}
	l.entries = append(l.entries, ledgerEntry{Question: question, Nonce: nonce})
	if len(l.entries) > maxLedgerEntries {
		l.entries = l.entries[len(l.entries)-maxLedgerEntries:]
	}

	raw, err := json.Marshal(l.entries)
	if err != nil {
		return &StateError{Message: "failed to encode trigger ledger", Cause: err}
	}
	if err := util.AtomicWriteFile(l.path(), raw, 0o600); err != nil {
		return &StateError{Message: "failed to write trigger ledger", Cause: err}
	}
	return nil
}
