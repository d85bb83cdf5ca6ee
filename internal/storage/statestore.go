// Copyright (c) 2025 Million Media
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/MillionMedia2/ask-herbie-interface/internal/model"
	"github.com/MillionMedia2/ask-herbie-interface/internal/util"
)

// =============================================================================
// ERRORS
// =============================================================================

// StateError wraps storage failures.
type StateError struct {
	Message string
	Cause   error
}

func (e *StateError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *StateError) Unwrap() error { return e.Cause }

// =============================================================================
// STATE FILE
// =============================================================================

// rootKey is the single top-level key the persisted state lives under.
const rootKey = "root"

// stateFileName inside the base directory.
const stateFileName = "state.json"

// State is everything that survives a restart. Product attachments are
// excluded on purpose.
type State struct {
	Conversations        []model.Conversation       `json:"conversations"`
	ActiveConversationID string                     `json:"activeConversationId,omitempty"`
	Messages             map[string][]model.Message `json:"messages"`
}

// StateStore reads and writes the state file.
type StateStore struct {
	// BaseDir is the state directory, default ~/.herbie.
	BaseDir string
}

// NewStateStore creates a store rooted at ~/.herbie, creating the directory
// if needed.
func NewStateStore() (*StateStore, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, &StateError{Message: "failed to resolve home directory", Cause: err}
	}
	return NewStateStoreWithDir(filepath.Join(homeDir, ".herbie"))
}

// NewStateStoreWithDir creates a store rooted at baseDir.
func NewStateStoreWithDir(baseDir string) (*StateStore, error) {
	if err := os.MkdirAll(baseDir, 0o700); err != nil {
		return nil, &StateError{Message: "failed to create state directory", Cause: err}
	}
	return &StateStore{BaseDir: baseDir}, nil
}

func (s *StateStore) statePath() string {
	return filepath.Join(s.BaseDir, stateFileName)
}

// Load reads the persisted state. A missing file is not an error; it
// returns an empty state for first runs.
func (s *StateStore) Load() (State, error) {
	empty := State{Messages: make(map[string][]model.Message)}

	raw, err := os.ReadFile(s.statePath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return empty, nil
		}
		return empty, &StateError{Message: "failed to read state file", Cause: err}
	}

	var envelope map[string]State
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return empty, &StateError{Message: "failed to decode state file", Cause: err}
	}

	state, ok := envelope[rootKey]
	if !ok {
		return empty, nil
	}
	if state.Messages == nil {
		state.Messages = make(map[string][]model.Message)
	}
	return state, nil
}

// Save writes the state atomically under the root key.
func (s *StateStore) Save(state State) error {
	// Provisional assistant ids are allowed to persist (an ephemeral
	// answer is final under its temp id), but half-streamed empty
	// provisionals are dropped so a crash mid-stream leaves no husk.
	for convID, timeline := range state.Messages {
		kept := timeline[:0]
		for _, msg := range timeline {
			if msg.IsProvisional() && msg.SenderID == model.SenderAssistant && msg.Content == "" {
				continue
			}
			kept = append(kept, msg)
		}
		state.Messages[convID] = kept
	}

	raw, err := json.MarshalIndent(map[string]State{rootKey: state}, "", "  ")
	if err != nil {
		return &StateError{Message: "failed to encode state", Cause: err}
	}
	if err := util.AtomicWriteFile(s.statePath(), raw, 0o600); err != nil {
		return &StateError{Message: "failed to write state file", Cause: err}
	}
	return nil
}
