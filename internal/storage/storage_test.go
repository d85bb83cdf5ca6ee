// Copyright (c) 2025 Million Media
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/MillionMedia2/ask-herbie-interface/internal/model"
)

func testStore(t *testing.T) *StateStore {
	t.Helper()
	store, err := NewStateStoreWithDir(t.TempDir())
	if err != nil {
		t.Fatalf("NewStateStoreWithDir: %v", err)
	}
	return store
}

func TestStateStore_LoadMissingFileIsEmpty(t *testing.T) {
	store := testStore(t)

	state, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(state.Conversations) != 0 || len(state.Messages) != 0 {
		t.Errorf("state not empty: %+v", state)
	}
	if state.Messages == nil {
		t.Error("Messages map must be usable")
	}
}

func TestStateStore_RoundTrip(t *testing.T) {
	store := testStore(t)

	conv := model.NewEphemeralConversation("what helps with sleep?")
	saved := State{
		Conversations:        []model.Conversation{conv},
		ActiveConversationID: conv.ID,
		Messages: map[string][]model.Message{
			conv.ID: {
				model.NewLocalUserMessage(conv.ID, "what helps with sleep?"),
				{
					ID:             model.NewProvisionalMessageID(),
					ConversationID: conv.ID,
					SenderID:       model.SenderAssistant,
					Content:        "Chamomile helps.",
					CreatedAt:      time.Now(),
				},
			},
		},
	}
	if err := store.Save(saved); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(loaded.Conversations) != 1 || loaded.Conversations[0].ID != conv.ID {
		t.Errorf("conversations = %+v", loaded.Conversations)
	}
	if loaded.ActiveConversationID != conv.ID {
		t.Errorf("active = %q", loaded.ActiveConversationID)
	}
	if got := loaded.Messages[conv.ID]; len(got) != 2 || got[1].Content != "Chamomile helps." {
		t.Errorf("messages = %+v", got)
	}
}

func TestStateStore_FileUsesRootKey(t *testing.T) {
	store := testStore(t)
	if err := store.Save(State{Messages: map[string][]model.Message{}}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	raw, err := os.ReadFile(filepath.Join(store.BaseDir, stateFileName))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(raw, &envelope); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if _, ok := envelope[rootKey]; !ok {
		t.Errorf("state not stored under %q: keys %v", rootKey, envelope)
	}
}

func TestStateStore_DropsEmptyProvisionals(t *testing.T) {
	store := testStore(t)
	convID := model.NewEphemeralConversationID()

	state := State{Messages: map[string][]model.Message{
		convID: {
			model.NewLocalUserMessage(convID, "question"),
			model.NewProvisionalAssistantMessage(convID),
		},
	}}
	if err := store.Save(state); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := loaded.Messages[convID]; len(got) != 1 {
		t.Errorf("empty provisional survived: %+v", got)
	}
}

// ===== trigger ledger =====

func TestTriggerLedger_DeDup(t *testing.T) {
	store := testStore(t)
	ledger, err := LoadTriggerLedger(store)
	if err != nil {
		t.Fatalf("LoadTriggerLedger: %v", err)
	}

	if ledger.Seen("T", "N") {
		t.Fatal("fresh ledger must not know (T, N)")
	}
	if err := ledger.Record("T", "N"); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if !ledger.Seen("T", "N") {
		t.Fatal("recorded pair not seen")
	}
	if ledger.Seen("T", "other") || ledger.Seen("other", "N") {
		t.Error("different pairs must not match")
	}

	// Survives a reload.
	reloaded, err := LoadTriggerLedger(store)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !reloaded.Seen("T", "N") {
		t.Error("pair lost across reload")
	}
}

func TestTriggerLedger_CapsEntries(t *testing.T) {
	store := testStore(t)
	ledger, _ := LoadTriggerLedger(store)

	for i := 0; i < 15; i++ {
		if err := ledger.Record("question", string(rune('a'+i))); err != nil {
			t.Fatalf("Record %d: %v", i, err)
		}
	}

	if len(ledger.entries) != maxLedgerEntries {
		t.Errorf("entries = %d, want %d", len(ledger.entries), maxLedgerEntries)
	}
	if ledger.Seen("question", "a") {
		t.Error("oldest entry should have been evicted")
	}
	if !ledger.Seen("question", "o") {
		t.Error("newest entry missing")
	}
}
