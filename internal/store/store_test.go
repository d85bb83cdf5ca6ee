// Copyright (c) 2025 Million Media
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"testing"
	"time"

	"github.com/MillionMedia2/ask-herbie-interface/internal/model"
)

func conv(id, title string) model.Conversation {
	return model.Conversation{
		ID:           id,
		Title:        title,
		Participants: model.DefaultParticipants,
		UpdatedAt:    time.Now(),
	}
}

func msg(conversationID, id, content string) model.Message {
	return model.Message{
		ID:             id,
		ConversationID: conversationID,
		SenderID:       model.SenderUser,
		Content:        content,
		CreatedAt:      time.Now(),
	}
}

// ===== conversations =====

func TestConversationStore_AddPutsNewestFirst(t *testing.T) {
	s := NewConversationStore()
	s.Add(conv("a", "first"))
	s.Add(conv("b", "second"))

	list := s.List()
	if len(list) != 2 || list[0].ID != "b" || list[1].ID != "a" {
		t.Errorf("order = %v", list)
	}
}

func TestConversationStore_RemoveClearsActive(t *testing.T) {
	s := NewConversationStore()
	s.Add(conv("a", "alpha"))
	s.SetActive("a")

	s.Remove("a")

	if s.Len() != 0 {
		t.Errorf("len = %d, want 0", s.Len())
	}
	if s.ActiveID() != "" {
		t.Errorf("active = %q, want empty", s.ActiveID())
	}
}

func TestConversationStore_TogglePin(t *testing.T) {
	s := NewConversationStore()
	s.Add(conv("a", "alpha"))

	pinned, ok := s.TogglePin("a")
	if !ok || !pinned {
		t.Errorf("TogglePin = %v, %v", pinned, ok)
	}
	pinned, ok = s.TogglePin("a")
	if !ok || pinned {
		t.Errorf("second TogglePin = %v, %v", pinned, ok)
	}
	if _, ok := s.TogglePin("missing"); ok {
		t.Error("TogglePin on missing id must report ok=false")
	}
}

func TestConversationStore_NotifiesSubscribers(t *testing.T) {
	s := NewConversationStore()

	calls := 0
	unsubscribe := s.Subscribe(func() { calls++ })

	s.Add(conv("a", "alpha"))
	s.Rename("a", "renamed")
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}

	unsubscribe()
	s.Remove("a")
	if calls != 2 {
		t.Errorf("calls after unsubscribe = %d, want 2", calls)
	}
}

// ===== messages =====

func TestMessageStore_PatchMissingIsNoOp(t *testing.T) {
	s := NewMessageStore()
	s.Append(msg("conv1", "m1", "hello"))

	content := "changed"
	s.Patch("conv1", "missing", PatchMessage{Content: &content})
	s.Patch("other", "m1", PatchMessage{Content: &content})

	got, _ := s.Get("conv1", "m1")
	if got.Content != "hello" {
		t.Errorf("content = %q, want hello", got.Content)
	}
}

func TestMessageStore_PatchUpdatesContent(t *testing.T) {
	s := NewMessageStore()
	s.Append(msg("conv1", "m1", ""))

	for _, fragment := range []string{"Ginger ", "Ginger root ", "Ginger root tea."} {
		f := fragment
		s.Patch("conv1", "m1", PatchMessage{Content: &f})
	}

	got, _ := s.Get("conv1", "m1")
	if got.Content != "Ginger root tea." {
		t.Errorf("content = %q", got.Content)
	}
}

func TestMessageStore_ReplaceKeepsPosition(t *testing.T) {
	s := NewMessageStore()
	s.Append(msg("conv1", "u1", "question"))
	s.Append(msg("conv1", "temp-a1", "answer"))

	persisted := msg("conv1", "srv-a1", "answer")
	s.Replace("conv1", "temp-a1", persisted)

	list := s.List("conv1")
	if len(list) != 2 || list[1].ID != "srv-a1" {
		t.Errorf("timeline = %v", list)
	}
}

func TestMessageStore_ListReturnsCopy(t *testing.T) {
	s := NewMessageStore()
	s.Append(msg("conv1", "m1", "hi"))

	list := s.List("conv1")
	list[0].Content = "mutated"

	got, _ := s.Get("conv1", "m1")
	if got.Content != "hi" {
		t.Error("List leaked internal state")
	}
}

// ===== products =====

func TestProductStore_UpsertReplacesByMessageID(t *testing.T) {
	s := NewProductStore()
	s.Upsert("conv1", model.ProductAttachment{MessageID: "m1", Category: "sleep", IsVisible: true})
	s.Upsert("conv1", model.ProductAttachment{MessageID: "m2", Category: "joints", IsVisible: true})
	s.Upsert("conv1", model.ProductAttachment{MessageID: "m1", Category: "stress", IsVisible: true})

	list := s.List("conv1")
	if len(list) != 2 {
		t.Fatalf("len = %d, want 2", len(list))
	}
	if list[0].Category != "stress" {
		t.Errorf("category = %q, want stress", list[0].Category)
	}
}

func TestProductStore_Visibility(t *testing.T) {
	s := NewProductStore()
	s.Upsert("conv1", model.ProductAttachment{MessageID: "m1", IsVisible: true})

	s.SetVisibility("conv1", "m1", false)
	att, ok := s.ForMessage("conv1", "m1")
	if !ok || att.IsVisible {
		t.Errorf("attachment = %+v, ok=%v", att, ok)
	}

	// Unknown ids must not fault.
	s.SetVisibility("conv1", "missing", true)
	s.SetVisibility("other", "m1", true)
}
