// Copyright (c) 2025 Million Media
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"sync"

	"github.com/MillionMedia2/ask-herbie-interface/internal/model"
)

// =============================================================================
// CONVERSATION STORE
// =============================================================================

// ConversationStore holds the sidebar list and the active selection.
// Ordering is insertion order: new conversations go to the front, fetched
// lists keep the backend's order.
type ConversationStore struct {
	Notifier

	mu       sync.RWMutex
	list     []model.Conversation
	activeID string
}

// NewConversationStore returns an empty store.
func NewConversationStore() *ConversationStore {
	return &ConversationStore{}
}

// SetAll replaces the whole list, keeping the given order.
func (s *ConversationStore) SetAll(conversations []model.Conversation) {
	s.mu.Lock()
	s.list = append([]model.Conversation(nil), conversations...)
	s.mu.Unlock()
	s.Notify()
}

// Add puts a conversation at the front of the list.
func (s *ConversationStore) Add(conv model.Conversation) {
	s.mu.Lock()
	s.list = append([]model.Conversation{conv}, s.list...)
	s.mu.Unlock()
	s.Notify()
}

// Update overwrites the conversation with the same id. Unknown ids are a
// silent no-op.
func (s *ConversationStore) Update(conv model.Conversation) {
	s.mu.Lock()
	for i := range s.list {
		if s.list[i].ID == conv.ID {
			s.list[i] = conv
			break
		}
	}
	s.mu.Unlock()
	s.Notify()
}

// Rename sets the title of one conversation.
func (s *ConversationStore) Rename(id, title string) {
	s.mu.Lock()
	for i := range s.list {
		if s.list[i].ID == id {
			s.list[i].Title = title
			break
		}
	}
	s.mu.Unlock()
	s.Notify()
}

// TogglePin flips the pinned flag and returns the new value. ok is false
// for unknown ids.
func (s *ConversationStore) TogglePin(id string) (pinned, ok bool) {
	s.mu.Lock()
	for i := range s.list {
		if s.list[i].ID == id {
			s.list[i].IsPinned = !s.list[i].IsPinned
			pinned, ok = s.list[i].IsPinned, true
			break
		}
	}
	s.mu.Unlock()
	s.Notify()
	return pinned, ok
}

// Remove drops a conversation from the list. If it was active, the
// selection is cleared.
func (s *ConversationStore) Remove(id string) {
	s.mu.Lock()
	kept := s.list[:0]
	for _, conv := range s.list {
		if conv.ID != id {
			kept = append(kept, conv)
		}
	}
	s.list = kept
	if s.activeID == id {
		s.activeID = ""
	}
	s.mu.Unlock()
	s.Notify()
}

// SetActive selects a conversation; the empty string clears the selection.
func (s *ConversationStore) SetActive(id string) {
	s.mu.Lock()
	s.activeID = id
	s.mu.Unlock()
	s.Notify()
}

// ActiveID returns the selected conversation id, or "" when none.
func (s *ConversationStore) ActiveID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeID
}

// Get returns the conversation with the given id.
func (s *ConversationStore) Get(id string) (model.Conversation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, conv := range s.list {
		if conv.ID == id {
			return conv, true
		}
	}
	return model.Conversation{}, false
}

// List returns a copy of the list in display order.
func (s *ConversationStore) List() []model.Conversation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Conversation(nil), s.list...)
}

// Len returns the number of conversations.
func (s *ConversationStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.list)
}
