// Copyright (c) 2025 Million Media
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"sync"

	"github.com/MillionMedia2/ask-herbie-interface/internal/model"
)

// =============================================================================
// MESSAGE STORE
// =============================================================================

// MessageStore holds message timelines keyed by conversation id, each in
// chronological order.
type MessageStore struct {
	Notifier

	mu             sync.RWMutex
	byConversation map[string][]model.Message
}

// NewMessageStore returns an empty store.
func NewMessageStore() *MessageStore {
	return &MessageStore{byConversation: make(map[string][]model.Message)}
}

// SetMessages replaces the whole timeline of one conversation.
func (s *MessageStore) SetMessages(conversationID string, messages []model.Message) {
	s.mu.Lock()
	s.byConversation[conversationID] = append([]model.Message(nil), messages...)
	s.mu.Unlock()
	s.Notify()
}

// Append adds a message to the end of its conversation's timeline.
func (s *MessageStore) Append(msg model.Message) {
	s.mu.Lock()
	s.byConversation[msg.ConversationID] = append(s.byConversation[msg.ConversationID], msg)
	s.mu.Unlock()
	s.Notify()
}

// PatchMessage carries partial updates for Patch. Nil fields are left
// untouched.
type PatchMessage struct {
	Content *string
}

// Patch applies a partial update to one message. A missing conversation or
// message id is a silent no-op; a stream tick may race a deletion and must
// not fault.
func (s *MessageStore) Patch(conversationID, id string, patch PatchMessage) {
	s.mu.Lock()
	timeline := s.byConversation[conversationID]
	for i := range timeline {
		if timeline[i].ID == id {
			if patch.Content != nil {
				timeline[i].Content = *patch.Content
			}
			break
		}
	}
	s.mu.Unlock()
	s.Notify()
}

// Replace swaps the message identified by oldID for msg, keeping its
// position in the timeline. Used when a provisional message is confirmed by
// the backend under a new id.
func (s *MessageStore) Replace(conversationID, oldID string, msg model.Message) {
	s.mu.Lock()
	timeline := s.byConversation[conversationID]
	for i := range timeline {
		if timeline[i].ID == oldID {
			timeline[i] = msg
			break
		}
	}
	s.mu.Unlock()
	s.Notify()
}

// Remove drops one message from its conversation's timeline.
func (s *MessageStore) Remove(conversationID, id string) {
	s.mu.Lock()
	timeline := s.byConversation[conversationID]
	kept := timeline[:0]
	for _, msg := range timeline {
		if msg.ID != id {
			kept = append(kept, msg)
		}
	}
	if len(kept) > 0 {
		s.byConversation[conversationID] = kept
	} else {
		delete(s.byConversation, conversationID)
	}
	s.mu.Unlock()
	s.Notify()
}

// Clear drops the whole timeline of one conversation.
func (s *MessageStore) Clear(conversationID string) {
	s.mu.Lock()
	delete(s.byConversation, conversationID)
	s.mu.Unlock()
	s.Notify()
}

// Get returns one message by id.
func (s *MessageStore) Get(conversationID, id string) (model.Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, msg := range s.byConversation[conversationID] {
		if msg.ID == id {
			return msg, true
		}
	}
	return model.Message{}, false
}

// List returns a copy of one conversation's timeline in order.
func (s *MessageStore) List(conversationID string) []model.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Message(nil), s.byConversation[conversationID]...)
}

// Has reports whether a timeline exists for the conversation, even an
// empty one set by an explicit fetch.
func (s *MessageStore) Has(conversationID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.byConversation[conversationID]
	return ok
}
