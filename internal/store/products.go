// Copyright (c) 2025 Million Media
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"sync"

	"github.com/MillionMedia2/ask-herbie-interface/internal/model"
)

// =============================================================================
// PRODUCT STORE
// =============================================================================

// ProductStore holds product recommendations keyed by conversation id.
// Each conversation carries at most one attachment per message id.
type ProductStore struct {
	Notifier

	mu             sync.RWMutex
	byConversation map[string][]model.ProductAttachment
}

// NewProductStore returns an empty store.
func NewProductStore() *ProductStore {
	return &ProductStore{byConversation: make(map[string][]model.ProductAttachment)}
}

// Upsert adds an attachment, replacing any existing one for the same
// message id so a re-classified answer never shows duplicate carousels.
func (s *ProductStore) Upsert(conversationID string, attachment model.ProductAttachment) {
	s.mu.Lock()
	list := s.byConversation[conversationID]
	replaced := false
	for i := range list {
		if list[i].MessageID == attachment.MessageID {
			list[i] = attachment
			replaced = true
			break
		}
	}
	if !replaced {
		s.byConversation[conversationID] = append(list, attachment)
	}
	s.mu.Unlock()
	s.Notify()
}

// SetVisibility shows or hides one attachment. Unknown ids are a silent
// no-op.
func (s *ProductStore) SetVisibility(conversationID, messageID string, visible bool) {
	s.mu.Lock()
	list := s.byConversation[conversationID]
	for i := range list {
		if list[i].MessageID == messageID {
			list[i].IsVisible = visible
			break
		}
	}
	s.mu.Unlock()
	s.Notify()
}

// Clear drops every attachment of one conversation.
func (s *ProductStore) Clear(conversationID string) {
	s.mu.Lock()
	delete(s.byConversation, conversationID)
	s.mu.Unlock()
	s.Notify()
}

// ForMessage returns the attachment tied to one message.
func (s *ProductStore) ForMessage(conversationID, messageID string) (model.ProductAttachment, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, att := range s.byConversation[conversationID] {
		if att.MessageID == messageID {
			return att, true
		}
	}
	return model.ProductAttachment{}, false
}

// List returns a copy of one conversation's attachments in arrival order.
func (s *ProductStore) List(conversationID string) []model.ProductAttachment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.ProductAttachment(nil), s.byConversation[conversationID]...)
}
