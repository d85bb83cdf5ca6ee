// Copyright (c) 2025 Million Media
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"time"

	"github.com/MillionMedia2/ask-herbie-interface/internal/util"
)

// =============================================================================
// SENDER IDS
// =============================================================================

// Sender ids as stored by the backend.
const (
	SenderUser      = "user"
	SenderAssistant = "assistant"
)

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message is a single message in a conversation.
//
// Content is mutable only while the message is the trailing provisional
// assistant message of an active streaming session; the session patches it
// with the full accumulated text after each fragment. Everywhere else a
// message is immutable once appended.
type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversationId"`
	SenderID       string    `json:"senderId"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"createdAt"`
}

// NewUserMessage creates a user message for an authenticated conversation.
// The id is provisional until the backend confirms creation.
func NewUserMessage(conversationID, content string) Message {
	return Message{
		ID:             NewProvisionalMessageID(),
		ConversationID: conversationID,
		SenderID:       SenderUser,
		Content:        content,
		CreatedAt:      time.Now(),
	}
}

// NewLocalUserMessage creates a user message that will never be mirrored
// to the backend (unauthenticated flow).
func NewLocalUserMessage(conversationID, content string) Message {
	msg := NewUserMessage(conversationID, content)
	msg.ID = NewLocalUserMessageID()
	return msg
}

// NewProvisionalAssistantMessage creates the empty assistant placeholder a
// streaming session will grow.
func NewProvisionalAssistantMessage(conversationID string) Message {
	return Message{
		ID:             NewProvisionalMessageID(),
		ConversationID: conversationID,
		SenderID:       SenderAssistant,
		CreatedAt:      time.Now(),
	}
}

// IsProvisional reports whether the message still carries a client-issued id.
func (m Message) IsProvisional() bool {
	return IsProvisionalMessageID(m.ID)
}

// Preview returns a rune-safe truncated preview of the content.
func (m Message) Preview(maxRunes int) string {
	return util.TruncateRunes(m.Content, maxRunes)
}
