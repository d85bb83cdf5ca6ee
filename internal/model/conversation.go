// Copyright (c) 2025 Million Media
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"time"

	"github.com/MillionMedia2/ask-herbie-interface/internal/util"
)

// =============================================================================
// CONVERSATION TYPE
// =============================================================================

// DefaultParticipants is the participant pair of every Herbie conversation.
var DefaultParticipants = []string{SenderUser, SenderAssistant}

// Conversation is one named exchange between the user and Herbie.
//
// The ID is either backend-issued (authenticated flow) or a client-generated
// ephemeral id carrying the temp- prefix (see ids.go). Ephemeral
// conversations live only in local storage and are never mirrored to the
// backend CRUD endpoints.
type Conversation struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Participants []string  `json:"participants"`
	LastMessage  string    `json:"lastMessage,omitempty"`
	UpdatedAt    time.Time `json:"updatedAt"`
	IsPinned     bool      `json:"isPinned"`
}

// NewEphemeralConversation creates a local-only conversation for the
// unauthenticated flow, titled from the first question.
func NewEphemeralConversation(question string) Conversation {
	return Conversation{
		ID:           NewEphemeralConversationID(),
		Title:        ConversationTitle(question),
		Participants: DefaultParticipants,
		UpdatedAt:    time.Now(),
	}
}

// IsEphemeral reports whether the conversation exists only client-side.
func (c Conversation) IsEphemeral() bool {
	return IsEphemeralConversationID(c.ID)
}

// titleWords and titleMaxRunes bound the derived conversation title:
// the first five words of the opening question, cut at 50 characters.
const (
	titleWords    = 5
	titleMaxRunes = 50
)

// ConversationTitle derives a conversation title from the first question.
func ConversationTitle(question string) string {
	words := util.FirstWords(question, titleWords)
	if len([]rune(words)) > titleMaxRunes {
		return string([]rune(words)[:titleMaxRunes]) + "..."
	}
	return words
}
