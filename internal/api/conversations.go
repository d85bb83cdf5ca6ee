// Copyright (c) 2025 Million Media
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"net/http"

	"github.com/MillionMedia2/ask-herbie-interface/internal/model"
)

// =============================================================================
// WIRE TYPES
// =============================================================================

// wireConversation mirrors the backend record. Mongo deployments send the
// id as "_id"; older deployments send "id".
type wireConversation struct {
	MongoID      string   `json:"_id"`
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Participants []string `json:"participants"`
	LastMessage  string   `json:"lastMessage"`
	UpdatedAt    string   `json:"updatedAt"`
	CreatedAt    string   `json:"createdAt"`
	IsPinned     bool     `json:"isPinned"`
}

func (w wireConversation) normalize() model.Conversation {
	id := w.MongoID
	if id == "" {
		id = w.ID
	}
	participants := w.Participants
	if len(participants) == 0 {
		participants = model.DefaultParticipants
	}
	return model.Conversation{
		ID:           id,
		Title:        w.Title,
		Participants: participants,
		LastMessage:  w.LastMessage,
		UpdatedAt:    parseTime(w.UpdatedAt, w.CreatedAt),
		IsPinned:     w.IsPinned,
	}
}

// =============================================================================
// CONVERSATION OPERATIONS
// =============================================================================

// ListConversations fetches every conversation owned by the current user,
// newest first as the backend orders them.
func (c *Client) ListConversations(ctx context.Context) ([]model.Conversation, error) {
	var wire []wireConversation
	if err := c.doEnvelope(ctx, http.MethodGet, "/conversations", nil, &wire); err != nil {
		return nil, err
	}

	conversations := make([]model.Conversation, len(wire))
	for i, w := range wire {
		conversations[i] = w.normalize()
	}
	return conversations, nil
}

// CreateConversationParams are the fields accepted by CreateConversation.
type CreateConversationParams struct {
	Title        string   `json:"title"`
	Participants []string `json:"participants"`

	// UserID associates the conversation with a WordPress account.
	// Omitted when nil.
	UserID *int `json:"userId,omitempty"`
}

// CreateConversation persists a new conversation and returns the record
// with its backend-assigned id.
func (c *Client) CreateConversation(ctx context.Context, params CreateConversationParams) (model.Conversation, error) {
	if len(params.Participants) == 0 {
		params.Participants = model.DefaultParticipants
	}

	var wire wireConversation
	if err := c.doEnvelope(ctx, http.MethodPost, "/conversations", params, &wire); err != nil {
		return model.Conversation{}, err
	}
	return wire.normalize(), nil
}

// UpdateConversationParams carries the mutable conversation fields. Nil
// fields are left untouched by the backend.
type UpdateConversationParams struct {
	Title       *string `json:"title,omitempty"`
	LastMessage *string `json:"lastMessage,omitempty"`
}

// UpdateConversation applies a partial update and returns the refreshed
// record.
func (c *Client) UpdateConversation(ctx context.Context, id string, params UpdateConversationParams) (model.Conversation, error) {
	var wire wireConversation
	if err := c.doEnvelope(ctx, http.MethodPut, "/conversations/"+id, params, &wire); err != nil {
		return model.Conversation{}, err
	}
	return wire.normalize(), nil
}

// PinConversation sets the pinned flag on a conversation.
func (c *Client) PinConversation(ctx context.Context, id string, pinned bool) (model.Conversation, error) {
	body := struct {
		IsPinned bool `json:"isPinned"`
	}{IsPinned: pinned}

	var wire wireConversation
	if err := c.doEnvelope(ctx, http.MethodPatch, "/conversations/"+id+"/pin", body, &wire); err != nil {
		return model.Conversation{}, err
	}
	return wire.normalize(), nil
}

// DeleteConversation removes a conversation and its messages server-side.
func (c *Client) DeleteConversation(ctx context.Context, id string) error {
	return c.doEnvelope(ctx, http.MethodDelete, "/conversations/"+id, nil, nil)
}
