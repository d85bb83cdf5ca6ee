// Copyright (c) 2025 Million Media
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/MillionMedia2/ask-herbie-interface/internal/model"
)

// =============================================================================
// WIRE TYPES
// =============================================================================

// wireMessage mirrors the backend message record. Populated queries return
// conversationId as an embedded object rather than a plain string, so the
// field is decoded in two passes.
type wireMessage struct {
	MongoID        string          `json:"_id"`
	ID             string          `json:"id"`
	ConversationID json.RawMessage `json:"conversationId"`
	SenderID       string          `json:"senderId"`
	Content        string          `json:"content"`
	CreatedAt      string          `json:"createdAt"`
}

func (w wireMessage) normalize(fallbackConversationID string) model.Message {
	id := w.MongoID
	if id == "" {
		id = w.ID
	}

	conversationID := fallbackConversationID
	if len(w.ConversationID) > 0 {
		var plain string
		if err := json.Unmarshal(w.ConversationID, &plain); err == nil && plain != "" {
			conversationID = plain
		} else {
			var embedded struct {
				MongoID string `json:"_id"`
				ID      string `json:"id"`
			}
			if err := json.Unmarshal(w.ConversationID, &embedded); err == nil {
				if embedded.MongoID != "" {
					conversationID = embedded.MongoID
				} else if embedded.ID != "" {
					conversationID = embedded.ID
				}
			}
		}
	}

	return model.Message{
		ID:             id,
		ConversationID: conversationID,
		SenderID:       w.SenderID,
		Content:        w.Content,
		CreatedAt:      parseTime(w.CreatedAt, ""),
	}
}

// =============================================================================
// MESSAGE OPERATIONS
// =============================================================================

// ListMessages fetches the full message history of one conversation in
// chronological order.
func (c *Client) ListMessages(ctx context.Context, conversationID string) ([]model.Message, error) {
	var wire []wireMessage
	if err := c.doEnvelope(ctx, http.MethodGet, "/messages/"+conversationID, nil, &wire); err != nil {
		return nil, err
	}

	messages := make([]model.Message, len(wire))
	for i, w := range wire {
		messages[i] = w.normalize(conversationID)
	}
	return messages, nil
}

// CreateMessageParams are the fields accepted by CreateMessage.
type CreateMessageParams struct {
	ConversationID string `json:"conversationId"`
	SenderID       string `json:"senderId"`
	Content        string `json:"content"`
}

// CreateMessage persists one message and returns the record with its
// backend-assigned id.
func (c *Client) CreateMessage(ctx context.Context, params CreateMessageParams) (model.Message, error) {
	var wire wireMessage
	if err := c.doEnvelope(ctx, http.MethodPost, "/messages", params, &wire); err != nil {
		return model.Message{}, err
	}
	return wire.normalize(params.ConversationID), nil
}
