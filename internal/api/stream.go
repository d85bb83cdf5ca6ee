// Copyright (c) 2025 Million Media
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
)

// =============================================================================
// ANSWER STREAM
// =============================================================================

// AskRequest is the body of a streaming question.
type AskRequest struct {
	Question string `json:"question"`

	// ConversationID is the backend conversation-context id returned by a
	// previous stream, not a local conversation id. Omitted on the first
	// question of a conversation.
	ConversationID string `json:"conversationId,omitempty"`
}

// AskStream opens the server-sent event stream for one question and returns
// the raw body for the stream decoder to consume. The caller must close the
// returned body; closing it is also how an abandoned stream is released,
// since questions are never cancelled mid-flight.
func (c *Client) AskStream(ctx context.Context, params AskRequest) (io.ReadCloser, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, normalizeError(err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, c.config.BaseURL+"/ask/stream", params)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.streamClient.Do(req)
	if err != nil {
		return nil, normalizeError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()

		var failure struct {
			Message string `json:"message"`
		}
		_ = json.Unmarshal(raw, &failure)
		return nil, serverError(resp.StatusCode, failure.Message)
	}

	return resp.Body, nil
}
