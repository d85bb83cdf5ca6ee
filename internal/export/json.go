// Copyright (c) 2025 Million Media
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"time"

	"github.com/MillionMedia2/ask-herbie-interface/internal/model"
)

// JSONExporter renders the transcript as a machine-readable document.
type JSONExporter struct{}

type jsonTranscript struct {
	Conversation model.Conversation `json:"conversation"`
	ExportedAt   time.Time          `json:"exportedAt"`
	Messages     []jsonMessage      `json:"messages"`
}

type jsonMessage struct {
	ID        string    `json:"id"`
	Sender    string    `json:"sender"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

func (e *JSONExporter) Export(conv model.Conversation, messages []model.Message) ([]byte, error) {
	doc := jsonTranscript{
		Conversation: conv,
		ExportedAt:   time.Now(),
		Messages:     make([]jsonMessage, 0, len(messages)),
	}
	for _, msg := range messages {
		doc.Messages = append(doc.Messages, jsonMessage{
			ID:        msg.ID,
			Sender:    senderLabel(msg.SenderID),
			Content:   stripCitations(msg.Content),
			CreatedAt: msg.CreatedAt,
		})
	}
	return json.MarshalIndent(doc, "", "  ")
}

func (e *JSONExporter) FileExtension() string { return ".json" }
