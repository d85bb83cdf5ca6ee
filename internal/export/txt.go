// Copyright (c) 2025 Million Media
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"strings"
	"time"

	"github.com/MillionMedia2/ask-herbie-interface/internal/model"
)

// TXTExporter renders a plain-text transcript.
type TXTExporter struct{}

func (e *TXTExporter) Export(conv model.Conversation, messages []model.Message) ([]byte, error) {
	var b strings.Builder

	b.WriteString("Chat: " + conv.Title + "\n")
	b.WriteString("Exported: " + time.Now().Format("2006-01-02 15:04:05") + "\n")
	b.WriteString(strings.Repeat("=", 50) + "\n\n")

	for _, msg := range messages {
		b.WriteString("[" + msg.CreatedAt.Format("2006-01-02 15:04") + "] " + senderLabel(msg.SenderID) + ":\n")
		b.WriteString(stripCitations(msg.Content))
		b.WriteString("\n\n")
	}

	return []byte(b.String()), nil
}

func (e *TXTExporter) FileExtension() string { return ".txt" }
