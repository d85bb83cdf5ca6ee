// Copyright (c) 2025 Million Media
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"strings"
	"time"

	"github.com/MillionMedia2/ask-herbie-interface/internal/model"
)

// MarkdownExporter renders a Markdown transcript. Assistant messages are
// already Markdown and pass through untouched apart from citation stripping.
type MarkdownExporter struct{}

func (e *MarkdownExporter) Export(conv model.Conversation, messages []model.Message) ([]byte, error) {
	var b strings.Builder

	b.WriteString("# " + conv.Title + "\n\n")
	b.WriteString("*Exported: " + time.Now().Format("2006-01-02 15:04:05") + "*\n\n")
	b.WriteString("---\n\n")

	for _, msg := range messages {
		b.WriteString("### " + senderLabel(msg.SenderID))
		b.WriteString(" `" + msg.CreatedAt.Format("2006-01-02 15:04") + "`\n\n")
		b.WriteString(stripCitations(msg.Content))
		b.WriteString("\n\n")
	}

	return []byte(b.String()), nil
}

func (e *MarkdownExporter) FileExtension() string { return ".md" }
