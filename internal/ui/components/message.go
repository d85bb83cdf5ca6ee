// Copyright (c) 2025 Million Media
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/MillionMedia2/ask-herbie-interface/internal/model"
	"github.com/MillionMedia2/ask-herbie-interface/internal/ui/styles"
)

// =============================================================================
// MESSAGE RENDERING
// =============================================================================

// MarkdownRenderer turns assistant Markdown into terminal output. The chat
// view passes in a glamour-backed renderer; tests can pass the identity.
type MarkdownRenderer func(markdown string) string

// MessageView renders one transcript message.
type MessageView struct {
	Message        model.Message
	Width          int
	ShowTimestamp  bool
	RenderMarkdown MarkdownRenderer
}

// Render returns the message block, label line plus content.
func (v MessageView) Render(theme *styles.Theme) string {
	var b strings.Builder

	label := theme.AssistantLabel.Render("Herbie")
	if v.Message.SenderID == model.SenderUser {
		label = theme.UserLabel.Render("You")
	}
	b.WriteString(label)
	if v.ShowTimestamp && !v.Message.CreatedAt.IsZero() {
		b.WriteString("  ")
		b.WriteString(theme.Timestamp.Render(v.Message.CreatedAt.Format("15:04")))
	}
	b.WriteString("\n")

	if v.Message.SenderID == model.SenderUser {
		bubble := theme.UserBubble.MaxWidth(v.Width)
		b.WriteString(bubble.Render(v.Message.Content))
	} else {
		content := v.Message.Content
		if v.RenderMarkdown != nil {
			content = v.RenderMarkdown(content)
		}
		b.WriteString(strings.TrimRight(content, "\n"))
	}

	return b.String()
}

// RenderTranscript renders a full message list separated by blank lines.
func RenderTranscript(theme *styles.Theme, messages []model.Message, width int, showTimestamps bool, render MarkdownRenderer) string {
	blocks := make([]string, 0, len(messages))
	for _, msg := range messages {
		blocks = append(blocks, MessageView{
			Message:        msg,
			Width:          width,
			ShowTimestamp:  showTimestamps,
			RenderMarkdown: render,
		}.Render(theme))
	}
	return lipgloss.JoinVertical(lipgloss.Left, strings.Join(blocks, "\n\n"))
}
