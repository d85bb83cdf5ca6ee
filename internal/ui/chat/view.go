// Copyright (c) 2025 Million Media
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/MillionMedia2/ask-herbie-interface/internal/model"
	"github.com/MillionMedia2/ask-herbie-interface/internal/ui/components"
)

// View renders the full screen.
func (m *Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := m.theme.Header.Render("Ask Herbie") +
		m.theme.HeaderTag.Render("herbal advice, straight from the garden")

	sidebar := components.Sidebar{
		Conversations: m.opts.Conversations.List(),
		ActiveID:      m.activeConversationID(),
		CursorID:      m.sidebarCursorID(),
		Width:         sidebarWidth,
		Height:        m.viewport.Height,
	}.Render(m.theme)

	body := lipgloss.JoinHorizontal(lipgloss.Top, sidebar, m.viewport.View())

	input := m.theme.InputContainer.
		Width(m.viewport.Width - 2).
		Render(m.input.View())

	notice := m.opts.Controller.Notice()
	if m.statusErr != "" {
		notice = m.statusErr
	}
	status := components.StatusBar{
		Account:   m.accountName(),
		Streaming: m.opts.Controller.StreamingMessageID() != "",
		Notice:    notice,
		Width:     m.width,
	}.Render(m.theme)

	return lipgloss.JoinVertical(lipgloss.Left, header, body, input, status)
}

// sidebarCursorID returns the cursor id only when the sidebar has focus.
func (m *Model) sidebarCursorID() string {
	if m.focus != focusSidebar {
		return ""
	}
	return m.cursorConversationID()
}

// accountName returns the display name for the status bar.
func (m *Model) accountName() string {
	if !m.opts.Controller.Authenticated() {
		return ""
	}
	return "signed in"
}

// =============================================================================
// TRANSCRIPT
// =============================================================================

// rebuild repaints the viewport from the stores and updates the scroll
// controller's geometry.
func (m *Model) rebuild() {
	if m.viewport.Width == 0 {
		return
	}

	if m.overlay != "" {
		m.viewport.SetContent(m.overlay)
		m.scroll.SetGeometry(m.viewport.YOffset, m.contentHeight(), m.viewport.Height)
		return
	}

	convID := m.activeConversationID()
	messages := m.opts.Messages.List(convID)
	streamingID := m.opts.Controller.StreamingMessageID()

	var blocks []string
	for _, msg := range messages {
		msg := msg
		if m.opts.Config.UI.Typewriter && msg.ID == streamingID && m.streamingHere() {
			msg.Content = m.typewriter.Advance(msg.ID, msg.Content)
		}
		blocks = append(blocks, components.MessageView{
			Message:        msg,
			Width:          m.viewport.Width - 2,
			ShowTimestamp:  m.opts.Config.UI.ShowTimestamps,
			RenderMarkdown: m.assistantRenderer(msg),
		}.Render(m.theme))

		if attachment, ok := m.opts.Products.ForMessage(convID, msg.ID); ok {
			if carousel := (components.Carousel{
				Attachment: attachment,
				Width:      m.viewport.Width - 2,
			}).Render(m.theme); carousel != "" {
				blocks = append(blocks, carousel)
			}
		}
	}

	if m.opts.Controller.IsLoading(convID) {
		blocks = append(blocks, m.thinking.View(m.theme))
	}

	if len(blocks) == 0 {
		blocks = append(blocks, m.theme.Thinking.Render(
			"Ask a question to start a new conversation."))
	}

	m.viewport.SetContent(strings.Join(blocks, "\n\n"))
	m.scroll.SetGeometry(m.viewport.YOffset, m.contentHeight(), m.viewport.Height)
}

// assistantRenderer returns the Markdown renderer for assistant messages.
// The still-growing streamed message stays plain so partial Markdown does
// not flicker through half-parsed states.
func (m *Model) assistantRenderer(msg model.Message) components.MarkdownRenderer {
	if msg.SenderID != model.SenderAssistant {
		return nil
	}
	if msg.ID == m.opts.Controller.StreamingMessageID() {
		return nil
	}
	return m.renderMarkdown
}

// contentHeight is the total line count of the viewport content.
func (m *Model) contentHeight() int {
	return m.viewport.TotalLineCount()
}
