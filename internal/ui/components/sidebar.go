// Copyright (c) 2025 Million Media
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/MillionMedia2/ask-herbie-interface/internal/model"
	"github.com/MillionMedia2/ask-herbie-interface/internal/ui/styles"
)

// =============================================================================
// CONVERSATION SIDEBAR
// =============================================================================

// Sidebar renders the conversation list. Pinned conversations sort first,
// matching the order the store keeps.
type Sidebar struct {
	Conversations []model.Conversation
	ActiveID      string
	CursorID      string
	Width         int
	Height        int
}

// Render returns the sidebar column.
func (s Sidebar) Render(theme *styles.Theme) string {
	var b strings.Builder
	b.WriteString(theme.SidebarTitle.Render("Conversations"))
	b.WriteString("\n")

	inner := s.Width - 4
	if inner < 8 {
		inner = 8
	}

	rows := s.Height - 2
	for i, conv := range s.Conversations {
		if rows > 0 && i >= rows {
			b.WriteString(theme.SidebarItem.Render("..."))
			break
		}

		title := conv.Title
		if title == "" {
			title = "(untitled)"
		}
		if conv.IsPinned {
			title = "* " + title
		}
		title = fitLine(title, inner)

		line := theme.SidebarItem.Render(title)
		switch {
		case conv.ID == s.CursorID:
			line = theme.SidebarSelected.Render(runewidth.FillRight(title, inner))
		case conv.ID == s.ActiveID:
			line = theme.AssistantLabel.Render(title)
		case conv.IsPinned:
			line = theme.SidebarPin.Render(title)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	return theme.Sidebar.Width(s.Width).Height(s.Height).Render(strings.TrimRight(b.String(), "\n"))
}
