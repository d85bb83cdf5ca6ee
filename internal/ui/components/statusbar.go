// Copyright (c) 2025 Million Media
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/MillionMedia2/ask-herbie-interface/internal/ui/styles"
)

// =============================================================================
// STATUS BAR
// =============================================================================

// StatusBar renders the bottom status line.
type StatusBar struct {
	// Account is the display name, or empty in the unauthenticated flow.
	Account string
	// Streaming reports an answer in flight.
	Streaming bool
	// Notice is a transient message, e.g. the no-products notice.
	Notice string
	Width  int
}

// Render returns the status bar line padded to Width.
func (s StatusBar) Render(theme *styles.Theme) string {
	var parts []string

	if s.Account != "" {
		parts = append(parts, s.Account)
	} else {
		parts = append(parts, "guest")
	}
	if s.Streaming {
		parts = append(parts, "streaming")
	}
	parts = append(parts, "ctrl+n new | ctrl+p pin | ctrl+e export | ctrl+c quit")

	line := strings.Join(parts, "  |  ")
	if s.Notice != "" {
		line = theme.Notice.Render(s.Notice) + "  " + line
	}

	if s.Width > 0 {
		line = runewidth.Truncate(line, s.Width, "...")
	}
	return theme.StatusBar.Width(s.Width).Render(line)
}
