// Copyright (c) 2025 Million Media
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/charmbracelet/glamour"
)

// newMarkdownRenderer builds a glamour renderer wrapped at the transcript
// width. Rendering falls back to the raw text on error so a malformed
// answer never blanks the viewport.
func newMarkdownRenderer(width int) func(string) string {
	if width < 20 {
		width = 20
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return func(md string) string { return md }
	}
	return func(md string) string {
		out, err := renderer.Render(md)
		if err != nil {
			return md
		}
		return out
	}
}
