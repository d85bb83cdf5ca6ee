// Copyright (c) 2025 Million Media
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"unicode/utf8"
)

// =============================================================================
// TYPEWRITER REVEAL
// =============================================================================

// typewriterRunesPerTick is how many runes each stream tick reveals. At the
// 33ms tick cadence this reads at roughly 90 characters per second.
const typewriterRunesPerTick = 3

// Typewriter reveals a growing streamed answer a few runes per tick instead
// of repainting the whole accumulated text at once. The reveal never runs
// ahead of the accumulated content, and switching messages resets it.
type Typewriter struct {
	messageID string
	revealed  int
}

// Advance moves the reveal forward for the given message and returns the
// currently visible prefix. A new message id restarts from zero.
func (t *Typewriter) Advance(messageID, content string) string {
	if messageID != t.messageID {
		t.messageID = messageID
		t.revealed = 0
	}

	total := utf8.RuneCountInString(content)
	t.revealed += typewriterRunesPerTick
	if t.revealed >= total {
		t.revealed = total
		return content
	}
	return string([]rune(content)[:t.revealed])
}

// Done reports whether the reveal has caught up with the content.
func (t *Typewriter) Done(content string) bool {
	return t.revealed >= utf8.RuneCountInString(content)
}

// Reset clears the reveal state.
func (t *Typewriter) Reset() {
	t.messageID = ""
	t.revealed = 0
}
