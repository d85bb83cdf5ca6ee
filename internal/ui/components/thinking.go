// Copyright (c) 2025 Million Media
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"math/rand"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"

	"github.com/MillionMedia2/ask-herbie-interface/internal/ui/styles"
)

// =============================================================================
// THINKING INDICATOR
// =============================================================================

// ThinkingTexts are the phrases the indicator cycles through while waiting
// for the first token of an answer.
var ThinkingTexts = []string{
	"Thinking...",
	"Consulting the herb garden...",
	"Leafing through remedies...",
	"Checking the apothecary shelves...",
	"Steeping on it...",
	"Picking the right blend...",
	"Asking the chamomile...",
}

// ThinkingCycleInterval is how often the phrase changes.
const ThinkingCycleInterval = 2 * time.Second

// ThinkingIndicator is the animated waiting line shown between sending a
// question and receiving the first streamed token.
type ThinkingIndicator struct {
	Spinner spinner.Model
	text    string
}

// NewThinkingIndicator creates the indicator with a dot spinner.
func NewThinkingIndicator(theme *styles.Theme) ThinkingIndicator {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(styles.Herb)
	return ThinkingIndicator{
		Spinner: s,
		text:    ThinkingTexts[0],
	}
}

// CyclePhrase picks a new random phrase.
func (t *ThinkingIndicator) CyclePhrase() {
	t.text = ThinkingTexts[rand.Intn(len(ThinkingTexts))]
}

// View renders the spinner and current phrase.
func (t ThinkingIndicator) View(theme *styles.Theme) string {
	return t.Spinner.View() + theme.Thinking.Render(t.text)
}
