// Copyright (c) 2025 Million Media
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds all the styled components for the application.
// It detects the terminal's color capability and adjusts accordingly.
type Theme struct {
	IsDark       bool
	ColorProfile termenv.Profile

	// ==========================================================================
	// LAYOUT STYLES
	// ==========================================================================

	Header    lipgloss.Style
	HeaderTag lipgloss.Style
	StatusBar lipgloss.Style
	Notice    lipgloss.Style
	ErrorText lipgloss.Style

	// ==========================================================================
	// SIDEBAR STYLES
	// ==========================================================================

	Sidebar         lipgloss.Style
	SidebarTitle    lipgloss.Style
	SidebarItem     lipgloss.Style
	SidebarSelected lipgloss.Style
	SidebarPin      lipgloss.Style

	// ==========================================================================
	// MESSAGE STYLES
	// ==========================================================================

	UserLabel      lipgloss.Style
	AssistantLabel lipgloss.Style
	Timestamp      lipgloss.Style
	UserBubble     lipgloss.Style
	Thinking       lipgloss.Style

	// ==========================================================================
	// INPUT STYLES
	// ==========================================================================

	InputContainer lipgloss.Style
	InputPrompt    lipgloss.Style

	// ==========================================================================
	// PRODUCT CAROUSEL STYLES
	// ==========================================================================

	ProductCard     lipgloss.Style
	ProductName     lipgloss.Style
	ProductPrice    lipgloss.Style
	ProductSale     lipgloss.Style
	ProductOutStock lipgloss.Style
	ProductMeta     lipgloss.Style
}

// NewTheme builds the theme for the current terminal.
func NewTheme(dark bool) *Theme {
	if dark {
		lipgloss.SetHasDarkBackground(true)
	}

	t := &Theme{
		IsDark:       dark,
		ColorProfile: termenv.ColorProfile(),
	}

	t.Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(Herb).
		Padding(0, 1)
	t.HeaderTag = lipgloss.NewStyle().
		Foreground(TextMuted).
		Padding(0, 1)
	t.StatusBar = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Background(SurfaceDim).
		Padding(0, 1)
	t.Notice = lipgloss.NewStyle().
		Foreground(Amber).
		Italic(true)
	t.ErrorText = lipgloss.NewStyle().
		Foreground(Rose)

	t.Sidebar = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder(), false, true, false, false).
		BorderForeground(Overlay).
		Padding(0, 1)
	t.SidebarTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextSecondary)
	t.SidebarItem = lipgloss.NewStyle().
		Foreground(TextPrimary)
	t.SidebarSelected = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextInverse).
		Background(Herb)
	t.SidebarPin = lipgloss.NewStyle().
		Foreground(Amber)

	t.UserLabel = lipgloss.NewStyle().
		Bold(true).
		Foreground(Sky)
	t.AssistantLabel = lipgloss.NewStyle().
		Bold(true).
		Foreground(Herb)
	t.Timestamp = lipgloss.NewStyle().
		Foreground(TextMuted)
	t.UserBubble = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(SkyDeep).
		Padding(0, 1)
	t.Thinking = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Italic(true)

	t.InputContainer = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)
	t.InputPrompt = lipgloss.NewStyle().
		Bold(true).
		Foreground(Herb)

	t.ProductCard = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)
	t.ProductName = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextPrimary)
	t.ProductPrice = lipgloss.NewStyle().
		Foreground(Herb)
	t.ProductSale = lipgloss.NewStyle().
		Bold(true).
		Foreground(Amber)
	t.ProductOutStock = lipgloss.NewStyle().
		Foreground(Rose)
	t.ProductMeta = lipgloss.NewStyle().
		Foreground(TextMuted)

	return t
}
