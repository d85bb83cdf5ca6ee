// Copyright (c) 2025 Million Media
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/MillionMedia2/ask-herbie-interface/internal/model"
	"github.com/MillionMedia2/ask-herbie-interface/internal/ui/styles"
)

// =============================================================================
// PRODUCT CAROUSEL
// =============================================================================

const (
	// productCardWidth is the inner text width of one card.
	productCardWidth = 26

	// maxVisibleCards bounds how many cards fit in one carousel row before
	// the remainder is summarized.
	maxVisibleCards = 3
)

// Carousel renders one product attachment as a horizontal row of cards.
type Carousel struct {
	Attachment model.ProductAttachment
	Width      int
}

// Render returns the carousel, or an empty string when the attachment is
// collapsed.
func (c Carousel) Render(theme *styles.Theme) string {
	if !c.Attachment.IsVisible || len(c.Attachment.Products) == 0 {
		return ""
	}

	visible := maxVisibleCards
	if c.Width > 0 {
		fit := c.Width / (productCardWidth + 4)
		if fit >= 1 && fit < visible {
			visible = fit
		}
	}

	products := c.Attachment.Products
	cards := make([]string, 0, visible)
	for i, p := range products {
		if i == visible {
			break
		}
		cards = append(cards, renderCard(theme, p))
	}

	row := lipgloss.JoinHorizontal(lipgloss.Top, cards...)

	header := theme.ProductMeta.Render(
		fmt.Sprintf("Recommended in %s (%d found)", c.Attachment.Category, c.Attachment.Count))
	parts := []string{header, row}

	if rest := len(products) - visible; rest > 0 {
		parts = append(parts, theme.ProductMeta.Render(fmt.Sprintf("...and %d more", rest)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// renderCard renders one product card.
func renderCard(theme *styles.Theme, p model.Product) string {
	var b strings.Builder

	b.WriteString(theme.ProductName.Render(fitLine(p.Name, productCardWidth)))
	b.WriteString("\n")

	price := theme.ProductPrice.Render("$" + p.Price)
	if p.OnSale && p.RegularPrice != "" {
		price = theme.ProductSale.Render("$"+p.Price) +
			theme.ProductMeta.Render(" (was $"+p.RegularPrice+")")
	}
	b.WriteString(price)
	b.WriteString("\n")

	if p.InStock() {
		stock := "In stock"
		if p.StockQuantity != nil {
			stock = fmt.Sprintf("In stock (%d)", *p.StockQuantity)
		}
		b.WriteString(theme.ProductMeta.Render(stock))
	} else {
		b.WriteString(theme.ProductOutStock.Render("Out of stock"))
	}

	if p.Brand != "" {
		b.WriteString("\n")
		b.WriteString(theme.ProductMeta.Render(fitLine(p.Brand, productCardWidth)))
	}

	return theme.ProductCard.Width(productCardWidth + 2).Render(b.String())
}

// fitLine truncates a line to the card width, display-width aware.
func fitLine(s string, width int) string {
	if runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width-3, "") + "..."
}
