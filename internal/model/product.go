// Copyright (c) 2025 Million Media
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// =============================================================================
// PRODUCT TYPES
// =============================================================================

// Product is one recommended store product as returned by the
// classify-products endpoint (WooCommerce-shaped).
type Product struct {
	ID            int            `json:"id"`
	Name          string         `json:"name"`
	Slug          string         `json:"slug,omitempty"`
	Permalink     string         `json:"permalink"`
	Price         string         `json:"price"`
	RegularPrice  string         `json:"regular_price,omitempty"`
	SalePrice     string         `json:"sale_price,omitempty"`
	StockQuantity *int           `json:"stock_quantity,omitempty"`
	StockStatus   string         `json:"stock_status,omitempty"`
	OnSale        bool           `json:"on_sale,omitempty"`
	Category      string         `json:"category,omitempty"`
	Brand         string         `json:"brand,omitempty"`
	Images        []ProductImage `json:"images,omitempty"`
}

// ProductImage is a product gallery entry.
type ProductImage struct {
	ID  int    `json:"id,omitempty"`
	Src string `json:"src"`
}

// InStock reports whether the product can currently be bought.
func (p Product) InStock() bool {
	return p.StockStatus == "" || p.StockStatus == "instock"
}

// ProductAttachment is the set of recommended products tied to one
// assistant message. At most one attachment exists per message id;
// collapsing an attachment only flips IsVisible, the data stays.
type ProductAttachment struct {
	MessageID string    `json:"messageId"`
	Category  string    `json:"category"`
	Count     int       `json:"count"`
	Products  []Product `json:"products"`
	IsVisible bool      `json:"isVisible"`
}
