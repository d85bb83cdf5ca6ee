// Copyright (c) 2025 Million Media
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strings"
	"testing"
)

func TestConversationTitle(t *testing.T) {
	tests := []struct {
		name     string
		question string
		want     string
	}{
		{"short question kept whole", "What helps with headaches?", "What helps with headaches?"},
		{"cut at five words", "what helps with persistent headaches at night", "what helps with persistent headaches"},
		{"single word", "headaches", "headaches"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ConversationTitle(tt.question); got != tt.want {
				t.Errorf("ConversationTitle(%q) = %q, want %q", tt.question, got, tt.want)
			}
		})
	}
}

func TestConversationTitle_LongWordsTruncated(t *testing.T) {
	q := strings.Repeat("pneumonoultramicroscopic ", 5)
	got := ConversationTitle(q)

	if len([]rune(got)) != 53 { // 50 runes + "..."
		t.Errorf("title length = %d runes (%q)", len([]rune(got)), got)
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("expected ellipsis suffix, got %q", got)
	}
}

func TestIDNamespaces(t *testing.T) {
	convID := NewEphemeralConversationID()
	if !IsEphemeralConversationID(convID) {
		t.Errorf("ephemeral id %q not recognized", convID)
	}

	provisional := NewProvisionalMessageID()
	local := NewLocalUserMessageID()
	for _, id := range []string{provisional, local} {
		if !IsProvisionalMessageID(id) {
			t.Errorf("provisional id %q not recognized", id)
		}
	}

	// Backend-issued ids carry no client prefix.
	if IsProvisionalMessageID("64f1c2ab9d3e4f0012345678") {
		t.Error("backend id misclassified as provisional")
	}
	if IsEphemeralConversationID("64f1c2ab9d3e4f0012345678") {
		t.Error("backend id misclassified as ephemeral")
	}

	// Ids from the same namespace must never repeat.
	if NewProvisionalMessageID() == provisional {
		t.Error("provisional ids must be unique")
	}
}

func TestNewProvisionalAssistantMessage(t *testing.T) {
	msg := NewProvisionalAssistantMessage("conv-1")

	if msg.SenderID != SenderAssistant {
		t.Errorf("SenderID = %q", msg.SenderID)
	}
	if msg.Content != "" {
		t.Errorf("Content = %q, want empty", msg.Content)
	}
	if !msg.IsProvisional() {
		t.Error("assistant placeholder must be provisional")
	}
	if msg.CreatedAt.IsZero() {
		t.Error("CreatedAt not set")
	}
}

func TestProductInStock(t *testing.T) {
	if !(Product{StockStatus: "instock"}).InStock() {
		t.Error("instock product reported out of stock")
	}
	if (Product{StockStatus: "outofstock"}).InStock() {
		t.Error("outofstock product reported in stock")
	}
	if !(Product{}).InStock() {
		t.Error("unknown stock status should count as in stock")
	}
}
