// Copyright (c) 2025 Million Media
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/MillionMedia2/ask-herbie-interface/internal/model"
	"github.com/MillionMedia2/ask-herbie-interface/internal/util"
)

// =============================================================================
// FORMATS
// =============================================================================

// Format names an export format.
type Format string

const (
	FormatTXT      Format = "txt"
	FormatMarkdown Format = "md"
	FormatJSON     Format = "json"
	FormatHTML     Format = "html"
)

// ParseFormat resolves a user-supplied format name.
func ParseFormat(name string) (Format, error) {
	switch name {
	case "txt", "text":
		return FormatTXT, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	case "html":
		return FormatHTML, nil
	default:
		return "", fmt.Errorf("unknown export format %q (want txt, md, json, or html)", name)
	}
}

// Exporter renders one transcript.
type Exporter interface {
	Export(conv model.Conversation, messages []model.Message) ([]byte, error)
	FileExtension() string
}

// forFormat returns the exporter for a format.
func forFormat(f Format) (Exporter, error) {
	switch f {
	case FormatTXT:
		return &TXTExporter{}, nil
	case FormatMarkdown:
		return &MarkdownExporter{}, nil
	case FormatJSON:
		return &JSONExporter{}, nil
	case FormatHTML:
		return &HTMLExporter{}, nil
	default:
		return nil, fmt.Errorf("unknown export format %q", f)
	}
}

// =============================================================================
// SHARED HELPERS
// =============================================================================

// citationMarker matches the AI citation glyphs some answers carry, e.g.
// 【4:12†source】.
var citationMarker = regexp.MustCompile(`【[^】]*†[^】]*】`)

// stripCitations removes citation markers from message content.
func stripCitations(text string) string {
	return citationMarker.ReplaceAllString(text, "")
}

// senderLabel maps sender ids to display names.
func senderLabel(senderID string) string {
	if senderID == model.SenderUser {
		return "You"
	}
	return "Herbie"
}

// =============================================================================
// FILE EXPORT
// =============================================================================

// ToFile renders the transcript and writes it under outputDir, returning
// the written path.
func ToFile(conv model.Conversation, messages []model.Message, format Format, outputDir string) (string, error) {
	if len(messages) == 0 {
		return "", fmt.Errorf("conversation %q has no messages to export", conv.Title)
	}

	exporter, err := forFormat(format)
	if err != nil {
		return "", err
	}
	content, err := exporter.Export(conv, messages)
	if err != nil {
		return "", fmt.Errorf("export failed: %w", err)
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	filename := fmt.Sprintf("%s_%s%s",
		util.SanitizeFilename(conv.Title),
		time.Now().Format("20060102_150405"),
		exporter.FileExtension(),
	)
	outputPath := filepath.Join(outputDir, filename)
	if err := os.WriteFile(outputPath, content, 0o644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}
	return outputPath, nil
}
