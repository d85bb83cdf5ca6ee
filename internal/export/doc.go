// Copyright (c) 2025 Million Media
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes a conversation transcript to a file in TXT,
// Markdown, JSON, or standalone HTML form. AI citation markers are stripped
// from message content; filenames derive from the sanitized conversation
// title plus a timestamp.
package export
