// Copyright (c) 2025 Million Media
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small shared helpers for the Herbie client:
// atomic file writes for the persisted state, and rune-safe string
// truncation used for conversation titles and previews.
package util
