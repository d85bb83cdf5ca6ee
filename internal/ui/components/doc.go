// Copyright (c) 2025 Million Media
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual building blocks of the ask-herbie
// TUI: message rendering, the product carousel, the conversation sidebar,
// the thinking indicator, and the status bar.
package components
