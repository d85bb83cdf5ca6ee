// Copyright (c) 2025 Million Media
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat implements the interactive TUI: a conversation sidebar, a
// transcript viewport with streamed Markdown answers and product carousels,
// and an input line.
//
// The Bubble Tea model owns no conversation state of its own. It reads the
// stores, calls the conversation controller from command goroutines, and
// redraws when a store notification arrives. Viewport movement goes through
// the scroll controller so user scrolling during a stream is respected.
package chat
