// Copyright (c) 2025 Million Media
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package scroll decides how the chat viewport should follow streaming
// output without fighting a reader who scrolled up.
//
// The controller is headless: the UI reports viewport geometry and user
// scrolls, asks for a Decision after each mutation, and performs whatever
// movement the decision names. All distances are in viewport lines.
package scroll
