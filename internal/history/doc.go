// Copyright (c) 2025 Million Media
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package history maintains a local SQLite index of message content so past
// answers can be searched across every stored conversation. The index is a
// cache over the state file, rebuilt incrementally as conversations change;
// losing it loses nothing but search.
package history
