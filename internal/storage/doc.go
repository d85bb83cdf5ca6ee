// Copyright (c) 2025 Million Media
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists the client's local state: the conversation list
// and per-conversation message timelines under a single root key in a JSON
// state file, plus the trigger de-duplication ledger. Product attachments
// are deliberately never persisted; they are recomputed on demand.
//
// Writes go through an atomic temp-file-and-rename so a crash mid-write
// can never corrupt the previous state.
package storage
