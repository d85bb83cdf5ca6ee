// Copyright (c) 2025 Million Media
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat is the conversation engine: it turns user questions into
// streamed assistant answers and keeps the stores consistent while doing it.
//
// A Controller owns at most one live streaming session. Starting a new
// exchange bumps a generation counter; the superseded session keeps reading
// its transport but every one of its mutations is guarded by a generation
// check, so late events from an abandoned stream can no longer touch state.
// There is no transport cancellation, only abandonment.
//
// Persistence mode follows authentication: with a valid token and user,
// conversations and messages are mirrored to the backend; without one they
// live under ephemeral ids and never reach the CRUD endpoints.
package chat
