// Copyright (c) 2025 Million Media
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strings"

	"github.com/google/uuid"
)

// =============================================================================
// ID NAMESPACES
// =============================================================================

// Client-issued ids carry a namespace prefix so they can never collide with
// backend identifiers (Mongo object ids) and so persistence code can refuse
// to ever send one to the backend.
const (
	// ephemeralConversationPrefix marks a conversation that exists only in
	// local storage (unauthenticated flow).
	ephemeralConversationPrefix = "temp-"

	// provisionalMessagePrefix marks an assistant placeholder awaiting
	// streaming output or backend confirmation.
	provisionalMessagePrefix = "temp-"

	// localUserMessagePrefix marks a user message that is display-only and
	// never mirrored to the backend.
	localUserMessagePrefix = "local-user-"
)

// NewEphemeralConversationID returns a fresh local-only conversation id.
func NewEphemeralConversationID() string {
	return ephemeralConversationPrefix + uuid.NewString()
}

// NewProvisionalMessageID returns a fresh provisional message id.
func NewProvisionalMessageID() string {
	return provisionalMessagePrefix + uuid.NewString()
}

// NewLocalUserMessageID returns a fresh local-only user message id.
func NewLocalUserMessageID() string {
	return localUserMessagePrefix + uuid.NewString()
}

// IsEphemeralConversationID reports whether id names a local-only
// conversation that must never reach the backend CRUD endpoints.
func IsEphemeralConversationID(id string) bool {
	return strings.HasPrefix(id, ephemeralConversationPrefix)
}

// IsProvisionalMessageID reports whether id belongs to any client-issued
// message namespace.
func IsProvisionalMessageID(id string) bool {
	return strings.HasPrefix(id, provisionalMessagePrefix) ||
		strings.HasPrefix(id, localUserMessagePrefix)
}
