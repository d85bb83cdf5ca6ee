// Copyright (c) 2025 Million Media
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package store holds the observable in-memory state of the client:
// conversations, per-conversation message timelines, and per-message
// product recommendations.
//
// Each store guards its state with a mutex and notifies subscribers after
// every mutation. Subscribers receive no payload; they re-read whatever
// they render. Reads return copies, so callers can never mutate store
// state through an aliased slice.
package store
