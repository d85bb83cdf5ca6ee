// Copyright (c) 2025 Million Media
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the client-side data structures of the Herbie
// chat: conversations, messages, product attachments, and the id
// namespaces that separate provisional (client-issued) records from
// backend-persisted ones.
package model
