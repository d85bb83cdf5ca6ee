// Copyright (c) 2025 Million Media
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package stream decodes the Herbie backend's answer stream.
//
// The /ask/stream endpoint replies with a chunked text/event-stream of
// newline-delimited "data: <payload>" records. The Decoder turns that byte
// feed into a finite sequence of typed events (content fragments, the
// backend conversation-context id, completion, errors) while tolerating
// chunk boundaries that split a record anywhere.
package stream
