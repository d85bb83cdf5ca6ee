// Copyright (c) 2025 Million Media
// SPDX-License-Identifier: AGPL-3.0-or-later

package stream

import (
	"bufio"
	"encoding/json"
	"io"
	"strings"
)

// =============================================================================
// EVENT TYPES
// =============================================================================

// EventKind discriminates decoded stream events.
type EventKind int

const (
	// EventContent carries one answer fragment. The fragment may be the
	// empty string; an empty fragment is still a fragment, not end-of-stream.
	EventContent EventKind = iota

	// EventConversationID carries the backend conversation-context id used
	// to keep multi-turn AI context coherent.
	EventConversationID

	// EventDone marks the end of the answer. Emitted exactly once, whether
	// the server sent the [DONE] sentinel, a done-typed record, or simply
	// closed the stream.
	EventDone

	// EventError carries a server-reported or decode error. The decoder
	// never returns Go errors mid-stream; the consumer decides whether to
	// abort.
	EventError
)

// Event is one decoded record from the answer stream.
type Event struct {
	Kind           EventKind
	Content        string
	ConversationID string
	Err            string
}

// doneSentinel is the literal terminal payload some upstreams emit.
const doneSentinel = "[DONE]"

// dataPrefix frames every meaningful event-stream line.
const dataPrefix = "data:"

// =============================================================================
// DECODER
// =============================================================================

// Decoder reads a text/event-stream body and yields typed events.
//
// The sequence is finite and non-restartable: after an EventDone or
// EventError has been returned, Next reports ok=false forever. Incomplete
// trailing lines are buffered across reads, so chunk boundaries may split
// a record at any byte.
type Decoder struct {
	r        *bufio.Reader
	finished bool
}

// NewDecoder wraps a stream body. The caller keeps ownership of r and is
// responsible for closing the underlying transport.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: bufio.NewReader(r)}
}

// Next returns the next event. ok is false once the stream has terminated
// (after a done or error event has been delivered).
func (d *Decoder) Next() (ev Event, ok bool) {
	if d.finished {
		return Event{}, false
	}

	for {
		line, err := d.r.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				if strings.TrimSpace(line) != "" {
					// Final record without a trailing newline.
					if ev, emitted := d.decodeLine(line); emitted {
						return ev, true
					}
				}
				// Natural stream close counts as completion.
				d.finished = true
				return Event{Kind: EventDone}, true
			}
			// Any other read error is a mid-body transport failure; the
			// accumulated answer is truncated, not complete.
			d.finished = true
			return Event{Kind: EventError, Err: err.Error()}, true
		}

		if ev, emitted := d.decodeLine(line); emitted {
			return ev, true
		}
	}
}

// decodeLine parses one complete line. The second return is false for
// lines that produce no event (blank lines, non-data lines, empty data).
func (d *Decoder) decodeLine(line string) (Event, bool) {
	line = strings.TrimSpace(line)
	if line == "" || !strings.HasPrefix(line, dataPrefix) {
		return Event{}, false
	}

	data := strings.TrimSpace(strings.TrimPrefix(line, dataPrefix))
	if data == "" {
		return Event{}, false
	}

	if data == doneSentinel {
		d.finished = true
		return Event{Kind: EventDone}, true
	}

	var payload struct {
		Type           string  `json:"type"`
		Content        *string `json:"content"`
		ConversationID string  `json:"conversationId"`
		Error          string  `json:"error"`
	}
	if err := json.Unmarshal([]byte(data), &payload); err != nil {
		// Plain-text upstreams send raw fragments with no JSON framing.
		if !strings.HasPrefix(data, "{") && !strings.HasPrefix(data, "[") {
			return Event{Kind: EventContent, Content: data}, true
		}
		d.finished = true
		return Event{Kind: EventError, Err: "failed to parse stream payload: " + err.Error()}, true
	}

	switch {
	case payload.Error != "":
		d.finished = true
		return Event{Kind: EventError, Err: payload.Error}, true

	// An id record with an empty value carries no context and is skipped.
	case payload.Type == "conversationId" && payload.ConversationID != "":
		return Event{Kind: EventConversationID, ConversationID: payload.ConversationID}, true

	case payload.Type == "content" && payload.Content != nil:
		// A defined-but-empty fragment must still be forwarded.
		return Event{Kind: EventContent, Content: *payload.Content}, true

	case payload.Type == "done":
		d.finished = true
		return Event{Kind: EventDone}, true
	}

	// Unknown record kinds are skipped, matching the forward-compatible
	// behavior of the streaming contract.
	return Event{}, false
}
