// Copyright (c) 2025 Million Media
// SPDX-License-Identifier: AGPL-3.0-or-later

package stream

import (
	"errors"
	"io"
	"strings"
	"testing"
)

// chunkedReader delivers its input in fixed-size chunks so tests can split
// records at arbitrary byte boundaries.
type chunkedReader struct {
	data  []byte
	size  int
	index int
}

func (c *chunkedReader) Read(p []byte) (int, error) {
	if c.index >= len(c.data) {
		return 0, io.EOF
	}
	end := c.index + c.size
	if end > len(c.data) {
		end = len(c.data)
	}
	n := copy(p, c.data[c.index:end])
	c.index += n
	return n, nil
}

// drain collects every event until the decoder reports termination.
func drain(d *Decoder) []Event {
	var events []Event
	for {
		ev, ok := d.Next()
		if !ok {
			return events
		}
		events = append(events, ev)
	}
}

func TestDecoder_ContentSequence(t *testing.T) {
	body := "data: {\"type\":\"content\",\"content\":\"Ginger \"}\n\n" +
		"data: {\"type\":\"content\",\"content\":\"root \"}\n\n" +
		"data: {\"type\":\"content\",\"content\":\"tea.\"}\n\n" +
		"data: [DONE]\n\n"

	events := drain(NewDecoder(strings.NewReader(body)))

	if len(events) != 4 {
		t.Fatalf("event count = %d, want 4", len(events))
	}

	var got strings.Builder
	for _, ev := range events[:3] {
		if ev.Kind != EventContent {
			t.Fatalf("kind = %v, want content", ev.Kind)
		}
		got.WriteString(ev.Content)
	}
	if got.String() != "Ginger root tea." {
		t.Errorf("accumulated = %q", got.String())
	}
	if events[3].Kind != EventDone {
		t.Errorf("final event kind = %v, want done", events[3].Kind)
	}
}

// Fragments must survive chunk boundaries that split a record anywhere,
// including mid-prefix and mid-JSON.
func TestDecoder_ArbitraryChunkBoundaries(t *testing.T) {
	body := "data: {\"type\":\"content\",\"content\":\"Ginger \"}\n\n" +
		"data: {\"type\":\"content\",\"content\":\"root \"}\n\n" +
		"data: {\"type\":\"content\",\"content\":\"tea.\"}\n\n" +
		"data: {\"type\":\"done\"}\n\n"

	for _, size := range []int{1, 2, 3, 7, 16} {
		dec := NewDecoder(&chunkedReader{data: []byte(body), size: size})

		var got strings.Builder
		for _, ev := range drain(dec) {
			if ev.Kind == EventContent {
				got.WriteString(ev.Content)
			}
		}
		if got.String() != "Ginger root tea." {
			t.Errorf("chunk size %d: accumulated = %q", size, got.String())
		}
	}
}

func TestDecoder_ConversationID(t *testing.T) {
	body := "data: {\"type\":\"conversationId\",\"conversationId\":\"resp_abc123\"}\n\n" +
		"data: {\"type\":\"content\",\"content\":\"hi\"}\n\n" +
		"data: [DONE]\n\n"

	events := drain(NewDecoder(strings.NewReader(body)))

	if events[0].Kind != EventConversationID || events[0].ConversationID != "resp_abc123" {
		t.Errorf("first event = %+v", events[0])
	}
}

// A done-typed record followed by the [DONE] sentinel must produce exactly
// one done event.
func TestDecoder_DoneIsTerminal(t *testing.T) {
	body := "data: {\"type\":\"done\"}\n\ndata: [DONE]\n\n"

	events := drain(NewDecoder(strings.NewReader(body)))

	done := 0
	for _, ev := range events {
		if ev.Kind == EventDone {
			done++
		}
	}
	if done != 1 {
		t.Errorf("done events = %d, want 1", done)
	}

	dec := NewDecoder(strings.NewReader(body))
	drain(dec)
	if _, ok := dec.Next(); ok {
		t.Error("Next after termination must report ok=false")
	}
}

func TestDecoder_NaturalCloseIsDone(t *testing.T) {
	body := "data: {\"type\":\"content\",\"content\":\"partial\"}\n\n"

	events := drain(NewDecoder(strings.NewReader(body)))

	if len(events) != 2 || events[1].Kind != EventDone {
		t.Fatalf("events = %+v, want content then done", events)
	}
}

// faultyReader yields its body, then fails with a non-EOF error.
type faultyReader struct {
	body string
	err  error
	read bool
}

func (f *faultyReader) Read(p []byte) (int, error) {
	if !f.read {
		f.read = true
		return copy(p, f.body), nil
	}
	return 0, f.err
}

// A connection dropped mid-body leaves a truncated answer; that must
// surface as an error event, never as done.
func TestDecoder_TransportFailureIsError(t *testing.T) {
	body := "data: {\"type\":\"content\",\"content\":\"Chamomile calms\"}\n\n"
	r := &faultyReader{body: body, err: errors.New("connection reset by peer")}

	dec := NewDecoder(r)
	events := drain(dec)

	if len(events) != 2 {
		t.Fatalf("events = %+v, want content then error", events)
	}
	if events[0].Kind != EventContent || events[0].Content != "Chamomile calms" {
		t.Fatalf("first event = %+v, want the fragment", events[0])
	}
	if events[1].Kind != EventError {
		t.Fatalf("final event kind = %v, want error", events[1].Kind)
	}
	if events[1].Err != "connection reset by peer" {
		t.Errorf("error text = %q", events[1].Err)
	}
	if _, ok := dec.Next(); ok {
		t.Error("Next after a transport failure must report ok=false")
	}
}

func TestDecoder_UnexpectedEOFIsError(t *testing.T) {
	r := &faultyReader{
		body: "data: {\"type\":\"content\",\"content\":\"Ginger\"}\n\n",
		err:  io.ErrUnexpectedEOF,
	}

	events := drain(NewDecoder(r))

	last := events[len(events)-1]
	if last.Kind != EventError {
		t.Errorf("final event kind = %v, want error", last.Kind)
	}
}

func TestDecoder_EmptyContentForwarded(t *testing.T) {
	body := "data: {\"type\":\"content\",\"content\":\"\"}\n\ndata: [DONE]\n\n"

	events := drain(NewDecoder(strings.NewReader(body)))

	if events[0].Kind != EventContent || events[0].Content != "" {
		t.Errorf("empty fragment dropped: %+v", events[0])
	}
}

func TestDecoder_NullContentSkipped(t *testing.T) {
	body := "data: {\"type\":\"content\",\"content\":null}\n\ndata: [DONE]\n\n"

	events := drain(NewDecoder(strings.NewReader(body)))

	if len(events) != 1 || events[0].Kind != EventDone {
		t.Errorf("null content should produce no event, got %+v", events)
	}
}

func TestDecoder_PlainTextFallback(t *testing.T) {
	body := "data: Ginger root tea.\n\ndata: [DONE]\n\n"

	events := drain(NewDecoder(strings.NewReader(body)))

	if events[0].Kind != EventContent || events[0].Content != "Ginger root tea." {
		t.Errorf("plain text not forwarded: %+v", events[0])
	}
}

func TestDecoder_ErrorShapes(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"server error record", "data: {\"error\":\"upstream timeout\"}\n\n", "upstream timeout"},
		{"malformed structured payload", "data: {\"type\":\"content\",\n\n", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events := drain(NewDecoder(strings.NewReader(tt.body)))

			if len(events) != 1 || events[0].Kind != EventError {
				t.Fatalf("events = %+v, want single error", events)
			}
			if tt.wantErr != "" && events[0].Err != tt.wantErr {
				t.Errorf("Err = %q, want %q", events[0].Err, tt.wantErr)
			}
		})
	}
}

func TestDecoder_SkipsNoise(t *testing.T) {
	body := "\n\n: keepalive comment\nevent: message\n" +
		"data: \n" +
		"data: {\"type\":\"content\",\"content\":\"ok\"}\n\n" +
		"data: {\"kind\":\"unknown\"}\n\n" +
		"data: [DONE]\n\n"

	events := drain(NewDecoder(strings.NewReader(body)))

	if len(events) != 2 {
		t.Fatalf("events = %+v, want content then done", events)
	}
	if events[0].Content != "ok" {
		t.Errorf("content = %q", events[0].Content)
	}
}

func TestDecoder_FinalRecordWithoutNewline(t *testing.T) {
	body := "data: {\"type\":\"content\",\"content\":\"tail\"}"

	events := drain(NewDecoder(strings.NewReader(body)))

	if len(events) != 2 || events[0].Content != "tail" || events[1].Kind != EventDone {
		t.Errorf("events = %+v", events)
	}
}
