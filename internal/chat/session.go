// Copyright (c) 2025 Million Media
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"strings"

	"github.com/MillionMedia2/ask-herbie-interface/internal/api"
	"github.com/MillionMedia2/ask-herbie-interface/internal/model"
	"github.com/MillionMedia2/ask-herbie-interface/internal/store"
	"github.com/MillionMedia2/ask-herbie-interface/internal/stream"
)

// =============================================================================
// SESSION STATE
// =============================================================================

// SessionState tracks one question-to-answer exchange.
type SessionState int

const (
	StateIdle SessionState = iota
	StateSending
	StateStreaming
	StateFinalizing
	StateCompleted
	StateFailed
)

func (s SessionState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSending:
		return "sending"
	case StateStreaming:
		return "streaming"
	case StateFinalizing:
		return "finalizing"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Apology replaces the provisional answer whenever an exchange fails. The
// wording is fixed product copy.
const Apology = "Something went wrong while fetching the response. Please try again."

// =============================================================================
// STREAMING SESSION
// =============================================================================

// session runs one exchange: open the stream, accumulate fragments into the
// provisional message, then finalize or fail. Each session owns exactly one
// provisional message id and a generation token; once the controller issues
// a newer generation, every mutation here turns into a no-op.
type session struct {
	c          *Controller
	generation uint64

	conversationID string
	provisionalID  string
	persist        bool

	state       SessionState
	accumulated strings.Builder
	gotContent  bool
}

// current reports whether this session is still the controller's newest.
// Checked before every mutation; an abandoned session must go silent.
func (s *session) current() bool {
	return s.c.generation.Load() == s.generation
}

// run drives the exchange to Completed or Failed. Blocking; callers run it
// from whatever goroutine owns the operation (a tea.Cmd in the TUI).
func (s *session) run(ctx context.Context, request api.AskRequest) {
	s.state = StateSending

	body, err := s.c.backend.AskStream(ctx, request)
	if err != nil {
		s.fail()
		return
	}
	defer body.Close()

	dec := stream.NewDecoder(body)
	for {
		ev, ok := dec.Next()
		if !ok {
			return
		}
		if !s.current() {
			// Superseded mid-stream: stop reading, release the transport.
			return
		}

		switch ev.Kind {
		case stream.EventContent:
			s.onContent(ev.Content)

		case stream.EventConversationID:
			s.c.cacheContextID(s.conversationID, ev.ConversationID)

		case stream.EventDone:
			s.finalize(ctx)
			return

		case stream.EventError:
			s.fail()
			return
		}
	}
}

// onContent appends one fragment and patches the provisional message. The
// first fragment also ends the "waiting for first token" phase.
func (s *session) onContent(fragment string) {
	s.state = StateStreaming
	if !s.gotContent {
		s.gotContent = true
		s.c.clearLoading(s.conversationID)
	}

	s.accumulated.WriteString(fragment)
	content := s.accumulated.String()
	s.c.messages.Patch(s.conversationID, s.provisionalID, store.PatchMessage{Content: &content})
}

// finalize settles a completed stream. Authenticated flows persist the
// accumulated content and swap the provisional message for the confirmed
// record; local flows keep the provisional message as final.
func (s *session) finalize(ctx context.Context) {
	s.state = StateFinalizing

	if s.persist {
		persisted, err := s.c.backend.CreateMessage(ctx, api.CreateMessageParams{
			ConversationID: s.conversationID,
			SenderID:       model.SenderAssistant,
			Content:        s.accumulated.String(),
		})
		if err != nil {
			s.fail()
			return
		}
		if !s.current() {
			return
		}
		s.c.messages.Replace(s.conversationID, s.provisionalID, persisted)
	}

	s.state = StateCompleted
	s.c.settle(s)
}

// fail overwrites the provisional answer with the apology and settles the
// session. Inert when superseded.
func (s *session) fail() {
	if !s.current() {
		return
	}
	s.state = StateFailed
	apology := Apology
	s.c.messages.Patch(s.conversationID, s.provisionalID, store.PatchMessage{Content: &apology})
	s.c.settle(s)
}
