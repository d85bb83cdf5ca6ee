// Copyright (c) 2025 Million Media
// SPDX-License-Identifier: AGPL-3.0-or-later

package trigger

import (
	"regexp"
	"strings"
)

// =============================================================================
// TRIGGER
// =============================================================================

// Trigger is one inbound question occurrence. Nonce distinguishes repeated
// presentations of the same text (the host supplies a timestamp or random
// value); an empty nonce is normalized to "no-ts".
type Trigger struct {
	Question string `json:"question"`
	Nonce    string `json:"nonce"`
}

// Normalize trims the question and fills the nonce default.
func (t Trigger) Normalize() Trigger {
	t.Question = strings.TrimSpace(t.Question)
	if t.Nonce == "" {
		t.Nonce = "no-ts"
	}
	return t
}

// buttonLabel matches the launcher button captions that hosts sometimes
// send instead of a question, including the known misspellings.
var buttonLabel = regexp.MustCompile(`^ask\s*herb(i|ie)?$`)

// IsButtonLabel reports whether text is a bare launcher caption rather
// than a question. Case and internal whitespace are ignored.
func IsButtonLabel(text string) bool {
	normalized := strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(text))), " ")
	return buttonLabel.MatchString(normalized)
}

// Ledger is the subset of the trigger ledger the processor needs.
type Ledger interface {
	Seen(question, nonce string) bool
	Record(question, nonce string) error
}

// Process decides whether a trigger should start a conversation, recording
// it in the ledger when it does. Returns the question to ask, or "" when
// the trigger must be ignored (empty text, button label, or already seen).
func Process(t Trigger, ledger Ledger) (question string, err error) {
	t = t.Normalize()
	if t.Question == "" || IsButtonLabel(t.Question) {
		return "", nil
	}
	if ledger.Seen(t.Question, t.Nonce) {
		return "", nil
	}
	if err := ledger.Record(t.Question, t.Nonce); err != nil {
		return "", err
	}
	return t.Question, nil
}
