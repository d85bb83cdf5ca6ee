// Copyright (c) 2025 Million Media
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/MillionMedia2/ask-herbie-interface/internal/scroll"
	"github.com/MillionMedia2/ask-herbie-interface/internal/ui/components"
)

// =============================================================================
// MESSAGES
// =============================================================================

// storesChangedMsg arrives when any store notified a mutation.
type storesChangedMsg struct{}

// streamTickMsg drives the streaming repaint cadence.
type streamTickMsg time.Time

// thinkingTickMsg rotates the thinking phrase.
type thinkingTickMsg time.Time

// opDoneMsg carries the result of a controller operation run off the UI
// goroutine.
type opDoneMsg struct{ err error }

// scrollApplyMsg applies a delayed scroll decision.
type scrollApplyMsg struct{ decision scroll.Decision }

// exportDoneMsg carries the result of a transcript export.
type exportDoneMsg struct {
	path string
	err  error
}

// =============================================================================
// COMMANDS
// =============================================================================

// waitForStoreChange blocks on the store notification channel.
func waitForStoreChange(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-ch
		return storesChangedMsg{}
	}
}

// streamTick schedules the next streaming repaint.
func streamTick() tea.Cmd {
	return tea.Tick(scroll.TickInterval, func(t time.Time) tea.Msg {
		return streamTickMsg(t)
	})
}

// thinkingTick schedules the next thinking phrase rotation.
func thinkingTick() tea.Cmd {
	return tea.Tick(components.ThinkingCycleInterval, func(t time.Time) tea.Msg {
		return thinkingTickMsg(t)
	})
}

// runOp runs a blocking controller operation and reports its result.
func runOp(fn func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		return opDoneMsg{err: fn(context.Background())}
	}
}

// applyAfter schedules a scroll decision after its delay.
func applyAfter(d scroll.Decision) tea.Cmd {
	if d.Mode == scroll.ModeNone {
		return nil
	}
	if d.Delay == 0 {
		return func() tea.Msg { return scrollApplyMsg{decision: d} }
	}
	return tea.Tick(d.Delay, func(time.Time) tea.Msg {
		return scrollApplyMsg{decision: d}
	})
}
