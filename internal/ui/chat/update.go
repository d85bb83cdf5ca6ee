// Copyright (c) 2025 Million Media
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/MillionMedia2/ask-herbie-interface/internal/export"
	"github.com/MillionMedia2/ask-herbie-interface/internal/model"
	"github.com/MillionMedia2/ask-herbie-interface/internal/scroll"
)

// Update handles all Bubble Tea messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		m.rebuild()
		m.ready = true
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.thinking.Spinner, cmd = m.thinking.Spinner.Update(msg)
		return m, cmd

	case thinkingTickMsg:
		if m.opts.Controller.IsLoading(m.activeConversationID()) {
			m.thinking.CyclePhrase()
			m.rebuild()
		}
		return m, thinkingTick()

	case storesChangedMsg:
		m.rebuild()
		m.persist()
		cmds := []tea.Cmd{waitForStoreChange(m.storeCh)}
		if d := m.scroll.OnContentGrown(m.streamingHere()); d.Mode != scroll.ModeNone {
			cmds = append(cmds, applyAfter(d))
		}
		if m.streamingHere() {
			cmds = append(cmds, streamTick())
		}
		return m, tea.Batch(cmds...)

	case streamTickMsg:
		if !m.streamingHere() {
			m.typewriter.Reset()
			m.rebuild()
			return m, nil
		}
		m.rebuild()
		cmds := []tea.Cmd{streamTick()}
		if d := m.scroll.OnContentGrown(true); d.Mode != scroll.ModeNone {
			cmds = append(cmds, applyAfter(d))
		}
		return m, tea.Batch(cmds...)

	case scrollApplyMsg:
		m.viewport.SetYOffset(msg.decision.Target)
		m.scroll.SetGeometry(m.viewport.YOffset, m.contentHeight(), m.viewport.Height)
		return m, nil

	case opDoneMsg:
		if msg.err != nil {
			m.statusErr = msg.err.Error()
		} else {
			m.statusErr = ""
		}
		m.rebuild()
		return m, nil

	case exportDoneMsg:
		if msg.err != nil {
			m.statusErr = fmt.Sprintf("export failed: %v", msg.err)
		} else {
			m.statusErr = "exported to " + msg.path
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

// handleKey dispatches keyboard input.
func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ctl := m.opts.Controller

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.Close()
		return m, tea.Quit

	case key.Matches(msg, m.keys.FocusNext):
		if m.focus == focusInput {
			m.focus = focusSidebar
			m.input.Blur()
			m.syncCursor()
		} else {
			m.focus = focusInput
			m.input.Focus()
		}
		return m, nil

	case key.Matches(msg, m.keys.NewConv):
		ctl.NewConversation()
		m.typewriter.Reset()
		m.overlay = ""
		m.rebuild()
		return m, nil

	case key.Matches(msg, m.keys.DeleteConv):
		id := m.cursorConversationID()
		if id == "" {
			return m, nil
		}
		return m, runOp(func(ctx context.Context) error {
			return ctl.DeleteConversation(ctx, id)
		})

	case key.Matches(msg, m.keys.Pin):
		id := m.cursorConversationID()
		if id == "" {
			return m, nil
		}
		return m, runOp(func(ctx context.Context) error {
			return ctl.TogglePin(ctx, id)
		})

	case key.Matches(msg, m.keys.Regenerate):
		question := m.lastUserQuestion()
		if question == "" || m.streamingHere() {
			return m, nil
		}
		return m, runOp(func(ctx context.Context) error {
			return ctl.RegenerateLastAnswer(ctx, question)
		})

	case key.Matches(msg, m.keys.Products):
		return m, m.toggleProducts()

	case key.Matches(msg, m.keys.Export):
		return m, m.exportActive()

	case key.Matches(msg, m.keys.PageUp), key.Matches(msg, m.keys.PageDown):
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		m.scroll.ObserveUserScroll(m.viewport.YOffset)
		return m, cmd
	}

	if m.focus == focusSidebar {
		return m.handleSidebarKey(msg)
	}
	return m.handleInputKey(msg)
}

// handleSidebarKey moves the cursor and switches conversations.
func (m *Model) handleSidebarKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	conversations := m.opts.Conversations.List()

	switch {
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(conversations)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Submit):
		id := m.cursorConversationID()
		if id == "" || id == m.activeConversationID() {
			return m, nil
		}
		m.typewriter.Reset()
		m.overlay = ""
		ctl := m.opts.Controller
		return m, runOp(func(ctx context.Context) error {
			return ctl.SwitchConversation(ctx, id)
		})
	}
	return m, nil
}

// handleInputKey feeds the text input and submits questions.
func (m *Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Submit) {
		question := strings.TrimSpace(m.input.Value())
		if question == "" {
			return m, nil
		}
		m.input.Reset()
		m.statusErr = ""
		m.overlay = ""

		if question == "/search" || strings.HasPrefix(question, "/search ") {
			return m.runSearch(strings.TrimSpace(strings.TrimPrefix(question, "/search")))
		}

		ctl := m.opts.Controller
		active := m.activeConversationID()
		return m, runOp(func(ctx context.Context) error {
			if active == "" {
				return ctl.StartConversation(ctx, question)
			}
			return ctl.SendMessage(ctx, question)
		})
	}

	if key.Matches(msg, m.keys.Up) || key.Matches(msg, m.keys.Down) {
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		m.scroll.ObserveUserScroll(m.viewport.YOffset)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// toggleProducts shows or hides the carousel on the last assistant message.
func (m *Model) toggleProducts() tea.Cmd {
	convID := m.activeConversationID()
	msgID := m.lastAssistantMessageID()
	if convID == "" || msgID == "" {
		return nil
	}

	ctl := m.opts.Controller
	if attachment, ok := m.opts.Products.ForMessage(convID, msgID); ok && attachment.IsVisible {
		ctl.HideProducts(convID, msgID)
		return nil
	}
	if ctl.ShowStoredProducts(convID, msgID) {
		return applyAfter(m.scroll.OnProductsShown())
	}

	cmds := []tea.Cmd{
		runOp(func(ctx context.Context) error {
			return ctl.ShowProducts(ctx, convID, msgID)
		}),
		applyAfter(m.scroll.OnProductsShown()),
	}
	return tea.Batch(cmds...)
}

// exportActive writes the visible transcript using the configured format.
func (m *Model) exportActive() tea.Cmd {
	convID := m.activeConversationID()
	conv, ok := m.opts.Conversations.Get(convID)
	if !ok {
		return nil
	}
	messages := m.opts.Messages.List(convID)
	format, err := export.ParseFormat(m.opts.Config.Export.DefaultFormat)
	if err != nil {
		format = export.FormatTXT
	}
	outputDir := m.opts.Config.Export.OutputDir

	return func() tea.Msg {
		path, err := export.ToFile(conv, messages, format, outputDir)
		return exportDoneMsg{path: path, err: err}
	}
}

// runSearch replaces the transcript with history-search results. The
// overlay clears on the next question or conversation change.
func (m *Model) runSearch(query string) (tea.Model, tea.Cmd) {
	if m.opts.Search == nil {
		m.statusErr = "search is unavailable"
		return m, nil
	}
	if query == "" {
		m.statusErr = "usage: /search <query>"
		return m, nil
	}

	results, err := m.opts.Search(query)
	if err != nil {
		m.statusErr = fmt.Sprintf("search failed: %v", err)
		return m, nil
	}
	if results == "" {
		results = m.theme.Thinking.Render("No matches for " + strconv.Quote(query) + ".")
	}
	m.overlay = results
	m.viewport.GotoTop()
	m.rebuild()
	return m, nil
}

// =============================================================================
// HELPERS
// =============================================================================

// layout resizes the panes to the terminal.
func (m *Model) layout() {
	contentWidth := m.width - sidebarWidth
	if contentWidth < 20 {
		contentWidth = 20
	}
	contentHeight := m.height - 5
	if contentHeight < 3 {
		contentHeight = 3
	}

	if m.viewport.Width == 0 {
		m.viewport = viewport.New(contentWidth, contentHeight)
	} else {
		m.viewport.Width = contentWidth
		m.viewport.Height = contentHeight
	}
	m.input.Width = contentWidth - 6
	m.renderMarkdown = newMarkdownRenderer(contentWidth - 2)
}

// cursorConversationID returns the conversation under the sidebar cursor.
func (m *Model) cursorConversationID() string {
	conversations := m.opts.Conversations.List()
	if m.cursor < 0 || m.cursor >= len(conversations) {
		return ""
	}
	return conversations[m.cursor].ID
}

// syncCursor moves the cursor onto the active conversation.
func (m *Model) syncCursor() {
	active := m.activeConversationID()
	for i, conv := range m.opts.Conversations.List() {
		if conv.ID == active {
			m.cursor = i
			return
		}
	}
	m.cursor = 0
}

// lastUserQuestion returns the newest user message content.
func (m *Model) lastUserQuestion() string {
	messages := m.opts.Messages.List(m.activeConversationID())
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].SenderID == model.SenderUser {
			return messages[i].Content
		}
	}
	return ""
}

// lastAssistantMessageID returns the newest assistant message id.
func (m *Model) lastAssistantMessageID() string {
	messages := m.opts.Messages.List(m.activeConversationID())
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].SenderID == model.SenderAssistant {
			return messages[i].ID
		}
	}
	return ""
}
