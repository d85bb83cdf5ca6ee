// Copyright (c) 2025 Million Media
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	chatctl "github.com/MillionMedia2/ask-herbie-interface/internal/chat"
	"github.com/MillionMedia2/ask-herbie-interface/internal/config"
	"github.com/MillionMedia2/ask-herbie-interface/internal/scroll"
	"github.com/MillionMedia2/ask-herbie-interface/internal/store"
	"github.com/MillionMedia2/ask-herbie-interface/internal/ui/components"
	"github.com/MillionMedia2/ask-herbie-interface/internal/ui/styles"
)

// =============================================================================
// FOCUS
// =============================================================================

// focusArea says which pane receives key input.
type focusArea int

const (
	focusInput focusArea = iota
	focusSidebar
)

// =============================================================================
// MODEL
// =============================================================================

// sidebarWidth is the fixed conversation list width.
const sidebarWidth = 28

// Options wires the chat view to the rest of the application.
type Options struct {
	Controller    *chatctl.Controller
	Conversations *store.ConversationStore
	Messages      *store.MessageStore
	Products      *store.ProductStore
	Config        *config.Config
	// OnPersist is called after mutations that should reach local storage.
	// Nil disables persistence.
	OnPersist func()
	// Search resolves a "/search" query to rendered result text. Nil
	// disables the command.
	Search func(query string) (string, error)
}

// Model is the Bubble Tea model for the chat view.
type Model struct {
	opts  Options
	theme *styles.Theme
	keys  KeyMap

	viewport viewport.Model
	input    textinput.Model
	thinking components.ThinkingIndicator

	scroll     *scroll.Controller
	typewriter Typewriter

	renderMarkdown func(string) string

	// storeCh receives one token per store notification burst.
	storeCh     chan struct{}
	unsubscribe []func()

	width  int
	height int
	focus  focusArea
	cursor int

	// overlay replaces the transcript with search results until the next
	// question or conversation change.
	overlay string

	statusErr string
	ready     bool
}

// New builds the chat view.
func New(opts Options) *Model {
	theme := styles.NewTheme(opts.Config.UI.Theme != "light")

	input := textinput.New()
	input.Placeholder = "Ask Herbie about herbs, remedies, teas..."
	input.Prompt = theme.InputPrompt.Render("> ")
	input.CharLimit = 2000
	input.Focus()

	m := &Model{
		opts:           opts,
		theme:          theme,
		keys:           DefaultKeyMap(),
		input:          input,
		thinking:       components.NewThinkingIndicator(theme),
		scroll:         scroll.NewController(),
		renderMarkdown: newMarkdownRenderer(72),
		storeCh:        make(chan struct{}, 1),
	}

	notify := func() {
		select {
		case m.storeCh <- struct{}{}:
		default:
		}
	}
	m.unsubscribe = append(m.unsubscribe,
		opts.Conversations.Subscribe(notify),
		opts.Messages.Subscribe(notify),
		opts.Products.Subscribe(notify),
		opts.Controller.Subscribe(notify),
	)

	return m
}

// Close detaches the model from the stores.
func (m *Model) Close() {
	for _, unsub := range m.unsubscribe {
		unsub()
	}
}

// Init starts the background listeners.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		waitForStoreChange(m.storeCh),
		m.thinking.Spinner.Tick,
		thinkingTick(),
	)
}

// activeConversationID returns the store's active conversation id.
func (m *Model) activeConversationID() string {
	return m.opts.Conversations.ActiveID()
}

// streamingHere reports whether the visible conversation is streaming.
func (m *Model) streamingHere() bool {
	id := m.activeConversationID()
	return id != "" && m.opts.Controller.StreamingConversationID() == id
}

// persist runs the storage hook, if any.
func (m *Model) persist() {
	if m.opts.OnPersist != nil {
		m.opts.OnPersist()
	}
}
