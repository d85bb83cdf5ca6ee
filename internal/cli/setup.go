// Copyright (c) 2025 Million Media
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/MillionMedia2/ask-herbie-interface/internal/api"
	chatctl "github.com/MillionMedia2/ask-herbie-interface/internal/chat"
	"github.com/MillionMedia2/ask-herbie-interface/internal/config"
	"github.com/MillionMedia2/ask-herbie-interface/internal/history"
	"github.com/MillionMedia2/ask-herbie-interface/internal/model"
	"github.com/MillionMedia2/ask-herbie-interface/internal/storage"
	"github.com/MillionMedia2/ask-herbie-interface/internal/store"
	"github.com/MillionMedia2/ask-herbie-interface/internal/util"
)

// =============================================================================
// APPLICATION BOOTSTRAP
// =============================================================================

// App holds everything a command needs: config, backend client, stores, the
// conversation controller, and the persistence layers.
type App struct {
	Config        *config.Config
	Client        *api.Client
	Conversations *store.ConversationStore
	Messages      *store.MessageStore
	Products      *store.ProductStore
	Controller    *chatctl.Controller
	State         *storage.StateStore
	History       *history.Index
}

// NewApp wires the application together, restores persisted state, and
// resolves the account when a token is configured.
func NewApp(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	client := api.NewClient(&api.ClientConfig{
		BaseURL:           cfg.API.BaseURL,
		WordPressURL:      cfg.API.WordPressURL,
		Token:             cfg.API.Token,
		Timeout:           time.Duration(cfg.API.TimeoutSecs) * time.Second,
		StreamTimeout:     time.Duration(cfg.API.StreamTimeoutSecs) * time.Second,
		RequestsPerSecond: cfg.API.RequestsPerSecond,
		Burst:             cfg.API.Burst,
	})

	conversations := store.NewConversationStore()
	messages := store.NewMessageStore()
	products := store.NewProductStore()

	controller := chatctl.NewController(chatctl.Config{
		Backend:       client,
		Conversations: conversations,
		Messages:      messages,
		Products:      products,
	})

	stateStore, err := storage.NewStateStore()
	if err != nil {
		return nil, err
	}

	app := &App{
		Config:        cfg,
		Client:        client,
		Conversations: conversations,
		Messages:      messages,
		Products:      products,
		Controller:    controller,
		State:         stateStore,
	}

	if client.Authenticated() {
		user, err := client.FetchUserInfo(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not resolve account, continuing unauthenticated: %v\n", err)
		} else {
			controller.SetUser(user, true)
		}
	}

	if err := app.restoreState(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not restore saved state: %v\n", err)
	}

	return app, nil
}

// restoreState loads the persisted conversations and messages, then, for an
// authenticated account, refreshes the conversation list from the backend.
func (a *App) restoreState(ctx context.Context) error {
	state, err := a.State.Load()
	if err != nil {
		return err
	}

	a.Conversations.SetAll(state.Conversations)
	for convID, timeline := range state.Messages {
		a.Messages.SetMessages(convID, timeline)
	}
	if state.ActiveConversationID != "" {
		a.Conversations.SetActive(state.ActiveConversationID)
	}

	if a.Controller.Authenticated() {
		if err := a.Controller.LoadConversations(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Snapshot captures the current store contents for persistence.
func (a *App) Snapshot() storage.State {
	state := storage.State{
		Conversations:        a.Conversations.List(),
		ActiveConversationID: a.Conversations.ActiveID(),
		Messages:             make(map[string][]model.Message),
	}
	for _, conv := range state.Conversations {
		state.Messages[conv.ID] = a.Messages.List(conv.ID)
	}
	return state
}

// SaveState writes the store contents to disk and refreshes the search
// index for every conversation.
func (a *App) SaveState() error {
	state := a.Snapshot()
	if err := a.State.Save(state); err != nil {
		return err
	}
	if a.History != nil {
		for convID, timeline := range state.Messages {
			if err := a.History.IndexConversation(convID, timeline); err != nil {
				return err
			}
		}
	}
	return nil
}

// OpenHistory opens the sqlite search index next to the state file.
func (a *App) OpenHistory() error {
	index, err := history.Open(filepath.Join(a.State.BaseDir, "history.db"))
	if err != nil {
		return err
	}
	a.History = index
	return nil
}

// SearchTranscripts queries the history index and renders the hits as
// one "[title] speaker: snippet" line each. Empty output means no match.
func (a *App) SearchTranscripts(query string, limit int) (string, error) {
	if a.History == nil {
		return "", fmt.Errorf("history index unavailable")
	}

	hits, err := a.History.Search(query, limit)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, hit := range hits {
		title := hit.ConversationID
		if conv, ok := a.Conversations.Get(hit.ConversationID); ok {
			title = conv.Title
		}
		who := "Herbie"
		if hit.SenderID == model.SenderUser {
			who = "You"
		}
		fmt.Fprintf(&b, "[%s] %s: %s\n", title, who, util.TruncateRunes(hit.Content, 120))
	}
	return b.String(), nil
}

// Close releases held resources.
func (a *App) Close() {
	if a.History != nil {
		a.History.Close()
	}
}
