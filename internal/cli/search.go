// Copyright (c) 2025 Million Media
// SPDX-License-Identifier: AGPL-3.0-or-later

// search.go - Full-text search over saved conversations.
package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/MillionMedia2/ask-herbie-interface/internal/model"
	"github.com/MillionMedia2/ask-herbie-interface/internal/storage"
	"github.com/MillionMedia2/ask-herbie-interface/internal/util"
)

// HandleSearch runs the search command against the local history index.
func HandleSearch(args *Args) error {
	if args.Query == "" {
		return fmt.Errorf("usage: herbie search <query>")
	}

	stateStore, err := storage.NewStateStore()
	if err != nil {
		return err
	}

	app := &App{State: stateStore}
	if err := app.OpenHistory(); err != nil {
		return err
	}
	defer app.Close()

	// Reindex from the state file so the index covers conversations saved
	// by other commands since the last search.
	state, err := stateStore.Load()
	if err == nil {
		for convID, timeline := range state.Messages {
			if err := app.History.IndexConversation(convID, timeline); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: could not index %s: %v\n", convID, err)
			}
		}
	}

	hits, err := app.History.Search(args.Query, args.Limit)
	if err != nil {
		return err
	}

	if args.JSON {
		return json.NewEncoder(os.Stdout).Encode(hits)
	}

	if len(hits) == 0 {
		fmt.Println("No matches.")
		return nil
	}

	titles := make(map[string]string, len(state.Conversations))
	for _, conv := range state.Conversations {
		titles[conv.ID] = conv.Title
	}

	for _, hit := range hits {
		title := titles[hit.ConversationID]
		if title == "" {
			title = hit.ConversationID
		}
		who := "Herbie"
		if hit.SenderID == model.SenderUser {
			who = "You"
		}
		fmt.Printf("[%s] %s: %s\n", title, who, util.TruncateRunes(hit.Content, 120))
	}
	return nil
}
