// Copyright (c) 2025 Million Media
// SPDX-License-Identifier: AGPL-3.0-or-later

// ask.go - One-shot question command.
//
// Sends a single question through the full conversation flow and prints the
// answer. Scripted callers can pass --nonce so repeated invocations of the
// same trigger are consumed exactly once.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"

	"github.com/MillionMedia2/ask-herbie-interface/internal/model"
	"github.com/MillionMedia2/ask-herbie-interface/internal/storage"
	"github.com/MillionMedia2/ask-herbie-interface/internal/trigger"
)

// markdownRenderer renders answers when stdout is a terminal.
var markdownRenderer *glamour.TermRenderer

func init() {
	markdownRenderer, _ = glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
}

// renderAnswer renders Markdown for terminals and passes text through for
// pipes.
func renderAnswer(content string) string {
	if !IsStdoutTTY() || markdownRenderer == nil {
		return content
	}
	rendered, err := markdownRenderer.Render(content)
	if err != nil {
		return content
	}
	return rendered
}

// HandleAsk runs the ask command.
func HandleAsk(args *Args) error {
	if args.Query == "" {
		return fmt.Errorf("usage: herbie ask <question>")
	}

	ctx := context.Background()
	app, err := NewApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	ledger, err := storage.LoadTriggerLedger(app.State)
	if err != nil {
		return err
	}
	question, err := trigger.Process(trigger.Trigger{
		Question: args.Query,
		Nonce:    args.Nonce,
	}, ledger)
	if err != nil {
		if !args.Quiet {
			fmt.Fprintf(os.Stderr, "Skipping: %v\n", err)
		}
		return nil
	}

	if !args.Quiet {
		fmt.Fprintf(os.Stderr, "Asking Herbie...\n")
	}

	if err := app.Controller.StartConversation(ctx, question); err != nil {
		return err
	}

	convID := app.Conversations.ActiveID()
	timeline := app.Messages.List(convID)
	for i := len(timeline) - 1; i >= 0; i-- {
		if timeline[i].SenderID == model.SenderAssistant {
			fmt.Print(renderAnswer(timeline[i].Content))
			break
		}
	}

	if err := app.SaveState(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not save state: %v\n", err)
	}
	return nil
}
