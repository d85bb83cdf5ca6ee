// Copyright (c) 2025 Million Media
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Line-mode REPL for terminals where the full TUI is unwanted.
//
// Interactive commands:
//   /new              Start a new conversation
//   /list             List conversations
//   /switch N         Switch to conversation N from /list
//   /rename TITLE     Rename the active conversation
//   /pin              Pin or unpin the active conversation
//   /delete           Delete the active conversation
//   /products         Show products for the last answer
//   /export [FMT]     Export the active conversation
//   /search QUERY     Search saved transcripts
//   /regen            Regenerate the last answer
//   /help             Show commands
//   /quit, Ctrl+D     Exit
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/peterh/liner"

	"github.com/MillionMedia2/ask-herbie-interface/internal/export"
	"github.com/MillionMedia2/ask-herbie-interface/internal/model"
)

// historyFileName stores REPL input history under the state directory.
const historyFileName = "repl_history"

// HandleChat runs the line-mode REPL.
func HandleChat(args *Args) error {
	ctx := context.Background()
	app, err := NewApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.OpenHistory(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: search unavailable: %v\n", err)
	}

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	historyPath := filepath.Join(app.State.BaseDir, historyFileName)
	if f, err := os.Open(historyPath); err == nil {
		line.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.Create(historyPath); err == nil {
			line.WriteHistory(f)
			f.Close()
		}
	}()

	fmt.Println("Ask Herbie - line mode. /help for commands, /quit to exit.")
	if !app.Controller.Authenticated() {
		fmt.Println("Running unauthenticated; conversations stay on this machine.")
	}

	for {
		input, err := line.Prompt("you> ")
		if err == liner.ErrPromptAborted || err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)

		if strings.HasPrefix(input, "/") {
			if quit := runReplCommand(ctx, app, input); quit {
				break
			}
			continue
		}

		if err := sendQuestion(ctx, app, input); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
	}

	if err := app.SaveState(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not save state: %v\n", err)
	}
	return nil
}

// sendQuestion routes the question and prints the answer.
func sendQuestion(ctx context.Context, app *App, question string) error {
	var err error
	if app.Conversations.ActiveID() == "" {
		err = app.Controller.StartConversation(ctx, question)
	} else {
		err = app.Controller.SendMessage(ctx, question)
	}
	if err != nil {
		return err
	}
	printLastAnswer(app)
	return nil
}

// printLastAnswer renders the newest assistant message.
func printLastAnswer(app *App) {
	timeline := app.Messages.List(app.Conversations.ActiveID())
	for i := len(timeline) - 1; i >= 0; i-- {
		if timeline[i].SenderID == model.SenderAssistant {
			fmt.Println()
			fmt.Print(renderAnswer(timeline[i].Content))
			fmt.Println()
			return
		}
	}
}

// runReplCommand executes one /command and reports whether to exit.
func runReplCommand(ctx context.Context, app *App, input string) (quit bool) {
	fields := strings.Fields(input)
	cmd, rest := fields[0], strings.TrimSpace(strings.TrimPrefix(input, fields[0]))

	switch cmd {
	case "/quit", "/q", "/exit":
		return true

	case "/help", "/h":
		fmt.Println("/new /list /switch N /rename TITLE /pin /delete /products /export [fmt] /search QUERY /regen /quit")

	case "/new":
		app.Controller.NewConversation()
		fmt.Println("Started a new conversation.")

	case "/list":
		for i, conv := range app.Conversations.List() {
			marker := " "
			if conv.ID == app.Conversations.ActiveID() {
				marker = ">"
			}
			pin := ""
			if conv.IsPinned {
				pin = " *"
			}
			fmt.Printf("%s %2d. %s%s\n", marker, i+1, conv.Title, pin)
		}

	case "/switch":
		n, err := strconv.Atoi(rest)
		conversations := app.Conversations.List()
		if err != nil || n < 1 || n > len(conversations) {
			fmt.Println("Usage: /switch N (see /list)")
			break
		}
		if err := app.Controller.SwitchConversation(ctx, conversations[n-1].ID); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}

	case "/rename":
		if rest == "" {
			fmt.Println("Usage: /rename TITLE")
			break
		}
		if err := app.Controller.RenameConversation(ctx, app.Conversations.ActiveID(), rest); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}

	case "/pin":
		if err := app.Controller.TogglePin(ctx, app.Conversations.ActiveID()); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}

	case "/delete":
		id := app.Conversations.ActiveID()
		if id == "" {
			break
		}
		if err := app.Controller.DeleteConversation(ctx, id); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		} else {
			fmt.Println("Deleted.")
		}

	case "/products":
		showProducts(ctx, app)

	case "/export":
		exportActive(app, rest)

	case "/search":
		if rest == "" {
			fmt.Println("Usage: /search <query>")
			break
		}
		results, err := app.SearchTranscripts(rest, 20)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		} else if results == "" {
			fmt.Println("No matches.")
		} else {
			fmt.Print(results)
		}

	case "/regen":
		question := lastUserQuestion(app)
		if question == "" {
			fmt.Println("Nothing to regenerate yet.")
			break
		}
		if err := app.Controller.RegenerateLastAnswer(ctx, question); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		} else {
			printLastAnswer(app)
		}

	default:
		fmt.Printf("Unknown command %s (try /help)\n", cmd)
	}
	return false
}

// showProducts fetches and prints recommendations for the last answer.
func showProducts(ctx context.Context, app *App) {
	convID := app.Conversations.ActiveID()
	msgID := ""
	for _, msg := range app.Messages.List(convID) {
		if msg.SenderID == model.SenderAssistant {
			msgID = msg.ID
		}
	}
	if msgID == "" {
		fmt.Println("No answer to fetch products for.")
		return
	}

	if !app.Controller.ShowStoredProducts(convID, msgID) {
		if err := app.Controller.ShowProducts(ctx, convID, msgID); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return
		}
	}
	if notice := app.Controller.Notice(); notice != "" {
		fmt.Println(notice)
		return
	}

	attachment, ok := app.Products.ForMessage(convID, msgID)
	if !ok {
		return
	}
	fmt.Printf("Recommended in %s:\n", attachment.Category)
	for _, p := range attachment.Products {
		stock := "in stock"
		if !p.InStock() {
			stock = "out of stock"
		}
		fmt.Printf("  - %s  $%s  (%s)\n", p.Name, p.Price, stock)
	}
}

// exportActive exports the active conversation from the REPL.
func exportActive(app *App, formatName string) {
	convID := app.Conversations.ActiveID()
	conv, ok := app.Conversations.Get(convID)
	if !ok {
		fmt.Println("No active conversation to export.")
		return
	}
	if formatName == "" {
		formatName = app.Config.Export.DefaultFormat
	}
	format, err := export.ParseFormat(formatName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return
	}

	path, err := export.ToFile(conv, app.Messages.List(convID), format, app.Config.Export.OutputDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return
	}
	fmt.Printf("Exported to %s\n", path)
}

// lastUserQuestion returns the newest user message in the active
// conversation.
func lastUserQuestion(app *App) string {
	timeline := app.Messages.List(app.Conversations.ActiveID())
	for i := len(timeline) - 1; i >= 0; i-- {
		if timeline[i].SenderID == model.SenderUser {
			return timeline[i].Content
		}
	}
	return ""
}
