// ask-herbie - a terminal client for the Herbie herbal advice assistant.
//
// Copyright (c) 2025 Million Media
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/MillionMedia2/ask-herbie-interface/internal/cli"
	"github.com/MillionMedia2/ask-herbie-interface/internal/storage"
	"github.com/MillionMedia2/ask-herbie-interface/internal/trigger"
	uichat "github.com/MillionMedia2/ask-herbie-interface/internal/ui/chat"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse()

	var err error
	switch cmd {
	case cli.CmdTUI:
		err = runTUI()
	case cli.CmdAsk:
		err = cli.HandleAsk(args)
	case cli.CmdChat:
		err = cli.HandleChat(args)
	case cli.CmdSearch:
		err = cli.HandleSearch(args)
	case cli.CmdExport:
		err = cli.HandleExport(args)
	case cli.CmdVersion:
		cli.HandleVersion(args)
	case cli.CmdHelp:
		cli.HandleHelp()
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// runTUI wires the application and runs the Bubble Tea program.
func runTUI() error {
	ctx := context.Background()

	app, err := cli.NewApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.OpenHistory(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: search index unavailable: %v\n", err)
	}

	model := uichat.New(uichat.Options{
		Controller:    app.Controller,
		Conversations: app.Conversations,
		Messages:      app.Messages,
		Products:      app.Products,
		Config:        app.Config,
		OnPersist: func() {
			if err := app.SaveState(); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: could not save state: %v\n", err)
			}
		},
		Search: func(query string) (string, error) {
			return app.SearchTranscripts(query, 20)
		},
	})

	watcher, err := startTriggerWatcher(ctx, app)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: trigger watcher unavailable: %v\n", err)
	} else if watcher != nil {
		defer watcher.Close()
	}

	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return err
	}

	return app.SaveState()
}

// startTriggerWatcher consumes external question spools while the TUI runs.
func startTriggerWatcher(ctx context.Context, app *cli.App) (*trigger.Watcher, error) {
	if !app.Config.Trigger.Enabled {
		return nil, nil
	}

	ledger, err := storage.LoadTriggerLedger(app.State)
	if err != nil {
		return nil, err
	}

	watcher, err := trigger.NewWatcher(app.State.BaseDir, ledger, func(question string) {
		go func() {
			var err error
			if app.Conversations.ActiveID() == "" {
				err = app.Controller.StartConversation(ctx, question)
			} else {
				err = app.Controller.SendMessage(ctx, question)
			}
			if err != nil {
				fmt.Fprintf(os.Stderr, "Trigger failed: %v\n", err)
			}
		}()
	})
	if err != nil {
		return nil, err
	}
	if err := watcher.Start(); err != nil {
		return nil, err
	}
	return watcher, nil
}
