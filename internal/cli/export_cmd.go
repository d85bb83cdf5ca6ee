// Copyright (c) 2025 Million Media
// SPDX-License-Identifier: AGPL-3.0-or-later

// export_cmd.go - Export a saved conversation transcript to a file.
package cli

import (
	"fmt"

	"github.com/MillionMedia2/ask-herbie-interface/internal/config"
	"github.com/MillionMedia2/ask-herbie-interface/internal/export"
	"github.com/MillionMedia2/ask-herbie-interface/internal/model"
	"github.com/MillionMedia2/ask-herbie-interface/internal/storage"
)

// HandleExport runs the export command against the saved state.
func HandleExport(args *Args) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	stateStore, err := storage.NewStateStore()
	if err != nil {
		return err
	}
	state, err := stateStore.Load()
	if err != nil {
		return err
	}

	convID := args.Conversation
	if convID == "" {
		convID = state.ActiveConversationID
	}
	if convID == "" {
		return fmt.Errorf("no conversation to export; pass --conversation ID")
	}

	var conv model.Conversation
	found := false
	for _, c := range state.Conversations {
		if c.ID == convID {
			conv, found = c, true
			break
		}
	}
	if !found {
		return fmt.Errorf("conversation %q not found in saved state", convID)
	}

	formatName := args.Format
	if formatName == "" {
		formatName = cfg.Export.DefaultFormat
	}
	format, err := export.ParseFormat(formatName)
	if err != nil {
		return err
	}

	outputDir := args.Output
	if outputDir == "" {
		outputDir = cfg.Export.OutputDir
	}

	path, err := export.ToFile(conv, state.Messages[convID], format, outputDir)
	if err != nil {
		return err
	}
	fmt.Printf("Exported to %s\n", path)
	return nil
}
