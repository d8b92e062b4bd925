// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// status_cmd.go - Status CLI command for ccswitch.
//
// Command: status (alias: s)
//
// Examples:
//   ccswitch status
//   ccswitch status --json

package cli

import (
	"fmt"

	"github.com/jeranaias/ccswitch/internal/validation"
)

// HandleStatus handles the "status" command.
func (a *App) HandleStatus(parser *ArgParser) error {
	st, err := a.Manager.Status()
	if err != nil {
		return err
	}

	if parser.BoolFlag("json") {
		data := StatusData{
			SettingsFile: st.File,
			Drifted:      st.Drifted,
			ProfileCount: st.Profiles,
			DatabasePath: a.Store.Path(),
		}
		if st.Active != nil {
			pd := NewProfileData(st.Active, false, false, validation.MaskSensitiveData)
			data.ActiveProfile = &pd
		}
		return NewJSONResponse("status", data).Print()
	}

	fmt.Println(TitleStyle.Render("ccswitch status"))

	if st.Active != nil {
		fmt.Printf("%s %s\n", RenderLabel("Active profile:"), ActiveStyle.Render(st.Active.Name))
		if model := st.Active.Model(); model != "" {
			fmt.Printf("%s %s\n", RenderLabel("Model:"), ValueStyle.Render(model))
		}
	} else {
		fmt.Printf("%s %s\n", RenderLabel("Active profile:"), DimStyle.Render("none"))
	}

	fmt.Printf("%s %s\n", RenderLabel("Settings file:"), ValueStyle.Render(st.File.Path))
	if st.File.Exists {
		fmt.Printf("%s %d bytes, modified %s\n", RenderLabel("File state:"),
			st.File.Size, st.File.ModTime.Local().Format("2006-01-02 15:04:05"))
	} else {
		fmt.Printf("%s %s\n", RenderLabel("File state:"), WarningStyle.Render("missing"))
	}

	if st.Active != nil {
		if st.Drifted {
			fmt.Printf("%s %s\n", RenderLabel("Sync:"),
				WarningStyle.Render("settings file differs from the active profile"))
			fmt.Println(DimStyle.Render("  Run 'ccswitch apply " + st.Active.Name + "' to restore it."))
		} else {
			fmt.Printf("%s %s\n", RenderLabel("Sync:"), SuccessStyle.Render("in sync"))
		}
	}

	fmt.Printf("%s %d\n", RenderLabel("Profiles:"), st.Profiles)
	fmt.Printf("%s %d\n", RenderLabel("Backups:"), st.File.BackupCount)
	fmt.Printf("%s %s\n", RenderLabel("Database:"), DimStyle.Render(a.Store.Path()))
	return nil
}
