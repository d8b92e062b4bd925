// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// profile_cmd.go - Profile lifecycle CLI commands for ccswitch.
//
// Commands: list, show, create, update, delete, apply, deactivate,
//           duplicate, search
//
// Examples:
//   ccswitch list                          List profiles, active marked
//   ccswitch show work                     Show a profile, secrets masked
//   ccswitch show work --show-secrets      Show with credentials visible
//   ccswitch create work --file w.json     Create from a JSON file
//   cat w.json | ccswitch create work      Create from stdin
//   ccswitch update work --name staging    Rename
//   ccswitch update work --file new.json   Replace content
//   ccswitch delete old --force            Delete without prompting
//   ccswitch apply work                    Back up, write, mark active
//   ccswitch apply work --dry-run          Show what would change
//   ccswitch apply work --no-backup        Skip the pre-write backup
//   ccswitch duplicate work work-copy      Copy under a new name
//   ccswitch search api.example.com        Search names and content

package cli

import (
	"fmt"
	"strings"

	"github.com/jeranaias/ccswitch/internal/manager"
	"github.com/jeranaias/ccswitch/internal/profile"
	"github.com/jeranaias/ccswitch/internal/util"
	"github.com/jeranaias/ccswitch/internal/validation"
)

// listNameWidth is the name column width in list and search output.
const listNameWidth = 24

// nameCell renders a fixed-width name column. Padding happens before
// styling: ANSI escapes would throw off printf width counting, and
// truncation is rune-aware so multi-byte names stay intact.
func nameCell(name string, width int) string {
	return util.PadRight(util.TruncateRunes(name, width), width)
}

// =============================================================================
// LIST
// =============================================================================

// HandleList handles the "list" command.
func (a *App) HandleList(parser *ArgParser) error {
	profiles, err := a.Manager.List()
	if err != nil {
		return err
	}

	if parser.BoolFlag("json") {
		data := make([]ProfileData, 0, len(profiles))
		for _, p := range profiles {
			data = append(data, NewProfileData(p, false, false, validation.MaskSensitiveData))
		}
		return NewJSONResponse("list", data).Print()
	}

	if len(profiles) == 0 {
		fmt.Println(DimStyle.Render("No profiles yet. Create one with: ccswitch create <name> --file <path>"))
		return nil
	}

	fmt.Println(TitleStyle.Render("Profiles"))
	for _, p := range profiles {
		marker := " "
		cell := nameCell(p.Name, listNameWidth)
		name := ValueStyle.Render(cell)
		if p.IsActive {
			marker = ActiveStyle.Render("*")
			name = ActiveStyle.Render(cell)
		}
		detail := p.Model()
		if detail == "" {
			detail = p.BaseURL()
		}
		fmt.Printf(" %s %s %s %s\n", marker, name,
			DimStyle.Render(fmt.Sprintf("#%d", p.ID)), DimStyle.Render(detail))
	}
	return nil
}

// =============================================================================
// SHOW
// =============================================================================

// HandleShow handles the "show" command.
func (a *App) HandleShow(parser *ArgParser) error {
	ref := parser.Positional(0)
	if ref == "" {
		return NewUsageError("profile name or id required", "ccswitch show <name|id>")
	}

	p, err := a.Manager.GetByNameOrID(ref)
	if err != nil {
		return err
	}

	showSecrets := parser.BoolFlag("show-secrets")
	if parser.BoolFlag("json") {
		return NewJSONResponse("show",
			NewProfileData(p, true, showSecrets, validation.MaskSensitiveData)).Print()
	}

	printProfile(p, showSecrets)
	return nil
}

func printProfile(p *profile.Profile, showSecrets bool) {
	fmt.Println(TitleStyle.Render("Profile: " + p.Name))
	fmt.Printf("%s %d\n", RenderLabel("ID:"), p.ID)
	status := "inactive"
	if p.IsActive {
		status = "active"
	}
	fmt.Printf("%s %s\n", RenderLabel("Status:"), RenderStatus(status))
	if model := p.Model(); model != "" {
		fmt.Printf("%s %s\n", RenderLabel("Model:"), ValueStyle.Render(model))
	}
	if url := p.BaseURL(); url != "" {
		fmt.Printf("%s %s\n", RenderLabel("Base URL:"), ValueStyle.Render(url))
	}
	if token := p.MaskedAuthToken(); token != "" {
		fmt.Printf("%s %s\n", RenderLabel("Auth token:"), DimStyle.Render(token))
	}
	fmt.Printf("%s %s\n", RenderLabel("Content hash:"), DimStyle.Render(util.TruncateRunes(p.ContentHash, 15)))
	fmt.Printf("%s %s\n", RenderLabel("Created:"), p.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	fmt.Printf("%s %s\n", RenderLabel("Updated:"), p.UpdatedAt.Local().Format("2006-01-02 15:04:05"))

	fmt.Println(SectionStyle.Render("Configuration"))
	content := p.ConfigJSON
	if !showSecrets {
		content = validation.MaskSensitiveData(content)
	}
	fmt.Println(content)
	if !showSecrets {
		fmt.Println(DimStyle.Render("Credentials masked; use --show-secrets to reveal."))
	}
}

// =============================================================================
// CREATE
// =============================================================================

// HandleCreate handles the "create" command.
func (a *App) HandleCreate(parser *ArgParser) error {
	name := parser.Positional(0)
	if name == "" {
		return NewUsageError("profile name required", "ccswitch create <name> --file <path>")
	}

	configJSON, err := readConfigInput(parser)
	if err != nil {
		return err
	}

	p, err := a.Manager.Create(name, configJSON)
	if err != nil {
		return err
	}

	if parser.BoolFlag("json") {
		return NewJSONResponse("create",
			NewProfileData(p, false, false, validation.MaskSensitiveData)).Print()
	}
	fmt.Printf("%s Profile %s created (#%d)\n",
		SuccessStyle.Render("[OK]"), HighlightStyle.Render(p.Name), p.ID)
	return nil
}

// =============================================================================
// UPDATE
// =============================================================================

// HandleUpdate handles the "update" command.
func (a *App) HandleUpdate(parser *ArgParser) error {
	ref := parser.Positional(0)
	if ref == "" {
		return NewUsageError("profile name or id required",
			"ccswitch update <name|id> [--name <new>] [--file <path>]")
	}

	var newName *string
	if n := parser.Flag("name"); n != "" {
		newName = &n
	}

	var newConfig *string
	if parser.HasFlag("file") || !IsTTY() {
		content, err := readConfigInput(parser)
		if err != nil {
			return err
		}
		newConfig = &content
	}

	if newName == nil && newConfig == nil {
		return NewUsageError("nothing to update",
			"ccswitch update <name|id> [--name <new>] [--file <path>]")
	}

	p, err := a.Manager.Update(ref, newName, newConfig)
	if err != nil {
		return err
	}

	if parser.BoolFlag("json") {
		return NewJSONResponse("update",
			NewProfileData(p, false, false, validation.MaskSensitiveData)).Print()
	}
	fmt.Printf("%s Profile %s updated\n", SuccessStyle.Render("[OK]"), HighlightStyle.Render(p.Name))
	if p.IsActive {
		fmt.Println(DimStyle.Render("This profile is active; run 'ccswitch apply " + p.Name + "' to push the change to settings.json."))
	}
	return nil
}

// =============================================================================
// DELETE
// =============================================================================

// HandleDelete handles the "delete" command.
func (a *App) HandleDelete(parser *ArgParser) error {
	ref := parser.Positional(0)
	if ref == "" {
		return NewUsageError("profile name or id required", "ccswitch delete <name|id> [--force]")
	}
	jsonMode := parser.BoolFlag("json")

	p, err := a.Manager.GetByNameOrID(ref)
	if err != nil {
		return err
	}

	force := parser.BoolFlag("force") || !a.Config.UI.ConfirmDestructive
	confirmed, err := RequireConfirmation(force, fmt.Sprintf("delete profile %q", p.Name), jsonMode)
	if err != nil {
		return err
	}
	if !confirmed {
		ShowCancellationMessage()
		return nil
	}

	if err := a.Manager.Delete(ref); err != nil {
		return err
	}

	if jsonMode {
		return NewJSONResponse("delete", map[string]interface{}{"deleted": p.Name}).Print()
	}
	fmt.Printf("%s Profile %s deleted\n", SuccessStyle.Render("[OK]"), HighlightStyle.Render(p.Name))
	return nil
}

// =============================================================================
// APPLY
// =============================================================================

// HandleApply handles the "apply" command.
func (a *App) HandleApply(parser *ArgParser) error {
	ref := parser.Positional(0)
	if ref == "" {
		return NewUsageError("profile name or id required", "ccswitch apply <name|id>")
	}

	if parser.BoolFlag("dry-run") {
		return a.applyDryRun(parser, ref)
	}

	opts := manager.ActivateOptions{SkipBackup: parser.BoolFlag("no-backup")}
	p, err := a.Manager.ActivateWith(ref, opts)
	if err != nil {
		return err
	}

	if a.Config.Backup.AutoCleanup {
		if _, err := a.Files.CleanupOldBackups(a.Config.Backup.Retention); err != nil {
			StderrPrintln(WarningStyle.Render("Warning: backup cleanup failed: " + err.Error()))
		}
	}

	if parser.BoolFlag("json") {
		return NewJSONResponse("apply",
			NewProfileData(p, false, false, validation.MaskSensitiveData)).Print()
	}
	fmt.Printf("%s Profile %s applied to %s\n",
		SuccessStyle.Render("[OK]"), HighlightStyle.Render(p.Name), a.Files.SettingsPath())
	return nil
}

// applyDryRun reports what an activation would change without touching
// the settings file or the active marker.
func (a *App) applyDryRun(parser *ArgParser, ref string) error {
	p, err := a.Manager.GetByNameOrID(ref)
	if err != nil {
		return err
	}
	differs, err := a.Files.DiffersFrom(p.ContentHash)
	if err != nil {
		return err
	}

	if parser.BoolFlag("json") {
		return NewJSONResponse("apply", map[string]interface{}{
			"dry_run":      true,
			"profile":      p.Name,
			"would_change": differs,
			"settings":     a.Files.SettingsPath(),
		}).Print()
	}
	if differs {
		fmt.Printf("Applying %s would rewrite %s\n", HighlightStyle.Render(p.Name), a.Files.SettingsPath())
	} else {
		fmt.Printf("%s already matches profile %s; applying would only move the active marker\n",
			a.Files.SettingsPath(), HighlightStyle.Render(p.Name))
	}
	return nil
}

// HandleDeactivate handles the "deactivate" command.
func (a *App) HandleDeactivate(parser *ArgParser) error {
	if err := a.Manager.Deactivate(); err != nil {
		return err
	}
	if parser.BoolFlag("json") {
		return NewJSONResponse("deactivate", map[string]interface{}{"active_profile": nil}).Print()
	}
	fmt.Printf("%s No profile is active now; settings.json was left untouched\n", SuccessStyle.Render("[OK]"))
	return nil
}

// =============================================================================
// DUPLICATE
// =============================================================================

// HandleDuplicate handles the "duplicate" command.
func (a *App) HandleDuplicate(parser *ArgParser) error {
	src := parser.Positional(0)
	newName := parser.Positional(1)
	if src == "" || newName == "" {
		return NewUsageError("source and new name required", "ccswitch duplicate <name|id> <new-name>")
	}

	p, err := a.Manager.Duplicate(src, newName)
	if err != nil {
		return err
	}

	if parser.BoolFlag("json") {
		return NewJSONResponse("duplicate",
			NewProfileData(p, false, false, validation.MaskSensitiveData)).Print()
	}
	fmt.Printf("%s Profile %s duplicated as %s (#%d)\n",
		SuccessStyle.Render("[OK]"), src, HighlightStyle.Render(p.Name), p.ID)
	return nil
}

// =============================================================================
// SEARCH
// =============================================================================

// HandleSearch handles the "search" command.
func (a *App) HandleSearch(parser *ArgParser) error {
	query := strings.Join(parser.PositionalFrom(0), " ")
	if query == "" {
		return NewUsageError("search query required", "ccswitch search <query>")
	}

	matches, err := a.Manager.Search(query)
	if err != nil {
		return err
	}

	if parser.BoolFlag("json") {
		data := make([]ProfileData, 0, len(matches))
		for _, p := range matches {
			data = append(data, NewProfileData(p, false, false, validation.MaskSensitiveData))
		}
		return NewJSONResponse("search", data).Print()
	}

	if len(matches) == 0 {
		fmt.Println(DimStyle.Render(fmt.Sprintf("No profiles match %q", query)))
		return nil
	}
	fmt.Printf("%d profile(s) match %q:\n", len(matches), query)
	for _, p := range matches {
		marker := " "
		if p.IsActive {
			marker = ActiveStyle.Render("*")
		}
		fmt.Printf(" %s %s %s\n", marker,
			ValueStyle.Render(nameCell(p.Name, listNameWidth)),
			DimStyle.Render(fmt.Sprintf("#%d", p.ID)))
	}
	return nil
}
