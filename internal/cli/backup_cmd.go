// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// backup_cmd.go - Backup management CLI commands for ccswitch.
//
// Command: backup
// Subcommands:
//   list (default)       List backups of the settings file, newest first
//   create               Take a backup of the current settings file
//   restore <name>       Restore a backup over the settings file
//   cleanup [--keep N]   Delete old backups past the retention count
//
// Examples:
//   ccswitch backup
//   ccswitch backup create
//   ccswitch backup create --output /tmp/settings.snapshot.json
//   ccswitch backup restore settings.json.backup.20250829_142233
//   ccswitch backup cleanup --keep 5

package cli

import (
	"fmt"
	"path/filepath"
)

// HandleBackup handles the "backup" command and its subcommands.
func (a *App) HandleBackup(parser *ArgParser) error {
	switch parser.Positional(0) {
	case "", "list", "ls":
		return a.backupList(parser)
	case "create":
		return a.backupCreate(parser)
	case "restore":
		return a.backupRestore(parser)
	case "cleanup":
		return a.backupCleanup(parser)
	default:
		return NewUsageError(fmt.Sprintf("unknown backup subcommand: %s", parser.Positional(0)),
			"ccswitch backup [list|create|restore <name>|cleanup]")
	}
}

func (a *App) backupList(parser *ArgParser) error {
	backups, err := a.Files.ListBackups()
	if err != nil {
		return err
	}

	if parser.BoolFlag("json") {
		data := make([]BackupData, 0, len(backups))
		for _, b := range backups {
			data = append(data, BackupData{
				Name:     b.Name,
				Path:     b.Path,
				Size:     b.Size,
				Modified: b.ModTime.Local().Format("2006-01-02 15:04:05"),
			})
		}
		return NewJSONResponse("backup", data).Print()
	}

	if len(backups) == 0 {
		fmt.Println(DimStyle.Render("No backups yet. One is taken automatically on 'ccswitch apply'."))
		return nil
	}

	fmt.Println(TitleStyle.Render("Backups"))
	for _, b := range backups {
		fmt.Printf("  %s  %s  %s\n",
			ValueStyle.Render(b.Name),
			DimStyle.Render(fmt.Sprintf("%6d bytes", b.Size)),
			DimStyle.Render(b.ModTime.Local().Format("2006-01-02 15:04:05")))
	}
	return nil
}

func (a *App) backupCreate(parser *ArgParser) error {
	var path string
	var err error
	if dst := parser.Flag("output"); dst != "" {
		path = dst
		err = a.Files.CreateBackupTo(dst)
	} else {
		path, err = a.Files.CreateBackup()
	}
	if err != nil {
		return err
	}

	// Tie the backup to the active profile when there is one.
	var profileID *int64
	if active, err := a.Manager.Active(); err == nil && active != nil {
		profileID = &active.ID
	}
	if _, err := a.Store.LogBackup(profileID, path); err != nil {
		StderrPrintln(WarningStyle.Render("Warning: backup taken but not recorded: " + err.Error()))
	}

	if parser.BoolFlag("json") {
		return NewJSONResponse("backup", map[string]interface{}{"created": path}).Print()
	}
	fmt.Printf("%s Backup created: %s\n", SuccessStyle.Render("[OK]"), path)
	return nil
}

func (a *App) backupRestore(parser *ArgParser) error {
	name := parser.Positional(1)
	if name == "" {
		return NewUsageError("backup name required", "ccswitch backup restore <name>")
	}
	jsonMode := parser.BoolFlag("json")

	path := name
	if filepath.Base(name) == name {
		path = filepath.Join(a.Files.BackupDir(), name)
	}

	force := parser.BoolFlag("force") || !a.Config.UI.ConfirmDestructive
	confirmed, err := RequireConfirmation(force,
		fmt.Sprintf("overwrite %s with backup %q", a.Files.SettingsPath(), name), jsonMode)
	if err != nil {
		return err
	}
	if !confirmed {
		ShowCancellationMessage()
		return nil
	}

	if err := a.Files.RestoreBackup(path); err != nil {
		return err
	}

	// The restored file no longer matches any stored profile for sure,
	// so clear the active marker rather than lie about it.
	if err := a.Manager.Deactivate(); err != nil {
		StderrPrintln(WarningStyle.Render("Warning: could not clear active profile: " + err.Error()))
	}

	if jsonMode {
		return NewJSONResponse("backup", map[string]interface{}{"restored": name}).Print()
	}
	fmt.Printf("%s Backup %s restored to %s\n",
		SuccessStyle.Render("[OK]"), HighlightStyle.Render(name), a.Files.SettingsPath())
	return nil
}

func (a *App) backupCleanup(parser *ArgParser) error {
	keep := parser.FlagIntOrDefault("keep", a.Config.Backup.Retention)
	if keep < 0 {
		return NewUsageError("--keep must be zero or more", "ccswitch backup cleanup [--keep N]")
	}

	removed, err := a.Files.CleanupOldBackups(keep)
	if err != nil {
		return err
	}
	if _, err := a.Store.CleanupBackupLog(keep); err != nil {
		StderrPrintln(WarningStyle.Render("Warning: backup log cleanup failed: " + err.Error()))
	}

	if parser.BoolFlag("json") {
		return NewJSONResponse("backup", map[string]interface{}{"removed": removed, "kept": keep}).Print()
	}
	fmt.Printf("%s Removed %d backup(s), keeping the %d most recent\n",
		SuccessStyle.Render("[OK]"), removed, keep)
	return nil
}
