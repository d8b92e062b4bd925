// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - Command dispatch and shared wiring for ccswitch.
//
// CLI: Comprehensive help and examples for all commands

package cli

import (
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/jeranaias/ccswitch/internal/config"
	"github.com/jeranaias/ccswitch/internal/configfile"
	"github.com/jeranaias/ccswitch/internal/logging"
	"github.com/jeranaias/ccswitch/internal/manager"
	"github.com/jeranaias/ccswitch/internal/store"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

const usageText = `ccswitch - Claude Code settings profile manager

Ccswitch stores named snapshots of your Claude Code settings.json and
switches between them safely: every write is atomic and the file being
replaced is backed up first.

Usage:
  ccswitch list, ls                 List all profiles
  ccswitch show <name|id>           Show one profile (secrets masked)
  ccswitch create <name> --file F   Create a profile from a JSON file
  ccswitch update <name|id>         Update name and/or content
  ccswitch delete <name|id>         Delete a profile (not the active one)
  ccswitch apply <name|id>          Write a profile to settings.json
  ccswitch deactivate               Clear the active profile marker
  ccswitch duplicate <src> <name>   Copy a profile under a new name
  ccswitch search <query>           Search names and configuration
  ccswitch validate [--file F]      Validate configuration JSON
  ccswitch status, s                Active profile and settings file state
  ccswitch backup [subcommand]      Manage settings file backups
  ccswitch version                  Show version information
  ccswitch help                     Show this help

Common flags:
  --json            Machine-readable output
  --force           Skip confirmation prompts
  --file <path>     Read configuration JSON from a file ("-" for stdin)
  --settings <path> Override the settings.json location
  --show-secrets    Do not mask credentials in output
  --no-color        Disable styled output

Examples:
  ccswitch create work --file work-settings.json
  ccswitch apply work
  ccswitch status
  ccswitch backup list
  ccswitch backup cleanup --keep 5
  ccswitch search api.example.com --json

Exit codes:
  0 success   2 usage/validation   3 file I/O      4 name conflict
  5 protected 6 corrupt data       7 not found     8 database locked
`

// =============================================================================
// APP WIRING
// =============================================================================

// App holds the wired services every command handler needs.
type App struct {
	Config  *config.Config
	Store   *store.Store
	Files   *configfile.Service
	Manager *manager.Manager
}

// NewApp wires configuration, logging, the profile store and the
// settings file service. settingsOverride (the --settings flag) wins
// over configuration and detection.
func NewApp(settingsOverride string) (*App, error) {
	cfg := config.Global()

	SetColorMode(cfg.UI.Color)
	if err := logging.Setup(cfg.Log.Level, cfg.Log.File); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	st, err := store.Open(cfg.DatabasePath)
	if err != nil {
		return nil, err
	}

	settingsPath := settingsOverride
	if settingsPath == "" {
		settingsPath = cfg.ResolveSettingsPath()
	}
	files := configfile.NewService(settingsPath)

	return &App{
		Config:  cfg,
		Store:   st,
		Files:   files,
		Manager: manager.New(st, files),
	}, nil
}

// Close releases the app's resources.
func (a *App) Close() {
	if a.Store != nil {
		a.Store.Close()
	}
}

// =============================================================================
// DISPATCH
// =============================================================================

// Run parses argv (without the program name) and executes the command.
// Returns the process exit code.
func Run(argv []string) int {
	if len(argv) == 0 {
		fmt.Print(usageText)
		return ExitSuccess
	}

	command := argv[0]
	parser := NewArgParser(argv[1:])
	jsonMode := parser.BoolFlag("json")

	switch command {
	case "help", "--help", "-h":
		fmt.Print(usageText)
		return ExitSuccess
	case "version", "--version", "-v":
		return handleVersion(parser)
	}

	settingsOverride := parser.Flag("settings")
	if settingsOverride == "" {
		settingsOverride = parser.Flag("config-path")
	}
	app, err := NewApp(settingsOverride)
	if err != nil {
		DisplayError(err, jsonMode)
		return GetExitCode(err)
	}
	defer app.Close()

	// Flag override beats the configured color mode.
	if parser.BoolFlag("no-color") {
		SetColorMode("never")
	}

	switch command {
	case "list", "ls":
		err = app.HandleList(parser)
	case "show":
		err = app.HandleShow(parser)
	case "create":
		err = app.HandleCreate(parser)
	case "update":
		err = app.HandleUpdate(parser)
	case "delete", "rm":
		err = app.HandleDelete(parser)
	case "apply", "activate", "use":
		err = app.HandleApply(parser)
	case "deactivate":
		err = app.HandleDeactivate(parser)
	case "duplicate", "copy":
		err = app.HandleDuplicate(parser)
	case "search":
		err = app.HandleSearch(parser)
	case "validate":
		err = app.HandleValidate(parser)
	case "status", "s":
		err = app.HandleStatus(parser)
	case "backup":
		err = app.HandleBackup(parser)
	default:
		err = NewUsageError(fmt.Sprintf("unknown command: %s", command), "ccswitch help")
	}

	if err != nil {
		DisplayError(err, jsonMode)
		return GetExitCode(err)
	}
	return ExitSuccess
}

func handleVersion(parser *ArgParser) int {
	if parser.BoolFlag("json") {
		resp := NewJSONResponse("version", map[string]string{
			"version":    Version,
			"git_commit": GitCommit,
			"build_date": BuildDate,
			"go_version": runtime.Version(),
		})
		resp.Print()
		return ExitSuccess
	}
	fmt.Printf("ccswitch %s (commit %s, built %s, %s)\n", Version, GitCommit, BuildDate, runtime.Version())
	return ExitSuccess
}

// =============================================================================
// INPUT HELPERS
// =============================================================================

// readConfigInput reads the configuration JSON for create/update/validate
// from --file (with "-" meaning stdin), or from piped stdin.
func readConfigInput(parser *ArgParser) (string, error) {
	path := parser.Flag("file")
	if path == "-" || (path == "" && !IsTTY()) {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}
	if path == "" {
		return "", NewUsageError("configuration input required",
			"--file <path> (or pipe JSON on stdin)")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}
