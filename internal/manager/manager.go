// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// manager.go - Profile lifecycle orchestration.

package manager

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/jeranaias/ccswitch/internal/configfile"
	"github.com/jeranaias/ccswitch/internal/logging"
	"github.com/jeranaias/ccswitch/internal/profile"
	"github.com/jeranaias/ccswitch/internal/store"
	"github.com/jeranaias/ccswitch/internal/util"
	"github.com/jeranaias/ccswitch/internal/validation"
)

// =============================================================================
// MANAGER
// =============================================================================

// Manager ties the profile store to the live settings file.
type Manager struct {
	store *store.Store
	files *configfile.Service
	log   zerolog.Logger
}

// New creates a manager over the given store and settings file service.
func New(st *store.Store, files *configfile.Service) *Manager {
	return &Manager{
		store: st,
		files: files,
		log:   logging.For("manager"),
	}
}

// Store exposes the underlying profile store.
func (m *Manager) Store() *store.Store {
	return m.store
}

// Files exposes the underlying settings file service.
func (m *Manager) Files() *configfile.Service {
	return m.files
}

// =============================================================================
// CREATE / UPDATE / DELETE
// =============================================================================

// validateProfile collects every name and content problem in one pass so
// the user sees the full list, not just the first failure.
func validateProfile(name, configJSON string) error {
	var msgs []string
	msgs = append(msgs, validation.ValidateProfileName(name)...)

	syntax := validation.ValidateJSONSyntax(configJSON)
	msgs = append(msgs, syntax...)
	if len(syntax) == 0 {
		var parsed interface{}
		if err := json.Unmarshal([]byte(configJSON), &parsed); err == nil {
			msgs = append(msgs, validation.ValidateConfigStructure(parsed)...)
		}
	}

	if len(msgs) > 0 {
		return profile.NewValidationError(msgs)
	}
	return nil
}

// Create validates and stores a new profile. Validation runs before the
// name-conflict check, so invalid content is reported even when the name
// is already taken.
func (m *Manager) Create(name, configJSON string) (*profile.Profile, error) {
	if err := validateProfile(name, configJSON); err != nil {
		return nil, err
	}

	id, err := m.store.Create(name, configJSON, util.ContentHash(configJSON))
	if err != nil {
		return nil, err
	}
	return m.store.Get(id)
}

// Update applies a rename and/or new content to an existing profile.
// Nil fields are left unchanged. New content is validated and rehashed.
//
// Updating the active profile's content does not rewrite the settings
// file; the change takes effect on the next activation.
func (m *Manager) Update(ref string, newName, newConfigJSON *string) (*profile.Profile, error) {
	p, err := m.GetByNameOrID(ref)
	if err != nil {
		return nil, err
	}

	name := p.Name
	if newName != nil {
		name = *newName
	}
	configJSON := p.ConfigJSON
	if newConfigJSON != nil {
		configJSON = *newConfigJSON
	}
	if err := validateProfile(name, configJSON); err != nil {
		return nil, err
	}

	var hash *string
	if newConfigJSON != nil {
		h := util.ContentHash(*newConfigJSON)
		hash = &h
	}

	ok, err := m.store.Update(p.ID, newName, newConfigJSON, hash)
	if err != nil {
		return nil, err
	}
	if !ok && (newName != nil || newConfigJSON != nil) {
		return nil, &profile.NotFoundError{Resource: "profile", Ref: ref}
	}
	return m.store.Get(p.ID)
}

// Delete removes a profile. The active profile is protected: it must be
// deactivated (or another profile activated) first.
func (m *Manager) Delete(ref string) error {
	p, err := m.GetByNameOrID(ref)
	if err != nil {
		return err
	}
	if p.IsActive {
		return &profile.ProtectedResourceError{Name: p.Name}
	}

	ok, err := m.store.Delete(p.ID)
	if err != nil {
		return err
	}
	if !ok {
		return &profile.NotFoundError{Resource: "profile", Ref: ref}
	}
	return nil
}

// Duplicate copies an existing profile's content verbatim under a new
// name. The copy shares the source's content hash and starts inactive.
func (m *Manager) Duplicate(ref, newName string) (*profile.Profile, error) {
	src, err := m.GetByNameOrID(ref)
	if err != nil {
		return nil, err
	}
	if msgs := validation.ValidateProfileName(newName); len(msgs) > 0 {
		return nil, profile.NewValidationError(msgs)
	}

	id, err := m.store.Create(newName, src.ConfigJSON, src.ContentHash)
	if err != nil {
		return nil, err
	}
	m.log.Info().Str("source", src.Name).Str("copy", newName).Msg("profile duplicated")
	return m.store.Get(id)
}

// =============================================================================
// LOOKUP
// =============================================================================

// GetByNameOrID resolves a profile reference: an all-digits reference is
// tried as an id first, then as a name, so a profile literally named
// "42" is still reachable when no id 42 exists.
func (m *Manager) GetByNameOrID(ref string) (*profile.Profile, error) {
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		p, err := m.store.Get(id)
		if err == nil {
			return p, nil
		}
		var notFound *profile.NotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}
	return m.store.GetByName(ref)
}

// List returns every profile ordered by name.
func (m *Manager) List() ([]*profile.Profile, error) {
	return m.store.GetAll()
}

// Active returns the active profile, or nil when none is active.
func (m *Manager) Active() (*profile.Profile, error) {
	return m.store.GetActive()
}

// Count returns the number of stored profiles.
func (m *Manager) Count() (int, error) {
	return m.store.Count()
}

// Search returns profiles whose name or configuration contains the
// query, case-insensitively. Configuration matching descends into nested
// objects and arrays, and matches keys as well as values.
func (m *Manager) Search(query string) ([]*profile.Profile, error) {
	profiles, err := m.store.GetAll()
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(query)
	var matches []*profile.Profile
	for _, p := range profiles {
		if strings.Contains(strings.ToLower(p.Name), needle) {
			matches = append(matches, p)
			continue
		}
		var parsed interface{}
		if err := json.Unmarshal([]byte(p.ConfigJSON), &parsed); err != nil {
			continue
		}
		if containsValue(parsed, needle) {
			matches = append(matches, p)
		}
	}
	return matches, nil
}

func containsValue(node interface{}, needle string) bool {
	switch v := node.(type) {
	case map[string]interface{}:
		for key, val := range v {
			if strings.Contains(strings.ToLower(key), needle) {
				return true
			}
			if containsValue(val, needle) {
				return true
			}
		}
	case []interface{}:
		for _, item := range v {
			if containsValue(item, needle) {
				return true
			}
		}
	case string:
		return strings.Contains(strings.ToLower(v), needle)
	case float64:
		return strings.Contains(strconv.FormatFloat(v, 'f', -1, 64), needle)
	case bool:
		return strings.Contains(strconv.FormatBool(v), needle)
	}
	return false
}

// =============================================================================
// ACTIVATION
// =============================================================================

// ActivateOptions tweak the activation flow.
type ActivateOptions struct {
	// SkipBackup skips the pre-activation backup of the settings file.
	SkipBackup bool
}

// Activate writes the profile's configuration to the settings file and
// marks it active. The order is deliberate: back up the current file
// (best effort), write the new content atomically, and only then flip
// the active flag. A failed write leaves the previous profile active and
// the settings file untouched.
func (m *Manager) Activate(ref string) (*profile.Profile, error) {
	return m.ActivateWith(ref, ActivateOptions{})
}

// ActivateWith is Activate with explicit options.
func (m *Manager) ActivateWith(ref string, opts ActivateOptions) (*profile.Profile, error) {
	p, err := m.GetByNameOrID(ref)
	if err != nil {
		return nil, err
	}

	if !opts.SkipBackup {
		backupPath, err := m.files.CreateBackup()
		if err != nil {
			var notFound *profile.NotFoundError
			if !errors.As(err, &notFound) {
				// Activation proceeds anyway; the backup is a convenience,
				// not a precondition.
				m.log.Warn().Err(err).Msg("pre-activation backup failed")
			}
		} else {
			if _, err := m.store.LogBackup(&p.ID, backupPath); err != nil {
				m.log.Warn().Err(err).Msg("could not record backup")
			}
		}
	}

	if err := m.files.WriteSettings(p.ConfigJSON); err != nil {
		return nil, err
	}
	if err := m.store.SetActive(p.ID); err != nil {
		return nil, err
	}

	m.log.Info().Str("name", p.Name).Msg("profile activated")
	return m.store.Get(p.ID)
}

// Deactivate clears the active flag without touching the settings file.
func (m *Manager) Deactivate() error {
	return m.store.ClearActive()
}

// =============================================================================
// STATUS
// =============================================================================

// Status summarizes the relationship between the active profile and the
// settings file on disk.
type Status struct {
	Active   *profile.Profile `json:"active_profile,omitempty"`
	File     configfile.Info  `json:"settings_file"`
	Drifted  bool             `json:"drifted"`
	Profiles int              `json:"profile_count"`
}

// Status reports the active profile, the settings file state, and
// whether the file has drifted from the active profile's content.
func (m *Manager) Status() (Status, error) {
	var st Status

	active, err := m.store.GetActive()
	if err != nil {
		return st, err
	}
	st.Active = active

	info, err := m.files.Describe()
	if err != nil {
		return st, err
	}
	st.File = info

	if active != nil {
		drifted, err := m.files.DiffersFrom(active.ContentHash)
		if err != nil {
			return st, err
		}
		st.Drifted = drifted
	}

	count, err := m.store.Count()
	if err != nil {
		return st, err
	}
	st.Profiles = count
	return st, nil
}

// Validate runs the full validation report for a prospective profile.
func (m *Manager) Validate(name, configJSON string) validation.Summary {
	return validation.Summarize(name, configJSON)
}
