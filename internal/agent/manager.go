// Package agent owns the lifecycle of the active backend: at most one runs
// at a time, and switching profiles tears the old one down before the new
// one accepts work.
package agent

import (
	"errors"
	"fmt"

	"github.com/clide-ide/agentlink/internal/backend"
	"github.com/clide-ide/agentlink/internal/config"
	"github.com/clide-ide/agentlink/internal/domain"
	"github.com/clide-ide/agentlink/internal/logging"
)

var (
	// ErrNoProfiles means the settings file names no agent profiles at all.
	ErrNoProfiles = errors.New("no agent profiles configured")
	// ErrProfileNotFound means the requested profile id is not in settings.
	ErrProfileNotFound = errors.New("agent profile not found")
	// ErrNotStarted means Send was called with no active backend.
	ErrNotStarted = errors.New("agent not started")
)

type activeBackend struct {
	profile config.AgentProfile
	backend backend.Backend
}

// Manager holds the settings and the single active backend. It is not safe
// for concurrent use; the caller serializes access from its event loop.
type Manager struct {
	workspaceRoot string
	settingsPath  string
	settings      config.Settings
	active        *activeBackend
	log           *logging.Logger
}

// NewManager wraps already-loaded settings. No backend is started until
// EnsureActive or ActivateProfile is called.
func NewManager(settings config.Settings, settingsPath, workspaceRoot string, log *logging.Logger) *Manager {
	return &Manager{
		workspaceRoot: workspaceRoot,
		settingsPath:  settingsPath,
		settings:      settings,
		log:           log.Sub("agent"),
	}
}

// Settings returns the current settings snapshot.
func (m *Manager) Settings() config.Settings { return m.settings }

// Profiles lists the configured profiles in settings order.
func (m *Manager) Profiles() []config.AgentProfile { return m.settings.Profiles }

// ActiveProfile returns the profile behind the running backend, if any.
func (m *Manager) ActiveProfile() (config.AgentProfile, bool) {
	if m.active == nil {
		return config.AgentProfile{}, false
	}
	return m.active.profile, true
}

// BackendName returns the display name of the running backend, or empty.
func (m *Manager) BackendName() string {
	if m.active == nil {
		return ""
	}
	return m.active.backend.Name()
}

// EnsureActive starts the default profile if nothing is running yet.
func (m *Manager) EnsureActive() error {
	if m.active != nil {
		return nil
	}
	profile, ok := m.settings.DefaultProfileEntry()
	if !ok {
		return ErrNoProfiles
	}
	return m.ActivateProfile(profile.ID)
}

// ActivateProfile switches to the named profile. The replacement backend is
// constructed first so that a failed switch leaves the current one running;
// on success the old backend is closed before the new one is installed, and
// the profile becomes the default for the next session.
func (m *Manager) ActivateProfile(id string) error {
	profile, ok := m.settings.Profile(id)
	if !ok {
		return fmt.Errorf("%w: %q", ErrProfileNotFound, id)
	}

	next, err := backend.New(profile, m.workspaceRoot, m.log)
	if err != nil {
		return fmt.Errorf("starting profile %q: %w", id, err)
	}

	if m.active != nil {
		m.active.backend.Close()
	}
	m.active = &activeBackend{profile: profile, backend: next}
	m.settings.DefaultProfile = id

	m.log.Info().Str("profile", id).Str("backend", next.Name()).Msg("activated agent profile")
	return nil
}

// Send forwards the request to the active backend.
func (m *Manager) Send(req domain.Request) error {
	if m.active == nil {
		return ErrNotStarted
	}
	return m.active.backend.Send(req)
}

// PollEvent drains one pending event from the active backend without
// blocking. With no active backend it reports none.
func (m *Manager) PollEvent() (domain.Event, bool) {
	if m.active == nil {
		return domain.Event{}, false
	}
	return m.active.backend.PollEvent()
}

// SaveProfile inserts or replaces a profile and persists settings.
func (m *Manager) SaveProfile(profile config.AgentProfile) error {
	replaced := false
	for i, p := range m.settings.Profiles {
		if p.ID == profile.ID {
			m.settings.Profiles[i] = profile
			replaced = true
			break
		}
	}
	if !replaced {
		m.settings.Profiles = append(m.settings.Profiles, profile)
	}
	if m.settingsPath == "" {
		return nil
	}
	return config.Save(m.settingsPath, m.settings)
}

// SaveSettings persists the current settings snapshot, including any default
// profile change made by ActivateProfile.
func (m *Manager) SaveSettings() error {
	if m.settingsPath == "" {
		return nil
	}
	return config.Save(m.settingsPath, m.settings)
}

// Close tears down the active backend, if any.
func (m *Manager) Close() {
	if m.active != nil {
		m.active.backend.Close()
		m.active = nil
	}
}
