package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Load reads Settings from a YAML file. A missing file yields empty
// settings, leaving detection and seeding to the caller.
func Load(path string) (Settings, error) {
	var settings Settings

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return settings, nil
		}
		return settings, fmt.Errorf("reading agent settings: %w", err)
	}

	if err := yaml.Unmarshal(data, &settings); err != nil {
		return settings, fmt.Errorf("parsing agent settings %s: %w", path, err)
	}
	return settings, nil
}

// Save writes Settings back to a YAML file, creating parent directories as
// needed. This backs the "save API key" flow: the front end appends the new
// profile to Settings and persists the whole document.
func Save(path string, settings Settings) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("creating settings directory: %w", err)
	}

	data, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("serializing agent settings: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing agent settings: %w", err)
	}
	return nil
}

// APIKeyProfile builds a profile for a cloud provider from a freshly entered
// key. Used when the user supplies a key interactively instead of editing
// the settings file.
func APIKeyProfile(provider Provider, apiKey string) AgentProfile {
	return AgentProfile{
		ID:          fmt.Sprintf("%s-key", provider),
		Label:       fmt.Sprintf("%s agent", provider.DisplayName()),
		Description: "created from an interactively entered API key",
		Transport: Transport{
			Kind: TransportHTTPAPI,
			HTTPAPI: &HTTPAPIConfig{
				Provider: provider,
				APIKey:   apiKey,
				Model:    provider.DefaultModel(),
			},
		},
		Capabilities: Capabilities{
			SupportsApply:   true,
			SupportsTools:   true,
			StreamResponses: true,
		},
	}
}
