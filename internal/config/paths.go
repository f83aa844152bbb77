package config

import (
	"os"
	"path/filepath"
)

const defaultBaseDir = ".agentlink"

// Paths holds resolved filesystem paths for agentlink data.
type Paths struct {
	Base     string // ~/.agentlink
	Settings string // ~/.agentlink/settings.yaml
	History  string // ~/.agentlink/history.db
	Logs     string // ~/.agentlink/logs
}

// ResolvePaths determines the standard paths. AGENTLINK_HOME overrides the
// base directory.
func ResolvePaths() (Paths, error) {
	base := os.Getenv("AGENTLINK_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Paths{}, err
		}
		base = filepath.Join(home, defaultBaseDir)
	}

	return Paths{
		Base:     base,
		Settings: filepath.Join(base, "settings.yaml"),
		History:  filepath.Join(base, "history.db"),
		Logs:     filepath.Join(base, "logs"),
	}, nil
}

// EnsureDirs creates all standard directories if they don't exist.
func (p Paths) EnsureDirs() error {
	for _, d := range []string{p.Base, p.Logs} {
		if err := os.MkdirAll(d, 0o700); err != nil {
			return err
		}
	}
	return nil
}
