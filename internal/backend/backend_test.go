package backend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clide-ide/agentlink/internal/config"
)

func TestNewRejectsMismatchedTransport(t *testing.T) {
	cases := []struct {
		name    string
		profile config.AgentProfile
	}{
		{
			name: "local process without config",
			profile: config.AgentProfile{
				ID:        "p",
				Transport: config.Transport{Kind: config.TransportLocalProcess},
			},
		},
		{
			name: "http without config",
			profile: config.AgentProfile{
				ID:        "p",
				Transport: config.Transport{Kind: config.TransportHTTPAPI},
			},
		},
		{
			name: "mcp without config",
			profile: config.AgentProfile{
				ID:        "p",
				Transport: config.Transport{Kind: config.TransportMCP},
			},
		},
		{
			name: "unknown kind",
			profile: config.AgentProfile{
				ID:        "p",
				Transport: config.Transport{Kind: "carrier_pigeon"},
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.profile, t.TempDir(), testLogger(t))
			require.Error(t, err)
		})
	}
}

func TestNewBuildsConfiguredBackend(t *testing.T) {
	profile := config.AgentProfile{
		ID: "ollama-local",
		Transport: config.Transport{
			Kind: config.TransportHTTPAPI,
			HTTPAPI: &config.HTTPAPIConfig{
				Provider: config.ProviderOllama,
			},
		},
	}

	b, err := New(profile, t.TempDir(), testLogger(t))
	require.NoError(t, err)
	defer b.Close()
	assert.Equal(t, "Ollama", b.Name())
}
