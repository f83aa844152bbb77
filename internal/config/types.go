// Package config defines agent profiles and their transport settings.
package config

import "os"

// Settings is the full set of configured agent profiles plus the remembered
// default. The front end loads and persists this; the core only consumes it
// and writes it back through Save when a new profile is added.
type Settings struct {
	Profiles       []AgentProfile `yaml:"profiles"`
	DefaultProfile string         `yaml:"defaultProfile,omitempty"`
}

// DefaultProfileEntry returns the profile named by DefaultProfile, falling
// back to the first profile in the list.
func (s *Settings) DefaultProfileEntry() (AgentProfile, bool) {
	if s.DefaultProfile != "" {
		if p, ok := s.Profile(s.DefaultProfile); ok {
			return p, true
		}
	}
	if len(s.Profiles) == 0 {
		return AgentProfile{}, false
	}
	return s.Profiles[0], true
}

// Profile looks up a profile by id.
func (s *Settings) Profile(id string) (AgentProfile, bool) {
	for _, p := range s.Profiles {
		if p.ID == id {
			return p, true
		}
	}
	return AgentProfile{}, false
}

// AgentProfile is one named, user-selectable agent configuration. Profiles
// are immutable once constructed; settings changes replace them wholesale.
type AgentProfile struct {
	ID           string       `yaml:"id"`
	Label        string       `yaml:"label"`
	Description  string       `yaml:"description,omitempty"`
	Transport    Transport    `yaml:"transport"`
	Capabilities Capabilities `yaml:"capabilities,omitempty"`
}

// Capabilities flags what interaction flows a profile supports. The front
// end adjusts its UI around these.
type Capabilities struct {
	SupportsApply     bool `yaml:"supportsApply,omitempty"`
	SupportsTools     bool `yaml:"supportsTools,omitempty"`
	StreamResponses   bool `yaml:"streamResponses,omitempty"`
	PrefersPanelInput bool `yaml:"prefersPanelInput,omitempty"`
}

// TransportKind discriminates the Transport union.
type TransportKind string

const (
	TransportLocalProcess TransportKind = "local_process"
	TransportHTTPAPI      TransportKind = "http_api"
	TransportMCP          TransportKind = "mcp"
)

// Transport describes how to reach an agent. Exactly the config matching
// Kind is set; Validate enforces this.
type Transport struct {
	Kind         TransportKind       `yaml:"kind"`
	LocalProcess *LocalProcessConfig `yaml:"localProcess,omitempty"`
	HTTPAPI      *HTTPAPIConfig      `yaml:"httpApi,omitempty"`
	MCP          *MCPConfig          `yaml:"mcp,omitempty"`
}

// LocalProcessConfig drives a child process speaking newline-delimited JSON
// on its standard streams.
type LocalProcessConfig struct {
	Program      string            `yaml:"program"`
	Args         []string          `yaml:"args,omitempty"`
	WorkingDir   string            `yaml:"workingDir,omitempty"`
	Env          map[string]string `yaml:"env,omitempty"`
	StdinInitial string            `yaml:"stdinInitial,omitempty"`
}

// HTTPAPIConfig reaches a cloud or local HTTP completion API.
type HTTPAPIConfig struct {
	Provider     Provider          `yaml:"provider"`
	BaseURL      string            `yaml:"baseUrl,omitempty"`
	APIKey       string            `yaml:"apiKey,omitempty"`
	APIKeyEnv    string            `yaml:"apiKeyEnv,omitempty"`
	Model        string            `yaml:"model,omitempty"`
	SystemPrompt string            `yaml:"systemPrompt,omitempty"`
	ExtraHeaders map[string]string `yaml:"extraHeaders,omitempty"`
}

// ResolvedAPIKey returns the effective key: an explicit key wins over the
// named environment variable. Empty means no key could be resolved.
func (c *HTTPAPIConfig) ResolvedAPIKey() string {
	if c.APIKey != "" {
		return c.APIKey
	}
	if c.APIKeyEnv != "" {
		return os.Getenv(c.APIKeyEnv)
	}
	return ""
}

// MCPConfig reaches a structured-RPC endpoint whose response shape is
// resolved heuristically.
type MCPConfig struct {
	Endpoint  string            `yaml:"endpoint"`
	Tool      string            `yaml:"tool,omitempty"`
	APIKey    string            `yaml:"apiKey,omitempty"`
	APIKeyEnv string            `yaml:"apiKeyEnv,omitempty"`
	Headers   map[string]string `yaml:"headers,omitempty"`
	// InvokePath is carried for endpoints that want a local tool path; the
	// backend itself does not consume it.
	InvokePath string `yaml:"invokePath,omitempty"`
}

// ResolvedAPIKey returns the effective key; same precedence as the HTTP
// transport.
func (c *MCPConfig) ResolvedAPIKey() string {
	if c.APIKey != "" {
		return c.APIKey
	}
	if c.APIKeyEnv != "" {
		return os.Getenv(c.APIKeyEnv)
	}
	return ""
}
