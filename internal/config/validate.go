package config

import "fmt"

// ValidationIssue describes one problem with a settings value.
type ValidationIssue struct {
	Path    string
	Message string
}

func (v ValidationIssue) String() string {
	return fmt.Sprintf("%s: %s", v.Path, v.Message)
}

// Validate checks Settings for structural problems. Returns nil when valid.
func Validate(settings *Settings) []ValidationIssue {
	var issues []ValidationIssue

	seen := make(map[string]bool)
	for i, profile := range settings.Profiles {
		path := fmt.Sprintf("profiles[%d]", i)

		if profile.ID == "" {
			issues = append(issues, ValidationIssue{path + ".id", "must not be empty"})
		} else if seen[profile.ID] {
			issues = append(issues, ValidationIssue{path + ".id", fmt.Sprintf("duplicate profile id %q", profile.ID)})
		}
		seen[profile.ID] = true

		if profile.Label == "" {
			issues = append(issues, ValidationIssue{path + ".label", "must not be empty"})
		}

		issues = append(issues, validateTransport(path+".transport", profile.Transport)...)
	}

	if settings.DefaultProfile != "" && !seen[settings.DefaultProfile] {
		issues = append(issues, ValidationIssue{
			"defaultProfile",
			fmt.Sprintf("references unknown profile %q", settings.DefaultProfile),
		})
	}

	return issues
}

func validateTransport(path string, t Transport) []ValidationIssue {
	var issues []ValidationIssue

	configured := 0
	if t.LocalProcess != nil {
		configured++
	}
	if t.HTTPAPI != nil {
		configured++
	}
	if t.MCP != nil {
		configured++
	}
	if configured > 1 {
		issues = append(issues, ValidationIssue{path, "more than one transport config set"})
	}

	switch t.Kind {
	case TransportLocalProcess:
		if t.LocalProcess == nil {
			return append(issues, ValidationIssue{path + ".localProcess", "required for kind local_process"})
		}
		if t.LocalProcess.Program == "" {
			issues = append(issues, ValidationIssue{path + ".localProcess.program", "must not be empty"})
		}
	case TransportHTTPAPI:
		if t.HTTPAPI == nil {
			return append(issues, ValidationIssue{path + ".httpApi", "required for kind http_api"})
		}
		if !t.HTTPAPI.Provider.Valid() {
			issues = append(issues, ValidationIssue{path + ".httpApi.provider", fmt.Sprintf("unknown provider %q", t.HTTPAPI.Provider)})
		}
		if t.HTTPAPI.BaseURL == "" {
			if _, err := t.HTTPAPI.Provider.DefaultBaseURL(t.HTTPAPI.Model); err != nil {
				issues = append(issues, ValidationIssue{path + ".httpApi.baseUrl", err.Error()})
			}
		}
	case TransportMCP:
		if t.MCP == nil {
			return append(issues, ValidationIssue{path + ".mcp", "required for kind mcp"})
		}
		if t.MCP.Endpoint == "" {
			issues = append(issues, ValidationIssue{path + ".mcp.endpoint", "must not be empty"})
		}
	default:
		issues = append(issues, ValidationIssue{path + ".kind", fmt.Sprintf("unknown transport kind %q", t.Kind)})
	}

	return issues
}
