package config

import "fmt"

// Provider is the closed enumeration of supported HTTP completion APIs.
type Provider string

const (
	ProviderOpenAI      Provider = "openai"
	ProviderCodex       Provider = "codex"
	ProviderGemini      Provider = "gemini"
	ProviderAnthropic   Provider = "anthropic"
	ProviderAzureOpenAI Provider = "azure_openai"
	ProviderOllama      Provider = "ollama"
	ProviderVLLM        Provider = "vllm"
	ProviderLlamaCpp    Provider = "llama_cpp"
	ProviderCustom      Provider = "custom"
)

// Providers lists every supported provider in a stable order.
var Providers = []Provider{
	ProviderOpenAI,
	ProviderCodex,
	ProviderGemini,
	ProviderAnthropic,
	ProviderAzureOpenAI,
	ProviderOllama,
	ProviderVLLM,
	ProviderLlamaCpp,
	ProviderCustom,
}

// Valid reports whether p is one of the known providers.
func (p Provider) Valid() bool {
	for _, known := range Providers {
		if p == known {
			return true
		}
	}
	return false
}

// DisplayName returns the fixed label shown in the UI for this provider.
func (p Provider) DisplayName() string {
	switch p {
	case ProviderOpenAI, ProviderCodex, ProviderAzureOpenAI:
		return "OpenAI"
	case ProviderGemini:
		return "Google Gemini"
	case ProviderAnthropic:
		return "Anthropic Claude"
	case ProviderOllama:
		return "Ollama"
	case ProviderVLLM:
		return "vLLM"
	case ProviderLlamaCpp:
		return "llama.cpp"
	case ProviderCustom:
		return "Custom HTTP"
	default:
		return string(p)
	}
}

// DefaultModel returns the suggested model for this provider, or "" when the
// provider has no meaningful default.
func (p Provider) DefaultModel() string {
	switch p {
	case ProviderOpenAI, ProviderCodex, ProviderAzureOpenAI:
		return "gpt-4o-mini"
	case ProviderGemini:
		return "gemini-1.5-flash"
	case ProviderAnthropic:
		return "claude-3-5-sonnet-20240620"
	default:
		return ""
	}
}

// RequiresAPIKey reports whether a backend for this provider cannot be
// constructed without a resolvable key.
func (p Provider) RequiresAPIKey() bool {
	switch p {
	case ProviderOpenAI, ProviderCodex, ProviderGemini, ProviderAnthropic, ProviderAzureOpenAI:
		return true
	default:
		return false
	}
}

// DefaultBaseURL returns the provider's default endpoint. Azure and Custom
// have none and require an explicit base URL in the profile.
func (p Provider) DefaultBaseURL(model string) (string, error) {
	switch p {
	case ProviderOpenAI, ProviderCodex, ProviderVLLM:
		return "https://api.openai.com/v1/chat/completions", nil
	case ProviderGemini:
		if model == "" {
			model = p.DefaultModel()
		}
		return fmt.Sprintf("https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent", model), nil
	case ProviderAnthropic:
		return "https://api.anthropic.com/v1/messages", nil
	case ProviderOllama:
		return "http://localhost:11434/api/generate", nil
	case ProviderLlamaCpp:
		return "http://localhost:8080/completion", nil
	case ProviderAzureOpenAI:
		return "", fmt.Errorf("azure_openai requires an explicit baseUrl")
	case ProviderCustom:
		return "", fmt.Errorf("custom provider requires an explicit baseUrl")
	default:
		return "", fmt.Errorf("unknown provider %q", p)
	}
}
