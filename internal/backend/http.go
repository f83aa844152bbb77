package backend

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/clide-ide/agentlink/internal/config"
	"github.com/clide-ide/agentlink/internal/domain"
	"github.com/clide-ide/agentlink/internal/logging"
)

const defaultSystemPrompt = "You are an AI assistant that analyzes source code for a developer and suggests improvements."

// HTTPBackend translates requests into provider-specific HTTP calls. Each
// Send dispatches one background goroutine; results and failures come back
// through the event queue, so completion order across rapid sends is
// unspecified.
type HTTPBackend struct {
	info   httpInfo
	client *http.Client
	queue  *eventQueue
	log    *logging.Logger
}

type httpInfo struct {
	provider     config.Provider
	baseURL      string
	model        string
	apiKey       string
	systemPrompt string
	extraHeaders map[string]string
}

// NewHTTP resolves the effective API key and base URL and fails construction
// when the provider requires either and none can be resolved.
func NewHTTP(cfg config.HTTPAPIConfig, log *logging.Logger) (*HTTPBackend, error) {
	apiKey := cfg.ResolvedAPIKey()
	if apiKey == "" && cfg.Provider.RequiresAPIKey() {
		return nil, fmt.Errorf("%s: API key required but none resolved", cfg.Provider.DisplayName())
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		resolved, err := cfg.Provider.DefaultBaseURL(cfg.Model)
		if err != nil {
			return nil, err
		}
		baseURL = resolved
	}

	return &HTTPBackend{
		info: httpInfo{
			provider:     cfg.Provider,
			baseURL:      baseURL,
			model:        cfg.Model,
			apiKey:       apiKey,
			systemPrompt: cfg.SystemPrompt,
			extraHeaders: cfg.ExtraHeaders,
		},
		client: &http.Client{Timeout: 120 * time.Second},
		queue:  newEventQueue(),
		log:    log.Sub("backend.http"),
	}, nil
}

// Name returns the provider display name.
func (b *HTTPBackend) Name() string { return b.info.provider.DisplayName() }

// Send dispatches the request on a background goroutine and returns
// immediately. Adapter failures become one Error event.
func (b *HTTPBackend) Send(req domain.Request) error {
	go func() {
		if err := b.dispatch(req); err != nil {
			b.log.Warn().Err(err).Str("provider", string(b.info.provider)).Msg("dispatch failed")
			b.queue.push(domain.ErrorEvent(fmt.Sprintf("%s backend: %v", b.info.provider.DisplayName(), err)))
		}
	}()
	return nil
}

// PollEvent drains one event without blocking. HTTP backends hold no
// persistent connection and never emit Terminated.
func (b *HTTPBackend) PollEvent() (domain.Event, bool) {
	return b.queue.poll()
}

// Close releases the queue; any still-running request goroutines drop their
// results and exit.
func (b *HTTPBackend) Close() {
	b.queue.close()
}

func (b *HTTPBackend) dispatch(req domain.Request) error {
	switch b.info.provider {
	case config.ProviderOpenAI, config.ProviderCodex, config.ProviderVLLM, config.ProviderAzureOpenAI:
		// Azure speaks the OpenAI chat shape; only the auth header differs.
		return b.sendOpenAI(req)
	case config.ProviderGemini:
		return b.sendGemini(req)
	case config.ProviderAnthropic:
		return b.sendAnthropic(req)
	case config.ProviderOllama:
		return b.sendOllama(req)
	case config.ProviderLlamaCpp:
		return b.sendLlamaCpp(req)
	case config.ProviderCustom:
		return b.sendCustom(req)
	default:
		return fmt.Errorf("unknown provider %q", b.info.provider)
	}
}

// buildPrompt flattens the request into the common prompt string: target
// file, 1-based cursor position, selection block, then the full buffer.
func buildPrompt(req domain.Request) string {
	var prompt strings.Builder
	if req.FilePath != nil {
		fmt.Fprintf(&prompt, "Target file: %s\n", *req.FilePath)
	}
	fmt.Fprintf(&prompt, "Cursor position: line %d, column %d.\n", req.CursorLine+1, req.CursorCol+1)
	if req.Selection != nil && *req.Selection != "" {
		prompt.WriteString("Current selection:\n")
		prompt.WriteString(*req.Selection)
		prompt.WriteString("\n\n")
	}
	prompt.WriteString("Provide suggestions based on the full source below:\n")
	prompt.WriteString(req.Content)
	return prompt.String()
}

func (b *HTTPBackend) systemPrompt() string {
	if b.info.systemPrompt != "" {
		return b.info.systemPrompt
	}
	return defaultSystemPrompt
}

// post sends a JSON payload and returns the open response on 2xx. When auth
// is set, provider credentials and configured extra headers are attached;
// the local Ollama/llama.cpp endpoints take a bare request.
func (b *HTTPBackend) post(endpoint string, payload any, auth bool) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequest(http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if auth {
		b.applyHeaders(httpReq)
	}

	resp, err := b.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		text, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("API error (%d): %s", resp.StatusCode, string(text))
	}
	return resp, nil
}

func (b *HTTPBackend) applyHeaders(req *http.Request) {
	if b.info.apiKey != "" {
		switch b.info.provider {
		case config.ProviderAzureOpenAI:
			req.Header.Set("api-key", b.info.apiKey)
		case config.ProviderGemini:
			// Gemini carries the key as a query parameter.
		default:
			req.Header.Set("Authorization", "Bearer "+b.info.apiKey)
		}
	}
	if b.info.provider == config.ProviderAnthropic {
		req.Header.Set("anthropic-version", "2023-06-01")
	}
	for k, v := range b.info.extraHeaders {
		req.Header.Set(k, v)
	}
}

func (b *HTTPBackend) sendOpenAI(req domain.Request) error {
	model := b.info.model
	if model == "" {
		if b.info.provider == config.ProviderVLLM {
			model = "gpt-3.5-turbo"
		} else {
			model = "gpt-4o-mini"
		}
	}

	payload := openAIChatPayload{
		Model: model,
		Messages: []openAIMessage{
			{Role: "system", Content: b.systemPrompt()},
			{Role: "user", Content: buildPrompt(req)},
		},
	}

	resp, err := b.post(b.info.baseURL, payload, true)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var data openAIChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}
	if len(data.Choices) == 0 {
		return fmt.Errorf("response contained no suggestion")
	}

	suggestion := domain.TextResponse("Model suggestion", strings.TrimSpace(data.Choices[0].Message.Content))
	suggestion.Raw = json.RawMessage(`{"provider":"openai"}`)
	b.queue.push(domain.ResponseEvent(suggestion))
	return nil
}

func (b *HTTPBackend) sendGemini(req domain.Request) error {
	systemPrompt := b.systemPrompt()
	payload := geminiPayload{
		Contents: []geminiContent{
			{Role: "user", Parts: []geminiPart{{Text: buildPrompt(req)}}},
		},
		SystemInstruction: &geminiContent{
			Role:  "system",
			Parts: []geminiPart{{Text: systemPrompt}},
		},
	}

	endpoint := b.info.baseURL
	if b.info.apiKey != "" {
		sep := "?"
		if strings.Contains(endpoint, "?") {
			sep = "&"
		}
		endpoint += sep + "key=" + url.QueryEscape(b.info.apiKey)
	}

	resp, err := b.post(endpoint, payload, true)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var data geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}
	if len(data.Candidates) == 0 {
		return fmt.Errorf("response contained no candidates")
	}
	for _, part := range data.Candidates[0].Content.Parts {
		if part.Text != nil {
			suggestion := domain.TextResponse("Gemini", strings.TrimSpace(*part.Text))
			suggestion.Raw = json.RawMessage(`{"provider":"gemini"}`)
			b.queue.push(domain.ResponseEvent(suggestion))
			return nil
		}
	}
	return fmt.Errorf("response contained no text suggestion")
}

func (b *HTTPBackend) sendAnthropic(req domain.Request) error {
	model := b.info.model
	if model == "" {
		model = "claude-3-haiku-20240307"
	}

	payload := anthropicPayload{
		Model:     model,
		MaxTokens: 1024,
		Messages: []anthropicMessage{
			{Role: "system", Content: []anthropicPart{{Type: "text", Text: b.systemPrompt()}}},
			{Role: "user", Content: []anthropicPart{{Type: "text", Text: buildPrompt(req)}}},
		},
	}

	resp, err := b.post(b.info.baseURL, payload, true)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var data anthropicResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}
	if len(data.Content) == 0 {
		return fmt.Errorf("response contained no suggestion")
	}

	b.queue.push(domain.ResponseEvent(domain.TextResponse("Claude suggestion", strings.TrimSpace(data.Content[0].Text))))
	return nil
}

func (b *HTTPBackend) sendOllama(req domain.Request) error {
	model := b.info.model
	if model == "" {
		model = "llama3"
	}

	resp, err := b.post(b.info.baseURL, ollamaPayload{
		Model:  model,
		Prompt: buildPrompt(req),
		Stream: false,
	}, false)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var data ollamaResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}

	b.queue.push(domain.ResponseEvent(domain.TextResponse("Ollama suggestion", strings.TrimSpace(data.Response))))
	return nil
}

func (b *HTTPBackend) sendLlamaCpp(req domain.Request) error {
	resp, err := b.post(b.info.baseURL, llamaCppPayload{
		Prompt:      buildPrompt(req),
		NPredict:    512,
		Temperature: 0.2,
	}, false)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var data llamaCppResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}

	b.queue.push(domain.ResponseEvent(domain.TextResponse("llama.cpp suggestion", strings.TrimSpace(data.Content))))
	return nil
}

// sendCustom posts the raw request document. A streamed (ndjson) body is
// consumed line by line until the peer closes it; a plain body is decoded as
// a single response, falling back to wrapping the JSON as detail text.
func (b *HTTPBackend) sendCustom(req domain.Request) error {
	resp, err := b.post(b.info.baseURL, req, true)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	contentType := resp.Header.Get("Content-Type")
	if strings.Contains(contentType, "ndjson") || strings.Contains(contentType, "stream") {
		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 256*1024), 256*1024)
		for scanner.Scan() {
			line := scanner.Text()
			if strings.TrimSpace(line) == "" {
				continue
			}
			decoded, err := domain.DecodeResponse([]byte(line))
			if err != nil {
				if !b.queue.push(domain.ErrorEvent("custom response parse failed: " + line)) {
					return nil
				}
				continue
			}
			if !b.queue.push(domain.ResponseEvent(decoded)) {
				return nil
			}
		}
		if err := scanner.Err(); err != nil {
			return fmt.Errorf("reading streamed response: %w", err)
		}
		return nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if !json.Valid(body) {
		return fmt.Errorf("parsing response: invalid JSON")
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err == nil {
		if _, ok := fields["title"]; ok {
			decoded, err := domain.DecodeResponse(body)
			if err != nil {
				decoded = domain.TextResponse("HTTP response", string(body))
			}
			b.queue.push(domain.ResponseEvent(decoded))
			return nil
		}
	}
	b.queue.push(domain.ResponseEvent(domain.TextResponse("HTTP response", string(body))))
	return nil
}
