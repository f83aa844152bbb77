package backend

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/clide-ide/agentlink/internal/config"
	"github.com/clide-ide/agentlink/internal/domain"
	"github.com/clide-ide/agentlink/internal/logging"
)

// MCPBackend posts a JSON envelope to a structured-RPC endpoint and resolves
// the response shape heuristically: the protocol fixes the request envelope
// but not the reply.
type MCPBackend struct {
	info   mcpInfo
	client *http.Client
	queue  *eventQueue
	log    *logging.Logger
}

type mcpInfo struct {
	endpoint string
	tool     string
	apiKey   string
	headers  map[string]string
}

// mcpEnvelope is the fixed request shape: the agent request under "input",
// plus the optional tool selector.
type mcpEnvelope struct {
	Input domain.Request `json:"input"`
	Tool  string         `json:"tool,omitempty"`
}

// NewMCP builds a backend for the configured endpoint.
func NewMCP(cfg config.MCPConfig, log *logging.Logger) (*MCPBackend, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("mcp endpoint must not be empty")
	}
	return &MCPBackend{
		info: mcpInfo{
			endpoint: cfg.Endpoint,
			tool:     cfg.Tool,
			apiKey:   cfg.ResolvedAPIKey(),
			headers:  cfg.Headers,
		},
		client: &http.Client{Timeout: 120 * time.Second},
		queue:  newEventQueue(),
		log:    log.Sub("backend.mcp"),
	}, nil
}

// Name returns the fixed protocol label.
func (b *MCPBackend) Name() string { return "MCP" }

// Send posts the envelope on a background goroutine; call failures become
// one Error event.
func (b *MCPBackend) Send(req domain.Request) error {
	go func() {
		if err := b.invoke(req); err != nil {
			b.log.Warn().Err(err).Str("endpoint", b.info.endpoint).Msg("invoke failed")
			b.queue.push(domain.ErrorEvent(fmt.Sprintf("MCP call failed: %v", err)))
		}
	}()
	return nil
}

// PollEvent drains one event without blocking. MCP requests are independent;
// there is no Terminated signal.
func (b *MCPBackend) PollEvent() (domain.Event, bool) {
	return b.queue.poll()
}

// Close releases the queue; in-flight invocations drop their results.
func (b *MCPBackend) Close() {
	b.queue.close()
}

func (b *MCPBackend) invoke(req domain.Request) error {
	body, err := json.Marshal(mcpEnvelope{Input: req, Tool: b.info.tool})
	if err != nil {
		return fmt.Errorf("serializing request: %w", err)
	}

	httpReq, err := http.NewRequest(http.MethodPost, b.info.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if b.info.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+b.info.apiKey)
	}
	for k, v := range b.info.headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := b.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("calling endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API error (%d): %s", resp.StatusCode, string(text))
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}
	if !json.Valid(payload) {
		return fmt.Errorf("parsing response: invalid JSON")
	}

	resolvePayload(payload, b.queue)
	return nil
}

// resolvePayload maps a structured-RPC reply onto events. Resolution order,
// first match wins: "responses" array, tool output object, single response
// object, top-level response array, then wrapping the whole payload as
// detail text.
func resolvePayload(payload []byte, queue *eventQueue) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(payload, &obj); err == nil {
		if raw, ok := obj["responses"]; ok {
			var items []json.RawMessage
			if err := json.Unmarshal(raw, &items); err == nil {
				emitResponses(items, queue)
				return
			}
		}
		if raw, ok := obj["tool"]; ok {
			var tool string
			if err := json.Unmarshal(raw, &tool); err == nil {
				detail := stringField(obj, "detail")
				if detail == "" {
					detail = stringField(obj, "output")
				}
				if detail == "" {
					detail = "(no content)"
				}
				queue.push(domain.ToolOutputEvent(tool, detail))
				return
			}
		}
		if _, ok := obj["title"]; ok {
			resp, err := domain.DecodeResponse(payload)
			if err != nil {
				resp = domain.TextResponse("MCP response", string(payload))
			}
			queue.push(domain.ResponseEvent(resp))
			return
		}
		queue.push(domain.ResponseEvent(domain.TextResponse("MCP response", string(payload))))
		return
	}

	var items []json.RawMessage
	if err := json.Unmarshal(payload, &items); err == nil {
		emitResponses(items, queue)
		return
	}

	queue.push(domain.ResponseEvent(domain.TextResponse("MCP response", string(payload))))
}

// emitResponses decodes each element independently; a malformed element
// produces one Error event and does not abort the rest.
func emitResponses(items []json.RawMessage, queue *eventQueue) {
	for _, item := range items {
		resp, err := domain.DecodeResponse(item)
		if err != nil {
			if !queue.push(domain.ErrorEvent("MCP response malformed: " + string(item))) {
				return
			}
			continue
		}
		if !queue.push(domain.ResponseEvent(resp)) {
			return
		}
	}
}

func stringField(obj map[string]json.RawMessage, key string) string {
	raw, ok := obj[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}
