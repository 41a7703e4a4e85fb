package ai

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/doeshing/jarvis-go/internal/domain"
	"github.com/doeshing/jarvis-go/internal/ports"
)

const maxResponseBytes = 4 << 20

// message is one chat turn before provider-specific formatting.
type message struct {
	Role    string
	Content string
}

// httpOracle is a configuration-driven chat-completions client.
// All provider-specific behavior is controlled through the model's APIFormat configuration.
type httpOracle struct {
	model      domain.ModelDefinition
	httpClient *http.Client
}

func newHTTPOracle(model domain.ModelDefinition, client *http.Client) *httpOracle {
	return &httpOracle{model: model, httpClient: client}
}

func (p *httpOracle) Name() string {
	return p.model.Name
}

func (p *httpOracle) Complete(ctx context.Context, req ports.OracleRequest) (string, error) {
	const op = "oracle.http"

	body, err := p.buildRequestBody(req)
	if err != nil {
		return "", domain.NewError(domain.KindOracleUnavailable, op, fmt.Errorf("build request: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.model.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", domain.NewError(domain.KindOracleUnavailable, op, fmt.Errorf("create HTTP request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	p.setAuthHeaders(httpReq)
	p.setExtraHeaders(httpReq)

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return "", unavailable(ctx, op, fmt.Errorf("HTTP request failed: %w", err))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", unavailable(ctx, op, fmt.Errorf("read response body: %w", err))
	}
	if resp.StatusCode >= 400 {
		return "", domain.Errorf(domain.KindOracleUnavailable, op, "HTTP %d: %s", resp.StatusCode, snippet(data))
	}

	content, err := p.parseResponse(data)
	if err != nil {
		return "", domain.NewError(domain.KindOracleUnavailable, op, fmt.Errorf("parse response: %w", err))
	}
	return content, nil
}

// buildRequestBody constructs the JSON request body based on the model's APIFormat configuration.
func (p *httpOracle) buildRequestBody(req ports.OracleRequest) ([]byte, error) {
	format := p.model.APIFormat
	messages := renderMessages(req)

	body := []byte(`{}`)
	var err error
	set := func(path string, value interface{}) {
		if err != nil {
			return
		}
		body, err = sjson.SetBytes(body, path, value)
	}

	set("model", p.model.ModelID)
	maxTokens := req.MaxTokens
	if p.model.MaxTokens > 0 {
		maxTokens = p.model.MaxTokens
	}
	if maxTokens > 0 {
		set("max_tokens", maxTokens)
	}
	if req.Temperature > 0 {
		set("temperature", req.Temperature)
	}

	if format.IsSystemMessageSeparate() {
		systemPrompt, chat := splitSystemMessages(messages, format)
		if systemPrompt != "" {
			set("system", systemPrompt)
		}
		set("messages", chat)
	} else {
		set("messages", formatMessagesInline(messages, format))
	}

	if req.JSON {
		switch format.JSONMode {
		case domain.JSONModeOpenAI:
			set("response_format.type", "json_object")
		case domain.JSONModeOllama:
			set("format", "json")
			set("stream", false)
		}
	}
	return body, err
}

// renderMessages turns an oracle request into system, example and input turns.
func renderMessages(req ports.OracleRequest) []message {
	messages := make([]message, 0, 2+2*len(req.Examples))
	if req.Instruction != "" {
		messages = append(messages, message{Role: "system", Content: req.Instruction})
	}
	for _, ex := range req.Examples {
		messages = append(messages,
			message{Role: "user", Content: ex.Input},
			message{Role: "assistant", Content: ex.Output},
		)
	}
	return append(messages, message{Role: "user", Content: req.Input})
}

// splitSystemMessages separates system messages from chat messages for providers
// that require system messages in a separate field (e.g., Anthropic).
func splitSystemMessages(messages []message, format domain.APIFormat) (string, []map[string]interface{}) {
	var systemLines []string
	var chatMessages []map[string]interface{}

	for _, msg := range messages {
		if msg.Role == "system" {
			systemLines = append(systemLines, msg.Content)
			continue
		}
		chatMessages = append(chatMessages, formatMessage(msg, format))
	}

	return strings.TrimSpace(strings.Join(systemLines, "\n")), chatMessages
}

// formatMessagesInline formats all messages (including system) into the messages array.
func formatMessagesInline(messages []message, format domain.APIFormat) []map[string]interface{} {
	result := make([]map[string]interface{}, 0, len(messages))
	for _, msg := range messages {
		result = append(result, formatMessage(msg, format))
	}
	return result
}

// formatMessage formats a single message based on the content wrapper configuration.
func formatMessage(msg message, format domain.APIFormat) map[string]interface{} {
	out := map[string]interface{}{"role": msg.Role}
	if format.IsContentWrapped() {
		out["content"] = []map[string]string{{"type": "text", "text": msg.Content}}
	} else {
		out["content"] = msg.Content
	}
	return out
}

// setAuthHeaders configures authentication headers based on the model's APIFormat.
// Models without an auth env var (local servers) are sent unauthenticated.
func (p *httpOracle) setAuthHeaders(req *http.Request) {
	key := apiKey(p.model)
	if key == "" {
		return
	}
	format := p.model.APIFormat
	req.Header.Set(format.GetAuthHeaderName(), format.GetAuthHeaderPrefix()+key)

	if p.model.OrgEnvVar != "" {
		if orgID := os.Getenv(p.model.OrgEnvVar); orgID != "" {
			req.Header.Set("OpenAI-Organization", orgID)
		}
	}
}

// setExtraHeaders adds any additional headers defined in the APIFormat configuration.
func (p *httpOracle) setExtraHeaders(req *http.Request) {
	for key, value := range p.model.APIFormat.ExtraHeaders {
		req.Header.Set(key, value)
	}
}

// parseResponse extracts the generated text using the configured JSON path.
func (p *httpOracle) parseResponse(body []byte) (string, error) {
	if !gjson.ValidBytes(body) {
		return "", fmt.Errorf("response is not valid JSON")
	}
	path := p.model.APIFormat.GetResponseJSONPath()
	result := gjson.GetBytes(body, gjsonPath(path))
	if !result.Exists() {
		return "", fmt.Errorf("path '%s' not found", path)
	}
	if result.Type != gjson.String {
		return "", fmt.Errorf("value at '%s' is not a string", path)
	}
	return strings.TrimSpace(result.String()), nil
}

var indexSegment = regexp.MustCompile(`\[(\d+)\]`)

// gjsonPath converts "choices[0].message.content" into gjson's "choices.0.message.content".
func gjsonPath(path string) string {
	return indexSegment.ReplaceAllString(path, ".$1")
}

func snippet(data []byte) string {
	text := strings.TrimSpace(string(data))
	if len(text) > 200 {
		text = text[:200] + "..."
	}
	return text
}

var _ ports.TextOracle = (*httpOracle)(nil)
