package ai

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/doeshing/jarvis-go/internal/domain"
	"github.com/doeshing/jarvis-go/internal/ports"
)

func sampleRequest() ports.OracleRequest {
	return ports.OracleRequest{
		Instruction: "Classify.",
		Examples:    []ports.Example{{Input: "open chrome", Output: "open chrome"}},
		Input:       "close spotify",
		Temperature: 0.3,
		MaxTokens:   64,
		JSON:        true,
	}
}

func TestHTTPOracle_OpenAIFormat(t *testing.T) {
	t.Setenv("JARVIS_TEST_KEY", "sk-test")

	var captured []byte
	var auth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured, _ = io.ReadAll(r.Body)
		auth = r.Header.Get("Authorization")
		_, _ = io.WriteString(w, `{"choices":[{"message":{"content":"  close spotify \n"}}]}`)
	}))
	defer server.Close()

	oracle := newHTTPOracle(domain.ModelDefinition{
		Name:       "groq",
		Endpoint:   server.URL,
		AuthEnvVar: "JARVIS_TEST_KEY",
		ModelID:    "llama3",
		APIFormat:  domain.APIFormat{JSONMode: domain.JSONModeOpenAI},
	}, server.Client())

	out, err := oracle.Complete(context.Background(), sampleRequest())
	require.NoError(t, err)
	assert.Equal(t, "close spotify", out)
	assert.Equal(t, "Bearer sk-test", auth)

	body := gjson.ParseBytes(captured)
	assert.Equal(t, "llama3", body.Get("model").String())
	assert.Equal(t, int64(64), body.Get("max_tokens").Int())
	assert.Equal(t, "json_object", body.Get("response_format.type").String())

	messages := body.Get("messages").Array()
	require.Len(t, messages, 4)
	assert.Equal(t, "system", messages[0].Get("role").String())
	assert.Equal(t, "assistant", messages[2].Get("role").String())
	assert.Equal(t, "close spotify", messages[3].Get("content").String())
}

func TestHTTPOracle_AnthropicFormat(t *testing.T) {
	t.Setenv("JARVIS_TEST_KEY", "ak-test")

	var captured []byte
	var header http.Header
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured, _ = io.ReadAll(r.Body)
		header = r.Header.Clone()
		_, _ = io.WriteString(w, `{"content":[{"type":"text","text":"general hello"}]}`)
	}))
	defer server.Close()

	oracle := newHTTPOracle(domain.ModelDefinition{
		Name:       "claude",
		Endpoint:   server.URL,
		AuthEnvVar: "JARVIS_TEST_KEY",
		ModelID:    "claude-3-haiku",
		MaxTokens:  256,
		APIFormat: domain.APIFormat{
			AuthHeaderName:    "x-api-key",
			SystemMessageMode: domain.SystemMessageModeSeparate,
			ContentWrapper:    domain.ContentWrapperAnthropic,
			ResponseJSONPath:  domain.AnthropicResponsePath,
			ExtraHeaders:      map[string]string{"anthropic-version": "2023-06-01"},
		},
	}, server.Client())

	out, err := oracle.Complete(context.Background(), sampleRequest())
	require.NoError(t, err)
	assert.Equal(t, "general hello", out)
	assert.Equal(t, "ak-test", header.Get("x-api-key"))
	assert.Equal(t, "2023-06-01", header.Get("anthropic-version"))

	body := gjson.ParseBytes(captured)
	assert.Equal(t, "Classify.", body.Get("system").String())
	assert.Equal(t, int64(256), body.Get("max_tokens").Int())
	assert.False(t, body.Get("response_format").Exists())
	assert.Equal(t, "open chrome", body.Get("messages.0.content.0.text").String())
	assert.Len(t, body.Get("messages").Array(), 3)
}

func TestHTTPOracle_OllamaJSONMode(t *testing.T) {
	oracle := newHTTPOracle(domain.ModelDefinition{
		Name:      "local",
		Endpoint:  "http://localhost:11434/v1/chat/completions",
		ModelID:   "llama3",
		APIFormat: domain.APIFormat{JSONMode: domain.JSONModeOllama},
	}, http.DefaultClient)

	body, err := oracle.buildRequestBody(sampleRequest())
	require.NoError(t, err)
	assert.Equal(t, "json", gjson.GetBytes(body, "format").String())
	assert.False(t, gjson.GetBytes(body, "stream").Bool())
}

func TestHTTPOracle_Failures(t *testing.T) {
	tests := []struct {
		name     string
		handler  http.HandlerFunc
		wantKind domain.ErrorKind
	}{
		{
			name: "error status",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, `{"error":"rate limited"}`, http.StatusTooManyRequests)
			},
			wantKind: domain.KindOracleUnavailable,
		},
		{
			name: "missing path",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = io.WriteString(w, `{"choices":[]}`)
			},
			wantKind: domain.KindOracleUnavailable,
		},
		{
			name: "not json",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = io.WriteString(w, `<html>`)
			},
			wantKind: domain.KindOracleUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			oracle := newHTTPOracle(domain.ModelDefinition{Name: "m", Endpoint: server.URL}, server.Client())
			_, err := oracle.Complete(context.Background(), sampleRequest())
			require.Error(t, err)
			assert.Equal(t, tt.wantKind, domain.KindOf(err))
		})
	}
}

func TestHTTPOracle_DeadlineIsTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	oracle := newHTTPOracle(domain.ModelDefinition{Name: "slow", Endpoint: server.URL}, server.Client())
	_, err := oracle.Complete(ctx, sampleRequest())
	require.Error(t, err)
	assert.Equal(t, domain.KindTimeout, domain.KindOf(err))
}

func TestGJSONPath(t *testing.T) {
	assert.Equal(t, "choices.0.message.content", gjsonPath("choices[0].message.content"))
	assert.Equal(t, "content.0.text", gjsonPath(domain.AnthropicResponsePath))
	assert.Equal(t, "response", gjsonPath("response"))
}
