// Package ai provides the language-model oracles used by the classifier, the
// extractor and the conversational executors.
//
// All oracles implement ports.TextOracle:
//   - httpOracle: generic chat-completions client driven by the model's APIFormat
//   - geminiOracle: Google Gemini through the GenAI SDK
//   - offlineOracle: always unavailable, used when a role has no usable model
//
// Transport failures are reported as domain.Error with KindOracleUnavailable so
// callers fall back to their deterministic paths.
package ai

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/doeshing/jarvis-go/internal/domain"
	"github.com/doeshing/jarvis-go/internal/ports"
)

// Factory builds oracles for configured roles.
// It maintains a single HTTP client shared across all HTTP oracles.
type Factory struct {
	httpClient *http.Client
	logger     ports.Logger
}

// NewFactory creates a factory with a configured HTTP client.
func NewFactory(logger ports.Logger) *Factory {
	return &Factory{
		httpClient: &http.Client{Timeout: domain.DefaultHTTPClientTimeout},
		logger:     logger,
	}
}

// ForRole returns the oracle for role. It never returns nil: unbound roles
// and models without credentials get an offline oracle.
func (f *Factory) ForRole(cfg domain.Config, role string) ports.TextOracle {
	model, ok := cfg.ModelForRole(role)
	if !ok {
		return f.offline(role, "no model bound to role")
	}
	return f.ForModel(model, role)
}

// ForModel builds an oracle for a model definition.
func (f *Factory) ForModel(model domain.ModelDefinition, role string) ports.TextOracle {
	switch model.GetProvider() {
	case domain.ProviderGemini:
		key := apiKey(model, "GEMINI_API_KEY", "GOOGLE_API_KEY")
		if key == "" {
			return f.offline(role, fmt.Sprintf("missing API key for %s", model.Name))
		}
		oracle, err := newGeminiOracle(context.Background(), model, key)
		if err != nil {
			return f.offline(role, err.Error())
		}
		return oracle
	case domain.ProviderHTTP:
		if model.Endpoint == "" {
			return f.offline(role, fmt.Sprintf("model %s has no endpoint", model.Name))
		}
		if model.AuthEnvVar != "" && apiKey(model) == "" {
			return f.offline(role, fmt.Sprintf("missing API key: set %s environment variable", model.AuthEnvVar))
		}
		return newHTTPOracle(model, f.httpClient)
	default:
		return f.offline(role, fmt.Sprintf("unknown provider %q", model.Provider))
	}
}

func (f *Factory) offline(role, reason string) ports.TextOracle {
	if f.logger != nil {
		f.logger.Debug("oracle offline", map[string]interface{}{"role": role, "reason": reason})
	}
	return newOfflineOracle(reason)
}

// apiKey retrieves the API key from the model's env var, then from fallbacks.
func apiKey(model domain.ModelDefinition, fallbacks ...string) string {
	for _, name := range append([]string{model.AuthEnvVar}, fallbacks...) {
		if name == "" {
			continue
		}
		if key := strings.TrimSpace(os.Getenv(name)); key != "" {
			return key
		}
	}
	return ""
}

// unavailable wraps a transport failure. Deadline expiry becomes KindTimeout.
func unavailable(ctx context.Context, op string, err error) error {
	if ctx.Err() != nil {
		return domain.NewError(domain.KindTimeout, op, err)
	}
	return domain.NewError(domain.KindOracleUnavailable, op, err)
}
