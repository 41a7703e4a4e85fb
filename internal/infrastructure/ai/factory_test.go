package ai

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/jarvis-go/internal/domain"
	"github.com/doeshing/jarvis-go/internal/ports"
)

func TestFactory_ForRole(t *testing.T) {
	t.Setenv("JARVIS_MISSING_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")

	cfg := domain.Config{
		Models: []domain.ModelDefinition{
			{Name: "local", Endpoint: "http://localhost:11434/v1/chat/completions", ModelID: "llama3"},
			{Name: "keyless", Endpoint: "https://api.example.com", AuthEnvVar: "JARVIS_MISSING_KEY"},
			{Name: "gemini", Provider: domain.ProviderGemini},
			{Name: "nowhere"},
		},
	}
	factory := NewFactory(nil)

	tests := []struct {
		name        string
		model       string
		wantOffline bool
	}{
		{name: "local model without auth", model: "local"},
		{name: "missing key", model: "keyless", wantOffline: true},
		{name: "gemini without key", model: "gemini", wantOffline: true},
		{name: "missing endpoint", model: "nowhere", wantOffline: true},
		{name: "unbound role", model: "", wantOffline: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg.Oracles.Classifier.Model = tt.model
			oracle := factory.ForRole(cfg, domain.RoleClassifier)
			require.NotNil(t, oracle)

			_, offline := oracle.(*offlineOracle)
			assert.Equal(t, tt.wantOffline, offline)
		})
	}
}

func TestOfflineOracle_AlwaysUnavailable(t *testing.T) {
	oracle := newOfflineOracle("no model bound to role")

	_, err := oracle.Complete(context.Background(), ports.OracleRequest{Input: "hello"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrOracleUnavailable)
	assert.Contains(t, err.Error(), "no model bound")
}
