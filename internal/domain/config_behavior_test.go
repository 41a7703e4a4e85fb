package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/jarvis-go/internal/domain"
)

func sampleConfig() domain.Config {
	return domain.Config{
		Models: []domain.ModelDefinition{
			{Name: "groq", ModelID: "llama3-70b-8192"},
			{Name: "gemini", Provider: domain.ProviderGemini, ModelID: "gemini-2.0-flash"},
		},
		Oracles: domain.OracleSettings{
			Classifier: domain.OracleBinding{Model: "gemini", Temperature: 0.5, TimeoutSeconds: 7},
			Extractor:  domain.OracleBinding{Model: "groq"},
		},
	}
}

func TestConfig_ModelForRole(t *testing.T) {
	cfg := sampleConfig()

	tests := []struct {
		name      string
		role      string
		wantFound bool
		wantModel string
	}{
		{name: "bound classifier", role: domain.RoleClassifier, wantFound: true, wantModel: "gemini-2.0-flash"},
		{name: "bound extractor", role: domain.RoleExtractor, wantFound: true, wantModel: "llama3-70b-8192"},
		{name: "unbound responder", role: domain.RoleResponder, wantFound: false},
		{name: "unknown role", role: "narrator", wantFound: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model, found := cfg.ModelForRole(tt.role)
			assert.Equal(t, tt.wantFound, found)
			if tt.wantFound {
				assert.Equal(t, tt.wantModel, model.ModelID)
			}
		})
	}
}

func TestConfig_OracleDefaults(t *testing.T) {
	cfg := sampleConfig()

	assert.Equal(t, 7*time.Second, cfg.GetOracleTimeout(domain.RoleClassifier))
	assert.Equal(t, domain.DefaultOracleTimeout, cfg.GetOracleTimeout(domain.RoleExtractor))
	assert.Equal(t, domain.DefaultResponderTimeout, cfg.GetOracleTimeout(domain.RoleResponder))

	assert.InDelta(t, 0.5, cfg.GetOracleTemperature(domain.RoleClassifier), 1e-9)
	assert.InDelta(t, domain.DefaultExtractorTemperature, cfg.GetOracleTemperature(domain.RoleExtractor), 1e-9)
	assert.InDelta(t, domain.DefaultResponderTemperature, cfg.GetOracleTemperature(domain.RoleResponder), 1e-9)
}

func TestConfig_DispatchDefaults(t *testing.T) {
	var cfg domain.Config

	assert.InDelta(t, domain.DefaultMinConfidence, cfg.GetMinConfidence(), 1e-9)
	assert.Equal(t, domain.DefaultMaxConcurrency, cfg.GetMaxConcurrency())
	assert.Equal(t, domain.DefaultExecutorTimeout, cfg.GetExecutorTimeout())
	assert.Equal(t, "sh", cfg.GetExecutionShell())
	assert.Equal(t, "Jarvis", cfg.GetAssistantName())
	assert.Equal(t, domain.HistoryArchiveNone, cfg.GetHistoryArchive())

	cfg.Dispatch = domain.DispatchSettings{MinConfidence: 0.5, MaxConcurrency: 2, ExecutorTimeoutSeconds: 3}
	cfg.History.Archive = "SQLite"
	assert.InDelta(t, 0.5, cfg.GetMinConfidence(), 1e-9)
	assert.Equal(t, 2, cfg.GetMaxConcurrency())
	assert.Equal(t, 3*time.Second, cfg.GetExecutorTimeout())
	assert.Equal(t, domain.HistoryArchiveSQLite, cfg.GetHistoryArchive())
}

func TestConfig_AddRemoveModel(t *testing.T) {
	cfg := sampleConfig()

	require.Error(t, cfg.AddModel(domain.ModelDefinition{Name: "groq"}))
	require.NoError(t, cfg.AddModel(domain.ModelDefinition{Name: "local"}))
	assert.True(t, cfg.HasModel("local"))

	require.NoError(t, cfg.RemoveModel("gemini"))
	assert.False(t, cfg.HasModel("gemini"))
	assert.Empty(t, cfg.Oracles.Classifier.Model, "removing a model unbinds its roles")

	assert.Error(t, cfg.RemoveModel("gemini"))
}

func TestConfig_BindRole(t *testing.T) {
	cfg := sampleConfig()

	require.NoError(t, cfg.BindRole(domain.RoleResponder, "groq"))
	assert.Equal(t, "groq", cfg.Oracles.Responder.Model)

	assert.Error(t, cfg.BindRole(domain.RoleResponder, "missing"))
	assert.Error(t, cfg.BindRole("narrator", "groq"))
}

func TestConfig_ValidateConsistency(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*domain.Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(*domain.Config) {}},
		{name: "dangling role", mutate: func(c *domain.Config) { c.Oracles.Responder.Model = "ghost" }, wantErr: true},
		{name: "duplicate model", mutate: func(c *domain.Config) {
			c.Models = append(c.Models, domain.ModelDefinition{Name: "groq"})
		}, wantErr: true},
		{name: "nameless model", mutate: func(c *domain.Config) {
			c.Models = append(c.Models, domain.ModelDefinition{})
		}, wantErr: true},
		{name: "confidence out of range", mutate: func(c *domain.Config) { c.Dispatch.MinConfidence = 1.5 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := sampleConfig()
			tt.mutate(&cfg)
			err := cfg.ValidateConsistency()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
