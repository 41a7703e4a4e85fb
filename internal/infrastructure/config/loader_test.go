package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/jarvis-go/assets"
	"github.com/doeshing/jarvis-go/internal/domain"
)

func TestFileLoader_WritesDefaultOnFirstRun(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.yaml")

	cfg, err := NewFileLoader(path).Load(context.Background())
	require.NoError(t, err)

	written, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, assets.DefaultConfigYAML, written)

	assert.Equal(t, "1", cfg.ConfigFormatVersion)
	assert.NotEmpty(t, cfg.Models)
	_, bound := cfg.ModelForRole(domain.RoleClassifier)
	assert.True(t, bound)
	assert.NoError(t, cfg.ValidateConsistency())
}

func TestDefaultConfig_ChatCompletionsEndpointsUseOpenAIJSONMode(t *testing.T) {
	cfg, err := NewFileLoader(filepath.Join(t.TempDir(), "config.yaml")).Load(context.Background())
	require.NoError(t, err)

	for _, model := range cfg.Models {
		if !strings.HasSuffix(model.Endpoint, "/v1/chat/completions") {
			continue
		}
		assert.NotEqual(t, domain.JSONModeOllama, model.APIFormat.JSONMode, model.Name)
	}
	ollama, ok := cfg.FindModelByName("ollama")
	require.True(t, ok)
	assert.Equal(t, domain.JSONModeOpenAI, ollama.APIFormat.JSONMode)
}

func TestFileLoader_HydratesPaths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	raw := `models:
  - name: local
    endpoint: http://localhost:11434/v1/chat/completions
    model_id: llama3
oracles:
  classifier:
    model: local
history:
  archive: sqlite
`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o600))

	cfg, err := NewFileLoader(path).Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "data"), cfg.Preferences.DataDir)
	assert.Equal(t, filepath.Join(dir, "guardrail.yaml"), cfg.Security.RulesFile)
	assert.Equal(t, filepath.Join(dir, "history.db"), cfg.History.Path)
	assert.Equal(t, domain.HistoryArchiveSQLite, cfg.GetHistoryArchive())
}

func TestFileLoader_EnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	t.Setenv(EnvConfigPath, path)

	loader := NewFileLoader("")
	assert.Equal(t, path, loader.Path())

	_, err := loader.Load(context.Background())
	require.NoError(t, err)
	assert.FileExists(t, path)
}

func TestFileLoader_DotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("JARVIS_TEST_DOTENV=from-file\nJARVIS_TEST_PRESET=from-file\n"), 0o600))
	t.Setenv("JARVIS_TEST_DOTENV", "")
	require.NoError(t, os.Unsetenv("JARVIS_TEST_DOTENV"))
	t.Setenv("JARVIS_TEST_PRESET", "from-env")

	_, err := NewFileLoader(filepath.Join(dir, "config.yaml")).Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "from-file", os.Getenv("JARVIS_TEST_DOTENV"))
	assert.Equal(t, "from-env", os.Getenv("JARVIS_TEST_PRESET"), "existing variables are not overridden")
}

func TestFileLoader_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("models: [unclosed"), 0o600))

	_, err := NewFileLoader(path).Load(context.Background())
	assert.Error(t, err)
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, ".jarvis"), expandPath("~/.jarvis"))
	assert.Equal(t, "/var/lib/jarvis", expandPath("/var/lib/jarvis"))
	assert.Equal(t, "data", expandPath("./data"))
}
