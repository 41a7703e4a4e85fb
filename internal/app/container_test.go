package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/jarvis-go/internal/domain"
	"github.com/doeshing/jarvis-go/internal/infrastructure/history"
)

func testConfig(t *testing.T, archive string) domain.Config {
	t.Helper()
	dir := t.TempDir()
	return domain.Config{
		Preferences: domain.Preferences{DataDir: dir},
		Security:    domain.SecuritySettings{Enabled: true, RulesFile: filepath.Join(dir, "guardrail.yaml")},
		History:     domain.HistorySettings{Archive: archive, Path: filepath.Join(dir, "history."+archive)},
	}
}

func TestBuildWiresOfflinePipeline(t *testing.T) {
	c, err := Build(context.Background(), testConfig(t, domain.HistoryArchiveNone), nil, nil)
	require.NoError(t, err)
	assert.Nil(t, c.Archive)
	assert.Len(t, c.Catalog.IDs(), 20)

	resp := c.Pipeline.Run(context.Background(), "how are you")
	require.Len(t, resp.Results, 1)
	assert.Equal(t, domain.TagGeneral, resp.Results[0].SubCommand.Tag)
	assert.Equal(t, domain.KindOracleUnavailable, resp.Results[0].Outcome.Kind)
	assert.NotEmpty(t, resp.Degraded)

	cfg, err := c.ConfigProvider.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, c.Config.Preferences.DataDir, cfg.Preferences.DataDir)

	require.NoError(t, c.Close(context.Background()))
}

func TestCloseArchivesHistory(t *testing.T) {
	cfg := testConfig(t, domain.HistoryArchiveJSONL)
	c, err := Build(context.Background(), cfg, nil, nil)
	require.NoError(t, err)
	require.NotNil(t, c.Archive)

	c.Pipeline.Run(context.Background(), "first")
	c.Pipeline.Run(context.Background(), "second")

	require.NoError(t, c.Close(context.Background()))
	require.NoError(t, c.Close(context.Background()), "second close is a no-op")

	entries, err := history.NewFileArchive(cfg.History.Path).Load(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "first", entries[0].Utterance)
	assert.Equal(t, "second", entries[1].Utterance)
}

func TestDoctorSeesBlockingGuardrail(t *testing.T) {
	c, err := Build(context.Background(), testConfig(t, domain.HistoryArchiveNone), nil, nil)
	require.NoError(t, err)

	assessment, err := c.DoctorService.SecurityService.Evaluate("rm -rf /")
	require.NoError(t, err)
	assert.True(t, assessment.Blocked())
}
