package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_CreatesDefault(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "PanelLayout.config")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 8089, cfg.Server.Port)
	assert.Equal(t, BackendMemory, cfg.Storage.Backend)
	assert.Equal(t, filepath.Join(dir, "data"), cfg.GetDataDir())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<PanelLayout>")
	assert.Contains(t, string(data), "<SummaryLimit>50</SummaryLimit>")
}

func TestLoadConfig_FirstRunAppliesEnvironment(t *testing.T) {
	t.Run("geometry profile", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "geometry.yaml"), []byte("margin: 6\n"), 0644))
		t.Setenv("PANEL_LAYOUT_GEOMETRY_PROFILE", "geometry.yaml")

		cfg, err := LoadConfig(filepath.Join(dir, "PanelLayout.config"))
		require.NoError(t, err)
		assert.Equal(t, 6.0, cfg.Geometry.Margin)
		assert.Equal(t, filepath.Join(dir, "geometry.yaml"), cfg.Advanced.GeometryProfile)
	})

	t.Run("invalid store is rejected", func(t *testing.T) {
		t.Setenv("PANEL_LAYOUT_STORE", "postgres")

		_, err := LoadConfig(filepath.Join(t.TempDir(), "PanelLayout.config"))
		assert.ErrorContains(t, err, "unknown storage backend")
	})
}

func TestLoadConfig_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "PanelLayout.config")

	cfg := DefaultConfig()
	cfg.Server.Port = 9100
	cfg.Storage.Backend = BackendDuckDB
	cfg.Geometry.Alignment = 80
	require.NoError(t, cfg.Save(path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 9100, loaded.Server.Port)
	assert.Equal(t, BackendDuckDB, loaded.Storage.Backend)
	assert.Equal(t, 80.0, loaded.Geometry.Alignment)
	assert.Equal(t, "0.0.0.0:9100", loaded.GetServerAddr())
}

func TestLoadConfig_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "PanelLayout.config")
	require.NoError(t, os.WriteFile(path, []byte(`<PanelLayout><Server><Port>9200</Port></Server></PanelLayout>`), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 9200, cfg.Server.Port)
	assert.Equal(t, 512, cfg.Oracle.MaxTokens)
	assert.Equal(t, 5.0, cfg.Geometry.MinPanelWidth)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "PanelLayout.config")
	require.NoError(t, DefaultConfig().Save(path))

	t.Setenv("PANEL_LAYOUT_PORT", "7000")
	t.Setenv("PANEL_LAYOUT_STORE", "duckdb")
	t.Setenv("PANEL_LAYOUT_DATA_DIR", "/srv/layouts")
	t.Setenv("PANEL_LAYOUT_REDIS_ADDR", "redis:6379")
	t.Setenv("GEMINI_API_KEY", "secret")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, BackendDuckDB, cfg.Storage.Backend)
	assert.Equal(t, "/srv/layouts", cfg.GetDataDir())
	assert.Equal(t, "redis:6379", cfg.Jobs.RedisAddr)
	assert.Equal(t, "secret", cfg.Oracle.APIKey)
}

func TestLoadConfig_GeometryProfile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "geometry.yaml"), []byte("margin: 6\ngrid_size: 10\n"), 0644))

	path := filepath.Join(dir, "PanelLayout.config")
	cfg := DefaultConfig()
	cfg.Advanced.GeometryProfile = "geometry.yaml"
	require.NoError(t, cfg.Save(path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 6.0, loaded.Geometry.Margin)
	assert.Equal(t, 10.0, loaded.Geometry.GridSize)
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	cfg.Storage.Backend = "postgres"
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Server.Port = 0
	assert.Error(t, cfg.Validate())
}

func TestDurations(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "25s", cfg.OracleTimeout().String())
	assert.Equal(t, "5s", cfg.PublishTimeout().String())
	assert.Equal(t, "1h0m0s", cfg.JobTTL().String())
}
