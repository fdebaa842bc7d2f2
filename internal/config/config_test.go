package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("KONTOSCAN_CONFIG", filepath.Join(dir, "config.toml"))
	return dir
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "ollama", cfg.LLM.Provider)
	require.Equal(t, "GEMINI_API_KEY", cfg.LLM.APIKeyEnv)
	require.Equal(t, 10, cfg.Classify.BatchSize)
	require.Equal(t, DefaultCategories, cfg.Classify.Categories)
	require.Equal(t, DefaultSystemPrompt, cfg.Classify.Prompt)
	require.InDelta(t, 0.01, cfg.Transfers.Tolerance, 0.0001)
	require.Empty(t, cfg.Transfers.UserName)
	require.Contains(t, cfg.Database.Path, "kontoscan.db")
}

func TestLoadEnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("KONTOSCAN_CLASSIFY_BATCH_SIZE", "25")
	t.Setenv("KONTOSCAN_TRANSFERS_USER_NAME", "Max Mustermann")
	t.Setenv("KONTOSCAN_LLM_PROVIDER", "gemini")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 25, cfg.Classify.BatchSize)
	require.Equal(t, "Max Mustermann", cfg.Transfers.UserName)
	require.Equal(t, "gemini", cfg.LLM.Provider)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	require.NoError(t, err)
	cfg.Transfers.UserName = "Erika"
	cfg.Classify.BatchSize = 5
	cfg.Classify.Categories = []string{"Supermarkt", "Sonstiges"}
	cfg.LLM.Provider = "gemini"
	cfg.LLM.Model = "gemini-2.0-flash"

	require.NoError(t, Save(cfg))

	got, err := Load()
	require.NoError(t, err)
	require.Equal(t, "Erika", got.Transfers.UserName)
	require.Equal(t, 5, got.Classify.BatchSize)
	require.Equal(t, []string{"Supermarkt", "Sonstiges"}, got.Classify.Categories)
	require.Equal(t, "gemini", got.LLM.Provider)
	require.Equal(t, "gemini-2.0-flash", got.LLM.Model)
}

func TestResolveAPIKey(t *testing.T) {
	t.Setenv("KONTOSCAN_TEST_KEY", "from-env")

	require.Equal(t, "explicit", LLMConfig{APIKey: "explicit", APIKeyEnv: "KONTOSCAN_TEST_KEY"}.ResolveAPIKey())
	require.Equal(t, "from-env", LLMConfig{APIKeyEnv: "KONTOSCAN_TEST_KEY"}.ResolveAPIKey())
	require.Empty(t, LLMConfig{}.ResolveAPIKey())
}
