package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(LoadOptions{
		ConfigFile: "",
		EnvFile:    filepath.Join(dir, "missing.env"),
		Getenv:     envMap(nil),
	})
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, cfg.Model)
	assert.Equal(t, -1, cfg.JSONRetries)
	assert.Equal(t, 0, cfg.MaxAttempts)
	assert.True(t, cfg.CheckModel)
}

func TestLoadFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wolverine.yaml")
	yml := `model: gpt-3.5-turbo
max_attempts: 3
json_retries: 2
confirm: true
interpreters:
  .rb: [ruby]
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0644))

	cfg, err := Load(LoadOptions{
		ConfigFile: path,
		EnvFile:    filepath.Join(dir, "missing.env"),
		Getenv: envMap(map[string]string{
			EnvAPIKey:   "sk-test",
			EnvAttempts: "7",
		}),
	})
	require.NoError(t, err)
	assert.Equal(t, "gpt-3.5-turbo", cfg.Model)
	assert.Equal(t, 7, cfg.MaxAttempts)
	assert.Equal(t, 2, cfg.JSONRetries)
	assert.True(t, cfg.Confirm)
	assert.Equal(t, "sk-test", cfg.APIKey)
	assert.Equal(t, []string{"ruby"}, cfg.Interpreters[".rb"])
	assert.NoError(t, cfg.Validate(true))
}

func TestLoadRequiredFileMissing(t *testing.T) {
	_, err := Load(LoadOptions{ConfigFile: filepath.Join(t.TempDir(), "nope.yaml"), Getenv: envMap(nil)})
	assert.Error(t, err)
}

func TestLoadBadEnv(t *testing.T) {
	dir := t.TempDir()
	_, err := Load(LoadOptions{
		EnvFile: filepath.Join(dir, "missing.env"),
		Getenv:  envMap(map[string]string{EnvJSONRetries: "lots"}),
	})
	assert.Error(t, err)
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("WOLVERINE_TEST_MODEL=from-dotenv\n"), 0644))
	t.Cleanup(func() { os.Unsetenv("WOLVERINE_TEST_MODEL") })

	_, err := Load(LoadOptions{EnvFile: envFile, Getenv: envMap(nil)})
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", os.Getenv("WOLVERINE_TEST_MODEL"))
}

func TestValidate(t *testing.T) {
	cfg := Default()
	assert.NoError(t, cfg.Validate(false))
	assert.ErrorIs(t, cfg.Validate(true), ErrMissingAPIKey)

	cfg.APIKey = "k"
	cfg.JSONRetries = 0
	assert.Error(t, cfg.Validate(true))

	cfg.JSONRetries = 1
	cfg.MaxAttempts = -1
	assert.Error(t, cfg.Validate(false))
}
