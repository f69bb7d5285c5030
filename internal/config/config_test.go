package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetStringSliceEnvSplitsOnComma(t *testing.T) {
	t.Setenv("TEST_ORIGINS", "https://a.example, https://b.example,,")

	got := getStringSliceEnv("TEST_ORIGINS", []string{"*"})

	assert.Equal(t, []string{"https://a.example", "https://b.example"}, got)
}

func TestGetDurationEnvFallsBackOnGarbage(t *testing.T) {
	t.Setenv("TEST_DURATION", "soon")

	assert.Equal(t, 3*time.Second, getDurationEnv("TEST_DURATION", 3*time.Second))
}

func TestValidate(t *testing.T) {
	cfg := &Config{Storage: StorageConfig{Provider: "local"}}
	require.Error(t, cfg.Validate(), "missing DB password must fail")

	cfg.Database.Password = "secret"
	require.NoError(t, cfg.Validate())

	cfg.Storage.Provider = "gcs"
	require.Error(t, cfg.Validate(), "gcs without bucket must fail")

	cfg.Storage.GCSBucket = "trip-media"
	require.NoError(t, cfg.Validate())

	cfg.Storage.Provider = "ftp"
	require.Error(t, cfg.Validate())
}

func TestLocationFallsBackToUTC(t *testing.T) {
	cfg := &Config{Server: ServerConfig{Timezone: "Mars/Olympus"}}
	assert.Equal(t, time.UTC, cfg.Location())

	cfg.Server.Timezone = "America/Sao_Paulo"
	assert.Equal(t, "America/Sao_Paulo", cfg.Location().String())
}
