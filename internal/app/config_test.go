package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/lexora-legal/lexora/internal/testing/guard"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("SESSION_SECRET", "test-session-secret")
	t.Setenv("CSRF_SECRET", "test-csrf-secret")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, ":8080", cfg.AppAddr)
	assert.Equal(t, 720*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 7, cfg.RetentionSweepDays)
	assert.False(t, cfg.IsProduction())
	assert.False(t, cfg.ObjectStorageConfigured())
	assert.False(t, cfg.DraftingConfigured())
}

func TestLoadConfigRequiresSecrets(t *testing.T) {
	t.Setenv("SESSION_SECRET", "")
	t.Setenv("CSRF_SECRET", "x")

	_, err := LoadConfig()
	require.Error(t, err)
}

func TestConfigFeatureToggles(t *testing.T) {
	t.Setenv("SESSION_SECRET", "test-session-secret")
	t.Setenv("CSRF_SECRET", "test-csrf-secret")
	t.Setenv("APP_ENV", "production")
	t.Setenv("S3_BUCKET", "lexora-documents")
	t.Setenv("DRAFT_PROVIDER_URL", "http://localhost:9090")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.True(t, cfg.ObjectStorageConfigured())
	assert.True(t, cfg.DraftingConfigured())
}
