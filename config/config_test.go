package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.AppPort)
	assert.Equal(t, "booking_ai", cfg.DatabaseName)
	assert.Equal(t, 400, cfg.LLMMaxTokens)
	assert.InDelta(t, 0.4, cfg.LLMTemperature, 1e-6)
	assert.Equal(t, 60*time.Minute, cfg.SlotDuration())
	assert.Equal(t, 4*time.Second, cfg.GeocoderTimeout())
	assert.Equal(t, 30.0, cfg.SearchRadiusKm)
	assert.False(t, cfg.UseMemoryStore())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "memory://")
	t.Setenv("BOOKING_SLOT_MINUTES", "90")
	t.Setenv("USE_LOCAL_LLM", "true")
	t.Setenv("TIMEZONE", "UTC")

	cfg, err := Load(viper.New())
	require.NoError(t, err)

	assert.True(t, cfg.UseMemoryStore())
	assert.True(t, cfg.UseLocalLLM)
	assert.Equal(t, 90*time.Minute, cfg.SlotDuration())
	assert.Equal(t, time.UTC, cfg.Location())
}
