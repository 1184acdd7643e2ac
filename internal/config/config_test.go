package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("EVENTS_TRANSPORT", "")
	t.Setenv("ELASTICSEARCH_URL", "")

	cfg := Load()

	assert.Equal(t, "8081", cfg.Port)
	assert.Equal(t, "inline", cfg.Events.Transport)
	assert.Equal(t, "postgres", cfg.Notifications.Store)
	assert.False(t, cfg.Elasticsearch.Enabled())
	assert.Equal(t, 15*time.Second, cfg.Payment.Timeout)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("APP_BASE_URL", "https://venuehub.example/")
	t.Setenv("ELASTICSEARCH_URL", "http://es:9200")
	t.Setenv("ELASTICSEARCH_TIMEOUT", "5s")
	t.Setenv("JWT_TTL_MIN", "15")

	cfg := Load()

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 6543, cfg.Database.Port)
	assert.Equal(t, "https://venuehub.example", cfg.AppBaseURL)
	assert.True(t, cfg.Elasticsearch.Enabled())
	assert.Equal(t, 5*time.Second, cfg.Elasticsearch.Timeout)
	assert.Equal(t, 15*time.Minute, cfg.Auth.TokenTTL)
}

func TestGetEnvIntIgnoresGarbage(t *testing.T) {
	t.Setenv("DB_PORT", "not-a-number")
	assert.Equal(t, 5432, getEnvInt("DB_PORT", 5432))
}
