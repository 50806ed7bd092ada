package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViperDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg, err := fromViper(v)
	require.NoError(t, err)
	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, 4200, cfg.Port)
	assert.Equal(t, "http://localhost:8080/api", cfg.Backend.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, SessionStoreMemory, cfg.Session.Store)
	assert.Equal(t, 8*time.Hour, cfg.Session.TTL)
	assert.Equal(t, "portal_session", cfg.Session.CookieName)
	assert.Empty(t, cfg.Session.CSRFSecret)
}

func TestFromViperOverrides(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("BACKEND_BASE_URL", "https://api.example.edu/api/")
	v.Set("BACKEND_TIMEOUT", "not-a-duration")
	v.Set("SESSION_STORE", " Redis ")
	v.Set("SESSION_TTL", "30m")
	v.Set("SESSION_CSRF_SECRET", "rotate-me")

	cfg, err := fromViper(v)
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.edu/api", cfg.Backend.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, SessionStoreRedis, cfg.Session.Store)
	assert.Equal(t, 30*time.Minute, cfg.Session.TTL)
	assert.Equal(t, "rotate-me", cfg.Session.CSRFSecret)
}

func TestFromViperRejectsUnknownStore(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("SESSION_STORE", "cookie")

	_, err := fromViper(v)
	require.Error(t, err)
}

func TestFromViperRejectsEmptyBackend(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("BACKEND_BASE_URL", "")

	_, err := fromViper(v)
	require.Error(t, err)
}
