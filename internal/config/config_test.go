package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("API_BASE", "https://api.example.com/")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com", cfg.APIBase)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSOrigins)
	assert.Equal(t, 15*time.Second, cfg.BackendTimeout)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.False(t, cfg.JWTEnabled())
	assert.False(t, cfg.IsProduction())
}

func TestLoad_MissingAPIBase(t *testing.T) {
	t.Setenv("API_BASE", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_RelativeAPIBase(t *testing.T) {
	t.Setenv("API_BASE", "/api")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_Auth0RequiresBothFields(t *testing.T) {
	t.Setenv("API_BASE", "https://api.example.com")
	t.Setenv("AUTH0_DOMAIN", "tenant.auth0.com")

	_, err := Load()
	assert.Error(t, err)

	t.Setenv("AUTH0_AUDIENCE", "https://gateway")
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.JWTEnabled())
}

func TestLoad_CORSOriginsSplit(t *testing.T) {
	t.Setenv("API_BASE", "https://api.example.com")
	t.Setenv("CORS_ORIGINS", "https://a.example.com,https://b.example.com")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORSOrigins)
}
