package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("API_URL", "")
	t.Setenv("WS_URL", "")
	t.Setenv("APP_MODE", "")
	t.Setenv("API_TIMEOUT_SECONDS", "")

	cfg := Load()

	assert.Equal(t, "http://localhost:3001/api", cfg.APIURL)
	assert.Equal(t, "http://localhost:3001", cfg.WSURL)
	assert.Equal(t, ModeRestaurant, cfg.Mode)
	assert.Equal(t, 15*time.Second, cfg.APITimeout)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("API_URL", "https://api.zefood.test/api/")
	t.Setenv("WS_URL", "")
	t.Setenv("APP_MODE", "ADMIN")
	t.Setenv("API_TIMEOUT_SECONDS", "3")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test")
	t.Setenv("REDIS_DB", "2")

	cfg := Load()

	assert.Equal(t, "https://api.zefood.test/api", cfg.APIURL)
	assert.Equal(t, "https://api.zefood.test", cfg.WSURL)
	assert.Equal(t, ModeAdmin, cfg.Mode)
	assert.Equal(t, 3*time.Second, cfg.APITimeout)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
	assert.Equal(t, 2, cfg.RedisDB)
	assert.Equal(t, []string{"ADMIN"}, cfg.App().AllowedRoles)
}

func TestModeFromHost(t *testing.T) {
	cases := map[string]AppMode{
		"admin.zefood.com":       ModeAdmin,
		"painel-admin.local":     ModeAdmin,
		"restaurante.zefood.com": ModeRestaurant,
		"localhost:3000":         ModeRestaurant,
		"admin.localhost:3000":   ModeAdmin,
	}
	for host, want := range cases {
		assert.Equal(t, want, ModeFromHost(host), host)
	}
}

func TestRoleAllowed(t *testing.T) {
	app := AppFor(ModeRestaurant)
	assert.True(t, app.RoleAllowed("RESTAURANT"))
	assert.False(t, app.RoleAllowed("CUSTOMER"))
	assert.False(t, app.RoleAllowed("ADMIN"))
}
