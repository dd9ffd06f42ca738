package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("BLUEPRINT_DB_DATABASE", "taskflow")
	t.Setenv("BLUEPRINT_DB_USERNAME", "taskflow")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, 10*time.Second, cfg.HTTP.ReadTimeout)
	assert.Equal(t, 336*time.Hour, cfg.Session.TTL)
	assert.Equal(t, 12, cfg.App.BcryptCost)
	assert.Equal(t, "", cfg.Redis.Addr)
	assert.True(t, cfg.App.IsDev())
	assert.Equal(t, []string{"https://*", "http://*"}, cfg.HTTP.Origins())
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("PORT", "9000")
	t.Setenv("APP_ENV", "production")
	t.Setenv("SESSION_SECRET", strings.Repeat("k", 32))
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://taskflow.example , ")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.HTTP.Port)
	assert.False(t, cfg.App.IsDev())
	assert.Equal(t, 2*time.Hour, cfg.Session.TTL)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Len(t, cfg.Session.Secret, 32)
	assert.Equal(t, []string{"https://taskflow.example"}, cfg.HTTP.Origins())
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{name: "port out of range", key: "PORT", val: "70000"},
		{name: "zero ttl", key: "SESSION_TTL", val: "0s"},
		{name: "bcrypt cost too low", key: "BCRYPT_COST", val: "2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			t.Setenv(tt.key, tt.val)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoad_SessionSecret(t *testing.T) {
	t.Run("optional in dev", func(t *testing.T) {
		setRequired(t)
		t.Setenv("SESSION_SECRET", "")
		cfg, err := Load()
		require.NoError(t, err)
		assert.Empty(t, cfg.Session.Secret)
	})

	t.Run("required outside dev", func(t *testing.T) {
		setRequired(t)
		t.Setenv("APP_ENV", "production")
		t.Setenv("SESSION_SECRET", "")
		_, err := Load()
		assert.ErrorContains(t, err, "SESSION_SECRET")

		t.Setenv("SESSION_SECRET", "short")
		_, err = Load()
		assert.ErrorContains(t, err, "SESSION_SECRET")
	})
}

func TestDBConfig_DSN(t *testing.T) {
	c := DBConfig{Host: "db", Port: "5432", Database: "tf", Username: "u", Password: "p", Schema: "app"}
	assert.Equal(t, "host=db user=u password=p dbname=tf port=5432 sslmode=disable search_path=app", c.DSN())

	c.Schema = ""
	assert.Equal(t, "host=db user=u password=p dbname=tf port=5432 sslmode=disable", c.DSN())
}
