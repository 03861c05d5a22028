package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Server.Port)
	assert.Equal(t, 24, cfg.JWT.ExpirationHours)
	assert.Equal(t, "warn", cfg.Database.LogLevel)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	yaml := []byte("server:\n  port: \"8081\"\njwt:\n  secret: from-file\n  expiration_hours: 12\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o600))

	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("DB_HOST", "db.internal")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "8081", cfg.Server.Port)
	assert.Equal(t, "from-env", cfg.JWT.Secret)
	assert.Equal(t, 12, cfg.JWT.ExpirationHours)
	assert.Equal(t, "db.internal", cfg.Database.Host)
}

func TestLoad_RejectsNonPositiveExpiration(t *testing.T) {
	t.Setenv("JWT_EXPIRATION_HOURS", "0")

	_, err := Load(t.TempDir())
	assert.Error(t, err)
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{URL: "postgres://u:p@h/db"}
	assert.Equal(t, "postgres://u:p@h/db", d.DSN())

	d = DatabaseConfig{Host: "h", User: "u", Password: "p", Name: "db", Port: "5432", TimeZone: "UTC"}
	assert.Equal(t, "host=h user=u password=p dbname=db port=5432 sslmode=disable TimeZone=UTC", d.DSN())
}
