package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/gatherhub_test")
	t.Setenv("JWT_SECRET", "test-secret")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "0.0.0.0", cfg.Server.Host)
	require.Equal(t, 8080, cfg.Server.Port)
	require.Equal(t, 25, cfg.Database.MaxConnections)
	require.Equal(t, 30*time.Minute, cfg.Auth.TokenExpiry)
	require.Equal(t, "gatherhub", cfg.Auth.JWTIssuer)
	require.Equal(t, 120, cfg.RateLimit.PublicPerMinute)
	require.Equal(t, 10, cfg.RateLimit.LoginPerMinute)
	require.Equal(t, "info", cfg.Logging.Level)
	require.Equal(t, "json", cfg.Logging.Format)
	require.Equal(t, "development", cfg.Environment)
}

func TestLoadEnvOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("JWT_EXPIRY_MINUTES", "15")
	t.Setenv("ENVIRONMENT", "production")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, 15*time.Minute, cfg.Auth.TokenExpiry)
	require.Equal(t, "production", cfg.Environment)
}

func TestLoadMissingDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "test-secret")

	_, err := Load()
	require.Error(t, err)
	require.Contains(t, err.Error(), "DATABASE_URL")
}

func TestLoadMissingJWTSecret(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/gatherhub_test")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
	require.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoadInvalidPort(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SERVER_PORT", "70000")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadWithFileOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SERVER_PORT", "9090")

	path := filepath.Join(t.TempDir(), "config.yaml")
	contents := `
server:
  port: 7070
auth:
  jwt_expiry_minutes: 5
rate_limit:
  login_per_minute: 3
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))

	cfg, err := LoadWithFile(path)
	require.NoError(t, err)

	// File values win over env, untouched settings keep env/defaults.
	require.Equal(t, 7070, cfg.Server.Port)
	require.Equal(t, 5*time.Minute, cfg.Auth.TokenExpiry)
	require.Equal(t, 3, cfg.RateLimit.LoginPerMinute)
	require.Equal(t, "0.0.0.0", cfg.Server.Host)
}

func TestLoadWithFileMissing(t *testing.T) {
	setRequiredEnv(t)

	_, err := LoadWithFile(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestLoadWithFileMalformed(t *testing.T) {
	setRequiredEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: ["), 0o600))

	_, err := LoadWithFile(path)
	require.Error(t, err)
}
