package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fabric-registry/internal/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	path := writeConfig(t, `
server:
  host: localhost
  port: 8080
fabric:
  store: memory
jwt:
  secret: test-secret
  token_expiry_minutes: 30
log:
  level: debug
  format: text
scheduler:
  sweep_suspensions: "0 */10 * * * *"
  admin_principal: sweeper-admin
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "localhost:8080", cfg.GetServerAddress())
	assert.Equal(t, "memory", cfg.Fabric.Store)
	assert.Equal(t, 30, cfg.JWT.TokenExpiryMinute)
	assert.Equal(t, "sweeper-admin", cfg.Scheduler.AdminPrincipal)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoad_InvalidPort(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 0
jwt:
  secret: test-secret
`)

	_, err := config.Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server port")
}

func TestLoad_MissingJWTSecret(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 8080
`)

	_, err := config.Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jwt secret")
}

func TestLoad_PostgresRequiresDatabase(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 8080
fabric:
  store: postgres
jwt:
  secret: test-secret
`)

	_, err := config.Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires database host")
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 8080
fabric:
  store: postgres
database:
  host: file-host
  port: 5432
  user: file-user
  database: registry
jwt:
  secret: file-secret
`)

	t.Setenv("FABRIC_REGISTRY_DB_HOST", "env-host")
	t.Setenv("FABRIC_REGISTRY_DB_PASSWORD", "env-password")
	t.Setenv("FABRIC_REGISTRY_JWT_SECRET", "env-secret")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "env-host", cfg.Database.Host)
	assert.Equal(t, "env-secret", cfg.JWT.Secret)
	assert.Contains(t, cfg.GetDatabaseConnectionString(), "host=env-host")
	assert.Contains(t, cfg.GetDatabaseConnectionString(), "password=env-password")
	assert.Contains(t, cfg.GetDatabaseConnectionString(), "sslmode=disable")
}
