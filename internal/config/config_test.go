package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const minimalYAML = `
app:
  env: development
  port: 9090
mongo:
  uri: mongodb://localhost:27017
  database: toulouse_randonnees
session:
  jwtSecret: secret
`

func TestLoad_DefaultsApplied(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalYAML))
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.App.Port)
	assert.Equal(t, "users", cfg.Mongo.MembersCollection)
	assert.Equal(t, "adhesion", cfg.Mongo.AdhesionCollection)
	assert.Equal(t, 5*time.Second, cfg.Mongo.OpTimeout.Std())
	assert.Equal(t, 15*time.Second, cfg.Mongo.ConnectTimeout.Std())
	assert.Equal(t, 5*time.Second, cfg.Redis.ConnectTimeout.Std())
	assert.Equal(t, 15, cfg.Session.AccessTTLMinutes)
	assert.Equal(t, 30, cfg.Session.SessionTTLDays)
	assert.Equal(t, 30, cfg.Security.AuthRateLimitPerMinute)
	assert.Equal(t, 32, cfg.Security.WriteFailureFeedEntries)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "7070")
	t.Setenv("MONGO_DB", "rando_test")
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("SESSION_TTL_DAYS", "7")

	cfg, err := Load(writeConfig(t, minimalYAML))
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.App.Port)
	assert.Equal(t, "rando_test", cfg.Mongo.Database)
	assert.Equal(t, "from-env", cfg.Session.JWTSecret)
	assert.Equal(t, 7, cfg.Session.SessionTTLDays)
}

func TestLoad_MissingMongoURI(t *testing.T) {
	_, err := Load(writeConfig(t, `
session:
  jwtSecret: secret
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MONGO_URI")
}

func TestLoad_MissingJWTSecret(t *testing.T) {
	_, err := Load(writeConfig(t, `
mongo:
  uri: mongodb://localhost:27017
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_BadYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "app: [not: a: mapping"))
	assert.Error(t, err)
}
