package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coreconfig "github.com/examscores/scorebot/core/config"
	coredatabase "github.com/examscores/scorebot/core/database"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadInlineAndDatabase(t *testing.T) {
	path := writeConfig(t, `
http:
  listen: ":9000"
api:
  url: "http://scores.local:9000/"
database:
  driver: sqlite
  path: ":memory:"
`)
	s, err := Load(path, coreconfig.Options{})
	require.NoError(t, err)

	assert.Equal(t, ":9000", s.HTTP.Listen)
	assert.Equal(t, "http://scores.local:9000", s.CoreConfig().API.URL)
	assert.Equal(t, coredatabase.DriverSQLite, s.Database.Driver)
	assert.True(t, s.Database.InMemory())
	assert.Equal(t, 10, s.Database.MaxConnections)
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), coreconfig.Options{})
	require.NoError(t, err)
	assert.Equal(t, coreconfig.DefaultHTTPListen, s.HTTP.Listen)
	assert.Equal(t, coredatabase.DriverPostgres, s.Database.Driver)
	assert.Equal(t, "5432", s.Database.Port)
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	path := writeConfig(t, "database:\n  driver: oracle\n")
	_, err := Load(path, coreconfig.Options{})
	assert.ErrorContains(t, err, "database.driver")
}
