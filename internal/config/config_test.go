package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `{
  "tds": {
    "connections": {"accounts": {"dev": {"host": "db1", "user": "u", "pass": "p", "database": "d"}}},
    "channels": {"accounts": [{"name": "accounts", "script": ["SELECT * FROM t"], "modelName": "Account", "model": "account"}]},
    "settings": {"program": {"sleep ms": 1000}}
  },
  "ldap": {
    "connections": {"ad": {"dev": {"host": "ldap1", "port": 389, "user": "u", "pass": "p"}}},
    "channels": {"ad": [{"name": "users", "node": "dc=example", "filter": "(objectClass=user)", "idAttribute": "sAMAccountName", "timeAttribute": "whenChanged"}]}
  },
  "mongo": {"connections": {"one": {"dev": {"host": "mongo1", "port": 27017, "database": "repl"}}}},
  "elastic": {"connections": {"one": {"dev": {"host": "es1", "port": 9200, "index": "repl"}}}}
}`

func TestLoadParsesAllSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "db1", cfg.Tabular.Connections["accounts"][EnvDev].Host)
	assert.Equal(t, 1000, cfg.Tabular.Settings.Program.SleepMS)
	assert.Equal(t, "sAMAccountName", cfg.Directory.Channels["ad"][0].IDAttribute)
	assert.Equal(t, "mongo1", cfg.Document.Connections["one"][EnvDev].Host)
	assert.Equal(t, "repl", cfg.Search.Connections["one"][EnvDev].Index)
}

func TestEnvValid(t *testing.T) {
	assert.True(t, EnvDev.Valid())
	assert.True(t, EnvStaging.Valid())
	assert.True(t, EnvProd.Valid())
	assert.False(t, Env("qa").Valid())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
