package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestInitConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "conf.yaml")
	err := os.WriteFile(file, []byte(`
name: test-engine
engine:
  nodeId: node-1
  expressionLanguage: js
jobs:
  pollInterval: 250ms
persistence:
  type: bolt
  boltPath: /tmp/zenflow-test.db
`), 0o600)
	assert.NoError(t, err)
	t.Setenv("CONFIG_FILE", file)

	conf := InitConfig()

	assert.Equal(t, "test-engine", conf.Name)
	assert.Equal(t, "node-1", conf.Engine.NodeId)
	assert.Equal(t, ExpressionLanguageJs, conf.Engine.ExpressionLanguage)
	assert.Equal(t, 250*time.Millisecond, conf.Jobs.PollInterval)
	assert.Equal(t, PersistenceBolt, conf.Persistence.Type)
	assert.Equal(t, 5, conf.Jobs.MaxJobExecutions)
	assert.Equal(t, ":8080", conf.Server.Addr)
	assert.NoError(t, conf.Validate())
}

func TestInitConfigFromEnv(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("JOBS_BATCH_SIZE", "7")
	t.Setenv("JOBS_LOCK_LEASE", "90s")
	t.Setenv("REST_API_ALLOWED_ORIGINS", "https://a.example,https://b.example")

	conf := InitConfig()

	assert.Equal(t, 7, conf.Jobs.BatchSize)
	assert.Equal(t, 90*time.Second, conf.Jobs.LockLease)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, conf.Server.AllowedOrigins)
	assert.NotEmpty(t, conf.Engine.NodeId)
	assert.Equal(t, PersistenceMemory, conf.Persistence.Type)
	assert.Equal(t, ExpressionLanguageFeel, conf.Engine.ExpressionLanguage)
}

func TestValidateRejectsUnknownValues(t *testing.T) {
	conf := Config{
		Engine:      Engine{ExpressionLanguage: "lua"},
		Persistence: Persistence{Type: "postgres"},
	}
	err := conf.Validate()
	assert.ErrorContains(t, err, "postgres")
	assert.ErrorContains(t, err, "lua")
	assert.ErrorContains(t, err, "poll interval")
}
