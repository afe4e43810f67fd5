package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable Load reads; empty values are ignored.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, env := range []string{
		"CONTACTSYNC_CONFIG_FILE", "CONTACTSYNC_ADDR", "LOG_LEVEL",
		"ADMIN_API_TOKEN", "SYSTEM_CLIENT_ID", "SYSTEM_CLIENT_SECRET", "TOKEN_ISSUER", "TOKEN_AUDIENCE",
		"DATABASE_URL", "REDIS_URL", "KAFKA_BROKERS", "KAFKA_TOPIC", "KAFKA_GROUP_ID", "KAFKA_CREATE_TOPIC", "KAFKA_RETRY_BACKOFF",
		"LEGACY_API_URL", "TARGET_API_URL", "ORIGIN_TARGET_TAGS",
		"TOKEN_TTL", "DEDUPE_TTL", "LEGACY_API_TIMEOUT", "TARGET_API_TIMEOUT", "DB_MAX_OPEN_CONNS",
	} {
		t.Setenv(env, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contactsync.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":9090"
kafka:
  brokers: ["file-broker:9092"]
  topic: from-file
  retry_backoff: 5s
redis:
  dedupe_ttl: 2h
origin:
  target_tags: [DPS_SYNCHRONISATION]
`), 0o600))
	clearEnv(t)
	t.Setenv("CONTACTSYNC_CONFIG_FILE", path)
	t.Setenv("KAFKA_BROKERS", "a:9092, b:9092,")
	t.Setenv("TARGET_API_TIMEOUT", "3s")
	t.Setenv("ADMIN_API_TOKEN", "s3cret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "from-file", cfg.Kafka.Topic)
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.Kafka.Brokers, "env wins over the file")
	assert.Equal(t, 2*time.Hour, cfg.Redis.DedupeTTL)
	assert.Equal(t, []string{"DPS_SYNCHRONISATION"}, cfg.Origin.TargetTags)
	assert.Equal(t, 3*time.Second, cfg.Target.Timeout)
	assert.Equal(t, "s3cret", cfg.Auth.AdminToken)
	assert.Equal(t, "contactsync", cfg.Kafka.GroupID, "untouched defaults survive")
	assert.Equal(t, 5*time.Second, cfg.Kafka.RetryBackoff)
}

func TestLoadRetryBackoff(t *testing.T) {
	clearEnv(t)
	assert.Equal(t, time.Second, Default().Kafka.RetryBackoff)

	t.Setenv("KAFKA_RETRY_BACKOFF", "250ms")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, cfg.Kafka.RetryBackoff)
}

func TestLoadErrors(t *testing.T) {
	clearEnv(t)

	t.Run("missing file", func(t *testing.T) {
		t.Setenv("CONTACTSYNC_CONFIG_FILE", filepath.Join(t.TempDir(), "absent.yaml"))
		_, err := Load()
		assert.ErrorContains(t, err, "failed to read config")
	})

	t.Run("bad duration", func(t *testing.T) {
		t.Setenv("DEDUPE_TTL", "a day")
		_, err := Load()
		assert.ErrorContains(t, err, "DEDUPE_TTL")
	})

	t.Run("bad retry backoff", func(t *testing.T) {
		t.Setenv("KAFKA_RETRY_BACKOFF", "soon")
		_, err := Load()
		assert.ErrorContains(t, err, "KAFKA_RETRY_BACKOFF")
	})

	t.Run("bad pool size", func(t *testing.T) {
		t.Setenv("DB_MAX_OPEN_CONNS", "many")
		_, err := Load()
		assert.ErrorContains(t, err, "DB_MAX_OPEN_CONNS")
	})
}
