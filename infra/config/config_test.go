package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var cfg Config
	require.NoError(t, Load(&cfg))

	assert.Equal(t, "BTC-USD", cfg.Instrument)
	assert.Equal(t, "rbtree", cfg.Book.Index)
	assert.Equal(t, "strict", cfg.Book.UnknownOrderPolicy)
	assert.EqualValues(t, 2*1024*1024, cfg.WAL.SegmentSize)
	assert.Equal(t, 30*time.Second, cfg.Snapshot.Interval)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.Equal(t, "lob-commands", cfg.Kafka.GroupID)
	assert.Equal(t, "lob:", cfg.Redis.KeyPrefix)
	assert.Equal(t, ":50051", cfg.GRPC.Addr)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("BOOK_INDEX", "btree")
	t.Setenv("BOOK_UNKNOWN_ORDER_POLICY", "idempotent")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("SNAPSHOT_INTERVAL", "5s")

	var cfg Config
	require.NoError(t, Load(&cfg))

	assert.Equal(t, "btree", cfg.Book.Index)
	assert.Equal(t, "idempotent", cfg.Book.UnknownOrderPolicy)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 5*time.Second, cfg.Snapshot.Interval)
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("INSTRUMENT=ETH-USD\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("INSTRUMENT") })

	var cfg Config
	require.NoError(t, Load(&cfg, path))
	assert.Equal(t, "ETH-USD", cfg.Instrument)

	assert.Error(t, Load(&cfg, filepath.Join(t.TempDir(), "missing.env")))
}
