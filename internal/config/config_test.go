package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "./data/slotledger.db", cfg.DB.Path)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.False(t, cfg.RedisEnabled())

	pricing, err := cfg.Pricing.Pricing()
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("3.80").Equal(pricing.OneHour))
	assert.True(t, decimal.RequireFromString("7.60").Equal(pricing.TwoHour))
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
server:
  port: 9090
db:
  path: /var/lib/slotledger/ledger.db
pricing:
  one_hour: "4.00"
  two_hour: "7.00"
redis:
  addr: localhost:6379
lock:
  ttl: 5s
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
	t.Setenv("SLOTLEDGER_DB_PATH", "/tmp/override.db")
	t.Setenv("SLOTLEDGER_LOG_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "/tmp/override.db", cfg.DB.Path)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 5*time.Second, cfg.Lock.TTL)
	assert.True(t, cfg.RedisEnabled())

	pricing, err := cfg.Pricing.Pricing()
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("7.00").Equal(pricing.TwoHour))
}

func TestLoad_Invalid(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("bad price", func(t *testing.T) {
		t.Setenv("SLOTLEDGER_PRICING_ONE_HOUR", "three")
		_, err := Load("")
		assert.Error(t, err)
	})

	t.Run("non-positive price", func(t *testing.T) {
		t.Setenv("SLOTLEDGER_PRICING_TWO_HOUR", "0")
		_, err := Load("")
		assert.Error(t, err)
	})
}
