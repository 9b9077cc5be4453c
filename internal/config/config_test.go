package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "server.hcl")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.hcl"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "localhost:8080", cfg.ListenAddress())
	require.Len(t, cfg.Tables, 1)
	assert.Equal(t, "main", cfg.Tables[0].Name)
	assert.Equal(t, 30*time.Second, cfg.Tables[0].TurnTimeout())
}

func TestLoadFullConfig(t *testing.T) {
	path := writeConfig(t, `
server {
  address   = "0.0.0.0"
  port      = 9000
  log_level = "debug"
}

table "high" {
  max_players  = 9
  small_blind  = 50
  big_blind    = 100
  buy_in       = 20000
  turn_timeout = 15
}

table "low" {
  small_blind = 1
  big_blind   = 2
}
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "0.0.0.0:9000", cfg.ListenAddress())
	require.Len(t, cfg.Tables, 2)

	high := cfg.TableByName("high")
	require.NotNil(t, high)
	assert.Equal(t, 9, high.MaxPlayers)
	assert.Equal(t, 15*time.Second, high.TurnTimeout())

	// Unset fields pick up defaults.
	low := cfg.TableByName("low")
	require.NotNil(t, low)
	assert.Equal(t, 6, low.MaxPlayers)
	assert.Equal(t, 200, low.BuyIn)
	assert.Equal(t, 30*time.Second, low.TurnTimeout())

	assert.Nil(t, cfg.TableByName("missing"))
}

func TestLoadRejectsMalformedHCL(t *testing.T) {
	path := writeConfig(t, `table "broken" { small_blind = `)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse")
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg := Default()
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad port", func(c *Config) { c.Server.Port = 70000 }},
		{"no tables", func(c *Config) { c.Tables = nil }},
		{"zero small blind", func(c *Config) { c.Tables[0].SmallBlind = 0 }},
		{"big blind under small", func(c *Config) { c.Tables[0].BigBlind = 0 }},
		{"too many seats", func(c *Config) { c.Tables[0].MaxPlayers = 11 }},
		{"buy-in under big blind", func(c *Config) { c.Tables[0].BuyIn = 1 }},
		{"duplicate names", func(c *Config) { c.Tables = append(c.Tables, c.Tables[0]) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
