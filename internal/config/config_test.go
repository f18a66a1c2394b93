package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orbitdash/pokercore/internal/ai"
	"github.com/orbitdash/pokercore/internal/game"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Parallel()
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.hcl"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "localhost:8080", cfg.ListenAddress())
	assert.Equal(t, []int{50, 100, 250, 500, 1000}, cfg.Lobby.BuyIns)
	assert.Equal(t, 30*time.Second, cfg.Lobby.TurnTimeout)
	assert.Equal(t, -200, cfg.Lobby.MinBalance)
}

func TestParseOverridesOnlyPresentValues(t *testing.T) {
	t.Parallel()
	src := `
server {
  port = 9090
  allowed_origins = ["https://orbit.example"]
}

database {
  driver = "sqlite"
  dsn    = "file:pokercore.db"
}

lobby {
  buy_ins         = [100, 200]
  min_balance     = 0
  turn_timeout    = "15s"
  ai_think_max    = "2s"
}

history {
  enabled = true
  dir     = "/var/lib/pokercore/phh"
}

ai "expert" {
  bluff_frequency = 0.1
}
`
	cfg, err := Parse([]byte(src), "test.hcl")
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Server.Address)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, []string{"https://orbit.example"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, Database{Driver: "sqlite", DSN: "file:pokercore.db"}, cfg.Database)
	assert.Equal(t, []int{100, 200}, cfg.Lobby.BuyIns)
	assert.Equal(t, 0, cfg.Lobby.MinBalance)
	assert.Equal(t, 1000, cfg.Lobby.StartingBalance)
	assert.Equal(t, 15*time.Second, cfg.Lobby.TurnTimeout)
	assert.Equal(t, 8*time.Second, cfg.Lobby.NextHandDelay)
	assert.Equal(t, 2*time.Second, cfg.Lobby.AIThinkMax)
	assert.True(t, cfg.History.Enabled)
	assert.Equal(t, "/var/lib/pokercore/phh", cfg.History.Dir)

	expert := cfg.Profiles[game.Expert]
	assert.InDelta(t, 0.1, expert.BluffFrequency, 1e-9)
	assert.InDelta(t, ai.DefaultProfiles[game.Expert].Aggression, expert.Aggression, 1e-9)
	assert.Equal(t, ai.DefaultProfiles[game.Novice], cfg.Profiles[game.Novice])
}

func TestLoadFromFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "pokercore.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`server { log_level = "debug" }`), 0o644))
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Server.LogLevel)
}

func TestParseErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		src  string
	}{
		{"syntax", `server {`},
		{"unknown block", `tables {}`},
		{"bad duration", `lobby { turn_timeout = "soon" }`},
		{"bad driver", `database { driver = "mysql" }`},
		{"missing dsn", `database { driver = "postgres" }`},
		{"buy-in below big blind", `lobby { buy_ins = [5] }`},
		{"positive floor", `lobby { min_balance = 10 }`},
		{"unknown tier", `ai "god" { skill = 1 }`},
		{"bluff out of range", `ai "novice" { bluff_frequency = 1.5 }`},
		{"think range inverted", `lobby { ai_think_min = "3s" }`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse([]byte(tt.src), "test.hcl")
			assert.Error(t, err)
		})
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()
	cfg := Default()
	cfg.Server.Port = 0
	assert.ErrorContains(t, cfg.Validate(), "invalid port")

	cfg = Default()
	cfg.Lobby.BigBlind = cfg.Lobby.SmallBlind
	assert.ErrorContains(t, cfg.Validate(), "big blind")

	cfg = Default()
	cfg.History.Enabled = true
	cfg.History.Dir = ""
	assert.ErrorContains(t, cfg.Validate(), "history dir")
}
