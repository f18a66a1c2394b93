// Package config loads the pokercore server configuration from an HCL file.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/orbitdash/pokercore/internal/ai"
	"github.com/orbitdash/pokercore/internal/game"
	"github.com/orbitdash/pokercore/internal/ledger"
)

// Config is the resolved configuration with defaults applied.
type Config struct {
	Server   Server
	Database Database
	Lobby    Lobby
	History  History
	Profiles map[game.Difficulty]ai.Profile
}

// Server holds listener and logging settings.
type Server struct {
	Address  string
	Port     int
	LogLevel string
	// AllowedOrigins limits websocket upgrades; empty allows same-origin only.
	AllowedOrigins []string
}

// Database selects the ledger backend.
type Database struct {
	// Driver is memory, sqlite or postgres.
	Driver string
	DSN    string
}

// Lobby holds table and balance rules.
type Lobby struct {
	BuyIns          []int
	SmallBlind      int
	BigBlind        int
	StartingBalance int
	MinBalance      int
	TurnTimeout     time.Duration
	NextHandDelay   time.Duration
	AIThinkMin      time.Duration
	AIThinkMax      time.Duration
}

// History controls PHH hand history files.
type History struct {
	Enabled          bool
	Dir              string
	IncludeHoleCards bool
	FlushInterval    time.Duration
}

// Default returns the built-in configuration.
func Default() *Config {
	profiles := make(map[game.Difficulty]ai.Profile, len(ai.DefaultProfiles))
	for d, p := range ai.DefaultProfiles {
		profiles[d] = p
	}
	return &Config{
		Server: Server{
			Address:  "localhost",
			Port:     8080,
			LogLevel: "info",
		},
		Database: Database{
			Driver: "memory",
		},
		Lobby: Lobby{
			BuyIns:          []int{50, 100, 250, 500, 1000},
			SmallBlind:      5,
			BigBlind:        10,
			StartingBalance: ledger.DefaultStartingBalance,
			MinBalance:      ledger.DefaultMinBalance,
			TurnTimeout:     30 * time.Second,
			NextHandDelay:   8 * time.Second,
			AIThinkMin:      500 * time.Millisecond,
			AIThinkMax:      1500 * time.Millisecond,
		},
		History: History{
			Dir:           "hand-history",
			FlushInterval: 10 * time.Second,
		},
		Profiles: profiles,
	}
}

// file mirrors the HCL layout. Every attribute is optional and overrides
// the default only when present.
type file struct {
	Server   *serverBlock   `hcl:"server,block"`
	Database *databaseBlock `hcl:"database,block"`
	Lobby    *lobbyBlock    `hcl:"lobby,block"`
	History  *historyBlock  `hcl:"history,block"`
	AI       []aiBlock      `hcl:"ai,block"`
}

type serverBlock struct {
	Address        *string  `hcl:"address,optional"`
	Port           *int     `hcl:"port,optional"`
	LogLevel       *string  `hcl:"log_level,optional"`
	AllowedOrigins []string `hcl:"allowed_origins,optional"`
}

type databaseBlock struct {
	Driver string  `hcl:"driver"`
	DSN    *string `hcl:"dsn,optional"`
}

type lobbyBlock struct {
	BuyIns          []int   `hcl:"buy_ins,optional"`
	SmallBlind      *int    `hcl:"small_blind,optional"`
	BigBlind        *int    `hcl:"big_blind,optional"`
	StartingBalance *int    `hcl:"starting_balance,optional"`
	MinBalance      *int    `hcl:"min_balance,optional"`
	TurnTimeout     *string `hcl:"turn_timeout,optional"`
	NextHandDelay   *string `hcl:"next_hand_delay,optional"`
	AIThinkMin      *string `hcl:"ai_think_min,optional"`
	AIThinkMax      *string `hcl:"ai_think_max,optional"`
}

type historyBlock struct {
	Enabled          *bool   `hcl:"enabled,optional"`
	Dir              *string `hcl:"dir,optional"`
	IncludeHoleCards *bool   `hcl:"include_hole_cards,optional"`
	FlushInterval    *string `hcl:"flush_interval,optional"`
}

type aiBlock struct {
	Difficulty     string   `hcl:"difficulty,label"`
	Aggression     *float64 `hcl:"aggression,optional"`
	BluffFrequency *float64 `hcl:"bluff_frequency,optional"`
	Skill          *float64 `hcl:"skill,optional"`
	CoinModifier   *float64 `hcl:"coin_modifier,optional"`
}

// Load reads the file at path. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	parser := hclparse.NewParser()
	f, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}
	return decode(f)
}

// Parse decodes HCL source; filename is used in diagnostics only.
func Parse(src []byte, filename string) (*Config, error) {
	parser := hclparse.NewParser()
	f, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL: %s", diags.Error())
	}
	return decode(f)
}

func decode(f *hcl.File) (*Config, error) {
	var raw file
	if diags := gohcl.DecodeBody(f.Body, nil, &raw); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}
	cfg := Default()
	if err := raw.apply(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (f *file) apply(cfg *Config) error {
	if s := f.Server; s != nil {
		setIf(&cfg.Server.Address, s.Address)
		setIf(&cfg.Server.Port, s.Port)
		setIf(&cfg.Server.LogLevel, s.LogLevel)
		if s.AllowedOrigins != nil {
			cfg.Server.AllowedOrigins = s.AllowedOrigins
		}
	}
	if d := f.Database; d != nil {
		cfg.Database.Driver = d.Driver
		setIf(&cfg.Database.DSN, d.DSN)
	}
	if l := f.Lobby; l != nil {
		if l.BuyIns != nil {
			cfg.Lobby.BuyIns = l.BuyIns
		}
		setIf(&cfg.Lobby.SmallBlind, l.SmallBlind)
		setIf(&cfg.Lobby.BigBlind, l.BigBlind)
		setIf(&cfg.Lobby.StartingBalance, l.StartingBalance)
		setIf(&cfg.Lobby.MinBalance, l.MinBalance)
		for name, d := range map[string]struct {
			dst *time.Duration
			src *string
		}{
			"turn_timeout":    {&cfg.Lobby.TurnTimeout, l.TurnTimeout},
			"next_hand_delay": {&cfg.Lobby.NextHandDelay, l.NextHandDelay},
			"ai_think_min":    {&cfg.Lobby.AIThinkMin, l.AIThinkMin},
			"ai_think_max":    {&cfg.Lobby.AIThinkMax, l.AIThinkMax},
		} {
			if err := setDuration(d.dst, d.src); err != nil {
				return fmt.Errorf("lobby %s: %w", name, err)
			}
		}
	}
	if h := f.History; h != nil {
		setIf(&cfg.History.Enabled, h.Enabled)
		setIf(&cfg.History.Dir, h.Dir)
		setIf(&cfg.History.IncludeHoleCards, h.IncludeHoleCards)
		if err := setDuration(&cfg.History.FlushInterval, h.FlushInterval); err != nil {
			return fmt.Errorf("history flush_interval: %w", err)
		}
	}
	for _, b := range f.AI {
		d, err := game.ParseDifficulty(b.Difficulty)
		if err != nil {
			return fmt.Errorf("ai block: %w", err)
		}
		p := cfg.Profiles[d]
		setIf(&p.Aggression, b.Aggression)
		setIf(&p.BluffFrequency, b.BluffFrequency)
		setIf(&p.Skill, b.Skill)
		setIf(&p.CoinModifier, b.CoinModifier)
		cfg.Profiles[d] = p
	}
	return nil
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

func setDuration(dst *time.Duration, src *string) error {
	if src == nil {
		return nil
	}
	d, err := time.ParseDuration(*src)
	if err != nil {
		return err
	}
	*dst = d
	return nil
}

var validDrivers = []string{"memory", "sqlite", "postgres"}

var validLogLevels = []string{"trace", "debug", "info", "warn", "error"}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if !slices.Contains(validLogLevels, strings.ToLower(c.Server.LogLevel)) {
		return fmt.Errorf("invalid log level: %s", c.Server.LogLevel)
	}
	if !slices.Contains(validDrivers, c.Database.Driver) {
		return fmt.Errorf("invalid database driver %q (want one of %s)", c.Database.Driver, strings.Join(validDrivers, ", "))
	}
	if c.Database.Driver != "memory" && c.Database.DSN == "" {
		return fmt.Errorf("database driver %s requires a dsn", c.Database.Driver)
	}

	l := c.Lobby
	if l.SmallBlind <= 0 {
		return fmt.Errorf("small blind must be positive")
	}
	if l.BigBlind <= l.SmallBlind {
		return fmt.Errorf("big blind must be greater than small blind")
	}
	if len(l.BuyIns) == 0 {
		return fmt.Errorf("at least one buy-in must be configured")
	}
	for _, b := range l.BuyIns {
		if b < l.BigBlind {
			return fmt.Errorf("buy-in %d below big blind %d", b, l.BigBlind)
		}
	}
	if l.StartingBalance < 0 {
		return fmt.Errorf("starting balance must not be negative")
	}
	if l.MinBalance > 0 {
		return fmt.Errorf("min balance must be zero or negative, got %d", l.MinBalance)
	}
	if l.TurnTimeout <= 0 {
		return fmt.Errorf("turn timeout must be positive")
	}
	if l.NextHandDelay < 0 || l.AIThinkMin < 0 || l.AIThinkMax < l.AIThinkMin {
		return fmt.Errorf("invalid delays: next hand %s, ai think %s..%s", l.NextHandDelay, l.AIThinkMin, l.AIThinkMax)
	}

	if c.History.Enabled && c.History.Dir == "" {
		return fmt.Errorf("history dir is required when history is enabled")
	}
	for d, p := range c.Profiles {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("ai %s: %w", d, err)
		}
	}
	return nil
}

// ListenAddress returns the host:port to listen on.
func (c *Config) ListenAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}
