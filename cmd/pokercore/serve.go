package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/orbitdash/pokercore/cmd/pokercore/shared"
	"github.com/orbitdash/pokercore/internal/config"
	"github.com/orbitdash/pokercore/internal/handhistory"
	"github.com/orbitdash/pokercore/internal/ledger"
	"github.com/orbitdash/pokercore/internal/lobby"
	"github.com/orbitdash/pokercore/internal/randutil"
	"github.com/orbitdash/pokercore/internal/server"
)

// ServeCmd runs the HTTP and websocket server. Flags override the config
// file.
type ServeCmd struct {
	Config   string `kong:"short='c',default='pokercore.hcl',help='HCL config file (missing file uses defaults)'"`
	Addr     string `kong:"help='Listen address, overrides server.address'"`
	Port     int    `kong:"help='Listen port, overrides server.port'"`
	LogLevel string `kong:"help='Log level (debug|info|warn|error)'"`
	JSONLogs bool   `kong:"help='Emit structured JSON logs'"`
	Database string `kong:"help='Ledger driver (memory|sqlite|postgres)'"`
	DSN      string `kong:"help='Ledger data source name'"`
	History  *bool  `kong:"help='Write PHH hand histories'"`
	Seed     *int64 `kong:"help='Deterministic RNG seed (optional)'"`
}

func (c *ServeCmd) Run() error {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return err
	}
	c.override(cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, err := shared.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		return err
	}
	logger := shared.SetupLogger(level)
	if c.JSONLogs {
		logger = shared.SetupStructuredLogger(level)
	}
	ctx, stop := shared.SignalContext(context.Background(), logger)
	defer stop()

	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error().Err(err).Msg("Failed to close ledger")
		}
	}()

	rng := randutil.Secure()
	if c.Seed != nil {
		logger.Info().Int64("seed", *c.Seed).Msg("Using deterministic seed")
		rng = randutil.New(*c.Seed)
	}
	opts := []lobby.Option{lobby.WithLogger(logger), lobby.WithRNG(rng)}

	if cfg.History.Enabled {
		rec, err := handhistory.NewRecorder(handhistory.Config{
			Dir:              cfg.History.Dir,
			FlushInterval:    cfg.History.FlushInterval,
			IncludeHoleCards: cfg.History.IncludeHoleCards,
		}, logger)
		if err != nil {
			return err
		}
		defer func() {
			if err := rec.Close(); err != nil {
				logger.Error().Err(err).Msg("Failed to flush hand histories")
			}
		}()
		opts = append(opts, lobby.WithRecorder(rec))
	}

	manager := lobby.NewManager(lobbyConfig(cfg), store, opts...)
	srv, err := server.New(manager, server.Options{AllowedOrigins: cfg.Server.AllowedOrigins}, logger)
	if err != nil {
		return err
	}

	logger.Info().
		Str("address", cfg.ListenAddress()).
		Str("database", cfg.Database.Driver).
		Ints("buy_ins", cfg.Lobby.BuyIns).
		Int("small_blind", cfg.Lobby.SmallBlind).
		Int("big_blind", cfg.Lobby.BigBlind).
		Dur("turn_timeout", cfg.Lobby.TurnTimeout).
		Bool("hand_history", cfg.History.Enabled).
		Msg("Starting pokercore server")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.ListenAndServe(gctx, cfg.ListenAddress())
	})
	err = g.Wait()

	// Tables are closed after the listener so every seat is paid back out.
	closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return errors.Join(err, manager.Close(closeCtx))
}

func (c *ServeCmd) override(cfg *config.Config) {
	if c.Addr != "" {
		cfg.Server.Address = c.Addr
	}
	if c.Port != 0 {
		cfg.Server.Port = c.Port
	}
	if c.LogLevel != "" {
		cfg.Server.LogLevel = c.LogLevel
	}
	if c.Database != "" {
		cfg.Database.Driver = c.Database
	}
	if c.DSN != "" {
		cfg.Database.DSN = c.DSN
	}
	if c.History != nil {
		cfg.History.Enabled = *c.History
	}
}

func lobbyConfig(cfg *config.Config) lobby.Config {
	return lobby.Config{
		BuyIns:        cfg.Lobby.BuyIns,
		SmallBlind:    cfg.Lobby.SmallBlind,
		BigBlind:      cfg.Lobby.BigBlind,
		TurnTimeout:   cfg.Lobby.TurnTimeout,
		NextHandDelay: cfg.Lobby.NextHandDelay,
		AIThinkMin:    cfg.Lobby.AIThinkMin,
		AIThinkMax:    cfg.Lobby.AIThinkMax,
		Profiles:      cfg.Profiles,
	}
}

func openStore(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (ledger.Store, error) {
	opts := ledger.Options{
		StartingBalance: cfg.Lobby.StartingBalance,
		MinBalance:      cfg.Lobby.MinBalance,
	}
	if cfg.Database.Driver == "memory" {
		logger.Warn().Msg("Using in-memory ledger; balances are lost on restart")
		return ledger.NewMemoryStore(opts), nil
	}
	dialect, err := ledger.ParseDialect(cfg.Database.Driver)
	if err != nil {
		return nil, err
	}
	store, err := ledger.OpenSQL(ctx, dialect, cfg.Database.DSN, opts, logger)
	if err != nil {
		return nil, fmt.Errorf("open %s ledger: %w", dialect, err)
	}
	return store, nil
}
