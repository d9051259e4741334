package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"

	"github.com/samifarahneto/gamecartas/internal/cache"
	"github.com/samifarahneto/gamecartas/internal/server"
	"github.com/samifarahneto/gamecartas/internal/store"
)

var CLI struct {
	Config   string `short:"c" long:"config" default:"gamecartas.hcl" help:"Path to HCL configuration file"`
	Addr     string `short:"a" long:"addr" help:"Listen address (overrides config)"`
	Port     int    `short:"p" long:"port" help:"Listen port (overrides config)"`
	LogLevel string `short:"l" long:"log-level" help:"Log level (overrides config)"`
	NoCache  bool   `long:"no-cache" help:"Disable the Redis snapshot cache"`
}

func main() {
	kctx := kong.Parse(&CLI)

	cfg, err := server.LoadConfig(CLI.Config)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		kctx.Exit(1)
	}

	// Apply command line overrides
	if CLI.Addr != "" {
		cfg.Server.Address = CLI.Addr
	}
	if CLI.Port != 0 {
		cfg.Server.Port = CLI.Port
	}
	if CLI.LogLevel != "" {
		cfg.Server.LogLevel = CLI.LogLevel
	}
	if CLI.NoCache {
		cfg.Cache.Enabled = false
	}

	if err := cfg.Validate(); err != nil {
		fmt.Printf("Invalid configuration: %v\n", err)
		kctx.Exit(1)
	}

	logger := log.New(os.Stderr)
	switch cfg.Server.LogLevel {
	case "debug":
		logger.SetLevel(log.DebugLevel)
	case "info":
		logger.SetLevel(log.InfoLevel)
	case "warn":
		logger.SetLevel(log.WarnLevel)
	case "error":
		logger.SetLevel(log.ErrorLevel)
	default:
		logger.SetLevel(log.InfoLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(cfg.Database.Path)
	if err != nil {
		logger.Error("Failed to open database", "path", cfg.Database.Path, "error", err)
		kctx.Exit(1)
	}
	defer func() { _ = st.Close() }()

	var ca *cache.Cache
	if cfg.Cache.Enabled {
		ca, err = cache.Connect(ctx, cfg.Cache.URL)
		if err != nil {
			logger.Warn("Cache unavailable, continuing without it", "url", cfg.Cache.URL, "error", err)
			ca = nil
		} else {
			defer func() { _ = ca.Close() }()
		}
	}

	logger.Info("Starting gamecartas server",
		"addr", cfg.GetServerAddress(),
		"blinds", fmt.Sprintf("%d/%d", cfg.Game.SmallBlind, cfg.Game.BigBlind),
		"buyIn", cfg.Game.BuyIn)

	srv := server.New(cfg, logger, st, ca)
	if err := srv.Run(ctx); err != nil {
		logger.Error("Server failed", "error", err)
		kctx.Exit(1)
	}
}
