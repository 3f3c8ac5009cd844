// Package main is the windowed sandbox: a tiled procedural terrain with a
// first-person camera.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"go.uber.org/zap"

	"github.com/Faultbox/untitled-sandbox/internal/config"
	"github.com/Faultbox/untitled-sandbox/internal/game"
	"github.com/Faultbox/untitled-sandbox/internal/logger"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	// Parse CLI flags
	config.ParseFlags()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== Untitled Sandbox ===",
		zap.String("algorithm", cfg.Terrain.Algorithm),
		zap.Int("tiles", cfg.Terrain.NumTiles),
		zap.Int("tile_size", cfg.Terrain.TileSize),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, err := game.New(ctx, cfg)
	if err != nil {
		logger.Error("startup failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
	defer g.Close()

	if err := g.Run(ctx); err != nil {
		logger.Error("game loop failed", zap.Error(err))
	}
	logger.Info("goodbye")
}
