package main

import (
	"context"
	"os"

	"github.com/desertthunder/scx/internal/api"
	"github.com/desertthunder/scx/internal/auth"
	"github.com/desertthunder/scx/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		}
	}

	store := auth.NewFileTokenStore(config.SoundCloud.TokenPath)
	session := auth.NewSession(store, logger)
	if err := session.Restore(); err != nil {
		logger.Warn("could not restore persisted credential", "err", err)
	}

	client := api.NewClient(config.SoundCloud.APIBaseURL, session, nil, logger)

	runner := NewRunner(RunnerOpts{
		Config:  config,
		Session: session,
		Store:   store,
		API:     client,
		Logger:  logger,
	})

	app := &cli.Command{
		Name:     "scx",
		Usage:    "SoundCloud session client: auth, search, favorites & downloads",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Fatalf("application error: %v", err)
	}
}
