// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Riiina Works

package main

import (
	"context"
	"fmt"

	"github.com/riiiiiiiiiina0/nenya-sync/internal/adapter"
	"github.com/riiiiiiiiiina0/nenya-sync/internal/config"
	"github.com/riiiiiiiiiina0/nenya-sync/internal/identity"
	"github.com/riiiiiiiiiina0/nenya-sync/internal/logger"
	"github.com/riiiiiiiiiina0/nenya-sync/internal/service"
	"github.com/riiiiiiiiiina0/nenya-sync/internal/settings"
	"github.com/riiiiiiiiiina0/nenya-sync/internal/tui"
	"github.com/riiiiiiiiiina0/nenya-sync/internal/workers"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	log := logger.NewClientLogger("nenya-sync")
	cfg, err := config.GetClientConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}

	ctx := context.Background()

	db, err := settings.NewConnectSQLite(ctx, cfg.Storage.DB, log)
	if err != nil {
		log.Fatal().Err(err).Msg("open local settings database")
	}
	defer db.Close()

	if err = db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("migrate local settings database")
	}

	repo := settings.NewRepository(db, log)
	store := settings.NewStore(repo, settings.NewRegistry(), log)

	actor, err := identity.NewManager(repo, log).GetOrCreate(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("resolve device identity")
	}
	log.Info().Str("device", actor.ID).Msg("device identity resolved")

	items := adapter.NewNoteStoreAdapter(adapter.HTTPClientConfig{
		BaseURL: cfg.Remote.BaseURL,
		Token:   cfg.Remote.Token,
		Timeout: cfg.Remote.RequestTimeout,
	}, log)

	services := service.NewServices(cfg, store, repo, items, actor, log)
	defer services.Close()

	if cfg.Workers.SyncMode == config.SyncModeMerge {
		ws := workers.NewWorkers(
			workers.NewSyncJobWorker(ctx, services.SyncJob, cfg.Workers.SyncInterval),
		)
		ws.Run()
		defer ws.Stop()
	}

	ui, err := tui.New(services, actor, cfg.Workers.SyncMode, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating ui")
	}

	if err = ui.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("ui run error")
	}
}

func printBuildInfo() {
	if buildVersion == "" {
		buildVersion = "N/A"
	}
	if buildDate == "" {
		buildDate = "N/A"
	}
	if buildCommit == "" {
		buildCommit = "N/A"
	}

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)
}
