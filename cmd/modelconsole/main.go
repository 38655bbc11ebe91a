// Copyright 2026 The modelconsole Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package main provides the entry point for the modelconsole server, the
// configuration surface that resolves remote reasoning-model catalogs and
// keeps the selected model consistent with them.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/skratchdot/open-golang/open"

	"github.com/whisperdeck/modelconsole/internal/api"
	"github.com/whisperdeck/modelconsole/internal/buildinfo"
	"github.com/whisperdeck/modelconsole/internal/catalog"
	"github.com/whisperdeck/modelconsole/internal/config"
	"github.com/whisperdeck/modelconsole/internal/endpoint"
	"github.com/whisperdeck/modelconsole/internal/inventory"
	"github.com/whisperdeck/modelconsole/internal/logging"
	"github.com/whisperdeck/modelconsole/internal/provider"
	"github.com/whisperdeck/modelconsole/internal/secret"
	"github.com/whisperdeck/modelconsole/internal/settings"
)

var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

// init initializes the shared logger setup.
func init() {
	logging.SetupBaseLogger()
	buildinfo.Version = Version
	buildinfo.Commit = Commit
	buildinfo.BuildDate = BuildDate
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(home, ".modelconsole", "config.yaml")
}

func main() {
	configPath := flag.String("config", defaultConfigPath(), "path to the YAML configuration file")
	openBrowser := flag.Bool("open", false, "open the console URL in the default browser after startup")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("modelconsole %s (%s, built %s)\n", buildinfo.Version, buildinfo.Commit, buildinfo.BuildDate)
		return
	}

	// Optional .env next to the working directory; absence is fine.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.WithError(err).Fatal("Failed to load configuration")
	}

	logging.SetDebug(cfg.Debug)
	if err := logging.ConfigureLogOutput(cfg.LoggingToFile, cfg.LogDir); err != nil {
		log.WithError(err).Fatal("Failed to configure log output")
	}

	log.WithField("version", buildinfo.Version).Info("Starting modelconsole")

	store, err := settings.NewStore(cfg.SettingsFile)
	if err != nil {
		log.WithError(err).Fatal("Failed to open settings store")
	}

	tables := provider.DefaultTables()
	tables.DefaultEndpoint = endpoint.Normalize(cfg.DefaultEndpoint)

	consoleState := catalog.NewStore()
	creds := secret.NewResolver(tables.CustomID(), secret.EnvStore{})
	fetcher := catalog.NewFetcher(consoleState, creds)
	defer fetcher.Close()

	inv := inventory.NewClient(cfg.Ollama.BaseURL)
	board := provider.New(tables, consoleState, fetcher, inv, store)
	board.BindCredentials(creds)

	restoreCtx, cancelRestore := context.WithTimeout(context.Background(), 10*time.Second)
	board.Restore(restoreCtx,
		provider.Mode(store.Get(provider.KeyMode)),
		store.Get(provider.KeyCloudProvider),
		store.Get(provider.KeyLocalProvider),
		store.Get(provider.KeyEndpoint),
		store.Get(provider.KeySelectedModel),
	)
	cancelRestore()

	// External edits of the settings file re-arm the fetcher.
	watcher, err := settings.Watch(store.Path(), func() {
		persisted := endpoint.Normalize(store.Get(provider.KeyEndpoint))
		if persisted != board.Status().Endpoint {
			log.WithField("endpoint", persisted).Info("Endpoint changed on disk, re-arming fetch")
			board.SetEndpoint(persisted)
		}
	})
	if err != nil {
		log.WithError(err).Warn("Settings watcher unavailable")
	} else {
		defer watcher.Close()
	}

	server := api.NewServer(cfg, board, consoleState, inv, creds)
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithField("addr", addr).Info("Console API listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("HTTP server failed")
		}
	}()

	if *openBrowser {
		url := fmt.Sprintf("http://%s/v1/state", addr)
		if err := open.Run(url); err != nil {
			log.WithError(err).Warn("Could not open browser")
		}
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("Forced shutdown")
	}
}
