// Copyright 2026 The modelconsole Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package api exposes the console's HTTP surface: the view-layer read side of
// the coordinator state plus the mutating settings operations, and a
// websocket stream of coordinator transitions.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/whisperdeck/modelconsole/internal/buildinfo"
	"github.com/whisperdeck/modelconsole/internal/catalog"
	"github.com/whisperdeck/modelconsole/internal/config"
	"github.com/whisperdeck/modelconsole/internal/inventory"
	"github.com/whisperdeck/modelconsole/internal/provider"
	"github.com/whisperdeck/modelconsole/internal/secret"
)

// Server wires the console handlers onto a gin engine.
type Server struct {
	cfg    *config.Config
	board  *provider.Switchboard
	store  *catalog.Store
	inv    *inventory.Client
	creds  *secret.Resolver
	engine *gin.Engine
}

// NewServer builds the HTTP surface. The caller owns the listener lifecycle.
func NewServer(cfg *config.Config, board *provider.Switchboard, store *catalog.Store, inv *inventory.Client, creds *secret.Resolver) *Server {
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		cfg:   cfg,
		board: board,
		store: store,
		inv:   inv,
		creds: creds,
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), RequestID())

	v1 := engine.Group("/v1")
	v1.GET("/version", s.handleVersion)
	v1.GET("/events", s.handleEvents)

	protected := v1.Group("")
	protected.Use(ManagementAuth(cfg))
	{
		protected.GET("/state", s.handleState)
		protected.GET("/catalog", s.handleCatalog)
		protected.POST("/catalog/refresh", s.handleRefresh)
		protected.GET("/providers", s.handleProviders)
		protected.PUT("/settings/endpoint", s.handleSetEndpoint)
		protected.PUT("/settings/apikey", s.handleSetAPIKey)
		protected.PUT("/mode", s.handleSetMode)
		protected.PUT("/provider", s.handleSetProvider)
		protected.PUT("/selection", s.handleSetSelection)
		protected.GET("/local/models", s.handleLocalModels)
		protected.GET("/local/capability", s.handleLocalCapability)
		protected.POST("/local/pull", s.handleLocalPull)
	}

	s.engine = engine
	return s
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) handleVersion(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"version":    buildinfo.Version,
		"commit":     buildinfo.Commit,
		"build_date": buildinfo.BuildDate,
	})
}
