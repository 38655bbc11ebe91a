// Copyright 2026 The modelconsole Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	json "github.com/goccy/go-json"

	"github.com/whisperdeck/modelconsole/internal/catalog"
	"github.com/whisperdeck/modelconsole/internal/endpoint"
	"github.com/whisperdeck/modelconsole/internal/inventory"
	"github.com/whisperdeck/modelconsole/internal/provider"
)

// stateResponse is the console's aggregate read model.
type stateResponse struct {
	Fetch       catalog.State   `json:"fetch"`
	FailureText string          `json:"failure_text,omitempty"`
	Switchboard provider.Status `json:"switchboard"`
}

func (s *Server) handleState(c *gin.Context) {
	st := s.store.State()
	resp := stateResponse{
		Fetch:       st,
		Switchboard: s.board.Status(),
	}
	if st.Failure != nil {
		resp.FailureText = st.Failure.Humanize()
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleCatalog(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.Snapshot())
}

func (s *Server) handleRefresh(c *gin.Context) {
	var req struct {
		Force bool `json:"force"`
	}
	// An empty body means a plain non-forced refresh.
	_ = c.ShouldBindJSON(&req)

	s.board.Refresh(req.Force)
	c.JSON(http.StatusAccepted, gin.H{"status": "refreshing"})
}

func (s *Server) handleProviders(c *gin.Context) {
	tables := s.board.Tables()
	c.JSON(http.StatusOK, gin.H{
		"cloud": tables.Cloud,
		"local": tables.Local,
	})
}

func (s *Server) handleSetEndpoint(c *gin.Context) {
	var req struct {
		Endpoint string `json:"endpoint"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": err.Error()})
		return
	}

	normalized := s.board.SetEndpoint(req.Endpoint)
	requestLogger(c).WithField("endpoint", normalized).Info("Endpoint updated")

	resp := gin.H{"endpoint": normalized}
	if err := endpoint.Validate(normalized); err != nil {
		// The fetch itself reports the classified failure; this is an early
		// hint for the surface.
		resp["warning"] = err.Error()
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleSetAPIKey(c *gin.Context) {
	var req struct {
		Key string `json:"key"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": err.Error()})
		return
	}

	s.creds.SetKey(req.Key)
	requestLogger(c).Info("In-memory API key updated")
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleSetMode(c *gin.Context) {
	var req struct {
		Mode string `json:"mode"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": err.Error()})
		return
	}

	if err := s.board.SetMode(c.Request.Context(), provider.Mode(req.Mode)); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_mode", "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, s.board.Status())
}

func (s *Server) handleSetProvider(c *gin.Context) {
	var req struct {
		Scope string `json:"scope"`
		ID    string `json:"id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": err.Error()})
		return
	}

	var err error
	switch req.Scope {
	case "cloud", "":
		err = s.board.SetCloudProvider(c.Request.Context(), req.ID)
	case "local":
		err = s.board.SetLocalProvider(c.Request.Context(), req.ID)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_scope", "message": "scope must be cloud or local"})
		return
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_provider", "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, s.board.Status())
}

func (s *Server) handleSetSelection(c *gin.Context) {
	var req struct {
		Model string `json:"model"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": err.Error()})
		return
	}

	s.board.SetSelection(req.Model)
	c.JSON(http.StatusOK, gin.H{"selection": s.store.Selection()})
}

func (s *Server) handleLocalModels(c *gin.Context) {
	models, err := s.inv.ListLocalModels(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "inventory_unavailable", "message": err.Error()})
		return
	}
	if models == nil {
		models = []inventory.Model{}
	}
	c.JSON(http.StatusOK, gin.H{"models": models})
}

func (s *Server) handleLocalCapability(c *gin.Context) {
	c.JSON(http.StatusOK, s.inv.Probe(c.Request.Context()))
}

// handleLocalPull streams download progress as newline-delimited JSON.
func (s *Server) handleLocalPull(c *gin.Context) {
	var req struct {
		Model string `json:"model"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Model == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": "model is required"})
		return
	}

	logger := requestLogger(c).WithField("model", req.Model)
	logger.Info("Starting local model pull")

	c.Header("Content-Type", "application/x-ndjson")
	c.Status(http.StatusOK)
	enc := json.NewEncoder(c.Writer)

	writeLine := func(v any) {
		_ = enc.Encode(v)
		c.Writer.Flush()
	}

	err := s.inv.Pull(c.Request.Context(), req.Model, func(p inventory.PullProgress) {
		writeLine(p)
	})
	if err != nil {
		logger.WithError(err).Warn("Local model pull failed")
		writeLine(gin.H{"error": err.Error()})
		return
	}
	logger.Info("Local model pull complete")
	writeLine(gin.H{"status": "done"})
}
