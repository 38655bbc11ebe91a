// Copyright 2026 The modelconsole Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/whisperdeck/modelconsole/internal/config"
)

// RequestID tags every request with a short id carried through log fields.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := uuid.NewString()[:8]
		c.Set("request_id", id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

// requestLogger returns a logrus entry carrying the request id.
func requestLogger(c *gin.Context) *log.Entry {
	id, _ := c.Get("request_id")
	return log.WithField("request_id", id)
}

// ManagementAuth rejects requests without the configured management key.
// With no key configured, authentication is disabled.
func ManagementAuth(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.ManagementKey == "" {
			c.Next()
			return
		}

		key := c.GetHeader("X-Management-Key")
		if key == "" {
			if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, "Bearer ") {
				key = strings.TrimPrefix(auth, "Bearer ")
			}
		}

		if !cfg.CheckManagementKey(key) {
			requestLogger(c).WithField("path", c.FullPath()).Warn("Rejected request with bad management key")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "missing or invalid management key",
			})
			return
		}
		c.Next()
	}
}
