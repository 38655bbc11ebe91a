// Copyright 2026 The modelconsole Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	json "github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/whisperdeck/modelconsole/internal/catalog"
)

const (
	wsWriteTimeout = 10 * time.Second
	wsPingInterval = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// The console binds to loopback; cross-origin pages may still open
	// sockets against it, so same-host checks are left to the browser's
	// default origin header handling.
	CheckOrigin: func(*http.Request) bool { return true },
}

// handleEvents upgrades to a websocket and streams coordinator transitions.
// On connect the current state, catalog and selection are replayed so late
// subscribers converge immediately.
func (s *Server) handleEvents(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		requestLogger(c).WithError(err).Warn("Websocket upgrade failed")
		return
	}
	defer conn.Close()

	logger := requestLogger(c)
	logger.Debug("Event subscriber connected")

	events, cancel := s.store.Subscribe(64)
	defer cancel()

	writeEvent := func(ev catalog.Event) error {
		payload, err := json.Marshal(ev)
		if err != nil {
			return err
		}
		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		return conn.WriteMessage(websocket.TextMessage, payload)
	}

	// Replay current state for the new subscriber.
	st := s.store.State()
	snap := s.store.Snapshot()
	sel := s.store.Selection()
	for _, ev := range []catalog.Event{
		{Type: "state", State: &st},
		{Type: "catalog", Catalog: &snap},
		{Type: "selection", Selection: &sel},
	} {
		if err := writeEvent(ev); err != nil {
			return
		}
	}

	// Reader goroutine: the client sends nothing meaningful, but reads are
	// required to notice closure.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(wsPingInterval)
	defer ping.Stop()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := writeEvent(ev); err != nil {
				logger.WithError(err).Debug("Event subscriber write failed")
				return
			}
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			logger.Debug("Event subscriber disconnected")
			return
		}
	}
}
