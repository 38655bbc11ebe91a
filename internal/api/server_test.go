// Copyright 2026 The modelconsole Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package api

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/whisperdeck/modelconsole/internal/catalog"
	"github.com/whisperdeck/modelconsole/internal/config"
	"github.com/whisperdeck/modelconsole/internal/inventory"
	"github.com/whisperdeck/modelconsole/internal/provider"
	"github.com/whisperdeck/modelconsole/internal/secret"
)

type testConsole struct {
	server  *Server
	store   *catalog.Store
	board   *provider.Switchboard
	fetcher *catalog.Fetcher
}

func newTestConsole(t *testing.T, cfg *config.Config, ollamaURL string) *testConsole {
	t.Helper()
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	store := catalog.NewStore()
	creds := secret.NewResolver("custom", secret.EnvStore{})
	fetcher := catalog.NewFetcher(store, creds)
	t.Cleanup(fetcher.Close)

	inv := inventory.NewClient(ollamaURL)
	board := provider.New(provider.DefaultTables(), store, fetcher, inv, nil)
	board.BindCredentials(creds)

	return &testConsole{
		server:  NewServer(cfg, board, store, inv, creds),
		store:   store,
		board:   board,
		fetcher: fetcher,
	}
}

func (tc *testConsole) do(t *testing.T, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body == "" {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader([]byte(body))
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	tc.server.engine.ServeHTTP(rec, req)
	return rec
}

func TestVersionEndpoint(t *testing.T) {
	tc := newTestConsole(t, nil, "")
	rec := tc.do(t, http.MethodGet, "/v1/version", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "dev", gjson.Get(rec.Body.String(), "version").String())
}

func TestStateEndpoint(t *testing.T) {
	tc := newTestConsole(t, nil, "")
	rec := tc.do(t, http.MethodGet, "/v1/state", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Equal(t, "idle", gjson.Get(body, "fetch.phase").String())
	assert.Equal(t, "cloud", gjson.Get(body, "switchboard.mode").String())
}

func TestSetEndpointArmsFetch(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data": [{"id": "m1"}]}`))
	}))
	defer backend.Close()

	tc := newTestConsole(t, nil, "")

	rec := tc.do(t, http.MethodPut, "/v1/provider", `{"scope": "cloud", "id": "custom"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = tc.do(t, http.MethodPut, "/v1/settings/endpoint", `{"endpoint": "`+backend.URL+`/"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, backend.URL, gjson.Get(rec.Body.String(), "endpoint").String())

	require.Eventually(t, func() bool {
		return tc.store.State().Phase == catalog.PhaseLoaded
	}, 2*time.Second, 5*time.Millisecond)

	rec = tc.do(t, http.MethodGet, "/v1/catalog", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "m1", gjson.Get(rec.Body.String(), "entries.0.id").String())
}

func TestSetEndpointWarnsOnInsecureURL(t *testing.T) {
	tc := newTestConsole(t, nil, "")
	tc.do(t, http.MethodPut, "/v1/provider", `{"scope": "cloud", "id": "custom"}`, nil)

	rec := tc.do(t, http.MethodPut, "/v1/settings/endpoint", `{"endpoint": "http://example.com/v1"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, gjson.Get(rec.Body.String(), "warning").String(), "https")
}

func TestRefreshEndpoint(t *testing.T) {
	tc := newTestConsole(t, nil, "")
	rec := tc.do(t, http.MethodPost, "/v1/catalog/refresh", `{"force": true}`, nil)
	assert.Equal(t, http.StatusAccepted, rec.Code)
}

func TestModeValidation(t *testing.T) {
	tc := newTestConsole(t, nil, "")
	rec := tc.do(t, http.MethodPut, "/v1/mode", `{"mode": "hybrid"}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSelectionEndpoint(t *testing.T) {
	tc := newTestConsole(t, nil, "")
	rec := tc.do(t, http.MethodPut, "/v1/selection", `{"model": "gpt-4.1"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "gpt-4.1", tc.store.Selection())
}

func TestProvidersEndpoint(t *testing.T) {
	tc := newTestConsole(t, nil, "")
	rec := tc.do(t, http.MethodGet, "/v1/providers", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, gjson.Get(rec.Body.String(), "cloud.#").Int() > 0)
}

func TestLocalModelsEndpoint(t *testing.T) {
	ollama := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/tags", r.URL.Path)
		_, _ = w.Write([]byte(`{"models": [{"name": "llama3:8b"}]}`))
	}))
	defer ollama.Close()

	tc := newTestConsole(t, nil, ollama.URL)
	rec := tc.do(t, http.MethodGet, "/v1/local/models", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "llama3:8b", gjson.Get(rec.Body.String(), "models.0.id").String())
}

func TestManagementAuth(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.ManagementKey = "hunter2"
	cfg.Sanitize() // hashes the key

	tc := newTestConsole(t, cfg, "")

	rec := tc.do(t, http.MethodGet, "/v1/state", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = tc.do(t, http.MethodGet, "/v1/state", "", map[string]string{"X-Management-Key": "hunter2"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = tc.do(t, http.MethodGet, "/v1/state", "", map[string]string{"Authorization": "Bearer hunter2"})
	assert.Equal(t, http.StatusOK, rec.Code)

	// Version stays open for health checks.
	rec = tc.do(t, http.MethodGet, "/v1/version", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestEventStream(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data": [{"id": "m1"}]}`))
	}))
	defer backend.Close()

	tc := newTestConsole(t, nil, "")
	srv := httptest.NewServer(tc.server.Handler())
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/v1/events"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	// The replay burst: state, catalog, selection.
	for _, want := range []string{"state", "catalog", "selection"} {
		_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, msg, err := conn.ReadMessage()
		require.NoError(t, err)
		assert.Equal(t, want, gjson.GetBytes(msg, "type").String())
	}

	// A live transition reaches the subscriber.
	tc.do(t, http.MethodPut, "/v1/provider", `{"scope": "cloud", "id": "custom"}`, nil)
	tc.do(t, http.MethodPut, "/v1/settings/endpoint", `{"endpoint": "`+backend.URL+`"}`, nil)

	sawLoaded := false
	deadline := time.Now().Add(3 * time.Second)
	for !sawLoaded && time.Now().Before(deadline) {
		_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, msg, err := conn.ReadMessage()
		require.NoError(t, err)
		if gjson.GetBytes(msg, "type").String() == "state" &&
			gjson.GetBytes(msg, "state.phase").String() == "loaded" {
			sawLoaded = true
		}
	}
	assert.True(t, sawLoaded, "subscriber never saw the loaded transition")
}
