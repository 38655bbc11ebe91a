// Copyright 2026 The modelconsole Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package catalog

import (
	"context"
	"io"
	"net/http"
	"sync"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/whisperdeck/modelconsole/internal/buildinfo"
	"github.com/whisperdeck/modelconsole/internal/endpoint"
)

// maxBodySize bounds how much of a /models response is read.
const maxBodySize = 10 * 1024 * 1024

// CredentialResolver supplies the bearer token for catalog requests. An empty
// token means the request goes out anonymous.
type CredentialResolver interface {
	Resolve(ctx context.Context) (string, error)
}

// Fetcher coordinates asynchronous catalog fetches against the single current
// endpoint. Rapid retargeting is handled by a "current intent" register:
// a request's result is applied iff, at completion time, the latest requested
// target still equals the target that request was issued for. Superseded
// results are discarded silently. There is no network-level cancellation;
// a superseded request simply loses the publication race.
type Fetcher struct {
	store  *Store
	creds  CredentialResolver
	client *http.Client

	mu           sync.Mutex
	latestTarget string
	pending      map[string]int
	loadedTarget string
	closed       bool
}

// NewFetcher creates a fetcher publishing into store. The HTTP client carries
// no timeout: a hung request leaves its target pending until the user
// retargets or retries, matching the surface's observed behavior.
func NewFetcher(store *Store, creds CredentialResolver) *Fetcher {
	return &Fetcher{
		store:   store,
		creds:   creds,
		client:  &http.Client{},
		pending: make(map[string]int),
	}
}

// Close marks the owning surface as torn down. After Close no further state
// is published; in-flight requests run to completion and are discarded.
func (f *Fetcher) Close() {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
}

// Load requests the catalog for target. It is fire-and-forget: observable
// effects are state transitions published into the store.
//
// Unless force is set, a target that is already loaded or already in flight
// is a no-op, so re-renders and repeated triggers for an unchanged target
// issue no network calls.
func (f *Fetcher) Load(target string, force bool) {
	target = endpoint.Normalize(target)

	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	if target == "" {
		f.latestTarget = ""
		f.loadedTarget = ""
		f.store.setIdle()
		f.mu.Unlock()
		return
	}
	if !force && f.loadedTarget == target {
		f.mu.Unlock()
		log.WithField("target", target).Debug("Catalog already loaded, skipping fetch")
		return
	}
	if !force && f.pending[target] > 0 {
		f.mu.Unlock()
		log.WithField("target", target).Debug("Fetch already in flight, skipping")
		return
	}
	f.latestTarget = target
	f.pending[target]++
	// Published under the mutex: the intent register and the pending
	// transition must move together, or a preempted older Load could
	// publish Pending over a newer target's completed state.
	f.store.setPending(target)
	f.mu.Unlock()

	go f.fetch(target, force)
}

// fetch performs one catalog request for target. Every publication is gated
// on target still being the latest requested one.
func (f *Fetcher) fetch(target string, force bool) {
	attempt := uuid.NewString()[:8]
	logger := log.WithField("target", target).WithField("attempt", attempt)

	defer func() {
		f.mu.Lock()
		f.pending[target]--
		if f.pending[target] <= 0 {
			delete(f.pending, target)
		}
		f.mu.Unlock()
	}()

	ctx := context.Background()

	token, err := f.creds.Resolve(ctx)
	if err != nil {
		// Degrade to an anonymous request; the server decides whether that
		// is acceptable.
		token = ""
	}
	credentialed := token != ""

	if err := endpoint.Validate(target); err != nil {
		logger.WithError(err).Warn("Endpoint rejected by validation")
		f.publishFailure(target, &Failure{
			Kind:         FailureInvalidEndpoint,
			Message:      err.Error(),
			Credentialed: credentialed,
		})
		return
	}

	logger.WithField("force", force).Debug("Fetching model catalog")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target+"/models", nil)
	if err != nil {
		f.publishFailure(target, &Failure{
			Kind:         FailureNetwork,
			Message:      err.Error(),
			Credentialed: credentialed,
		})
		return
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "modelconsole/"+buildinfo.Version)
	if credentialed {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		logger.WithError(err).Warn("Catalog request failed at transport level")
		f.publishFailure(target, &Failure{
			Kind:         FailureNetwork,
			Message:      err.Error(),
			Credentialed: credentialed,
		})
		return
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		f.publishFailure(target, &Failure{
			Kind:         FailureNetwork,
			Message:      err.Error(),
			Credentialed: credentialed,
		})
		return
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		kind := FailureHTTP
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			kind = FailureAuth
		}
		logger.WithField("status", resp.StatusCode).Warn("Catalog request rejected by server")
		f.publishFailure(target, &Failure{
			Kind:         kind,
			Status:       resp.StatusCode,
			Message:      bodyExcerpt(body),
			Credentialed: credentialed,
		})
		return
	}

	entries := ParseEntries(body)
	logger.WithField("count", len(entries)).Info("Model catalog loaded")
	f.publishLoaded(target, Snapshot{Endpoint: target, Entries: entries})
}

// publishFailure records a classified failure unless the result is stale or
// the surface is torn down, in which case it is dropped without surfacing:
// showing it would describe an endpoint the user already abandoned.
func (f *Fetcher) publishFailure(target string, failure *Failure) {
	f.mu.Lock()
	apply := !f.closed && f.latestTarget == target
	f.mu.Unlock()

	if !apply {
		log.WithField("target", target).Debug("Discarding stale fetch failure")
		return
	}
	f.store.setFailed(target, failure)
}

// publishLoaded publishes a fresh snapshot under the same staleness gate and
// records the target as successfully loaded.
func (f *Fetcher) publishLoaded(target string, snap Snapshot) {
	f.mu.Lock()
	apply := !f.closed && f.latestTarget == target
	if apply {
		f.loadedTarget = target
	}
	f.mu.Unlock()

	if !apply {
		log.WithField("target", target).Debug("Discarding stale catalog snapshot")
		return
	}
	f.store.setLoaded(snap)
}
