// Copyright 2026 The modelconsole Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package secret resolves the bearer credential attached to catalog requests.
// The in-memory key entered on the configuration surface always wins; a
// stored key is consulted only when no in-memory key is set. Nothing in this
// package persists credentials.
package secret

import (
	"context"
	"os"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"
)

// Store is the external secret-store collaborator. Implementations are
// read-only lookups keyed by provider id.
type Store interface {
	// GetStoredKey returns the stored API key for the given provider, or ""
	// when no key is stored.
	GetStoredKey(ctx context.Context, provider string) (string, error)
}

// GetEnv returns the value of the environment variable named by the key,
// or fallback if the variable is not present.
func GetEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// EnvStore looks up stored keys from process environment variables named
// <PROVIDER>_API_KEY (provider upper-cased, dashes mapped to underscores).
type EnvStore struct{}

// GetStoredKey implements Store.
func (EnvStore) GetStoredKey(_ context.Context, provider string) (string, error) {
	if provider == "" {
		return "", nil
	}
	name := strings.ToUpper(strings.ReplaceAll(provider, "-", "_")) + "_API_KEY"
	return GetEnv(name, ""), nil
}

// Resolver combines the in-memory key held by the configuration surface with
// a Store fallback. It is safe for concurrent use.
type Resolver struct {
	mu       sync.RWMutex
	inMemory string
	provider string
	store    Store
}

// NewResolver creates a resolver bound to one provider id and its store.
func NewResolver(provider string, store Store) *Resolver {
	return &Resolver{provider: provider, store: store}
}

// SetKey replaces the in-memory key. An empty or blank value clears it, which
// re-enables the stored-key fallback.
func (r *Resolver) SetKey(key string) {
	r.mu.Lock()
	r.inMemory = strings.TrimSpace(key)
	r.mu.Unlock()
}

// SetProvider rebinds the resolver to a different provider id for stored-key
// lookups.
func (r *Resolver) SetProvider(provider string) {
	r.mu.Lock()
	r.provider = provider
	r.mu.Unlock()
}

// Resolve returns the credential to attach to the next catalog request, or ""
// when neither an in-memory nor a stored key is available. A store lookup
// failure degrades to an anonymous request.
func (r *Resolver) Resolve(ctx context.Context) (string, error) {
	r.mu.RLock()
	inMemory := r.inMemory
	provider := r.provider
	store := r.store
	r.mu.RUnlock()

	if inMemory != "" {
		return inMemory, nil
	}
	if store == nil {
		return "", nil
	}
	key, err := store.GetStoredKey(ctx, provider)
	if err != nil {
		log.WithError(err).WithField("provider", provider).Warn("Stored key lookup failed")
		return "", err
	}
	return strings.TrimSpace(key), nil
}
