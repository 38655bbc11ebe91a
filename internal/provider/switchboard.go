// Copyright 2026 The modelconsole Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package provider

import (
	"context"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/whisperdeck/modelconsole/internal/catalog"
	"github.com/whisperdeck/modelconsole/internal/endpoint"
	"github.com/whisperdeck/modelconsole/internal/inventory"
)

// Settings keys the switchboard persists through its Persister.
const (
	KeyMode          = "mode"
	KeyCloudProvider = "cloud_provider"
	KeyLocalProvider = "local_provider"
	KeyEndpoint      = "endpoint"
	KeySelectedModel = "selected_model"
)

// CatalogLoader is the catalog fetcher surface the switchboard drives.
type CatalogLoader interface {
	Load(target string, force bool)
}

// LocalInventory lists the models already present on the local runtime.
type LocalInventory interface {
	ListLocalModels(ctx context.Context) ([]inventory.Model, error)
}

// Persister is the external settings collaborator: plain key/value writes.
type Persister interface {
	Put(key, value string) error
}

// CredentialBinder rebinds stored-key lookups when the active provider
// changes.
type CredentialBinder interface {
	SetProvider(provider string)
}

// Status is a point-in-time view of the switchboard for the API layer.
type Status struct {
	Mode              Mode   `json:"mode"`
	CloudProvider     string `json:"cloud_provider"`
	LocalProvider     string `json:"local_provider"`
	ActiveProvider    string `json:"active_provider"`
	Endpoint          string `json:"endpoint,omitempty"`
	EffectiveEndpoint string `json:"effective_endpoint,omitempty"`
	Selection         string `json:"selection,omitempty"`
}

// Switchboard tracks the active provider and mode and decides when the
// catalog fetcher runs. All transitions persist through the Persister; a
// persistence failure is logged and the in-memory transition still applies.
type Switchboard struct {
	tables  Tables
	store   *catalog.Store
	loader  CatalogLoader
	inv     LocalInventory
	persist Persister
	creds   CredentialBinder

	mu             sync.Mutex
	mode           Mode
	cloudProvider  string
	localProvider  string
	customEndpoint string
}

// New creates a switchboard over the injected provider tables. Initial state
// is cloud mode with the first cloud provider active.
func New(tables Tables, store *catalog.Store, loader CatalogLoader, inv LocalInventory, persist Persister) *Switchboard {
	sw := &Switchboard{
		tables:  tables,
		store:   store,
		loader:  loader,
		inv:     inv,
		persist: persist,
		mode:    ModeCloud,
	}
	if len(tables.Cloud) > 0 {
		sw.cloudProvider = tables.Cloud[0].ID
	}
	if len(tables.Local) > 0 {
		sw.localProvider = tables.Local[0].ID
	}
	return sw
}

// BindCredentials attaches a credential binder that follows the active
// provider.
func (sw *Switchboard) BindCredentials(b CredentialBinder) {
	sw.mu.Lock()
	sw.creds = b
	sw.mu.Unlock()
	sw.rebindCredentials()
}

// Restore seeds persisted state at startup without writing it back, then
// arms the initial catalog fetch for the restored position.
func (sw *Switchboard) Restore(ctx context.Context, mode Mode, cloudProvider, localProvider, rawEndpoint, selection string) {
	sw.mu.Lock()
	if mode == ModeCloud || mode == ModeLocal {
		sw.mode = mode
	}
	if _, ok := sw.tables.CloudByID(cloudProvider); ok {
		sw.cloudProvider = cloudProvider
	}
	if _, ok := sw.tables.LocalByID(localProvider); ok {
		sw.localProvider = localProvider
	}
	sw.customEndpoint = endpoint.Normalize(rawEndpoint)
	sw.mu.Unlock()

	sw.store.SetSelection(selection)
	sw.rebindCredentials()

	sw.mu.Lock()
	mode = sw.mode
	active := sw.cloudProvider
	sw.mu.Unlock()

	if mode == ModeLocal {
		// A persisted selection survives restarts; the inventory default is
		// only consulted when nothing was selected.
		if selection == "" {
			sw.refreshLocalDefault(ctx)
		}
		return
	}
	if p, ok := sw.tables.CloudByID(active); ok && p.Custom {
		if target := sw.effectiveEndpoint(); target != "" {
			sw.loader.Load(target, false)
		}
	}
}

// Status reports the current switchboard position.
func (sw *Switchboard) Status() Status {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	return Status{
		Mode:              sw.mode,
		CloudProvider:     sw.cloudProvider,
		LocalProvider:     sw.localProvider,
		ActiveProvider:    sw.activeProviderLocked(),
		Endpoint:          sw.customEndpoint,
		EffectiveEndpoint: endpoint.Effective(sw.customEndpoint, sw.tables.DefaultEndpoint),
		Selection:         sw.store.Selection(),
	}
}

// Tables exposes the injected provider tables for the API layer.
func (sw *Switchboard) Tables() Tables {
	return sw.tables
}

// ActiveProviderID returns the provider id used for persistence in the
// current mode.
func (sw *Switchboard) ActiveProviderID() string {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	return sw.activeProviderLocked()
}

func (sw *Switchboard) activeProviderLocked() string {
	if sw.mode == ModeLocal {
		return sw.localProvider
	}
	return sw.cloudProvider
}

// SetMode switches between cloud and local reasoning.
func (sw *Switchboard) SetMode(ctx context.Context, mode Mode) error {
	if mode != ModeCloud && mode != ModeLocal {
		return fmt.Errorf("unknown mode %q", mode)
	}

	sw.mu.Lock()
	if sw.mode == mode {
		sw.mu.Unlock()
		return nil
	}
	sw.mode = mode
	cloudProvider := sw.cloudProvider
	sw.mu.Unlock()

	sw.put(KeyMode, string(mode))
	sw.rebindCredentials()

	if mode == ModeLocal {
		sw.refreshLocalDefault(ctx)
		return nil
	}
	return sw.enterCloudProvider(cloudProvider)
}

// SetCloudProvider switches the active cloud backend.
func (sw *Switchboard) SetCloudProvider(_ context.Context, id string) error {
	if _, ok := sw.tables.CloudByID(id); !ok {
		return fmt.Errorf("unknown cloud provider %q", id)
	}

	sw.mu.Lock()
	sw.cloudProvider = id
	mode := sw.mode
	sw.mu.Unlock()

	sw.put(KeyCloudProvider, id)
	sw.rebindCredentials()

	if mode != ModeCloud {
		return nil
	}
	return sw.enterCloudProvider(id)
}

// SetLocalProvider switches the active local runtime.
func (sw *Switchboard) SetLocalProvider(ctx context.Context, id string) error {
	if _, ok := sw.tables.LocalByID(id); !ok {
		return fmt.Errorf("unknown local provider %q", id)
	}

	sw.mu.Lock()
	sw.localProvider = id
	mode := sw.mode
	sw.mu.Unlock()

	sw.put(KeyLocalProvider, id)
	sw.rebindCredentials()

	if mode == ModeLocal {
		sw.refreshLocalDefault(ctx)
	}
	return nil
}

// SetEndpoint records a new custom base URL and, when the custom provider is
// active, re-arms the fetcher against it. It returns the normalized value.
func (sw *Switchboard) SetEndpoint(raw string) string {
	normalized := endpoint.Normalize(raw)

	sw.mu.Lock()
	sw.customEndpoint = normalized
	mode := sw.mode
	cloudProvider := sw.cloudProvider
	sw.mu.Unlock()

	sw.put(KeyEndpoint, normalized)

	if mode == ModeCloud {
		if p, ok := sw.tables.CloudByID(cloudProvider); ok && p.Custom {
			sw.loader.Load(sw.effectiveEndpoint(), false)
		}
	}
	return normalized
}

// Refresh re-fetches the catalog for the current target. force bypasses the
// fetcher's deduplication and is the manual retry path.
func (sw *Switchboard) Refresh(force bool) {
	sw.mu.Lock()
	mode := sw.mode
	cloudProvider := sw.cloudProvider
	sw.mu.Unlock()

	if mode != ModeCloud {
		return
	}
	if p, ok := sw.tables.CloudByID(cloudProvider); ok && p.Custom {
		sw.loader.Load(sw.effectiveEndpoint(), force)
	}
}

// SetSelection records a new selected model id.
func (sw *Switchboard) SetSelection(id string) {
	sw.put(KeySelectedModel, id)
	sw.store.SetSelection(id)
}

// enterCloudProvider applies the arrival rules for a cloud provider: the
// custom provider reuses a cached catalog or re-arms a fetch, a built-in
// provider takes its first built-in model as the default selection.
func (sw *Switchboard) enterCloudProvider(id string) error {
	p, ok := sw.tables.CloudByID(id)
	if !ok {
		return fmt.Errorf("unknown cloud provider %q", id)
	}

	if !p.Custom {
		if len(p.DefaultModels) > 0 {
			sw.SetSelection(p.DefaultModels[0])
		} else {
			sw.SetSelection("")
		}
		return nil
	}

	target := sw.effectiveEndpoint()
	if target == "" {
		log.Debug("Custom provider entered with no endpoint configured")
		sw.loader.Load("", false)
		return nil
	}

	if snap := sw.store.Snapshot(); snap.Endpoint == target && len(snap.Entries) > 0 {
		// A catalog for this endpoint is already cached: take its first entry
		// instead of refetching.
		sw.SetSelection(snap.Entries[0].ID)
		return nil
	}

	sw.loader.Load(target, false)
	return nil
}

// refreshLocalDefault re-checks which models exist locally and prefers the
// first already-downloaded one as the default selection.
func (sw *Switchboard) refreshLocalDefault(ctx context.Context) {
	models, err := sw.inv.ListLocalModels(ctx)
	if err != nil {
		log.WithError(err).Warn("Local model inventory unavailable")
		sw.SetSelection("")
		return
	}
	for _, m := range models {
		if m.Downloaded {
			sw.SetSelection(m.ID)
			return
		}
	}
	sw.SetSelection("")
}

func (sw *Switchboard) effectiveEndpoint() string {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	return endpoint.Effective(sw.customEndpoint, sw.tables.DefaultEndpoint)
}

func (sw *Switchboard) rebindCredentials() {
	sw.mu.Lock()
	creds := sw.creds
	active := sw.activeProviderLocked()
	sw.mu.Unlock()

	if creds != nil {
		creds.SetProvider(active)
	}
}

func (sw *Switchboard) put(key, value string) {
	if sw.persist == nil {
		return
	}
	if err := sw.persist.Put(key, value); err != nil {
		log.WithError(err).WithField("key", key).Warn("Failed to persist setting")
	}
}
