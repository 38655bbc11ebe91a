// Copyright 2026 The modelconsole Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package provider tracks which provider and which mode (cloud or local) the
// configuration surface has active, and drives catalog fetches and default
// selections from those transitions.
package provider

// Mode says whether reasoning runs against a cloud endpoint or a local
// runtime.
type Mode string

const (
	ModeCloud Mode = "cloud"
	ModeLocal Mode = "local"
)

// CloudProvider is one selectable cloud backend.
type CloudProvider struct {
	// ID is the stable provider identifier used for persistence.
	ID string `json:"id"`
	// DisplayName is shown on the surface.
	DisplayName string `json:"display_name"`
	// DefaultModels is the ordered built-in model list; the first entry is
	// the default selection when the provider is entered. Empty for the
	// custom provider, whose models come from its catalog.
	DefaultModels []string `json:"default_models,omitempty"`
	// Custom marks the user-endpoint provider whose catalog is fetched from
	// the configured base URL.
	Custom bool `json:"custom,omitempty"`
	// Endpoint is the provider's fixed base URL; empty for the custom
	// provider, whose endpoint is user-configured.
	Endpoint string `json:"endpoint,omitempty"`
}

// LocalProvider is one selectable local runtime.
type LocalProvider struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// Tables is the static provider configuration injected at construction.
type Tables struct {
	Cloud []CloudProvider
	Local []LocalProvider
	// DefaultEndpoint is the built-in fallback used when the custom provider
	// has no endpoint configured.
	DefaultEndpoint string
}

// CustomID returns the id of the custom cloud provider, or "" when the
// tables define none.
func (t Tables) CustomID() string {
	for _, p := range t.Cloud {
		if p.Custom {
			return p.ID
		}
	}
	return ""
}

// CloudByID looks up a cloud provider by id.
func (t Tables) CloudByID(id string) (CloudProvider, bool) {
	for _, p := range t.Cloud {
		if p.ID == id {
			return p, true
		}
	}
	return CloudProvider{}, false
}

// LocalByID looks up a local provider by id.
func (t Tables) LocalByID(id string) (LocalProvider, bool) {
	for _, p := range t.Local {
		if p.ID == id {
			return p, true
		}
	}
	return LocalProvider{}, false
}

// DefaultTables returns the built-in provider configuration.
func DefaultTables() Tables {
	return Tables{
		Cloud: []CloudProvider{
			{
				ID:            "openai",
				DisplayName:   "OpenAI",
				Endpoint:      "https://api.openai.com/v1",
				DefaultModels: []string{"gpt-4.1", "gpt-4.1-mini", "o4-mini"},
			},
			{
				ID:            "groq",
				DisplayName:   "Groq",
				Endpoint:      "https://api.groq.com/openai/v1",
				DefaultModels: []string{"llama-3.3-70b-versatile", "llama-3.1-8b-instant"},
			},
			{
				ID:            "openrouter",
				DisplayName:   "OpenRouter",
				Endpoint:      "https://openrouter.ai/api/v1",
				DefaultModels: []string{"openai/gpt-4.1", "anthropic/claude-sonnet-4"},
			},
			{
				ID:          "custom",
				DisplayName: "Custom endpoint",
				Custom:      true,
			},
		},
		Local: []LocalProvider{
			{ID: "ollama", DisplayName: "Ollama"},
		},
	}
}
