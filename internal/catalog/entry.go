// Copyright 2026 The modelconsole Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package catalog implements the asynchronous remote-model-catalog resolver.
// It fetches the model listing of an OpenAI-compatible endpoint, discards
// results that have been superseded by a newer target, classifies failures,
// and keeps the selected model consistent with the loaded catalog.
package catalog

import "strings"

// Entry describes one model reported by an endpoint's /models listing.
type Entry struct {
	// ID is the unique model identifier within a snapshot.
	ID string `json:"id"`
	// DisplayName is the human-readable name, falling back to ID.
	DisplayName string `json:"display_name"`
	// Description is optional free-form text from the server.
	Description string `json:"description,omitempty"`
	// OwnedBy is the owning organization tag reported by the server.
	OwnedBy string `json:"owned_by,omitempty"`
	// Icon is derived from OwnedBy via the classifier table, "" when no
	// classifier matches.
	Icon string `json:"icon,omitempty"`
}

// Snapshot is an ordered model listing tied to exactly one endpoint. It is
// replaced wholesale by the next successful fetch, never mutated.
type Snapshot struct {
	Endpoint string  `json:"endpoint"`
	Entries  []Entry `json:"entries"`
}

// iconClassifier maps an owner-tag substring to an icon reference.
type iconClassifier struct {
	substr string
	icon   string
}

// iconClassifiers is the fixed, ordered owner-tag classification table.
// The first matching substring wins; no match means no icon.
var iconClassifiers = []iconClassifier{
	{"openai", "openai"},
	{"anthropic", "anthropic"},
	{"claude", "anthropic"},
	{"google", "google"},
	{"gemini", "google"},
	{"meta", "meta"},
	{"llama", "meta"},
	{"mistral", "mistral"},
	{"qwen", "qwen"},
	{"alibaba", "qwen"},
	{"deepseek", "deepseek"},
	{"microsoft", "microsoft"},
	{"phi", "microsoft"},
	{"nvidia", "nvidia"},
}

// IconForOwner derives the icon reference for an owner tag.
func IconForOwner(ownedBy string) string {
	tag := strings.ToLower(ownedBy)
	if tag == "" {
		return ""
	}
	for _, c := range iconClassifiers {
		if strings.Contains(tag, c.substr) {
			return c.icon
		}
	}
	return ""
}
