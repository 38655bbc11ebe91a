// Copyright 2026 The modelconsole Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package catalog

// Phase is the lifecycle phase of the catalog fetch state machine.
type Phase string

const (
	// PhaseIdle means no endpoint is configured and nothing is shown.
	PhaseIdle Phase = "idle"
	// PhasePending means a fetch for Target is in flight.
	PhasePending Phase = "pending"
	// PhaseLoaded means the catalog for Target is current.
	PhaseLoaded Phase = "loaded"
	// PhaseFailed means the fetch for Target ended in a classified failure.
	PhaseFailed Phase = "failed"
)

// State is the published fetch state. Exactly one State is live per fetcher.
type State struct {
	Phase Phase `json:"phase"`
	// Target is the normalized endpoint the phase refers to; empty when idle.
	Target string `json:"target,omitempty"`
	// Failure is set only when Phase is PhaseFailed.
	Failure *Failure `json:"failure,omitempty"`
}
