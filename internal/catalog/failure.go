// Copyright 2026 The modelconsole Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package catalog

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// FailureKind classifies why a catalog fetch failed.
type FailureKind string

const (
	// FailureInvalidEndpoint means the endpoint was rejected before any
	// request was issued (missing scheme or insecure transport).
	FailureInvalidEndpoint FailureKind = "invalid_endpoint"
	// FailureAuth means the server answered 401 or 403.
	FailureAuth FailureKind = "auth"
	// FailureHTTP means the server answered any other non-2xx status.
	FailureHTTP FailureKind = "http"
	// FailureNetwork means the request never completed at transport level.
	FailureNetwork FailureKind = "network"
)

// maxExcerptLen bounds the response-body excerpt carried on HTTP failures.
const maxExcerptLen = 200

// Failure is a classified fetch failure. None are retried automatically;
// retry is a manual force-refresh.
type Failure struct {
	Kind    FailureKind `json:"kind"`
	Status  int         `json:"status,omitempty"`
	Message string      `json:"message,omitempty"`
	// Credentialed records whether a bearer credential was attached to the
	// failed request. Auth failures without a credential render the targeted
	// add-a-key hint instead of the generic HTTP text.
	Credentialed bool `json:"credentialed,omitempty"`
}

// Error implements the error interface with the same text Humanize renders.
func (f *Failure) Error() string {
	return f.Humanize()
}

// Humanize renders the failure as display-ready text.
func (f *Failure) Humanize() string {
	switch f.Kind {
	case FailureInvalidEndpoint:
		return f.Message
	case FailureAuth:
		if !f.Credentialed {
			return fmt.Sprintf("the server rejected the request (HTTP %d): add an API key or adjust the server's authentication", f.Status)
		}
		return fmt.Sprintf("request failed with HTTP %d: %s", f.Status, f.Message)
	case FailureHTTP:
		return fmt.Sprintf("request failed with HTTP %d: %s", f.Status, f.Message)
	case FailureNetwork:
		return fmt.Sprintf("could not reach the endpoint: %s", f.Message)
	}
	return f.Message
}

// bodyExcerpt condenses a response body into a short single-line excerpt.
func bodyExcerpt(body []byte) string {
	s := strings.Join(strings.Fields(string(body)), " ")
	if len(s) > maxExcerptLen {
		cut := maxExcerptLen
		// Back up to a rune boundary so the cut never leaves invalid UTF-8.
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		s = s[:cut] + "..."
	}
	return s
}
