// Copyright 2026 The modelconsole Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package endpoint provides normalization and validation for user-supplied
// OpenAI-compatible base URLs.
package endpoint

import (
	"errors"
	"strings"
)

var (
	// ErrMissingScheme indicates the URL carries no "://" scheme separator.
	ErrMissingScheme = errors.New("endpoint URL is missing a scheme (expected https://...)")

	// ErrInsecureScheme indicates a non-HTTPS URL pointing at a non-loopback host.
	ErrInsecureScheme = errors.New("endpoint must use https:// unless it targets localhost")
)

// Normalize canonicalizes a raw user-entered base URL: surrounding whitespace
// is trimmed and trailing slashes are stripped. Blank input normalizes to "".
// Normalize is idempotent.
func Normalize(raw string) string {
	s := strings.TrimSpace(raw)
	for strings.HasSuffix(s, "/") {
		s = strings.TrimSuffix(s, "/")
	}
	return s
}

// Effective returns the normalized endpoint when one is configured, falling
// back to the built-in default otherwise.
func Effective(normalized, fallback string) string {
	if normalized != "" {
		return normalized
	}
	return fallback
}

// Validate enforces the HTTPS-or-localhost policy on a normalized endpoint.
// Bearer credentials ride on every catalog request, so plaintext transport is
// only allowed toward loopback addresses. The empty string is the caller's
// "no endpoint configured" case and is accepted here.
func Validate(normalized string) error {
	if normalized == "" {
		return nil
	}
	if !strings.Contains(normalized, "://") {
		return ErrMissingScheme
	}
	if strings.HasPrefix(normalized, "https://") {
		return nil
	}
	authority := normalized[strings.Index(normalized, "://")+3:]
	if isLoopbackAuthority(authority) {
		return nil
	}
	return ErrInsecureScheme
}

// isLoopbackAuthority reports whether the authority portion of a URL names a
// loopback host. The match is anchored at the host, so "localhost" appearing
// later in the URL (or as a subdomain prefix like localhost.evil.com) does
// not qualify.
func isLoopbackAuthority(authority string) bool {
	for _, host := range []string{"localhost", "127.0.0.1"} {
		if !strings.HasPrefix(authority, host) {
			continue
		}
		rest := authority[len(host):]
		if rest == "" || rest[0] == ':' || rest[0] == '/' {
			return true
		}
	}
	return false
}
