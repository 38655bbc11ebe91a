// Copyright 2026 The modelconsole Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package catalog

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestReconcile(t *testing.T) {
	loaded := []Entry{{ID: "m1"}, {ID: "m2"}}

	t.Run("orphaned selection is cleared", func(t *testing.T) {
		assert.Equal(t, "", Reconcile(loaded, "m3"))
	})

	t.Run("present selection is kept", func(t *testing.T) {
		assert.Equal(t, "m1", Reconcile(loaded, "m1"))
	})

	t.Run("empty selection stays empty", func(t *testing.T) {
		assert.Equal(t, "", Reconcile(loaded, ""))
	})

	t.Run("empty catalog never clears", func(t *testing.T) {
		assert.Equal(t, "m3", Reconcile(nil, "m3"))
		assert.Equal(t, "m3", Reconcile([]Entry{}, "m3"))
	})
}

func TestFailureHumanize(t *testing.T) {
	t.Run("auth without credential hints at adding a key", func(t *testing.T) {
		f := &Failure{Kind: FailureAuth, Status: 401}
		assert.Contains(t, f.Humanize(), "add an API key")
		assert.Contains(t, f.Humanize(), "401")
	})

	t.Run("auth with credential renders generic http text", func(t *testing.T) {
		f := &Failure{Kind: FailureAuth, Status: 401, Message: "unauthorized", Credentialed: true}
		assert.NotContains(t, f.Humanize(), "add an API key")
		assert.Contains(t, f.Humanize(), "HTTP 401")
	})

	t.Run("http carries status and excerpt", func(t *testing.T) {
		f := &Failure{Kind: FailureHTTP, Status: 503, Message: "overloaded"}
		assert.Contains(t, f.Humanize(), "503")
		assert.Contains(t, f.Humanize(), "overloaded")
	})

	t.Run("network carries transport message", func(t *testing.T) {
		f := &Failure{Kind: FailureNetwork, Message: "connection refused"}
		assert.Contains(t, f.Humanize(), "connection refused")
	})
}

func TestBodyExcerpt(t *testing.T) {
	assert.Equal(t, "a b c", bodyExcerpt([]byte("  a\n b\t c ")))

	long := make([]byte, 2*maxExcerptLen)
	for i := range long {
		long[i] = 'x'
	}
	got := bodyExcerpt(long)
	assert.Len(t, got, maxExcerptLen+3)
}

func TestBodyExcerpt_CutsOnRuneBoundary(t *testing.T) {
	// Multi-byte runes straddling the cap must not be split into invalid
	// UTF-8 in the displayed text.
	long := strings.Repeat("日", maxExcerptLen)
	got := bodyExcerpt([]byte(long))
	assert.True(t, utf8.ValidString(got), "excerpt must remain valid UTF-8")
	assert.LessOrEqual(t, len(got), maxExcerptLen+3)
	assert.True(t, strings.HasSuffix(got, "..."))
}
