// Copyright 2026 The modelconsole Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package endpoint

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "https://api.example.com", "https://api.example.com"},
		{"trailing slash", "https://x/ ", "https://x"},
		{"many trailing slashes", "https://x///", "https://x"},
		{"surrounding whitespace", "  https://x/v1  ", "https://x/v1"},
		{"blank", "  ", ""},
		{"empty", "", ""},
		{"only slashes", "///", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Normalize(tc.in))
		})
	}
}

// TestProperty_NormalizeIdempotent validates that normalizing twice always
// yields the same string as normalizing once.
func TestProperty_NormalizeIdempotent(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("normalize is idempotent", prop.ForAll(
		func(s string) bool {
			once := Normalize(s)
			return Normalize(once) == once
		},
		gen.AnyString(),
	))

	properties.Property("normalized output has no trailing slash", prop.ForAll(
		func(s string) bool {
			out := Normalize(s)
			return out == "" || out[len(out)-1] != '/'
		},
		gen.AnyString(),
	))

	properties.TestingRun(t)
}

func TestEffective(t *testing.T) {
	assert.Equal(t, "https://custom", Effective("https://custom", "https://default"))
	assert.Equal(t, "https://default", Effective("", "https://default"))
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want error
	}{
		{"https remote", "https://example.com/v1", nil},
		{"http remote", "http://example.com/v1", ErrInsecureScheme},
		{"http localhost", "http://localhost:1234/v1", nil},
		{"http localhost bare", "http://localhost", nil},
		{"http loopback", "http://127.0.0.1:8080", nil},
		{"no scheme", "not-a-url", ErrMissingScheme},
		{"empty", "", nil},
		{"localhost in path", "http://evil.example/x://localhost", ErrInsecureScheme},
		{"localhost subdomain", "http://localhost.evil.example/v1", ErrInsecureScheme},
		{"loopback in path", "http://evil.example/127.0.0.1", ErrInsecureScheme},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.in)
			if tc.want == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tc.want)
			}
		})
	}
}
