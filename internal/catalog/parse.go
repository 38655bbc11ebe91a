// Copyright 2026 The modelconsole Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package catalog

import "github.com/tidwall/gjson"

// ParseEntries extracts catalog entries from an OpenAI-compatible /models
// response body. Entries come from the "data" array or, failing that, the
// "models" array; items carrying neither an "id" nor a "name" are dropped.
// Server order is preserved. A body without either array parses to an empty
// catalog rather than an error.
func ParseEntries(body []byte) []Entry {
	items := gjson.GetBytes(body, "data")
	if !items.IsArray() {
		items = gjson.GetBytes(body, "models")
	}
	if !items.IsArray() {
		return nil
	}

	entries := make([]Entry, 0, int(items.Get("#").Int()))
	items.ForEach(func(_, item gjson.Result) bool {
		id := item.Get("id").String()
		if id == "" {
			id = item.Get("name").String()
		}
		if id == "" {
			return true
		}

		display := item.Get("display_name").String()
		if display == "" {
			display = id
		}
		ownedBy := item.Get("owned_by").String()

		entries = append(entries, Entry{
			ID:          id,
			DisplayName: display,
			Description: item.Get("description").String(),
			OwnedBy:     ownedBy,
			Icon:        IconForOwner(ownedBy),
		})
		return true
	})
	return entries
}
