// Copyright 2026 The modelconsole Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package catalog

// Reconcile keeps a selected model id valid against a freshly loaded catalog.
// A non-empty selection absent from a non-empty catalog is cleared. An empty
// catalog never clears the selection: blanking it while data is in flight
// would spuriously empty the surface.
func Reconcile(entries []Entry, selection string) string {
	if selection == "" || len(entries) == 0 {
		return selection
	}
	for _, e := range entries {
		if e.ID == selection {
			return selection
		}
	}
	return ""
}
