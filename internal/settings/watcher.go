// Copyright 2026 The modelconsole Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package settings

import (
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"
)

// debounceWindow coalesces the burst of fsnotify events an atomic
// rename-over-write produces into one change notification.
const debounceWindow = 200 * time.Millisecond

// Watcher notifies onChange when the settings file is modified from outside
// the process, so an externally edited endpoint re-arms the catalog fetch.
type Watcher struct {
	watcher *fsnotify.Watcher
	stop    chan struct{}
}

// Watch starts watching the settings file's directory. Watching the directory
// rather than the file survives rename-based atomic writes.
func Watch(path string, onChange func()) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(filepath.Dir(path)); err != nil {
		fw.Close()
		return nil, err
	}

	w := &Watcher{watcher: fw, stop: make(chan struct{})}
	target := filepath.Base(path)

	go func() {
		var timer *time.Timer
		var timerC <-chan time.Time
		for {
			select {
			case ev, ok := <-fw.Events:
				if !ok {
					return
				}
				if filepath.Base(ev.Name) != target {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				if timer == nil {
					timer = time.NewTimer(debounceWindow)
					timerC = timer.C
				} else {
					timer.Reset(debounceWindow)
				}
			case <-timerC:
				timer = nil
				timerC = nil
				log.WithField("file", target).Debug("Settings file changed on disk")
				onChange()
			case err, ok := <-fw.Errors:
				if !ok {
					return
				}
				log.WithError(err).Warn("Settings watcher error")
			case <-w.stop:
				return
			}
		}
	}()

	return w, nil
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.stop)
	return w.watcher.Close()
}
