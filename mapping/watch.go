// Copyright 2025 The go-pivariety Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package mapping

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
)

// WatchInvalidation watches the persisted table file and drops the in-memory
// table when the operator deletes or replaces it, so long-running callers
// pick up a re-detection without restarting. Returns a stop function.
func (r *Resolver) WatchInvalidation() (func() error, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "mapping: start invalidation watcher")
	}
	// Watch the directory: the file itself may not exist yet, and a rename
	// over it would drop a file-level watch.
	if err := watcher.Add(filepath.Dir(r.path)); err != nil {
		watcher.Close()
		return nil, errors.Wrapf(err, "mapping: watch %s", filepath.Dir(r.path))
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if ev.Name != r.path {
					continue
				}
				// Deletion is the documented invalidation mechanism; our own
				// atomic save shows up as a create, not a remove.
				if ev.Has(fsnotify.Remove) {
					r.logger.Infof("mapping table %s deleted, invalidating", r.path)
					r.Invalidate()
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				r.logger.Warnf("invalidation watcher: %s", err)
			}
		}
	}()
	return func() error {
		err := watcher.Close()
		<-done
		return err
	}, nil
}
