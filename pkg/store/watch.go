package store

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"

	"github.com/fsnotify/fsnotify"

	"github.com/matzehuels/navtree/pkg/dashboard"
)

// Watch calls fn with the collection each time dashboards.json changes on
// disk, including changes made by other processes, until ctx is done.
// Consecutive identical collections are reported once. Unreadable versions of
// the file are logged and skipped.
func (f *File) Watch(ctx context.Context, fn func([]dashboard.Entry)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	// The directory is watched rather than the file: atomic writes replace
	// the file's inode.
	if err := watcher.Add(f.dir); err != nil {
		return fmt.Errorf("watch %s: %w", f.dir, err)
	}

	var last []dashboard.Entry
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(ev.Name) != DashboardsFile || !(ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write)) {
				continue
			}
			entries, err := f.Dashboards(ctx)
			if err != nil {
				f.logger.Warn("ignoring unreadable dashboards file", "path", ev.Name, "err", err)
				continue
			}
			if last != nil && slices.Equal(last, entries) {
				continue
			}
			last = entries
			fn(dashboard.Clone(entries))
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			f.logger.Warn("file watcher error", "dir", f.dir, "err", err)
		}
	}
}
