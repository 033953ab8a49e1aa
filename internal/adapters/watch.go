package adapters

import (
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// FileWatcher reports changes to a single file. It watches the parent
// directory so the file may be created, rotated or truncated.
type FileWatcher struct {
	name string
	fs   *fsnotify.Watcher
}

// WatchFile starts watching path
func WatchFile(path string) (*FileWatcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fs.Add(filepath.Dir(path)); err != nil {
		fs.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
	}
	return &FileWatcher{name: filepath.Clean(path), fs: fs}, nil
}

// Changed drains pending events without blocking and reports whether any
// touched the watched file.
func (w *FileWatcher) Changed() bool {
	changed := false
	for {
		select {
		case ev, ok := <-w.fs.Events:
			if !ok {
				return changed
			}
			if filepath.Clean(ev.Name) == w.name && !ev.Has(fsnotify.Chmod) {
				changed = true
			}
		case _, ok := <-w.fs.Errors:
			if !ok {
				return changed
			}
		default:
			return changed
		}
	}
}

// Close stops watching
func (w *FileWatcher) Close() error {
	return w.fs.Close()
}
