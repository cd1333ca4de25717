package main

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchInputs calls onChange with the sorted changed .json paths after each
// burst of file events under inputs settles for debounce.
func watchInputs(ctx context.Context, inputs []string, debounce time.Duration, onChange func(changed []string)) error {
	watcher, err := newInputWatcher(inputs)
	if err != nil {
		return err
	}
	defer watcher.Close()
	return debounceEvents(ctx, watcher, debounce, onChange)
}

// newInputWatcher returns a watcher already subscribed to every input.
func newInputWatcher(inputs []string) (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	for _, input := range inputs {
		if err := addWatchRecursive(watcher, input); err != nil {
			_ = watcher.Close()
			return nil, err
		}
	}
	return watcher, nil
}

// debounceEvents runs the event loop of watchInputs until ctx is done or the
// watcher fails.
func debounceEvents(ctx context.Context, watcher *fsnotify.Watcher, debounce time.Duration, onChange func(changed []string)) error {
	if debounce <= 0 {
		debounce = 250 * time.Millisecond
	}

	timer := time.NewTimer(time.Hour)
	timer.Stop()
	pending := map[string]bool{}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			path := filepath.Clean(event.Name)
			if event.Has(fsnotify.Create) {
				if info, statErr := os.Stat(path); statErr == nil && info.IsDir() {
					_ = addWatchRecursive(watcher, path)
					continue
				}
			}
			if !strings.HasSuffix(path, ".json") {
				continue
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Rename) {
				continue
			}
			pending[path] = true
			timer.Reset(debounce)
		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			changed := make([]string, 0, len(pending))
			for path := range pending {
				changed = append(changed, path)
			}
			sort.Strings(changed)
			pending = map[string]bool{}
			onChange(changed)
		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return watchErr
		}
	}
}

// addWatchRecursive watches root and every directory below it. A file input
// is watched through its parent directory.
func addWatchRecursive(watcher *fsnotify.Watcher, root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return watcher.Add(filepath.Dir(root))
	}
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
}
