package migrate

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchDebounce coalesces the burst of events editors emit per save.
const watchDebounce = 100 * time.Millisecond

// Watch converts components as they are created or written, until ctx is
// done. Every result, including failures, is passed to onResult. Newly
// created directories are watched too.
func (r *Runner) Watch(ctx context.Context, onResult func(FileResult)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	addErr := r.watchTree(watcher, r.opts.Root)
	if addErr != nil {
		return addErr
	}

	r.logger.InfoContext(ctx, "watching components", "root", r.opts.Root)

	pending := map[string]struct{}{}

	var flush <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if path := r.watchEvent(watcher, event); path != "" {
				pending[path] = struct{}{}

				if flush == nil {
					flush = time.After(watchDebounce)
				}
			}

		case <-flush:
			flush = nil

			paths := make([]string, 0, len(pending))
			for path := range pending {
				paths = append(paths, path)
			}

			clear(pending)
			slices.Sort(paths)

			for _, path := range paths {
				onResult(r.ConvertFile(ctx, path, time.Time{}))
			}

		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			r.logger.WarnContext(ctx, "watch error", "error", watchErr)
		}
	}
}

// watchEvent registers new directories and returns the component path the
// event touches, or "".
func (r *Runner) watchEvent(watcher *fsnotify.Watcher, event fsnotify.Event) string {
	name := filepath.Base(event.Name)
	if Excluded(name, r.opts.Exclude) {
		return ""
	}

	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return ""
	}

	if filepath.Ext(name) == SourceExtension {
		return event.Name
	}

	if event.Has(fsnotify.Create) {
		err := r.watchTree(watcher, event.Name)
		if err != nil {
			r.logger.Debug("not a directory", "path", event.Name, "error", err)
		}
	}

	return ""
}

func (r *Runner) watchTree(watcher *fsnotify.Watcher, root string) error {
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if !d.IsDir() {
			return nil
		}

		if path != root && Excluded(d.Name(), r.opts.Exclude) {
			return filepath.SkipDir
		}

		return watcher.Add(path)
	})
	if err != nil {
		return fmt.Errorf("watch %s: %w", root, err)
	}

	return nil
}
