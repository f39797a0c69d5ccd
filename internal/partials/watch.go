package partials

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watch calls onChange with the partial name whenever a partial file under
// dir is written, created, removed or renamed. Directories created later are
// watched as well. Watching stops when ctx is done.
func Watch(ctx context.Context, dir string, onChange func(name string), logger *zap.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	if err := addTree(watcher, dir); err != nil {
		watcher.Close()
		return err
	}

	go func() {
		defer watcher.Close()

		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}

				if event.Has(fsnotify.Create) {
					if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
						if err := addTree(watcher, event.Name); err != nil {
							logger.Warn("failed to watch directory", zap.String("dir", event.Name), zap.Error(err))
						}
						continue
					}
				}

				if !event.Has(fsnotify.Write | fsnotify.Create | fsnotify.Remove | fsnotify.Rename) {
					continue
				}

				name, ok := partialName(dir, event.Name)
				if !ok {
					continue
				}

				logger.Debug("partial changed", zap.String("partial", name), zap.String("op", event.Op.String()))
				onChange(name)

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("partial watcher error", zap.Error(err))
			}
		}
	}()

	return nil
}

// addTree watches root and every directory below it
func addTree(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(p string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !entry.IsDir() {
			return nil
		}
		if err := watcher.Add(p); err != nil {
			return fmt.Errorf("failed to watch %s: %w", p, err)
		}
		return nil
	})
}

// partialName maps a file below dir to the partial it serves
func partialName(dir, file string) (string, bool) {
	rel, err := filepath.Rel(dir, file)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", false
	}
	rel = filepath.ToSlash(rel)

	for _, ext := range Extensions {
		if strings.HasSuffix(rel, ext) {
			return strings.TrimSuffix(rel, ext), true
		}
	}
	return "", false
}
