package script

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watch calls onChange every time the file at path is written or
// re-created, until ctx is done. The parent directory is watched so that
// editors that replace the file on save are handled too.
func Watch(ctx context.Context, logger *zap.Logger, path string, onChange func()) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("invalid path %s, %w", path, err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher, %w", err)
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("failed to watch %s, %w", path, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case e, ok := <-w.Events:
			if !ok {
				return errors.New("file watcher closed")
			}
			if filepath.Clean(e.Name) != abs {
				continue
			}
			if e.Has(fsnotify.Write) || e.Has(fsnotify.Create) {
				logger.Debug("file changed", zap.String("file", path), zap.Stringer("op", e.Op))
				onChange()
			}
		case err, ok := <-w.Errors:
			if !ok {
				return errors.New("file watcher closed")
			}
			logger.Warn("file watcher error", zap.String("file", path), zap.Error(err))
		}
	}
}
