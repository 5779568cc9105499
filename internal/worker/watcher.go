package worker

import (
	"context"

	"vault-analyzer/internal/logging"

	"github.com/fsnotify/fsnotify"
)

// WatchProcessingDir nudges the worker whenever a file lands in dir, so new
// uploads are picked up before the next poll interval elapses. The watcher is
// an optimization only; polling alone is always sufficient, so any watch
// failure just logs and returns.
func (w *Worker) WatchProcessingDir(ctx context.Context, dir string) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logging.Warn("Filesystem watcher unavailable, relying on polling: %v", err)
		return
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		logging.Warn("Cannot watch %s, relying on polling: %v", dir, err)
		return
	}
	logging.Info("Watching %s for new files", dir)

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Op.Has(fsnotify.Create) || event.Op.Has(fsnotify.Write) {
				logging.Debug("Filesystem event: %s", event)
				w.Nudge()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logging.Warn("Filesystem watcher error: %v", err)
		}
	}
}
