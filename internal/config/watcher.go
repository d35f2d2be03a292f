package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"towerdefense-sim/internal/logging"
)

const debounce = 100 * time.Millisecond

// Watcher reloads the campaign whenever the config file changes and hands every
// valid version to OnChange. Invalid edits are logged and skipped.
type Watcher struct {
	ConfigPath string
	SchemaPath string
	OnChange   func(*Campaign)
}

// Run watches until ctx is done. The directory is watched rather than the file so
// editors that replace the file on save keep triggering reloads.
func (w *Watcher) Run(ctx context.Context) error {
	log := logging.FromContext(ctx)
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	target := filepath.Clean(w.ConfigPath)
	if err := fw.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(target), err)
	}

	// Reload once the file has been quiet for the debounce window so a save that
	// arrives as several writes is read in full.
	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			timer.Reset(debounce)
		case <-timer.C:
			w.reload(ctx)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			log.Error("config watcher error", "err", err)
		}
	}
}

func (w *Watcher) reload(ctx context.Context) {
	log := logging.FromContext(ctx)
	c, err := Load(w.ConfigPath, w.SchemaPath)
	if err != nil {
		log.Warn("config reload rejected", "path", w.ConfigPath, "err", err)
		return
	}
	log.Info("config reloaded", "path", w.ConfigPath, "levels", len(c.Levels))
	if w.OnChange != nil {
		w.OnChange(c)
	}
}
