package config

import (
	"log/slog"

	"github.com/fsnotify/fsnotify"

	"fence-planner/internal/fence"
)

// Watch reloads the config file whenever it changes and hands the resulting
// parameters to the callback. The callback runs on a background goroutine -
// use appropriate synchronization if updating shared state.
//
// Returns a stop function that releases the watcher.
func Watch(path string, log *slog.Logger, onChange func(fence.Params)) (func(), error) {
	if log == nil {
		log = slog.Default()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(path); err != nil {
		watcher.Close()
		return nil, err
	}

	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
					continue
				}
				params, err := Load(path)
				if err != nil {
					log.Warn("config reload failed", slog.String("path", path), slog.Any("error", err))
					continue
				}
				log.Info("config reloaded", slog.String("path", path))
				onChange(params)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Warn("config watcher error", slog.Any("error", err))
			}
		}
	}()

	return func() {
		close(done)
		watcher.Close()
	}, nil
}
