package main

import (
	"context"
	"fmt"

	"github.com/vanderheijden86/wsjfboard/pkg/watcher"
)

// watch re-renders whenever the backlog file changes and re-prints the
// summary when the terminal is resized. It returns when ctx is done.
func (a *app) watch(ctx context.Context) error {
	a.mu.Lock()
	path := a.path
	a.mu.Unlock()

	w, err := watcher.NewWatcher(path,
		watcher.WithDebounceDuration(a.cfg.Watch.Debounce),
		watcher.WithPollInterval(a.cfg.Watch.PollInterval),
		watcher.WithOnError(func(err error) {
			fmt.Fprintf(a.stderr, "Watch error: %v\n", err)
		}),
	)
	if err != nil {
		return err
	}
	if err := w.Start(ctx); err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}
	defer w.Stop()

	mode := "fsnotify"
	if w.IsPolling() {
		mode = "polling"
	}
	fmt.Fprintf(a.stderr, "Watching %s (%s), Ctrl+C to stop\n", path, mode)

	resize := watcher.NewDebouncer(a.cfg.Watch.Debounce)
	defer resize.Cancel()
	winch, stopResize := notifyResize()
	defer stopResize()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-w.Changed():
			if err := a.reload(ctx); err != nil {
				fmt.Fprintf(a.stderr, "Reload failed: %v\n", err)
			}
		case <-winch:
			resize.Trigger(a.printSummary)
		}
	}
}
