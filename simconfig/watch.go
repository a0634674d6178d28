package simconfig

import (
	"sync"

	"github.com/fsnotify/fsnotify"

	simlog "github.com/coreforge/simdriver/simlog"
)

// Dynamic hot-plug of cores after initialization is explicitly out of scope
// (spec.md §1 Non-goals), so WarnOnChange never reloads configuration. It
// exists purely to give an operator a loud signal that an edit they just
// made will not take effect until the next restart.
var (
	watchOnce sync.Once
	watcher   *fsnotify.Watcher
)

// WarnOnChange watches path and logs a warning whenever it changes while
// the driver is running. It is safe to call multiple times; only the first
// invocation creates the underlying watcher.
func WarnOnChange(path string) error {
	var startErr error
	watchOnce.Do(func() {
		w, err := fsnotify.NewWatcher()
		if err != nil {
			startErr = err
			return
		}
		watcher = w
		go watchLoop(w)
	})
	if startErr != nil {
		return startErr
	}
	if watcher == nil {
		return nil
	}
	return watcher.Add(path)
}

// StopWatch closes the configuration watcher, if one was started.
func StopWatch() {
	if watcher != nil {
		watcher.Close()
	}
}

func watchLoop(w *fsnotify.Watcher) {
	for {
		select {
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			simlog.ComponentError("simconfig", "watch error:", err)
		case e, ok := <-w.Events:
			if !ok {
				return
			}
			simlog.ComponentWarn("simconfig", "configuration file", e.Name, "changed on disk; restart the driver to apply it")
		}
	}
}
