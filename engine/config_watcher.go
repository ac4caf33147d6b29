package engine

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/spaghettifunk/trigon/engine/core"
)

// configWatcher re-reads the configuration file when it changes on disk.
// Only the log level is applied live.
type configWatcher struct {
	path    string
	watcher *fsnotify.Watcher
	done    chan struct{}
	stopped chan struct{}
}

func newConfigWatcher(path string) (*configWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	// Watch the directory: editors often replace the file instead of writing it.
	if err := w.Add(filepath.Dir(abs)); err != nil {
		_ = w.Close()
		return nil, err
	}
	cw := &configWatcher{
		path:    abs,
		watcher: w,
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go cw.run()
	return cw, nil
}

func (cw *configWatcher) run() {
	defer close(cw.stopped)
	defer cw.watcher.Close()

	for {
		select {
		case <-cw.done:
			return
		case event, ok := <-cw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != cw.path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				cw.reload()
			}
		case err, ok := <-cw.watcher.Errors:
			if !ok {
				return
			}
			core.LogWarn("config watcher: %s", err)
		}
	}
}

func (cw *configWatcher) reload() {
	if err := applyLogLevel(cw.path); err != nil {
		core.LogWarn("Ignoring configuration change: %s", err)
		return
	}
	data := core.EventContext{}
	data.Data.C[0] = cw.path
	core.EventFire(core.EVENT_CODE_CONFIG_CHANGED, cw, data)
}

func (cw *configWatcher) close() {
	close(cw.done)
	<-cw.stopped
}

// applyLogLevel reloads path and switches the logger to its log_level.
func applyLogLevel(path string) error {
	cfg, err := LoadApplicationConfig(path)
	if err != nil {
		return err
	}
	lvl, err := cfg.Level()
	if err != nil {
		return err
	}
	if lvl != core.GetLogLevel() {
		core.LogInfo("Log level changed to %s.", lvl)
		core.SetLogLevel(lvl)
	}
	return nil
}
