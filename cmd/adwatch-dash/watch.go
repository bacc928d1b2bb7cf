package main

import (
	"log"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"
)

// watchConfigCmd watches the config file's directory and emits a
// configChangedMsg when the file changes. Watching the directory rather than
// the file survives editors that replace the file on save. Returns nil when
// the directory does not exist or the watcher cannot be created; the
// dashboard then simply never reloads config live.
func watchConfigCmd(configPath string) tea.Cmd {
	watcher := initConfigWatcher(configPath)
	if watcher == nil {
		return nil
	}
	return runConfigWatcher(watcher, filepath.Base(configPath))
}

func initConfigWatcher(configPath string) *fsnotify.Watcher {
	dir := filepath.Dir(configPath)
	if _, err := os.Stat(dir); err != nil {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Printf("fsnotify: create watcher: %v", err)
		return nil
	}
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		log.Printf("fsnotify: watch %s: %v", dir, err)
		return nil
	}
	return watcher
}

// runConfigWatcher blocks until a change to the config file settles, then
// emits configChangedMsg. Events are debounced so an editor's
// write-then-rename save produces one reload, not several.
func runConfigWatcher(watcher *fsnotify.Watcher, fileName string) tea.Cmd {
	return func() tea.Msg {
		defer watcher.Close()

		debounce := newDebounceTimer()
		defer debounce.Stop()

		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				if filepath.Base(event.Name) != fileName {
					continue
				}
				resetDebounceTimer(debounce)

			case <-debounce.C:
				return configChangedMsg{}

			case err, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				log.Printf("fsnotify: watcher error: %v", err)
				return nil
			}
		}
	}
}

// newDebounceTimer returns a stopped, drained timer ready for reuse.
func newDebounceTimer() *time.Timer {
	timer := time.NewTimer(0)
	if !timer.Stop() {
		<-timer.C
	}
	return timer
}

func resetDebounceTimer(timer *time.Timer) {
	const debounceDuration = 250 * time.Millisecond
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
	timer.Reset(debounceDuration)
}
