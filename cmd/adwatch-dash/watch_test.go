package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

func TestWatchConfigCmd(t *testing.T) {
	t.Run("missing directory yields no command", func(t *testing.T) {
		if cmd := watchConfigCmd("/nonexistent/adwatch/config.toml"); cmd != nil {
			t.Error("expected nil command for missing directory")
		}
	})

	t.Run("config write emits one change message", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "config.toml")
		if err := os.WriteFile(path, []byte("workspace = \"ws-1\"\n"), 0o600); err != nil {
			t.Fatal(err)
		}

		cmd := watchConfigCmd(path)
		if cmd == nil {
			t.Fatal("no watcher command for existing directory")
		}

		msgCh := make(chan tea.Msg, 1)
		go func() { msgCh <- cmd() }()

		// Give the watcher a moment to register before writing.
		time.Sleep(100 * time.Millisecond)
		if err := os.WriteFile(path, []byte("workspace = \"ws-2\"\n"), 0o600); err != nil {
			t.Fatal(err)
		}

		select {
		case msg := <-msgCh:
			if _, ok := msg.(configChangedMsg); !ok {
				t.Errorf("got %T, want configChangedMsg", msg)
			}
		case <-time.After(3 * time.Second):
			t.Fatal("no change message after config write")
		}
	})

	t.Run("writes to other files are ignored", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "config.toml")
		if err := os.WriteFile(path, []byte(""), 0o600); err != nil {
			t.Fatal(err)
		}

		cmd := watchConfigCmd(path)
		if cmd == nil {
			t.Fatal("no watcher command")
		}

		msgCh := make(chan tea.Msg, 1)
		go func() { msgCh <- cmd() }()

		time.Sleep(100 * time.Millisecond)
		if err := os.WriteFile(filepath.Join(dir, "dash.log"), []byte("line\n"), 0o600); err != nil {
			t.Fatal(err)
		}

		select {
		case msg := <-msgCh:
			t.Errorf("unexpected message %T for unrelated file", msg)
		case <-time.After(500 * time.Millisecond):
			// No message is the expected outcome.
		}
	})
}

func TestDebounceTimer(t *testing.T) {
	timer := newDebounceTimer()
	defer timer.Stop()

	select {
	case <-timer.C:
		t.Fatal("fresh debounce timer fired")
	case <-time.After(50 * time.Millisecond):
	}

	resetDebounceTimer(timer)
	select {
	case <-timer.C:
	case <-time.After(2 * time.Second):
		t.Fatal("reset timer never fired")
	}
}
