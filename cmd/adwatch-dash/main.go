// Package main implements the adwatch-dash interactive dashboard: a live
// view of agent evaluation events for one workspace, with per-agent drill
// down and one-key action rollback.
package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"adwatch/pkg/adapi"
	"adwatch/pkg/config"
)

func main() {
	configPath, err := config.DefaultPath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error locating config: %v\n", err)
		os.Exit(1)
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// The terminal belongs to the TUI; log lines go to a file next to the
	// config, or nowhere.
	log.SetOutput(openLogFile(configPath))

	client := adapi.NewClient(cfg.BaseURL, cfg.Token, cfg.Workspace)

	m := newModel(client, cfg)
	m.configPath = configPath

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running dashboard: %v\n", err)
		os.Exit(1)
	}
}

func openLogFile(configPath string) io.Writer {
	path := filepath.Join(filepath.Dir(configPath), "dash.log")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return io.Discard
	}
	return f
}
