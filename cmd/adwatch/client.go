package main

import (
	"fmt"

	"adwatch/pkg/adapi"
	"adwatch/pkg/config"
)

// newBackendClient loads the configuration and builds the backend client.
// Commands call this from RunE so a missing config surfaces as a normal
// command error rather than a startup failure.
func newBackendClient() (*adapi.Client, *config.Config, error) {
	path, err := config.DefaultPath()
	if err != nil {
		return nil, nil, fmt.Errorf("resolve config path: %w", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	return adapi.NewClient(cfg.BaseURL, cfg.Token, cfg.Workspace), cfg, nil
}
