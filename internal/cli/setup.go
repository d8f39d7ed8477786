// Copyright (c) 2025 recipechat authors
// SPDX-License-Identifier: MIT

// setup.go - shared construction of the client, store, and orchestrator.
package cli

import (
	"fmt"
	"io"

	"recipechat/internal/api"
	"recipechat/internal/config"
	"recipechat/internal/logging"
	"recipechat/internal/session"
	"recipechat/internal/store"
)

// App bundles everything a command handler needs.
type App struct {
	Config *config.Config
	Client *api.Client
	Store  *store.ConversationStore
	Orch   *session.Orchestrator

	closer io.Closer
}

// Setup loads configuration and wires the backend client, conversation
// store, and orchestrator.
func Setup(args Args) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	if err := logging.Setup(cfg.Logging.Path, cfg.Logging.Debug || args.Verbose); err != nil {
		// Logging is best effort; the client still works without it.
		fmt.Fprintf(errWriter, "warning: debug log unavailable: %v\n", err)
	}

	client := api.NewClientWithConfig(&api.ClientConfig{
		BaseURL:          cfg.Backend.URL,
		Timeout:          cfg.Backend.Timeout(),
		QueryTimeout:     cfg.Backend.QueryTimeout(),
		MaxAttempts:      cfg.Backend.MaxAttempts,
		RetryDelay:       cfg.Backend.RetryDelay(),
		QueriesPerSecond: cfg.Backend.QueriesPerSecond,
	})

	backend, closer, err := openBackend(cfg)
	if err != nil {
		return nil, err
	}

	st := store.NewConversationStore(backend)
	if _, err := st.Load(); err != nil {
		// Corrupted history is dropped, not fatal.
		logging.L().Warn().Err(err).Msg("conversation history reset")
	}

	return &App{
		Config: cfg,
		Client: client,
		Store:  st,
		Orch:   session.New(client, st),
		closer: closer,
	}, nil
}

// openBackend creates the configured storage backend.
func openBackend(cfg *config.Config) (store.Backend, io.Closer, error) {
	switch cfg.Storage.Kind {
	case "memory":
		return store.NewMemoryBackend(), nil, nil

	case "sqlite":
		path, err := cfg.StoragePath()
		if err != nil {
			return nil, nil, err
		}
		if err := config.EnsureDir(); err != nil {
			return nil, nil, err
		}
		backend, err := store.OpenSQLite(path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open conversation database: %w", err)
		}
		return backend, backend, nil

	default:
		path, err := cfg.StoragePath()
		if err != nil {
			return nil, nil, err
		}
		backend, err := store.NewFileBackend(path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open conversation directory: %w", err)
		}
		return backend, nil, nil
	}
}

// Close releases storage resources.
func (a *App) Close() {
	if a.closer != nil {
		a.closer.Close()
	}
}
