package main

import (
	"github.com/loopline-dev/loopline/internal/config"
	"github.com/loopline-dev/loopline/internal/errors"
	"github.com/loopline-dev/loopline/pkg/api"
	"github.com/loopline-dev/loopline/pkg/auth"
	"github.com/loopline-dev/loopline/pkg/credential"
)

// stack bundles the client components a command needs.
type stack struct {
	cfg   *config.Config
	store *credential.Store
	auth  *auth.Service
	api   *api.Client
	close func() error
}

// Close releases the storage backend.
func (s *stack) Close() {
	if s.close != nil {
		_ = s.close()
	}
}

// newStack loads config from the working directory and wires the client.
func newStack() (*stack, error) {
	cfg, err := config.LoadFromWorkingDir()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	storage, closeFn, err := openStorage(cfg)
	if err != nil {
		return nil, err
	}
	store := credential.NewStore(storage)

	client, err := api.NewClient(api.Config{
		BaseURL: cfg.BaseURL,
		Tokens:  store,
		// A rejected token is dead; drop it so the next command starts clean.
		OnUnauthorized: func(string) {
			_ = store.Clear()
		},
	})
	if err != nil {
		if closeFn != nil {
			_ = closeFn()
		}
		return nil, errors.FromError(err, "E161")
	}

	return &stack{
		cfg:   cfg,
		store: store,
		auth:  auth.NewService(client, store, nil),
		api:   client,
		close: closeFn,
	}, nil
}

// openStorage builds the configured credential storage backend.
func openStorage(cfg *config.Config) (credential.Storage, func() error, error) {
	switch cfg.Storage.Driver {
	case "memory":
		return credential.NewMemoryStorage(), nil, nil
	case "file":
		storage, err := credential.NewFileStorage(cfg.StoragePath())
		if err != nil {
			return nil, nil, errors.New("E121").Wrap(err)
		}
		return storage, nil, nil
	case "sqlite":
		storage, err := credential.OpenSQLiteStorage(cfg.StoragePath())
		if err != nil {
			return nil, nil, errors.New("E121").Wrap(err)
		}
		return storage, storage.Close, nil
	default:
		return nil, nil, errors.New("E122")
	}
}
