package app

import (
	"fmt"

	"wconnect/internal/domain"
	"wconnect/internal/services/connector"
	"wconnect/internal/store"
)

// App is what CLI commands run against.
type App struct {
	Config Config
	Wire   *Wire
}

func New(cfg Config) (*App, error) {
	w, err := NewWire(cfg)
	if err != nil {
		return nil, err
	}
	return &App{Config: cfg, Wire: w}, nil
}

// StoredSession returns the session persisted under the configured slot.
func (a *App) StoredSession() (domain.Session, bool, error) {
	s, ok, err := a.Wire.Sessions.LoadSession(a.storageID())
	if err != nil {
		return domain.Session{}, false, fmt.Errorf("load session: %w", err)
	}
	return s, ok, nil
}

// Forget drops the stored session without notifying the peer.
func (a *App) Forget() error {
	return a.Wire.Sessions.RemoveSession(a.storageID())
}

// Open starts a client from opts; see Wire.Open.
func (a *App) Open(opts connector.Options, modal domain.Modal) (*Client, error) {
	return a.Wire.Open(opts, modal)
}

func (a *App) storageID() string {
	if a.Config.StorageID != "" {
		return a.Config.StorageID
	}
	return store.DefaultStorageKey
}
