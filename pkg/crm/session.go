package crm

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/furrow/pkg/core"
)

// KeyAuth is the storage key of the session flag.
const KeyAuth = "auth"

// The dashboard ships with a single fixed login. It gates the UI and protects
// nothing.
const (
	demoUser     = "admin"
	demoPassword = "crm123"
)

var authTrue = []byte("true")

// Login sets the session flag when user and pass match the built-in account.
func (w *Workspace) Login(ctx context.Context, user, pass string) error {
	if user != demoUser || pass != demoPassword {
		w.logger.Warn("login rejected", "user", user)
		return core.ErrInvalidCredentials
	}
	if err := w.store.Save(ctx, KeyAuth, authTrue); err != nil {
		return fmt.Errorf("login: %w", err)
	}
	return nil
}

// Logout clears the session flag.
func (w *Workspace) Logout(ctx context.Context) error {
	if err := w.store.Delete(ctx, KeyAuth); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

// Authenticated reports whether the session flag is set.
func (w *Workspace) Authenticated(ctx context.Context) (bool, error) {
	data, err := w.store.Load(ctx, KeyAuth)
	if errors.Is(err, core.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check session: %w", err)
	}
	return bytes.Equal(bytes.TrimSpace(data), authTrue), nil
}
