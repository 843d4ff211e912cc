// Package accounts registers users and checks their credentials. Passwords
// are kept and compared as plain text; login issues no session.
package accounts

import (
	"context"
	"errors"
	"fmt"

	"bookshelf/internal/domain"
	"bookshelf/internal/logger"
	"bookshelf/internal/metrics"
	"bookshelf/internal/storage"
)

type Store interface {
	CreateUser(ctx context.Context, u domain.User) error
	UserByName(ctx context.Context, username string) (domain.User, error)
}

type Directory struct {
	store Store
}

func New(store Store) *Directory {
	return &Directory{store: store}
}

// Register adds the user unless the username is taken.
func (d *Directory) Register(ctx context.Context, username, password string) error {
	defer logger.Track(ctx, "accounts.Register")()
	err := d.store.CreateUser(ctx, domain.User{Username: username, Password: password})
	switch {
	case err == nil:
		metrics.AccountEvents.WithLabelValues("register", "ok").Inc()
		return nil
	case errors.Is(err, storage.ErrConflict):
		metrics.AccountEvents.WithLabelValues("register", "conflict").Inc()
		return domain.ErrUsernameTaken
	}
	metrics.AccountEvents.WithLabelValues("register", "error").Inc()
	return fmt.Errorf("register: %w", err)
}

// Login succeeds when the user exists and the password matches exactly.
// Unknown users and wrong passwords fail the same way.
func (d *Directory) Login(ctx context.Context, username, password string) error {
	defer logger.Track(ctx, "accounts.Login")()
	u, err := d.store.UserByName(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			metrics.AccountEvents.WithLabelValues("login", "denied").Inc()
			return domain.ErrInvalidCredentials
		}
		metrics.AccountEvents.WithLabelValues("login", "error").Inc()
		return fmt.Errorf("login: %w", err)
	}
	if u.Password != password {
		metrics.AccountEvents.WithLabelValues("login", "denied").Inc()
		return domain.ErrInvalidCredentials
	}
	metrics.AccountEvents.WithLabelValues("login", "ok").Inc()
	return nil
}
