package app

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Duet/internal/auth"
	"github.com/dkeye/Duet/internal/core"
	"github.com/dkeye/Duet/internal/domain"
)

// Directory resolves user identities and handles registration and login.
type Directory struct {
	users core.UserStore
}

func NewDirectory(users core.UserStore) *Directory {
	return &Directory{users: users}
}

func (d *Directory) Lookup(ctx context.Context, id domain.UserID) (*domain.User, error) {
	return d.users.GetUser(ctx, id)
}

// List returns every user except exclude.
func (d *Directory) List(ctx context.Context, exclude domain.UserID) ([]domain.User, error) {
	return d.users.ListUsers(ctx, exclude)
}

func (d *Directory) Register(ctx context.Context, username, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if _, err := domain.NewUser(username); err != nil {
		return nil, err
	}
	if err := domain.ValidatePassword(password); err != nil {
		return nil, err
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}
	u, err := d.users.CreateUser(ctx, username, hash)
	if err != nil {
		return nil, err
	}
	log.Info().Str("module", "app.directory").Int64("user", int64(u.ID)).Str("username", u.Username).Msg("user registered")
	return u, nil
}

// Authenticate checks credentials. Unknown users and wrong passwords are
// indistinguishable to the caller.
func (d *Directory) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	creds, err := d.users.GetCredentials(ctx, strings.TrimSpace(username))
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	ok, err := auth.CheckPassword(creds.PasswordHash, password)
	if err != nil {
		log.Error().Err(err).Str("module", "app.directory").Int64("user", int64(creds.User.ID)).Msg("stored hash unreadable")
		return nil, domain.ErrInvalidCredentials
	}
	if !ok {
		return nil, domain.ErrInvalidCredentials
	}
	u := creds.User
	return &u, nil
}
