//go:generate go run go.uber.org/mock/mockgen -source=user_iface.go -destination=mocks/mock_user_store.go -package=mocks
package core

import (
	"context"

	"github.com/dkeye/Duet/internal/domain"
)

// UserCredentials is a user together with its stored password hash.
type UserCredentials struct {
	User         domain.User
	PasswordHash string
}

// UserStore is the persistence side of the user directory.
type UserStore interface {
	CreateUser(ctx context.Context, username, passwordHash string) (*domain.User, error)
	GetUser(ctx context.Context, id domain.UserID) (*domain.User, error)
	GetCredentials(ctx context.Context, username string) (*UserCredentials, error)
	ListUsers(ctx context.Context, exclude domain.UserID) ([]domain.User, error)
}
