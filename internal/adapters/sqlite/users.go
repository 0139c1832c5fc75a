package sqlite

import (
	"context"
	"time"

	"github.com/dkeye/Duet/internal/core"
	"github.com/dkeye/Duet/internal/domain"
)

func (s *Store) CreateUser(ctx context.Context, username, passwordHash string) (*domain.User, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (username, password_hash, created_at) VALUES (?, ?, ?)`,
		username, passwordHash, formatTime(time.Now()))
	if err != nil {
		if isUniqueConstraintError(err) {
			return nil, domain.ErrUsernameTaken
		}
		return nil, unavailable("insert user", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, unavailable("user id", err)
	}
	return &domain.User{ID: domain.UserID(id), Username: username}, nil
}

func (s *Store) GetUser(ctx context.Context, id domain.UserID) (*domain.User, error) {
	u := &domain.User{}
	err := s.db.QueryRowContext(ctx, `SELECT id, username FROM users WHERE id = ?`, id).
		Scan(&u.ID, &u.Username)
	if isNoRows(err) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, unavailable("select user", err)
	}
	return u, nil
}

func (s *Store) GetCredentials(ctx context.Context, username string) (*core.UserCredentials, error) {
	c := &core.UserCredentials{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash FROM users WHERE username = ?`, username).
		Scan(&c.User.ID, &c.User.Username, &c.PasswordHash)
	if isNoRows(err) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, unavailable("select credentials", err)
	}
	return c, nil
}

// ListUsers returns every user except exclude, ordered by id.
func (s *Store) ListUsers(ctx context.Context, exclude domain.UserID) ([]domain.User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, username FROM users WHERE id != ? ORDER BY id`, exclude)
	if err != nil {
		return nil, unavailable("list users", err)
	}
	defer rows.Close()

	users := []domain.User{}
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.Username); err != nil {
			return nil, unavailable("scan user", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("iterate users", err)
	}
	return users, nil
}
