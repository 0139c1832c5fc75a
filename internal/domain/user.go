// Package domain contains entity without logic, just meta-data
package domain

import "unicode/utf8"

const (
	MaxUsernameLen    = 36
	MinPasswordLen    = 6
	MaxPasswordLen    = 72
	MaxMessageBodyLen = 4096
)

type UserID int64

type User struct {
	ID       UserID `json:"id"`
	Username string `json:"username"`
}

// NewUser validates the username of a not yet persisted user.
// The store assigns the ID.
func NewUser(username string) (*User, error) {
	if err := ValidateUsername(username); err != nil {
		return nil, err
	}
	return &User{Username: username}, nil
}

func ValidateUsername(username string) error {
	if len(username) == 0 {
		return ErrUsernameEmpty
	}
	if utf8.RuneCountInString(username) > MaxUsernameLen {
		return ErrUsernameTooLong
	}
	return nil
}

// ValidatePassword enforces the bcrypt input bounds.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLen {
		return ErrPasswordTooShort
	}
	if len(password) > MaxPasswordLen {
		return ErrPasswordTooLong
	}
	return nil
}
