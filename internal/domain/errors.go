package domain

import "errors"

var (
	ErrStoreUnavailable      = errors.New("store unavailable")
	ErrNotFound              = errors.New("not found")
	ErrDuplicateConversation = errors.New("conversation already exists")

	ErrUserNotFound       = errors.New("user not found")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUsernameEmpty      = errors.New("username empty")
	ErrUsernameTooLong    = errors.New("username too long")
	ErrPasswordTooShort   = errors.New("password too short")
	ErrPasswordTooLong    = errors.New("password too long")

	ErrSameUser       = errors.New("cannot start a conversation with yourself")
	ErrNotParticipant = errors.New("not a participant of this conversation")
	ErrNotJoined      = errors.New("not joined to this conversation")
	ErrNoIdentity     = errors.New("session has no identity")
	ErrSessionClosed  = errors.New("session closed")
	ErrEmptyMessage   = errors.New("empty message")
	ErrMessageTooLong = errors.New("message too long")
)
