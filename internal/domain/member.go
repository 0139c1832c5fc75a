package domain

import "time"

// Member is one connection's view of its authenticated user.
type Member struct {
	User        *User
	ConnectedAt time.Time
}

func NewMember(user *User) *Member {
	return &Member{User: user, ConnectedAt: time.Now().UTC()}
}

// ID is zero when the member carries no identity.
func (m *Member) ID() UserID {
	if m == nil || m.User == nil {
		return 0
	}
	return m.User.ID
}
