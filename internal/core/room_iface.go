package core

import (
	"time"

	"github.com/dkeye/Duet/internal/domain"
)

// Drop is a member a frame could not be queued for.
type Drop struct {
	SID SessionID
	Err error
}

// PublishResult reports delivery stats/backpressure to orchestrator.
type PublishResult struct {
	SendTo  int
	Dropped []Drop
}

// MemberDTO is a read-only view for APIs (no transport fields).
type MemberDTO struct {
	SID      SessionID     `json:"sid"`
	ID       domain.UserID `json:"id"`
	Username string        `json:"username"`
	Since    time.Time     `json:"connected_at"`
}

// RoomService is the core-facing API of a conversation room.
// It owns the membership set but never touches transport resources.
type RoomService interface {
	ConversationID() domain.ConversationID
	MemberCount() int
	MembersSnapshot() []MemberDTO
	HasMember(sid SessionID) bool

	// AddMember reports false when the room was already closed.
	AddMember(sid SessionID, ms MemberSession) bool
	// RemoveMember returns the number of members left.
	RemoveMember(sid SessionID) int
	Broadcast(data Frame) PublishResult

	// Sequence runs fn while holding the room ordering lock.
	// Appends, broadcasts and history replays for one room are linearized through it.
	Sequence(fn func() error) error
	// TryClose closes the room if it has no members. A closed room refuses new members.
	TryClose() bool
	IsClosed() bool
}

type RoomInfo struct {
	ConversationID domain.ConversationID `json:"conversation_id"`
	MemberCount    int                   `json:"client_count"`
	Members        []MemberDTO           `json:"members"`
}
