package app

import (
	"context"
	"sync"

	"github.com/dkeye/Duet/internal/core"
	"github.com/rs/zerolog/log"
)

// SessionState is the per-connection state machine position.
type SessionState int

const (
	StateIdle SessionState = iota
	StateAwaitingConversation
	StateInRoom
	StateClosed
)

func (s SessionState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingConversation:
		return "awaiting_conversation"
	case StateInRoom:
		return "in_room"
	default:
		return "closed"
	}
}

type sessionEntry struct {
	Session core.MemberSession
	Cancel  context.CancelFunc
	State   SessionState
}

// Registry tracks live sessions and their state. Room membership lives in RoomBroadcaster.
type Registry struct {
	mu       sync.RWMutex
	sessions map[core.SessionID]*sessionEntry
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[core.SessionID]*sessionEntry),
	}
}

func (r *Registry) BindSignal(sid core.SessionID, sess core.MemberSession, cancel context.CancelFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[sid] = &sessionEntry{Session: sess, Cancel: cancel, State: StateIdle}
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("bound signal")
}

func (r *Registry) GetSession(sid core.SessionID) (core.MemberSession, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.sessions[sid]; ok {
		return e.Session, true
	}
	return nil, false
}

// State returns StateClosed for unknown sessions.
func (r *Registry) State(sid core.SessionID) SessionState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.sessions[sid]; ok {
		return e.State
	}
	return StateClosed
}

func (r *Registry) SetState(sid core.SessionID, st SessionState) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[sid]
	if !ok {
		return false
	}
	if e.State != st {
		log.Debug().Str("module", "app.registry").Str("sid", string(sid)).Stringer("from", e.State).Stringer("to", st).Msg("state change")
	}
	e.State = st
	return true
}

func (r *Registry) Unbind(sid core.SessionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, sid)
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("unbind session")
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

func (r *Registry) Cancel(sid core.SessionID) bool {
	r.mu.RLock()
	e, ok := r.sessions[sid]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	if e.Cancel != nil {
		e.Cancel()
	}
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("canceled session")
	return true
}
