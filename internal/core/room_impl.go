package core

import (
	"sync"

	"github.com/dkeye/Duet/internal/domain"
	"github.com/rs/zerolog/log"
)

// roomImpl is a threadsafe in-memory room.
// It never closes adapter-owned resources.
type roomImpl struct {
	id domain.ConversationID

	order sync.Mutex

	mu     sync.RWMutex
	bySID  map[SessionID]MemberSession
	closed bool
}

func NewRoomService(id domain.ConversationID) RoomService {
	return &roomImpl{
		id:    id,
		bySID: make(map[SessionID]MemberSession),
	}
}

func (r *roomImpl) ConversationID() domain.ConversationID { return r.id }

func (r *roomImpl) MemberCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.bySID)
}

func (r *roomImpl) HasMember(sid SessionID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.bySID[sid]
	return ok
}

func (r *roomImpl) AddMember(sid SessionID, ms MemberSession) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return false
	}
	r.bySID[sid] = ms
	log.Debug().Str("module", "core.room").Int64("conversation", int64(r.id)).Str("sid", string(sid)).Msg("member added")
	return true
}

func (r *roomImpl) RemoveMember(sid SessionID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.bySID[sid]; ok {
		delete(r.bySID, sid)
		log.Debug().Str("module", "core.room").Int64("conversation", int64(r.id)).Str("sid", string(sid)).Msg("member removed")
	}
	return len(r.bySID)
}

func (r *roomImpl) Broadcast(data Frame) PublishResult {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res := PublishResult{}
	for sid, m := range r.bySID {
		if err := m.Signal().TrySend(data); err != nil {
			res.Dropped = append(res.Dropped, Drop{SID: sid, Err: err})
			continue
		}
		res.SendTo++
	}
	log.Debug().Str("module", "core.room").Int64("conversation", int64(r.id)).Int("sent_to", res.SendTo).Int("dropped", len(res.Dropped)).Msg("broadcast result")
	return res
}

func (r *roomImpl) Sequence(fn func() error) error {
	r.order.Lock()
	defer r.order.Unlock()
	return fn()
}

func (r *roomImpl) TryClose() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.bySID) > 0 {
		return false
	}
	r.closed = true
	return true
}

func (r *roomImpl) IsClosed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.closed
}

func (r *roomImpl) MembersSnapshot() []MemberDTO {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]MemberDTO, 0, len(r.bySID))
	for sid, ms := range r.bySID {
		meta := ms.Meta()
		dto := MemberDTO{SID: sid, ID: meta.ID(), Since: meta.ConnectedAt}
		if meta.User != nil {
			dto.Username = meta.User.Username
		}
		out = append(out, dto)
	}
	return out
}
