package app

import (
	"cmp"
	"slices"
	"sync"

	"github.com/dkeye/Duet/internal/core"
	"github.com/dkeye/Duet/internal/domain"
	"github.com/rs/zerolog/log"
)

// RoomBroadcaster owns the conversation -> live sessions mapping.
// A session is a member of at most one room at a time.
type RoomBroadcaster struct {
	mu       sync.RWMutex
	rooms    map[domain.ConversationID]core.RoomService
	memberOf map[core.SessionID]domain.ConversationID
}

func NewRoomBroadcaster() *RoomBroadcaster {
	return &RoomBroadcaster{
		rooms:    make(map[domain.ConversationID]core.RoomService),
		memberOf: make(map[core.SessionID]domain.ConversationID),
	}
}

func (b *RoomBroadcaster) getOrCreate(id domain.ConversationID) core.RoomService {
	b.mu.RLock()
	room, ok := b.rooms[id]
	b.mu.RUnlock()
	if ok {
		return room
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if room, ok = b.rooms[id]; ok {
		return room
	}
	room = core.NewRoomService(id)
	b.rooms[id] = room
	log.Debug().Str("module", "app.broadcaster").Int64("conversation", int64(id)).Msg("room created")
	return room
}

func (b *RoomBroadcaster) lookup(id domain.ConversationID) (core.RoomService, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	room, ok := b.rooms[id]
	return room, ok
}

// dropIfEmpty forgets a room once its last member is gone. Closing happens
// under the room ordering lock, so a Join or Publish racing with it retries
// on a fresh room instead of interleaving with the old one.
func (b *RoomBroadcaster) dropIfEmpty(id domain.ConversationID, room core.RoomService) {
	_ = room.Sequence(func() error {
		b.mu.Lock()
		defer b.mu.Unlock()
		if b.rooms[id] != room {
			return nil
		}
		if room.TryClose() {
			delete(b.rooms, id)
			log.Debug().Str("module", "app.broadcaster").Int64("conversation", int64(id)).Msg("room removed")
		}
		return nil
	})
}

// RoomOf reports the conversation a session is currently joined to.
func (b *RoomBroadcaster) RoomOf(sid core.SessionID) (domain.ConversationID, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	id, ok := b.memberOf[sid]
	return id, ok
}

// Join adds the session to the conversation's room, leaving any other room
// first. replay runs under the room ordering lock right after the session is
// added, so whatever it queues reaches the session before any later broadcast.
// If replay fails the session is removed again.
func (b *RoomBroadcaster) Join(id domain.ConversationID, sid core.SessionID, ms core.MemberSession, replay func() error) error {
	if cur, ok := b.RoomOf(sid); ok && cur != id {
		b.Leave(sid)
	}
	for {
		room := b.getOrCreate(id)
		added := false
		err := room.Sequence(func() error {
			if !room.AddMember(sid, ms) {
				return nil
			}
			added = true
			b.mu.Lock()
			b.memberOf[sid] = id
			b.mu.Unlock()
			if replay != nil {
				return replay()
			}
			return nil
		})
		if !added {
			continue
		}
		if err != nil {
			b.Leave(sid)
			return err
		}
		log.Info().Str("module", "app.broadcaster").Str("sid", string(sid)).Int64("conversation", int64(id)).Msg("joined room")
		return nil
	}
}

// Leave removes the session from whatever room it belongs to.
func (b *RoomBroadcaster) Leave(sid core.SessionID) {
	b.mu.Lock()
	id, ok := b.memberOf[sid]
	if !ok {
		b.mu.Unlock()
		return
	}
	delete(b.memberOf, sid)
	room, ok := b.rooms[id]
	b.mu.Unlock()
	if !ok {
		return
	}
	left := room.RemoveMember(sid)
	log.Info().Str("module", "app.broadcaster").Str("sid", string(sid)).Int64("conversation", int64(id)).Int("left", left).Msg("left room")
	if left == 0 {
		b.dropIfEmpty(id, room)
	}
}

// Broadcast delivers a frame to every current member of the room, sender included.
func (b *RoomBroadcaster) Broadcast(id domain.ConversationID, frame core.Frame) core.PublishResult {
	room, ok := b.lookup(id)
	if !ok {
		return core.PublishResult{}
	}
	var res core.PublishResult
	_ = room.Sequence(func() error {
		res = room.Broadcast(frame)
		return nil
	})
	return res
}

// Publish runs produce under the room ordering lock and broadcasts its frame
// only when produce succeeds. Appends that go through Publish are delivered in
// the order they completed.
func (b *RoomBroadcaster) Publish(id domain.ConversationID, produce func() (core.Frame, error)) (core.PublishResult, error) {
	for {
		room := b.getOrCreate(id)
		var (
			res    core.PublishResult
			closed bool
		)
		err := room.Sequence(func() error {
			if room.IsClosed() {
				closed = true
				return nil
			}
			frame, err := produce()
			if err != nil {
				return err
			}
			res = room.Broadcast(frame)
			return nil
		})
		if closed {
			continue
		}
		if room.MemberCount() == 0 {
			b.dropIfEmpty(id, room)
		}
		return res, err
	}
}

// List snapshots live rooms, ordered by conversation id.
func (b *RoomBroadcaster) List() []core.RoomInfo {
	b.mu.RLock()
	rooms := make([]core.RoomService, 0, len(b.rooms))
	for _, r := range b.rooms {
		rooms = append(rooms, r)
	}
	b.mu.RUnlock()

	out := make([]core.RoomInfo, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, core.RoomInfo{
			ConversationID: r.ConversationID(),
			MemberCount:    r.MemberCount(),
			Members:        r.MembersSnapshot(),
		})
	}
	slices.SortFunc(out, func(a, b core.RoomInfo) int { return cmp.Compare(a.ConversationID, b.ConversationID) })
	return out
}
