package app

import (
	"sync"

	"github.com/dkeye/Duet/internal/core"
	"github.com/dkeye/Duet/internal/domain"
)

type fakeConn struct {
	mu     sync.Mutex
	frames []string
	err    error
	closed bool
}

func (c *fakeConn) TrySend(f core.Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return core.ErrConnClosed
	}
	if c.err != nil {
		return c.err
	}
	c.frames = append(c.frames, string(f))
	return nil
}

func (c *fakeConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

func (c *fakeConn) Frames() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.frames...)
}

func newMember(id domain.UserID, conn core.SignalConnection) core.MemberSession {
	return core.NewMemberSession(domain.NewMember(&domain.User{ID: id, Username: "u"}), conn)
}
