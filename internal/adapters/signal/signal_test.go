package signal

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkeye/Duet/internal/adapters/sqlite"
	"github.com/dkeye/Duet/internal/app"
	"github.com/dkeye/Duet/internal/app/orch"
	"github.com/dkeye/Duet/internal/core"
	"github.com/dkeye/Duet/internal/domain"
)

type harness struct {
	srv   *httptest.Server
	orch  *orch.Orchestrator
	users map[string]*domain.User
}

func newHarness(t *testing.T, limiter *ChatRateLimiter) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := sqlite.Open(filepath.Join(t.TempDir(), "duet.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	o := &orch.Orchestrator{
		Registry:      app.NewRegistry(),
		Rooms:         app.NewRoomBroadcaster(),
		Resolver:      app.NewResolver(store),
		Directory:     app.NewDirectory(store),
		Conversations: store,
		Messages:      store,
		Policy:        app.SimplePolicy{},
	}
	h := &harness{orch: o, users: map[string]*domain.User{}}
	for _, n := range []string{"alice", "bob"} {
		u, err := store.CreateUser(context.Background(), n, "x")
		require.NoError(t, err)
		h.users[n] = u
	}

	ctl := NewSignalWSController(o, limiter, Options{PingPeriod: time.Second})
	r := gin.New()
	r.GET("/ws", func(c *gin.Context) {
		c.Set(UserKey, h.users[c.Query("as")])
		ctl.HandleSignal(t.Context(), c)
	})
	h.srv = httptest.NewServer(r)
	t.Cleanup(h.srv.Close)
	return h
}

func (h *harness) dial(t *testing.T, name string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(h.srv.URL, "http") + "/ws?as=" + name
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { ws.Close() })
	return ws
}

func send(t *testing.T, ws *websocket.Conn, v any) {
	t.Helper()
	require.NoError(t, ws.WriteJSON(v))
}

func sendRaw(t *testing.T, ws *websocket.Conn, s string) {
	t.Helper()
	require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte(s)))
}

func read(t *testing.T, ws *websocket.Conn) map[string]any {
	t.Helper()
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(3*time.Second)))
	var ev map[string]any
	require.NoError(t, ws.ReadJSON(&ev))
	return ev
}

func TestSignal_ControlAndErrors(t *testing.T) {
	h := newHarness(t, nil)
	ws := h.dial(t, "alice")

	send(t, ws, map[string]any{"type": core.EventPing})
	assert.Equal(t, core.EventPong, read(t, ws)["type"])

	sendRaw(t, ws, "{not json")
	ev := read(t, ws)
	assert.Equal(t, core.EventError, ev["type"])
	assert.Equal(t, "bad payload", ev["message"])

	send(t, ws, map[string]any{"type": "offer"})
	assert.Equal(t, "unknown event type", read(t, ws)["message"])

	send(t, ws, map[string]any{"type": core.EventStartConversation, "user2_id": 0})
	assert.Equal(t, "invalid payload", read(t, ws)["message"])

	send(t, ws, map[string]any{"type": core.EventWhoAmI})
	ev = read(t, ws)
	assert.Equal(t, core.EventWhoAmI, ev["type"])
	assert.Equal(t, "alice", ev["user"].(map[string]any)["username"])
}

func TestSignal_ChatRoundTrip(t *testing.T) {
	h := newHarness(t, nil)
	a := h.dial(t, "alice")
	b := h.dial(t, "bob")

	send(t, a, map[string]any{"type": core.EventStartConversation, "user2_id": h.users["bob"].ID})
	started := read(t, a)
	require.Equal(t, core.EventConversationStarted, started["type"])
	assert.Equal(t, core.EventLoadOldMessages, read(t, a)["type"])
	conv := started["conversation_id"]

	send(t, b, map[string]any{"type": core.EventJoinConversation, "conversation_id": conv})
	history := read(t, b)
	require.Equal(t, core.EventLoadOldMessages, history["type"])
	assert.Empty(t, history["messages"])

	send(t, a, map[string]any{"type": core.EventChatMessage, "conversation_id": conv, "message": "hi"})
	for _, ws := range []*websocket.Conn{a, b} {
		ev := read(t, ws)
		assert.Equal(t, core.EventChatMessage, ev["type"])
		assert.Equal(t, "hi", ev["message"])
		assert.EqualValues(t, h.users["alice"].ID, ev["sender_id"])
	}
}

func TestSignal_ChatRateLimited(t *testing.T) {
	h := newHarness(t, NewChatRateLimiter(1, time.Minute))
	a := h.dial(t, "alice")

	send(t, a, map[string]any{"type": core.EventStartConversation, "user2_id": h.users["bob"].ID})
	conv := read(t, a)["conversation_id"]
	read(t, a)

	send(t, a, map[string]any{"type": core.EventChatMessage, "conversation_id": conv, "message": "one"})
	assert.Equal(t, core.EventChatMessage, read(t, a)["type"])

	send(t, a, map[string]any{"type": core.EventChatMessage, "conversation_id": conv, "message": "two"})
	ev := read(t, a)
	assert.Equal(t, core.EventError, ev["type"])
	assert.Equal(t, "rate limited", ev["message"])
}

func TestSignal_CloseDisconnectsSession(t *testing.T) {
	h := newHarness(t, nil)
	a := h.dial(t, "alice")

	send(t, a, map[string]any{"type": core.EventPing})
	read(t, a)
	require.Equal(t, 1, h.orch.Registry.Count())

	require.NoError(t, a.Close())
	assert.Eventually(t, func() bool { return h.orch.Registry.Count() == 0 }, 3*time.Second, 10*time.Millisecond)
}
