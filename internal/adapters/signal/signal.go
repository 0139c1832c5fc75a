package signal

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Duet/internal/app/orch"
	"github.com/dkeye/Duet/internal/core"
	"github.com/dkeye/Duet/internal/domain"
)

// UserKey is the gin context key under which the auth middleware stores *domain.User.
const UserKey = "user"

type Options struct {
	ReadLimit    int64
	PingPeriod   time.Duration
	WriteTimeout time.Duration
	SendBuffer   int
}

func (o Options) withDefaults() Options {
	if o.ReadLimit <= 0 {
		o.ReadLimit = 64 << 10
	}
	if o.PingPeriod <= 0 {
		o.PingPeriod = 30 * time.Second
	}
	if o.WriteTimeout <= 0 {
		o.WriteTimeout = 5 * time.Second
	}
	if o.SendBuffer <= 0 {
		o.SendBuffer = 256
	}
	return o
}

type SignalWSController struct {
	Orch    *orch.Orchestrator
	Limiter *ChatRateLimiter

	opts     Options
	validate *validator.Validate
}

func NewSignalWSController(o *orch.Orchestrator, limiter *ChatRateLimiter, opts Options) *SignalWSController {
	return &SignalWSController{
		Orch:     o,
		Limiter:  limiter,
		opts:     opts.withDefaults(),
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// WsSignalConn is the outbound half of a websocket: a bounded queue drained by writePump.
type WsSignalConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func (c *WsSignalConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return core.ErrConnClosed
	}
	select {
	case c.send <- f:
	default:
		return core.ErrBackpressure
	}
	return nil
}

func (c *WsSignalConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleSignal upgrades an authenticated request and starts its pumps.
func (ctl *SignalWSController) HandleSignal(ctx context.Context, c *gin.Context) {
	v, _ := c.Get(UserKey)
	user, ok := v.(*domain.User)
	if !ok || user == nil {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	sid := core.SessionID(uuid.NewString())
	log.Info().Str("module", "signal").Str("sid", string(sid)).Int64("user", int64(user.ID)).Msg("new WS connection")

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}

	conn := &WsSignalConn{
		conn: ws,
		send: make(chan core.Frame, ctl.opts.SendBuffer),
	}

	ctx, cancel := context.WithCancel(ctx)
	ctl.Orch.Connect(sid, user, conn, cancel)

	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, sid, user, conn)
}
