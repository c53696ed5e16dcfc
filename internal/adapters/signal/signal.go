package signal

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/tdemirci/videocall/internal/app"
	"github.com/tdemirci/videocall/internal/config"
	"github.com/tdemirci/videocall/internal/core"
	"github.com/tdemirci/videocall/internal/domain"
)

var ErrBackpressure = errors.New("backpressure")

type SignalWSController struct {
	Cfg       *config.Config
	Registry  *app.Registry
	Relay     *app.Relay
	Orch      *app.Orchestrator
	Departure *app.Departure
	Limiter   *JoinRateLimiter
}

func NewSignalWSController(cfg *config.Config, reg *app.Registry, relay *app.Relay, orch *app.Orchestrator, dep *app.Departure) *SignalWSController {
	return &SignalWSController{
		Cfg:       cfg,
		Registry:  reg,
		Relay:     relay,
		Orch:      orch,
		Departure: dep,
		Limiter:   NewJoinRateLimiter(cfg.JoinRateLimit, cfg.JoinRateInterval),
	}
}

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
		return errors.New("connection closed")
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
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

func (ctl *SignalWSController) HandleSignal(ctx context.Context, c *gin.Context) {
	sid := core.SessionID(c.GetString("client_token"))
	log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("new WS connection")

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Msg("ws upgrade")
		return
	}

	buf := ctl.Cfg.SendBuffer
	if buf <= 0 {
		buf = 32
	}
	conn := &WsSignalConn{
		conn: ws,
		send: make(chan core.Frame, buf),
	}

	user := domain.NewUser(domain.UserID(sid), "")
	sess := core.NewMemberSession(domain.NewMember(user), conn)
	ctl.Registry.Bind(sid, sess)

	ctx, cancel := context.WithCancel(ctx)
	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, cancel, sid, conn)
}

func (ctl *SignalWSController) sendJSON(c *WsSignalConn, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("sendJSON marshal")
		return
	}
	_ = c.TrySend(b)
}
