package signal

import (
	"context"
	"net/http"
	"time"

	"github.com/dkeye/Relay/internal/app/orch"
	"github.com/dkeye/Relay/internal/core"
	"github.com/dkeye/Relay/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Options tune the per-connection transport.
type Options struct {
	ReadLimit  int64
	PingPeriod time.Duration
	PongWait   time.Duration
	WriteWait  time.Duration
	SendBuffer int
}

type SignalWSController struct {
	Orch *orch.Orchestrator
	Opts Options
}

func NewSignalWSController(o *orch.Orchestrator, opts Options) *SignalWSController {
	return &SignalWSController{
		Orch: o,
		Opts: opts,
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleSignal upgrades the request and runs the connection until it
// closes. The URL room is handed to the session as advisory.
func (ctl *SignalWSController) HandleSignal(ctx context.Context, c *gin.Context) {
	urlRoom := domain.RoomID(c.Param("room"))
	if err := urlRoom.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}

	conn := NewWsSignalConn(ws, ctl.Opts.SendBuffer)
	log.Info().
		Str("module", "signal").
		Str("conn", string(conn.ID())).
		Str("client", c.GetString("client_token")).
		Str("url_room", string(urlRoom)).
		Str("remote", c.Request.RemoteAddr).
		Msg("new WS connection")

	sess := ctl.Orch.NewSession(conn, urlRoom)
	in := make(chan core.Frame, 16)
	ctx, cancel := context.WithCancel(ctx)

	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, conn, in)
	go func() {
		defer cancel()
		sess.Run(ctx, in)
		conn.Close()
	}()
}
