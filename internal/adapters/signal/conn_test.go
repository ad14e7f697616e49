package signal

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkeye/Relay/internal/core"
)

// serverConn returns the server side of a fresh WebSocket pair.
func serverConn(t *testing.T) *websocket.Conn {
	t.Helper()
	accepted := make(chan *websocket.Conn, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		accepted <- ws
	}))
	t.Cleanup(srv.Close)

	client, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return <-accepted
}

func TestTrySendReportsBackpressure(t *testing.T) {
	c := NewWsSignalConn(serverConn(t), 1)

	require.NoError(t, c.TrySend(core.Frame("one")))
	assert.ErrorIs(t, c.TrySend(core.Frame("two")), ErrBackpressure)
}

func TestTrySendAfterClose(t *testing.T) {
	c := NewWsSignalConn(serverConn(t), 4)

	c.Close()
	c.Close()

	assert.ErrorIs(t, c.TrySend(core.Frame("late")), ErrConnClosed)
}

func TestConnIDsAreUnique(t *testing.T) {
	a := NewWsSignalConn(serverConn(t), 1)
	b := NewWsSignalConn(serverConn(t), 1)
	assert.NotEmpty(t, a.ID())
	assert.NotEqual(t, a.ID(), b.ID())
}
