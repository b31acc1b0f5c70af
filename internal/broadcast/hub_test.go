package broadcast

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func newTestServer(t *testing.T, hub *Hub) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = hub.ServeWS(w, r, r.URL.Query().Get("channel"))
	}))
}

func dial(t *testing.T, srv *httptest.Server, channel string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?channel=" + channel
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()
	var ev Event
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&ev))
	return ev
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	require.Eventually(t, cond, 2*time.Second, 5*time.Millisecond)
}

func TestHub_PublishReachesChannelSubscribers(t *testing.T) {
	defer goleak.VerifyNone(t)

	hub := NewHub(Options{}, zap.NewNop())
	srv := newTestServer(t, hub)
	defer srv.Close()
	defer hub.Close()

	a := dial(t, srv, "p1")
	defer a.Close()
	b := dial(t, srv, "p2")
	defer b.Close()

	assert.Equal(t, MsgTypeConnected, readEvent(t, a).Type)
	assert.Equal(t, MsgTypeConnected, readEvent(t, b).Type)
	waitFor(t, func() bool { return hub.Subscribers("p1") == 1 && hub.Subscribers("p2") == 1 })

	err := hub.Publish(context.Background(), "p1", Event{Type: MsgTypeLayoutUpdated, ProjectID: "p1", Revision: 7})
	require.NoError(t, err)

	ev := readEvent(t, a)
	assert.Equal(t, MsgTypeLayoutUpdated, ev.Type)
	assert.Equal(t, int64(7), ev.Revision)
	assert.NotZero(t, ev.Timestamp)

	// p2 must not see p1 traffic.
	require.NoError(t, b.SetReadDeadline(time.Now().Add(50*time.Millisecond)))
	_, _, err = b.ReadMessage()
	assert.Error(t, err)
}

func TestHub_PingPong(t *testing.T) {
	defer goleak.VerifyNone(t)

	hub := NewHub(Options{}, zap.NewNop())
	srv := newTestServer(t, hub)
	defer srv.Close()
	defer hub.Close()

	conn := dial(t, srv, "p1")
	defer conn.Close()
	readEvent(t, conn)

	require.NoError(t, conn.WriteJSON(Event{Type: MsgTypePing}))
	assert.Equal(t, MsgTypePong, readEvent(t, conn).Type)
}

func TestHub_UnregistersOnDisconnect(t *testing.T) {
	defer goleak.VerifyNone(t)

	hub := NewHub(Options{}, zap.NewNop())
	srv := newTestServer(t, hub)
	defer srv.Close()
	defer hub.Close()

	conn := dial(t, srv, "p1")
	readEvent(t, conn)
	waitFor(t, func() bool { return hub.Subscribers("p1") == 1 })

	conn.Close()
	waitFor(t, func() bool { return hub.Subscribers("p1") == 0 })
}

func TestHub_PublishWithoutSubscribers(t *testing.T) {
	hub := NewHub(Options{}, zap.NewNop())
	assert.NoError(t, hub.Publish(context.Background(), "nobody", Event{Type: MsgTypeLayoutUpdated}))

	hub.Close()
	assert.ErrorIs(t, hub.Publish(context.Background(), "nobody", Event{}), ErrClosed)
}

func TestHub_PublishDoesNotBlockOnFullQueue(t *testing.T) {
	hub := NewHub(Options{QueueSize: 1}, zap.NewNop())
	defer hub.Close()

	// A registered client nobody drains.
	c := &client{send: make(chan []byte, 1)}
	require.True(t, hub.register("p1", c))

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			_ = hub.Publish(context.Background(), "p1", Event{Type: MsgTypeLayoutUpdated})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a full subscriber queue")
	}
	assert.Len(t, c.send, 1)
}
