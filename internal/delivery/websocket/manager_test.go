package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"storyboard-server/internal/flow"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type staticSource struct {
	snap flow.Snapshot
}

func (s staticSource) State() flow.Snapshot { return s.snap }

func startManager(t *testing.T, origins []string) (*Manager, *httptest.Server, context.CancelFunc) {
	t.Helper()
	m := NewManager(staticSource{snap: flow.Snapshot{Screen: flow.ScreenIdea}}, origins, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	runDone := make(chan struct{})
	go func() {
		_ = m.Run(ctx)
		close(runDone)
	}()
	srv := httptest.NewServer(m)
	t.Cleanup(func() {
		cancel()
		<-runDone
		srv.Close()
	})
	return m, srv, cancel
}

func dial(t *testing.T, srv *httptest.Server, header http.Header) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var msg Message
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func TestManager_SendsInitialStateAndBroadcasts(t *testing.T) {
	m, srv, _ := startManager(t, nil)

	first := dial(t, srv, nil)
	second := dial(t, srv, nil)

	for _, conn := range []*websocket.Conn{first, second} {
		msg := readMessage(t, conn)
		assert.Equal(t, MessageTypeState, msg.Type)
		assert.Equal(t, flow.ScreenIdea, msg.Payload.Screen)
	}

	require.Eventually(t, func() bool { return m.ClientCount() == 2 }, 2*time.Second, 10*time.Millisecond)

	m.StateChanged(flow.Snapshot{Screen: flow.ScreenLoading, RequestID: 3, Message: flow.LoadingMessage})

	for _, conn := range []*websocket.Conn{first, second} {
		msg := readMessage(t, conn)
		assert.Equal(t, flow.ScreenLoading, msg.Payload.Screen)
		assert.Equal(t, uint64(3), msg.Payload.RequestID)
	}
}

func TestManager_UnregistersClosedClients(t *testing.T) {
	m, srv, _ := startManager(t, nil)

	conn := dial(t, srv, nil)
	readMessage(t, conn)
	require.Eventually(t, func() bool { return m.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	conn.Close()

	require.Eventually(t, func() bool { return m.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestManager_RejectsUnknownOrigin(t *testing.T) {
	_, srv, _ := startManager(t, []string{"http://localhost:3000"})
	url := "ws" + strings.TrimPrefix(srv.URL, "http")

	_, resp, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": []string{"http://evil.test"}})
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	conn := dial(t, srv, http.Header{"Origin": []string{"http://localhost:3000"}})
	assert.Equal(t, flow.ScreenIdea, readMessage(t, conn).Payload.Screen)
}

func TestManager_ClosesClientsOnStop(t *testing.T) {
	m, srv, cancel := startManager(t, nil)

	conn := dial(t, srv, nil)
	readMessage(t, conn)
	require.Eventually(t, func() bool { return m.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	cancel()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	require.Error(t, err)
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) ||
		strings.Contains(err.Error(), "close"), err.Error())

	// после остановки StateChanged не блокируется
	m.StateChanged(flow.Snapshot{Screen: flow.ScreenIdea})
}
