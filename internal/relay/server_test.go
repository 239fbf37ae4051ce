package relay

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wconnect/internal/domain"
)

func newTestBridge(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	nop := zerolog.Nop()
	srv := httptest.NewServer(NewServer(ServerConfig{Name: "test", Logger: &nop}).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func dialBridge(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) domain.SocketMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg domain.SocketMessage
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestServerHTTPRoutes(t *testing.T) {
	srv := newTestBridge(t)

	resp, err := http.Get(srv.URL + "/hello")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/info")
	require.NoError(t, err)
	var info map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&info))
	resp.Body.Close()
	assert.Equal(t, "test", info["name"])

	resp, err = http.Get(srv.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServerRoutesPublishedFrames(t *testing.T) {
	srv := newTestBridge(t)
	alice, bob := dialBridge(t, srv), dialBridge(t, srv)

	// delivered live or from the held queue, depending on arrival order
	require.NoError(t, bob.WriteJSON(subFrame("bob")))
	require.NoError(t, alice.WriteJSON(pub("bob", "hello")))
	got := readFrame(t, bob)
	assert.Equal(t, "bob", got.Topic)
	assert.Equal(t, domain.FramePub, got.Type)
	assert.Equal(t, "hello", got.Payload)
}

func TestServerHoldsFramesForLateSubscribers(t *testing.T) {
	srv := newTestBridge(t)
	alice := dialBridge(t, srv)
	require.NoError(t, alice.WriteJSON(pub("handshake", "req")))
	// garbage is dropped without closing the connection
	require.NoError(t, alice.WriteMessage(websocket.TextMessage, []byte("not json")))
	require.NoError(t, alice.WriteJSON(pub("handshake", "req2")))
	time.Sleep(50 * time.Millisecond)

	bob := dialBridge(t, srv)
	require.NoError(t, bob.WriteJSON(subFrame("handshake")))
	assert.Equal(t, "req", readFrame(t, bob).Payload)
	assert.Equal(t, "req2", readFrame(t, bob).Payload)
}

func TestServerPrunesExpiredFramesOnSchedule(t *testing.T) {
	nop := zerolog.Nop()
	s := NewServer(ServerConfig{
		Name:          "test",
		QueueTTL:      20 * time.Millisecond,
		PruneInterval: 20 * time.Millisecond,
		Logger:        &nop,
	})
	s.hub.publish(&peer{}, pub("abandoned", "x"))
	require.Equal(t, 1, s.hub.heldTopics())

	stop, err := s.startPruning()
	require.NoError(t, err)
	defer stop()

	assert.Eventually(t, func() bool { return s.hub.heldTopics() == 0 }, 2*time.Second, 10*time.Millisecond)
}
