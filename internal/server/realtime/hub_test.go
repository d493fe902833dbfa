package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docsnap/docsnap/internal/logging"
	"github.com/docsnap/docsnap/internal/server/models"
)

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))
}

// wsPair upgrades one server-side connection and returns both ends.
func wsPair(t *testing.T) (server *websocket.Conn, client *websocket.Conn) {
	t.Helper()

	upgrader := websocket.Upgrader{}
	connCh := make(chan *websocket.Conn, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		connCh <- conn
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { client.Close() })

	server = <-connCh
	t.Cleanup(func() { server.Close() })
	return server, client
}

func TestHub_RegisterAndUnregister(t *testing.T) {
	hub := NewHub(testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	server, _ := wsPair(t)

	hub.Register(server)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 },
		time.Second, 10*time.Millisecond)

	hub.Unregister(server)
	require.Eventually(t, func() bool { return hub.ClientCount() == 0 },
		time.Second, 10*time.Millisecond)
}

func TestHub_BroadcastReachesAllSubscribers(t *testing.T) {
	hub := NewHub(testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	server1, client1 := wsPair(t)
	server2, client2 := wsPair(t)
	hub.Register(server1)
	hub.Register(server2)
	require.Eventually(t, func() bool { return hub.ClientCount() == 2 },
		time.Second, 10*time.Millisecond)

	hub.Broadcast(ChangeEvent{
		Type:  EventInsert,
		Photo: models.Photo{ID: "p1", Filename: "document_front_1.jpg"},
	})

	for _, client := range []*websocket.Conn{client1, client2} {
		client.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, payload, err := client.ReadMessage()
		require.NoError(t, err)

		var ev ChangeEvent
		require.NoError(t, json.Unmarshal(payload, &ev))
		assert.Equal(t, EventInsert, ev.Type)
		assert.Equal(t, "p1", ev.Photo.ID)
	}
}

func TestHub_DropsDeadSubscriber(t *testing.T) {
	hub := NewHub(testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	server, client := wsPair(t)
	hub.Register(server)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 },
		time.Second, 10*time.Millisecond)

	client.Close()
	server.Close()

	// The next broadcast hits the closed socket and evicts it.
	hub.Broadcast(ChangeEvent{Type: EventDelete, Photo: models.Photo{ID: "p1"}})

	require.Eventually(t, func() bool { return hub.ClientCount() == 0 },
		2*time.Second, 10*time.Millisecond)
}

func TestHub_ShutdownClosesClients(t *testing.T) {
	hub := NewHub(testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(done)
	}()

	server, client := wsPair(t)
	hub.Register(server)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 },
		time.Second, 10*time.Millisecond)

	cancel()
	<-done

	assert.Equal(t, 0, hub.ClientCount())

	client.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := client.ReadMessage()
	assert.Error(t, err, "server side must be closed")
}
