package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	clientmodels "github.com/docsnap/docsnap/internal/client/models"
	"github.com/docsnap/docsnap/internal/common"
	"github.com/docsnap/docsnap/internal/logging"
)

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))
}

func newTestClient(t *testing.T, url string) *Client {
	t.Helper()
	c, err := NewClient(url, testLogger())
	require.NoError(t, err)
	return c
}

func TestNewClient_RejectsBadScheme(t *testing.T) {
	_, err := NewClient("ftp://host", testLogger())
	require.Error(t, err)
}

func TestSecureOrigin(t *testing.T) {
	cases := []struct {
		url    string
		secure bool
	}{
		{"https://photos.example.com", true},
		{"http://localhost:8080", true},
		{"http://127.0.0.1:8080", true},
		{"http://photos.example.com", false},
		{"http://192.168.1.20:8080", false},
	}
	for _, c := range cases {
		client := newTestClient(t, c.url)
		assert.Equal(t, c.secure, client.SecureOrigin(), c.url)
	}
}

func TestUploadPhoto_SendsMultipartAndDecodesPhoto(t *testing.T) {
	var gotSide string
	var gotBytes []byte

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/photos", r.URL.Path)

		gotSide = r.FormValue("side")
		file, _, err := r.FormFile("image")
		require.NoError(t, err)
		gotBytes, err = io.ReadAll(file)
		require.NoError(t, err)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(clientmodels.Photo{ID: "p1", Filename: "document_front_1.jpg"})
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)

	photo, err := client.UploadPhoto(context.Background(), "front", []byte{0xFF, 0xD8, 0xFF})
	require.NoError(t, err)

	assert.Equal(t, "p1", photo.ID)
	assert.Equal(t, "front", gotSide)
	assert.Equal(t, []byte{0xFF, 0xD8, 0xFF}, gotBytes)
}

func TestUploadPhoto_ServerErrorWrapsErrUpload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		json.NewEncoder(w).Encode(map[string]string{"error": "storage offline"})
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)

	_, err := client.UploadPhoto(context.Background(), "front", []byte{1})
	require.ErrorIs(t, err, common.ErrUpload)
	assert.Contains(t, err.Error(), "storage offline")
}

func TestListPhotos(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode([]clientmodels.Photo{
			{ID: "new"}, {ID: "old"},
		})
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)

	photos, err := client.ListPhotos(context.Background())
	require.NoError(t, err)
	require.Len(t, photos, 2)
	assert.Equal(t, "new", photos[0].ID)
}

func TestDeletePhotos_SendsIDs(t *testing.T) {
	var got struct {
		IDs []string `json:"ids"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)

	require.NoError(t, client.DeletePhotos(context.Background(), []string{"a", "b"}))
	assert.Equal(t, []string{"a", "b"}, got.IDs)
}

func TestDeletePhotos_EmptyIsNoop(t *testing.T) {
	client := newTestClient(t, "http://localhost:1") // never dialled

	require.NoError(t, client.DeletePhotos(context.Background(), nil))
}

func TestDeletePhotos_FailureWrapsErrDelete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)

	err := client.DeletePhotos(context.Background(), []string{"a"})
	require.ErrorIs(t, err, common.ErrDelete)
}

func TestSubscribe_DeliversEventsUntilClose(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/ws", r.URL.Path)
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()

		conn.WriteJSON(clientmodels.ChangeEvent{
			Type:  clientmodels.ChangeInsert,
			Photo: clientmodels.Photo{ID: "p1"},
		})
		conn.WriteJSON(clientmodels.ChangeEvent{
			Type:  clientmodels.ChangeDelete,
			Photo: clientmodels.Photo{ID: "p1"},
		})
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	events, err := client.Subscribe(ctx)
	require.NoError(t, err)

	ev := <-events
	assert.Equal(t, clientmodels.ChangeInsert, ev.Type)
	assert.Equal(t, "p1", ev.Photo.ID)

	ev = <-events
	assert.Equal(t, clientmodels.ChangeDelete, ev.Type)

	// Server hung up; the channel must close.
	_, open := <-events
	assert.False(t, open)
}

func TestSubscribe_CancelClosesChannel(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()
		// Hold the socket open without sending anything.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)

	ctx, cancel := context.WithCancel(context.Background())
	events, err := client.Subscribe(ctx)
	require.NoError(t, err)

	cancel()

	select {
	case _, open := <-events:
		assert.False(t, open)
	case <-time.After(5 * time.Second):
		t.Fatal("channel did not close after cancel")
	}
}
