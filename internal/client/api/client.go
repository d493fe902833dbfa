// Package api is the client-side transport for the photo server: REST calls
// for the photo table and blob uploads, WebSocket for the change feed.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/websocket"

	clientmodels "github.com/docsnap/docsnap/internal/client/models"
	"github.com/docsnap/docsnap/internal/common"
	"github.com/docsnap/docsnap/internal/logging"
)

// Client talks to one photo server.
type Client struct {
	base   *url.URL
	http   *http.Client
	logger logging.Logger
}

func NewClient(baseURL string, logger logging.Logger) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported server scheme %q", u.Scheme)
	}

	return &Client{
		base:   u,
		http:   &http.Client{Timeout: 30 * time.Second},
		logger: logger,
	}, nil
}

// SecureOrigin reports whether the server endpoint counts as a trusted
// capture origin: TLS anywhere, or plain HTTP on the local machine only.
func (c *Client) SecureOrigin() bool {
	if c.base.Scheme == "https" {
		return true
	}
	switch c.base.Hostname() {
	case "localhost", "127.0.0.1", "::1":
		return true
	}
	return false
}

func (c *Client) endpoint(path string) string {
	u := *c.base
	u.Path = path
	return u.String()
}

// UploadPhoto sends one encoded frame for the given document side and
// returns the stored metadata record.
func (c *Client) UploadPhoto(ctx context.Context, side string, jpeg []byte) (*clientmodels.Photo, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	if err := mw.WriteField("side", side); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrUpload, err)
	}
	fw, err := mw.CreateFormFile("image", "capture.jpg")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrUpload, err)
	}
	if _, err := fw.Write(jpeg); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrUpload, err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrUpload, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("/api/photos"), &body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrUpload, err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrUpload, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("%w: %s", common.ErrUpload, readAPIError(resp))
	}

	var photo clientmodels.Photo
	if err := json.NewDecoder(resp.Body).Decode(&photo); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", common.ErrUpload, err)
	}
	return &photo, nil
}

// ListPhotos fetches the full photo table, newest first.
func (c *Client) ListPhotos(ctx context.Context) ([]clientmodels.Photo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("/api/photos"), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list photos: %s", readAPIError(resp))
	}

	var photos []clientmodels.Photo
	if err := json.NewDecoder(resp.Body).Decode(&photos); err != nil {
		return nil, fmt.Errorf("list photos: decode response: %w", err)
	}
	return photos, nil
}

// DeletePhotos removes the given photos, blobs and metadata both.
func (c *Client) DeletePhotos(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	payload, err := json.Marshal(map[string][]string{"ids": ids})
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrDelete, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.endpoint("/api/photos"), bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrDelete, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrDelete, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("%w: %s", common.ErrDelete, readAPIError(resp))
	}
	return nil
}

// Subscribe attaches to the change feed. Events arrive on the returned
// channel until the socket dies or ctx is cancelled; the channel is closed
// in both cases.
func (c *Client) Subscribe(ctx context.Context) (<-chan clientmodels.ChangeEvent, error) {
	wsURL := *c.base
	switch wsURL.Scheme {
	case "https":
		wsURL.Scheme = "wss"
	default:
		wsURL.Scheme = "ws"
	}
	wsURL.Path = "/ws"

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("subscribe: %w", err)
	}
	if resp != nil {
		resp.Body.Close()
	}

	events := make(chan clientmodels.ChangeEvent)

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	go func() {
		defer close(events)
		defer conn.Close()
		for {
			var ev clientmodels.ChangeEvent
			if err := conn.ReadJSON(&ev); err != nil {
				if ctx.Err() == nil {
					c.logger.Warn(ctx, "change feed closed", "err", err)
				}
				return
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	return events, nil
}

// readAPIError extracts the error field of a JSON error payload, falling
// back to the HTTP status.
func readAPIError(resp *http.Response) string {
	data, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err == nil {
		var payload struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &payload) == nil && payload.Error != "" {
			return payload.Error
		}
	}
	return resp.Status
}
