// Package httpapi exposes the photo service over HTTP (gin) and upgrades
// dashboard clients onto the realtime change feed.
package httpapi

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/docsnap/docsnap/internal/logging"
	"github.com/docsnap/docsnap/internal/server/models"
)

// PhotoService is the application surface the HTTP layer calls into.
type PhotoService interface {
	Upload(ctx context.Context, side string, data []byte) (*models.Photo, error)
	List(ctx context.Context) ([]*models.Photo, error)
	Delete(ctx context.Context, ids []string) error
}

// SubscriberHub attaches WebSocket connections to the change feed.
type SubscriberHub interface {
	Register(conn *websocket.Conn)
	Unregister(conn *websocket.Conn)
}

// Handler carries the route dependencies.
type Handler struct {
	service  PhotoService
	hub      SubscriberHub
	logger   logging.Logger
	upgrader websocket.Upgrader
}

// NewHandler builds the HTTP handler set.
func NewHandler(service PhotoService, hub SubscriberHub, logger logging.Logger) *Handler {
	return &Handler{
		service: service,
		hub:     hub,
		logger:  logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// NewRouter wires all routes onto a gin engine.
func NewRouter(h *Handler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	api := router.Group("/api")
	{
		api.GET("/photos", h.listPhotos)
		api.POST("/photos", h.uploadPhoto)
		api.DELETE("/photos", h.deletePhotos)
	}

	router.GET("/ws", h.subscribe)

	return router
}

func (h *Handler) listPhotos(c *gin.Context) {
	result, err := h.service.List(c.Request.Context())
	if err != nil {
		h.logger.Error(c.Request.Context(), "list photos", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load photos"})
		return
	}
	if result == nil {
		result = []*models.Photo{}
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) uploadPhoto(c *gin.Context) {
	side := c.PostForm("side")

	file, _, err := c.Request.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing image file"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read image"})
		return
	}

	photo, err := h.service.Upload(c.Request.Context(), side, data)
	if err != nil {
		h.logger.Error(c.Request.Context(), "upload photo", "side", side, "err", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, photo)
}

type deleteRequest struct {
	IDs []string `json:"ids" binding:"required"`
}

func (h *Handler) deletePhotos(c *gin.Context) {
	var req deleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ids are required"})
		return
	}

	if err := h.service.Delete(c.Request.Context(), req.IDs); err != nil {
		h.logger.Error(c.Request.Context(), "delete photos", "err", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}

// subscribe upgrades the connection and parks it on the hub until the peer
// goes away. Inbound messages are discarded; the socket is push-only.
func (h *Handler) subscribe(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn(c.Request.Context(), "websocket upgrade failed", "err", err)
		return
	}

	h.hub.Register(conn)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.hub.Unregister(conn)
			return
		}
	}
}
