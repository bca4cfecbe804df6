// Package httpapi exposes the simulation service to browser and
// diagnostics clients. It is a thin embedding host: all chat semantics live
// in the simulation package; handlers only bind requests and map errors.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"nexus-chat/internal/models"
	"nexus-chat/internal/simulation"
	"nexus-chat/internal/telemetry"
)

// Backend is the slice of the simulation service the API serves.
type Backend interface {
	Login(ctx context.Context, email string) (models.AuthResponse, error)
	Register(ctx context.Context, email, username string) (models.AuthResponse, error)
	UpdateUser(ctx context.Context, id int, updates models.UserUpdate) (models.User, error)
	Rooms(ctx context.Context) ([]models.Room, error)
	Messages(ctx context.Context, roomID int) ([]models.Message, error)
	Users(ctx context.Context) ([]models.User, error)
	Analytics(ctx context.Context) (models.AnalyticsSnapshot, error)
	MarkAsRead(ctx context.Context, roomID, userID int) error
	SendMessage(ctx context.Context, roomID int, content string) (models.Message, error)
}

// Handler holds the API dependencies.
type Handler struct {
	backend Backend
	audit   *telemetry.AuditEmitter
}

// NewHandler builds a Handler.
func NewHandler(backend Backend, audit *telemetry.AuditEmitter) *Handler {
	return &Handler{backend: backend, audit: audit}
}

// Login authenticates the demo session.
func (h *Handler) Login(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.backend.Login(c.Request.Context(), req.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}

	h.emitAudit(c, "login", "ok", resp.User.ID, 0)
	c.JSON(http.StatusOK, resp)
}

// Register creates a fresh account and binds the session to it.
func (h *Handler) Register(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Username string `json:"username" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.backend.Register(c.Request.Context(), req.Email, req.Username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "registration failed"})
		return
	}

	h.emitAudit(c, "register", "ok", resp.User.ID, 0)
	c.JSON(http.StatusCreated, resp)
}

// UpdateUser applies a partial profile edit.
func (h *Handler) UpdateUser(c *gin.Context) {
	userID, err := strconv.Atoi(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	var updates models.UserUpdate
	if err := c.ShouldBindJSON(&updates); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.backend.UpdateUser(c.Request.Context(), userID, updates)
	if errors.Is(err, simulation.ErrUserNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}

	c.JSON(http.StatusOK, updated)
}

// Rooms returns every room with its derived last message.
func (h *Handler) Rooms(c *gin.Context) {
	rooms, err := h.backend.Rooms(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load rooms"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"rooms": rooms})
}

// Messages returns a room's thread, ascending by timestamp.
func (h *Handler) Messages(c *gin.Context) {
	roomID, err := strconv.Atoi(c.Param("room_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room id"})
		return
	}

	msgs, err := h.backend.Messages(c.Request.Context(), roomID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

// Users returns the user table snapshot.
func (h *Handler) Users(c *gin.Context) {
	users, err := h.backend.Users(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load users"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

// Analytics returns the dashboard snapshot.
func (h *Handler) Analytics(c *gin.Context) {
	snap, err := h.backend.Analytics(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load analytics"})
		return
	}
	c.JSON(http.StatusOK, snap)
}

// MarkRead marks a room read by the authenticated viewer.
func (h *Handler) MarkRead(c *gin.Context) {
	roomID, err := strconv.Atoi(c.Param("room_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room id"})
		return
	}
	userID := c.GetInt("userID")

	err = h.backend.MarkAsRead(c.Request.Context(), roomID, userID)
	if errors.Is(err, simulation.ErrUnauthenticated) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no active session"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to mark read"})
		return
	}

	c.Status(http.StatusNoContent)
}

// SendMessage posts a message to a room and returns the stored record. The
// optimistic new_message event has already fired by the time this responds.
func (h *Handler) SendMessage(c *gin.Context) {
	roomID, err := strconv.Atoi(c.Param("room_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room id"})
		return
	}

	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msg, err := h.backend.SendMessage(c.Request.Context(), roomID, req.Content)
	switch {
	case errors.Is(err, simulation.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no active session"})
		return
	case errors.Is(err, simulation.ErrRoomNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
		return
	case errors.Is(err, simulation.ErrNotMember):
		c.JSON(http.StatusForbidden, gin.H{"error": "not a room member"})
		return
	case errors.Is(err, simulation.ErrEmptyContent):
		c.JSON(http.StatusBadRequest, gin.H{"error": "content must not be empty"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to send message"})
		return
	}

	h.emitAudit(c, "send_message", "ok", msg.SenderID, roomID)
	c.JSON(http.StatusCreated, msg)
}

func (h *Handler) emitAudit(c *gin.Context, operation, outcome string, userID, roomID int) {
	if h.audit == nil {
		return
	}
	var uid *int
	if userID != 0 {
		uid = &userID
	}
	h.audit.Emit(c.Request.Context(), operation, outcome, requestIDFromContext(c), uid, roomID)
}
