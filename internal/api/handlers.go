package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"tabletalk/internal/dialogue"
	"tabletalk/internal/history"
)

// Handler wires HTTP routes to the dialogue router and history store.
type Handler struct {
	router  *dialogue.Router
	history *history.Store
}

// NewHandler constructs a Handler instance.
func NewHandler(router *dialogue.Router, hist *history.Store) *Handler {
	return &Handler{router: router, history: hist}
}

// RegisterRoutes attaches all HTTP routes to the router.
func (h *Handler) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api")
	api.POST("/chat", h.chat)
	api.GET("/users/:user_id/conversations/:conversation_id/history", h.getHistory)
	api.DELETE("/users/:user_id/conversations/:conversation_id/history", h.clearHistory)
}

// chat accepts the two logical inputs of a turn: an optional schema
// document and a free-text question.
type chatRequest struct {
	UserID         string `json:"user_id"`
	ConversationID string `json:"conversation_id"`
	Schema         string `json:"schema"`
	Question       string `json:"question"`
}

func (h *Handler) chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if strings.TrimSpace(req.UserID) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}
	if req.ConversationID == "" {
		req.ConversationID = uuid.New().String()
	}

	reply, err := h.router.Handle(c.Request.Context(), dialogue.Turn{
		UserID:         req.UserID,
		ConversationID: req.ConversationID,
		SchemaDoc:      strings.TrimSpace(req.Schema),
		Input:          req.Question,
	})
	if err != nil {
		if errors.Is(err, dialogue.ErrModelCall) {
			c.JSON(http.StatusBadGateway, gin.H{"error": "model call failed, please retry"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"conversation_id": req.ConversationID,
		"reply":           reply,
	})
}

func (h *Handler) getHistory(c *gin.Context) {
	userID := c.Param("user_id")
	conversationID := c.Param("conversation_id")
	messages, err := h.history.History(c.Request.Context(), userID, conversationID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

func (h *Handler) clearHistory(c *gin.Context) {
	userID := c.Param("user_id")
	conversationID := c.Param("conversation_id")
	if err := h.history.Clear(c.Request.Context(), userID, conversationID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}
