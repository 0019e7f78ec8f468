package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/maricastroc/minerva-ai/internal/domain"
	"github.com/maricastroc/minerva-ai/internal/middleware"
	"github.com/maricastroc/minerva-ai/internal/service"
)

// Handler holds all dependencies needed by the HTTP endpoints.
type Handler struct {
	exchange      *service.ExchangeService
	regenerate    *service.RegenerateService
	conversations domain.ConversationStore
	messages      domain.MessageStore
	verifier      middleware.TokenVerifier
}

// Deps contains all dependencies required to construct a Handler.
type Deps struct {
	Exchange      *service.ExchangeService
	Regenerate    *service.RegenerateService
	Conversations domain.ConversationStore
	Messages      domain.MessageStore
	Verifier      middleware.TokenVerifier
}

// New creates a new Handler from the provided dependencies.
func New(deps Deps) *Handler {
	return &Handler{
		exchange:      deps.Exchange,
		regenerate:    deps.Regenerate,
		conversations: deps.Conversations,
		messages:      deps.Messages,
		verifier:      deps.Verifier,
	}
}

// Register mounts all routes on the engine.
func (h *Handler) Register(r *gin.Engine) {
	r.GET("/healthz", h.Health)

	api := r.Group("/api", middleware.Auth(h.verifier))
	api.POST("/chatbot", h.Submit)
	api.POST("/chatbot/regenerate", h.Regenerate)
	api.GET("/user/chats", h.ListChats)
	api.DELETE("/user/chats", h.DeleteAllChats)
	api.GET("/user/chats/:id", h.GetChat)
	api.GET("/user/chats/:id/messages", h.GetChatMessages)
	api.PATCH("/user/chats/:id/title", h.UpdateChatTitle)
	api.DELETE("/user/chats/:id", h.DeleteChat)
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// writeError maps the domain taxonomy onto HTTP statuses.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrInvalidRole),
		errors.Is(err, domain.ErrAlreadyRegenerated),
		errors.Is(err, domain.ErrRegenerationNoChange):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrConversationNotFound),
		errors.Is(err, domain.ErrMessageNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
