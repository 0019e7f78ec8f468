package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/maricastroc/minerva-ai/internal/domain"
	"github.com/maricastroc/minerva-ai/internal/middleware"
	"github.com/maricastroc/minerva-ai/internal/service"
)

type submitRequest struct {
	Message             string        `json:"message" binding:"required"`
	ChatID              string        `json:"chatID"`
	ConversationHistory []domain.Turn `json:"conversationHistory"`
}

type messageIDs struct {
	UserMessageID      string `json:"userMessageId"`
	AssistantMessageID string `json:"assistantMessageId"`
}

type submitResponse struct {
	Reply             string     `json:"reply"`
	ChatID            string     `json:"chatID"`
	IsNewConversation bool       `json:"isNewConversation"`
	MessageIDs        messageIDs `json:"messageIds"`
}

// Submit handles POST /api/chatbot. Generation exhaustion never yields
// an error status: the reply is then the local fallback.
func (h *Handler) Submit(c *gin.Context) {
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
		return
	}

	out, err := h.exchange.Process(c.Request.Context(), service.ProcessInput{
		OwnerID:        middleware.Owner(c),
		Message:        req.Message,
		ConversationID: req.ChatID,
		History:        req.ConversationHistory,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, submitResponse{
		Reply:             out.Reply,
		ChatID:            out.ConversationID,
		IsNewConversation: out.IsNewConversation,
		MessageIDs: messageIDs{
			UserMessageID:      out.UserMessageID,
			AssistantMessageID: out.AssistantMessageID,
		},
	})
}

type regenerateRequest struct {
	ConversationID string `json:"conversationId" binding:"required"`
	MessageID      string `json:"messageId" binding:"required"`
}

type regenerateResponse struct {
	RegeneratedReply  string `json:"regeneratedReply"`
	NewMessageID      string `json:"newMessageId"`
	OriginalMessageID string `json:"originalMessageId"`
}

// Regenerate handles POST /api/chatbot/regenerate.
func (h *Handler) Regenerate(c *gin.Context) {
	var req regenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "conversationId and messageId are required"})
		return
	}

	out, err := h.regenerate.Regenerate(c.Request.Context(), middleware.Owner(c), req.ConversationID, req.MessageID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, regenerateResponse{
		RegeneratedReply:  out.RegeneratedReply,
		NewMessageID:      out.NewMessageID,
		OriginalMessageID: out.OriginalMessageID,
	})
}
