package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/maricastroc/minerva-ai/internal/domain"
	"github.com/maricastroc/minerva-ai/internal/middleware"
)

type chatResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type chatMessageResponse struct {
	ID                string    `json:"id"`
	Role              string    `json:"role"`
	Content           string    `json:"content"`
	Regenerated       bool      `json:"regenerated"`
	OriginalMessageID *string   `json:"originalMessageId,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
}

// ListChats handles GET /api/user/chats, newest activity first.
func (h *Handler) ListChats(c *gin.Context) {
	convs, err := h.conversations.ListByOwner(c.Request.Context(), middleware.Owner(c))
	if err != nil {
		writeError(c, err)
		return
	}

	out := make([]chatResponse, 0, len(convs))
	for _, conv := range convs {
		out = append(out, toChatResponse(conv))
	}
	c.JSON(http.StatusOK, out)
}

// GetChat handles GET /api/user/chats/:id.
func (h *Handler) GetChat(c *gin.Context) {
	conv, err := h.ownedConversation(c)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toChatResponse(*conv))
}

// GetChatMessages handles GET /api/user/chats/:id/messages in replay
// order.
func (h *Handler) GetChatMessages(c *gin.Context) {
	conv, err := h.ownedConversation(c)
	if err != nil {
		writeError(c, err)
		return
	}

	msgs, err := h.messages.ListByConversation(c.Request.Context(), conv.ID)
	if err != nil {
		writeError(c, err)
		return
	}

	out := make([]chatMessageResponse, 0, len(msgs))
	for _, msg := range msgs {
		out = append(out, chatMessageResponse{
			ID:                msg.ID,
			Role:              string(msg.Role),
			Content:           msg.Content,
			Regenerated:       msg.Regenerated,
			OriginalMessageID: msg.OriginalMessageID,
			CreatedAt:         msg.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, out)
}

type updateTitleRequest struct {
	Title string `json:"title" binding:"required"`
}

// UpdateChatTitle handles PATCH /api/user/chats/:id/title.
func (h *Handler) UpdateChatTitle(c *gin.Context) {
	conv, err := h.ownedConversation(c)
	if err != nil {
		writeError(c, err)
		return
	}

	var req updateTitleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
		return
	}

	if err := h.conversations.UpdateTitle(c.Request.Context(), conv.ID, req.Title); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": conv.ID, "title": req.Title})
}

// DeleteChat handles DELETE /api/user/chats/:id.
func (h *Handler) DeleteChat(c *gin.Context) {
	conv, err := h.ownedConversation(c)
	if err != nil {
		writeError(c, err)
		return
	}

	if err := h.conversations.Delete(c.Request.Context(), conv.ID); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DeleteAllChats handles DELETE /api/user/chats.
func (h *Handler) DeleteAllChats(c *gin.Context) {
	if err := h.conversations.DeleteByOwner(c.Request.Context(), middleware.Owner(c)); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) ownedConversation(c *gin.Context) (*domain.Conversation, error) {
	conv, err := h.conversations.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		return nil, err
	}
	if conv.OwnerID != middleware.Owner(c) {
		return nil, domain.ErrForbidden
	}
	return conv, nil
}

func toChatResponse(conv domain.Conversation) chatResponse {
	return chatResponse{
		ID:        conv.ID,
		Title:     conv.Title,
		CreatedAt: conv.CreatedAt,
		UpdatedAt: conv.UpdatedAt,
	}
}
