package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ankitsaini000/rwew-sub007/internal/http/handlers/common"
	"github.com/ankitsaini000/rwew-sub007/internal/service"
)

// ConversationHandler serves conversations and their messages.
type ConversationHandler struct {
	conversations *service.ConversationService
}

func NewConversationHandler(conversations *service.ConversationService) *ConversationHandler {
	return &ConversationHandler{conversations: conversations}
}

type startConversationRequest struct {
	UserID uuid.UUID `json:"user_id" binding:"required"`
}

// Start opens (or returns) the conversation with the counterparty.
func (h *ConversationHandler) Start(c *gin.Context) {
	userID, role, ok := caller(c)
	if !ok {
		return
	}

	var req startConversationRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	conversation, err := h.conversations.Start(c.Request.Context(), userID, role, req.UserID)
	if err != nil {
		respondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, conversation)
}

// Get returns one conversation.
func (h *ConversationHandler) Get(c *gin.Context) {
	userID, role, ok := caller(c)
	if !ok {
		return
	}

	conversationID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	conversation, err := h.conversations.Get(c.Request.Context(), conversationID, userID, role)
	if err != nil {
		respondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, conversation)
}

// List returns the caller's conversations.
func (h *ConversationHandler) List(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	conversations, err := h.conversations.List(c.Request.Context(), userID)
	if err != nil {
		respondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"conversations": conversations})
}

type sendMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

// SendMessage posts a message into the conversation.
func (h *ConversationHandler) SendMessage(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	conversationID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req sendMessageRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	msg, err := h.conversations.SendMessage(c.Request.Context(), conversationID, userID, req.Content)
	if err != nil {
		respondAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, msg)
}

// ListMessages pages through the conversation history.
func (h *ConversationHandler) ListMessages(c *gin.Context) {
	userID, role, ok := caller(c)
	if !ok {
		return
	}

	conversationID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	limit, offset := common.GetPagination(c)
	messages, err := h.conversations.ListMessages(c.Request.Context(), conversationID, userID, role, limit, offset)
	if err != nil {
		respondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": messages, "limit": limit, "offset": offset})
}
