package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/udyamsetu/platform/internal/chat"
	"github.com/udyamsetu/platform/internal/common"
)

type postMessageReq struct {
	Content  string  `json:"content" binding:"required"`
	ToUserID *uint64 `json:"to_user_id"`
	IsAI     bool    `json:"is_ai"`
}

// PostChatMessage is the durable half of the chat dual-write: clients call
// it for every message regardless of whether live socket delivery happened.
func (h *Handler) PostChatMessage(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	var req postMessageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	msg, err := h.ChatSvc.SaveMessage(c.Request.Context(), uid, req.ToUserID, req.IsAI, req.Content)
	if err != nil {
		switch {
		case errors.Is(err, chat.ErrEmptyBody):
			common.Fail(c, http.StatusBadRequest, 10010, "message body is empty")
		case errors.Is(err, chat.ErrAmbiguousTarget):
			common.Fail(c, http.StatusBadRequest, 10011, "message must target exactly one of a user or the assistant")
		case errors.Is(err, chat.ErrUnknownRecipient):
			common.Fail(c, http.StatusBadRequest, 10012, "recipient not found")
		default:
			common.Fail(c, http.StatusInternalServerError, 50002, "failed to save message")
		}
		return
	}

	common.OK(c, gin.H{"message": msg})
}

func (h *Handler) ListChatMessages(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	limit, _ := strconv.Atoi(c.Query("limit"))
	var beforeID uint64
	if v := c.Query("before_id"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			beforeID = n
		}
	}

	msgs, err := h.ChatSvc.History(c.Request.Context(), uid, limit, beforeID)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50003, "failed to list messages")
		return
	}

	var nextBeforeID uint64
	if len(msgs) > 0 {
		nextBeforeID = msgs[len(msgs)-1].ID
	}

	common.OK(c, gin.H{
		"messages":       msgs,
		"next_before_id": nextBeforeID,
	})
}

// GetConversation returns the thread between the current user and one peer,
// oldest first.
func (h *Handler) GetConversation(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	peerID, err := strconv.ParseUint(c.Param("user_id"), 10, 64)
	if err != nil || peerID == 0 {
		common.Fail(c, http.StatusBadRequest, 10004, "invalid user id")
		return
	}

	limit, _ := strconv.Atoi(c.Query("limit"))
	msgs, err := h.ChatSvc.Conversation(c.Request.Context(), uid, peerID, limit)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50003, "failed to list messages")
		return
	}

	common.OK(c, gin.H{"messages": msgs})
}
