package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skillswaphq/skillswap-chat/internal/chat"
	"github.com/skillswaphq/skillswap-chat/internal/common"
	"github.com/skillswaphq/skillswap-chat/internal/httpapi/middleware"
)

// GetChatHistory returns the persisted timeline with another user, oldest
// first. Always a JSON array, never null.
func (h *Handler) GetChatHistory(c *gin.Context) {
	uid, ok := middleware.CurrentUID(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	msgs, err := h.ChatSvc.History(c.Request.Context(), uid, c.Param("other_uid"))
	if err != nil {
		if errors.Is(err, chat.ErrInvalidParticipants) {
			common.Fail(c, http.StatusBadRequest, 10010, "invalid participants")
			return
		}
		common.Fail(c, http.StatusInternalServerError, 50002, "failed to load history")
		return
	}

	common.OK(c, gin.H{"messages": msgs})
}

// ListChats returns the dashboard conversation list, most recently active
// first.
func (h *Handler) ListChats(c *gin.Context) {
	uid, ok := middleware.CurrentUID(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	summaries, err := h.ChatSvc.ListConversations(c.Request.Context(), uid)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50003, "failed to list chats")
		return
	}
	if summaries == nil {
		summaries = []chat.ConversationSummary{}
	}
	common.OK(c, gin.H{"chats": summaries})
}
