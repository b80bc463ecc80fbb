package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skillswaphq/skillswap-chat/internal/chat"
	"github.com/skillswaphq/skillswap-chat/internal/common"
	"github.com/skillswaphq/skillswap-chat/internal/httpapi/middleware"
)

type shareDocumentReq struct {
	RecipientUID string `json:"recipient_uid" binding:"required"`
	FileName     string `json:"file_name" binding:"required"`
	FileURL      string `json:"file_url" binding:"required"`
}

// ShareDocument records a file shared with another user. The upload itself
// happens against external storage; only the transfer record lives here.
func (h *Handler) ShareDocument(c *gin.Context) {
	uid, ok := middleware.CurrentUID(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	var req shareDocumentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}
	if req.RecipientUID == uid {
		common.Fail(c, http.StatusBadRequest, 10011, "cannot share a document with yourself")
		return
	}

	doc := chat.DocumentTransfer{
		FileName:    req.FileName,
		FileURL:     req.FileURL,
		SenderID:    uid,
		RecipientID: req.RecipientUID,
	}
	if err := h.Repo.CreateDocument(c.Request.Context(), &doc); err != nil {
		common.Fail(c, http.StatusInternalServerError, 50004, "failed to record document")
		return
	}
	common.OK(c, doc)
}

func (h *Handler) ListDocumentsReceived(c *gin.Context) {
	uid, ok := middleware.CurrentUID(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}
	docs, err := h.Repo.DocumentsReceived(c.Request.Context(), uid)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50005, "failed to list documents")
		return
	}
	if docs == nil {
		docs = []chat.DocumentTransfer{}
	}
	common.OK(c, gin.H{"documents": docs})
}

func (h *Handler) ListDocumentsSent(c *gin.Context) {
	uid, ok := middleware.CurrentUID(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}
	docs, err := h.Repo.DocumentsSent(c.Request.Context(), uid)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50005, "failed to list documents")
		return
	}
	if docs == nil {
		docs = []chat.DocumentTransfer{}
	}
	common.OK(c, gin.H{"documents": docs})
}
