package handlers

import (
	"gorm.io/gorm"

	"github.com/skillswaphq/skillswap-chat/internal/chat"
	"github.com/skillswaphq/skillswap-chat/internal/config"
)

type Handler struct {
	DB      *gorm.DB
	Cfg     config.Config
	ChatSvc *chat.Service
	Repo    *chat.Repo
}

func NewHandler(db *gorm.DB, cfg config.Config, svc *chat.Service, repo *chat.Repo) *Handler {
	return &Handler{DB: db, Cfg: cfg, ChatSvc: svc, Repo: repo}
}
