package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/skillswaphq/skillswap-chat/internal/chat"
	"github.com/skillswaphq/skillswap-chat/internal/common"
	"github.com/skillswaphq/skillswap-chat/internal/config"
	"github.com/skillswaphq/skillswap-chat/internal/httpapi/handlers"
	"github.com/skillswaphq/skillswap-chat/internal/httpapi/middleware"
)

func NewRouter(db *gorm.DB, cfg config.Config, svc *chat.Service, repo *chat.Repo) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Logger())
	r.Use(middleware.Recovery())

	r.NoRoute(func(c *gin.Context) {
		common.Fail(c, http.StatusNotFound, 40400, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		common.Fail(c, http.StatusMethodNotAllowed, 40500, "method not allowed")
	})

	r.Use(middleware.RequestID())

	h := handlers.NewHandler(db, cfg, svc, repo)

	r.GET("/ping", h.Ping)

	r.POST("/users", h.CreateUser)
	r.POST("/login", h.Login)
	r.GET("/users/:uid", h.GetUserByUID)

	authGroup := r.Group("/")
	authGroup.Use(middleware.AuthRequired(cfg.JWTSecret))
	authGroup.GET("/me", h.Me)

	// Chat (JWT required)
	authGroup.GET("/api/chat/history/:other_uid", h.GetChatHistory)
	authGroup.GET("/api/chat/list", h.ListChats)
	authGroup.GET("/ws/chat/:other_uid", h.ChatSocket)

	// Documents dashboard view
	authGroup.POST("/api/documents", h.ShareDocument)
	authGroup.GET("/api/documents/received", h.ListDocumentsReceived)
	authGroup.GET("/api/documents/sent", h.ListDocumentsSent)

	return r
}
