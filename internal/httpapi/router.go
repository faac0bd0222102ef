package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/udyamsetu/platform/internal/assistant"
	"github.com/udyamsetu/platform/internal/common"
	"github.com/udyamsetu/platform/internal/config"
	"github.com/udyamsetu/platform/internal/httpapi/handlers"
	"github.com/udyamsetu/platform/internal/httpapi/middleware"
	"github.com/udyamsetu/platform/internal/ws"
)

func NewRouter(db *gorm.DB, cfg config.Config, sessions handlers.SessionStore, rabbit handlers.OrderPublisher) *gin.Engine {
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

	h := handlers.NewHandler(db, cfg, sessions, rabbit)
	gateway := ws.NewGateway(sessions, ws.NewRegistry(), assistant.Default())

	r.GET("/ping", func(c *gin.Context) { common.OK(c, gin.H{"pong": true}) })

	// accounts
	r.POST("/users", h.CreateUser)
	r.GET("/users/:id", h.GetUserByID)
	r.POST("/login", h.Login)
	r.POST("/logout", h.Logout)

	// public catalog
	r.GET("/products", h.ListProducts)
	r.GET("/products/:id", h.GetProduct)

	// chat socket: admission is the session cookie, checked by the gateway
	// itself before upgrade
	r.GET("/ws", gateway.HandleWS)

	authGroup := r.Group("/")
	authGroup.Use(middleware.AuthRequired(cfg.JWTSecret, ws.SessionCookie, sessions))
	authGroup.GET("/me", h.Me)

	// message ledger
	authGroup.POST("/chat/messages", h.PostChatMessage)
	authGroup.GET("/chat/messages", h.ListChatMessages)
	authGroup.GET("/chat/conversations/:user_id", h.GetConversation)

	// marketplace
	authGroup.POST("/products", h.CreateProduct)
	authGroup.POST("/orders", h.CreateOrder)
	authGroup.GET("/orders/:order_id", h.GetOrder)

	return r
}
