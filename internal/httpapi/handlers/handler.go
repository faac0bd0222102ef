package handlers

import (
	"context"

	"gorm.io/gorm"

	"github.com/udyamsetu/platform/internal/chat"
	"github.com/udyamsetu/platform/internal/config"
	"github.com/udyamsetu/platform/internal/orders"
	"github.com/udyamsetu/platform/internal/store/rabbitmq"
)

// SessionStore is what the handlers need from the redis session store.
type SessionStore interface {
	CreateSession(ctx context.Context, userID uint64) (string, error)
	ResolveSession(ctx context.Context, sid string) (uint64, error)
	DeleteSession(ctx context.Context, sid string) error
}

// OrderPublisher enqueues accepted orders for the settlement worker.
type OrderPublisher interface {
	PublishOrder(ctx context.Context, msg rabbitmq.OrderMessage) error
}

type Handler struct {
	DB       *gorm.DB
	Cfg      config.Config
	Sessions SessionStore
	Rabbit   OrderPublisher
	ChatSvc  *chat.Service
	OrderSvc *orders.Service
}

func NewHandler(db *gorm.DB, cfg config.Config, sessions SessionStore, rabbit OrderPublisher) *Handler {
	return &Handler{
		DB:       db,
		Cfg:      cfg,
		Sessions: sessions,
		Rabbit:   rabbit,
		ChatSvc:  chat.NewService(chat.NewRepo(db), cfg.ChatHistoryPageSize),
		OrderSvc: orders.NewService(orders.NewRepo(db)),
	}
}
