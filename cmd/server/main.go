package main

import (
	"context"
	"log"
	"time"

	"github.com/udyamsetu/platform/internal/chat"
	"github.com/udyamsetu/platform/internal/config"
	"github.com/udyamsetu/platform/internal/db"
	"github.com/udyamsetu/platform/internal/httpapi"
	"github.com/udyamsetu/platform/internal/models"
	"github.com/udyamsetu/platform/internal/orders"
	"github.com/udyamsetu/platform/internal/store/rabbitmq"
	"github.com/udyamsetu/platform/internal/store/redisstore"
)

func main() {
	cfg := config.Load()

	gdb := db.Connect(cfg.DBDSN)
	if err := gdb.AutoMigrate(
		&models.User{},
		&models.Product{},
		&chat.Message{},
		&orders.Order{},
	); err != nil {
		log.Fatalf("automigrate: %v", err)
	}

	sessions := redisstore.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.SessionTTL)
	defer sessions.Close()

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := sessions.Ping(pingCtx); err != nil {
		cancel()
		log.Fatalf("redis ping: %v", err)
	}
	cancel()

	rabbit, err := rabbitmq.NewPublisher(cfg.RabbitURL, cfg.RabbitQueue)
	if err != nil {
		log.Fatalf("rabbit connect: %v", err)
	}
	defer rabbit.Close()

	r := httpapi.NewRouter(gdb, cfg, sessions, rabbit)

	log.Printf("server listening addr=%s", cfg.HTTPAddr)
	if err := r.Run(cfg.HTTPAddr); err != nil {
		log.Fatalf("server: %v", err)
	}
}
