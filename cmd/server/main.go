package main

import (
	"log"

	"github.com/redis/go-redis/v9"

	"github.com/skillswaphq/skillswap-chat/internal/chat"
	"github.com/skillswaphq/skillswap-chat/internal/config"
	"github.com/skillswaphq/skillswap-chat/internal/db"
	"github.com/skillswaphq/skillswap-chat/internal/httpapi"
	"github.com/skillswaphq/skillswap-chat/internal/live"
	"github.com/skillswaphq/skillswap-chat/internal/models"
	"github.com/skillswaphq/skillswap-chat/internal/store/rabbitmq"
)

func main() {
	cfg := config.Load()

	gdb := db.Connect(cfg.DBDSN)

	rds := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	repo := chat.NewRepo(gdb)
	channel := live.NewRedisChannel(rds, nil)

	publisher, err := rabbitmq.NewPublisher(cfg.RabbitURL, cfg.RabbitQueue)
	if err != nil {
		log.Fatalf("rabbit publisher: %v", err)
	}
	defer publisher.Close()

	svc := chat.NewService(repo, channel, publisher, models.NewDirectory(gdb), cfg.HistoryTimeout, nil)

	r := httpapi.NewRouter(gdb, cfg, svc, repo)

	log.Printf("server listening on %s", cfg.HTTPAddr)
	if err := r.Run(cfg.HTTPAddr); err != nil {
		log.Fatalf("server: %v", err)
	}
}
