package repo

import (
	"TeleVault/config"
	"context"
	"log"

	"github.com/redis/go-redis/v9"
)

var Redis *redis.Client

// InitRedis initializes the optional Redis client used for durable
// conversation state. When REDIS_ADDR is unset the bot falls back to
// in-memory sessions.
func InitRedis() {
	if config.AppConfig.RedisAddr == "" {
		log.Println("redis not configured, using in-memory sessions")
		return
	}
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisDB,
	})
	if _, err := client.Ping(context.Background()).Result(); err != nil {
		log.Fatal("init redis fail", err)
	}
	log.Println("init redis success")
	Redis = client
}
