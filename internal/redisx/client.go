package redisx

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"

	"github.com/Hakob23/thermal-monitoring/internal/config"
)

// Client Redis客户端类型别名
type Client = redis.Client

// NewRedisClient 创建 Redis 客户端并验证连通性
// 连接失败时返回错误而不是延迟到第一次发布才暴露
func NewRedisClient(ctx context.Context, cfg *config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", cfg.Addr, err)
	}
	return client, nil
}
