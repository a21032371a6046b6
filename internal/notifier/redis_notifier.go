package notifier

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/Hakob23/thermal-monitoring/internal/config"
	"github.com/Hakob23/thermal-monitoring/internal/models"
	"github.com/Hakob23/thermal-monitoring/internal/redisx"
)

// 每传感器最近报警缓存键前缀
const alertCachePrefix = "thermal:alert:"

// RedisNotifier 把引擎输出写入 Redis Streams，
// 同时维护每传感器最近报警的带 TTL 缓存，供查询端快速读取
type RedisNotifier struct {
	cfg    *config.Config
	client *redisx.Client
	logger *zap.Logger
}

// NewRedisNotifier 创建 Redis 通知器
func NewRedisNotifier(cfg *config.Config, client *redisx.Client, logger *zap.Logger) *RedisNotifier {
	return &RedisNotifier{
		cfg:    cfg,
		client: client,
		logger: logger,
	}
}

// PublishAlert 写入报警流并更新报警缓存
func (n *RedisNotifier) PublishAlert(ctx context.Context, alert models.Alert) error {
	id, err := redisx.PublishJSONToStream(ctx, n.client, n.cfg.Streams.Alerts, alert)
	if err != nil {
		return fmt.Errorf("failed to publish alert to stream: %w", err)
	}

	if err := n.updateAlertCache(ctx, alert); err != nil {
		// 缓存失败不影响流发布结果
		n.logger.Warn("Failed to update alert cache",
			zap.String("sensor_id", alert.SensorID),
			zap.Error(err),
		)
	}

	n.logger.Debug("Alert published to stream",
		zap.String("stream", n.cfg.Streams.Alerts),
		zap.String("message_id", id),
	)
	return nil
}

// PublishTrend 写入趋势流
func (n *RedisNotifier) PublishTrend(ctx context.Context, trend models.TrendResult) error {
	if _, err := redisx.PublishJSONToStream(ctx, n.client, n.cfg.Streams.Trends, trend); err != nil {
		return fmt.Errorf("failed to publish trend to stream: %w", err)
	}
	return nil
}

// PublishAggregate 写入聚合流
func (n *RedisNotifier) PublishAggregate(ctx context.Context, window models.AggregatedWindow) error {
	if _, err := redisx.PublishJSONToStream(ctx, n.client, n.cfg.Streams.Aggregates, window); err != nil {
		return fmt.Errorf("failed to publish aggregated window to stream: %w", err)
	}
	return nil
}

// updateAlertCache 更新每传感器的最近报警缓存
// 键 thermal:alert:{sensor_id}，TTL 到期自动清除
func (n *RedisNotifier) updateAlertCache(ctx context.Context, alert models.Alert) error {
	payload, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("failed to marshal alert for cache: %w", err)
	}

	key := alertCachePrefix + alert.SensorID
	if err := n.client.Set(ctx, key, payload, n.cfg.Streams.AlertTTL).Err(); err != nil {
		return fmt.Errorf("failed to set alert cache key %s: %w", key, err)
	}
	return nil
}
