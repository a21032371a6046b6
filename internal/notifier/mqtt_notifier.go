package notifier

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/Hakob23/thermal-monitoring/internal/config"
	"github.com/Hakob23/thermal-monitoring/internal/models"
	"github.com/Hakob23/thermal-monitoring/internal/mqtt"
)

// MQTTNotifier 把引擎输出发布到 MQTT 主题
// 报警: {alert_base}/{sensor_id}
// 趋势: {trend_base}/{sensor_id}
// 聚合: {agg_base}/{sensor_id}/aggregated
type MQTTNotifier struct {
	cfg    *config.Config
	client *mqtt.Client
	logger *zap.Logger
}

// NewMQTTNotifier 创建 MQTT 通知器
func NewMQTTNotifier(cfg *config.Config, client *mqtt.Client, logger *zap.Logger) *MQTTNotifier {
	return &MQTTNotifier{
		cfg:    cfg,
		client: client,
		logger: logger,
	}
}

// PublishAlert 发布报警事件
func (n *MQTTNotifier) PublishAlert(ctx context.Context, alert models.Alert) error {
	payload, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("failed to marshal alert: %w", err)
	}

	topic := fmt.Sprintf("%s/%s", n.cfg.Topics.AlertBase, alert.SensorID)
	if err := n.client.Publish(topic, n.cfg.MQTT.QoS, false, payload); err != nil {
		return fmt.Errorf("failed to publish alert to MQTT: %w", err)
	}

	n.logger.Debug("Alert published to MQTT",
		zap.String("topic", topic),
		zap.String("event_id", alert.EventID),
	)
	return nil
}

// PublishTrend 发布趋势分析结果
func (n *MQTTNotifier) PublishTrend(ctx context.Context, trend models.TrendResult) error {
	payload, err := json.Marshal(trend)
	if err != nil {
		return fmt.Errorf("failed to marshal trend result: %w", err)
	}

	topic := fmt.Sprintf("%s/%s", n.cfg.Topics.TrendBase, trend.SensorID)
	if err := n.client.Publish(topic, n.cfg.MQTT.QoS, false, payload); err != nil {
		return fmt.Errorf("failed to publish trend to MQTT: %w", err)
	}
	return nil
}

// PublishAggregate 发布聚合窗口
func (n *MQTTNotifier) PublishAggregate(ctx context.Context, window models.AggregatedWindow) error {
	payload, err := json.Marshal(window)
	if err != nil {
		return fmt.Errorf("failed to marshal aggregated window: %w", err)
	}

	topic := fmt.Sprintf("%s/%s/aggregated", n.cfg.Topics.AggBase, window.SensorID)
	if err := n.client.Publish(topic, n.cfg.MQTT.QoS, false, payload); err != nil {
		return fmt.Errorf("failed to publish aggregated window to MQTT: %w", err)
	}
	return nil
}
