package consumer

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Hakob23/thermal-monitoring/internal/config"
	"github.com/Hakob23/thermal-monitoring/internal/models"
	"github.com/Hakob23/thermal-monitoring/internal/mqtt"
	"github.com/Hakob23/thermal-monitoring/internal/pipeline"
	"github.com/Hakob23/thermal-monitoring/internal/store"
)

// MQTTConsumer 传感器数据消费者
// 订阅传感器主题，解析、合并单通道字段后提交到摄入流水线
type MQTTConsumer struct {
	cfg      *config.Config
	client   *mqtt.Client
	pipeline *pipeline.Pipeline
	store    *store.SensorStore
	logger   *zap.Logger
	nowFn    func() time.Time
}

// NewMQTTConsumer 创建传感器数据消费者
func NewMQTTConsumer(
	cfg *config.Config,
	client *mqtt.Client,
	ingestPipeline *pipeline.Pipeline,
	sensorStore *store.SensorStore,
	logger *zap.Logger,
) *MQTTConsumer {
	return &MQTTConsumer{
		cfg:      cfg,
		client:   client,
		pipeline: ingestPipeline,
		store:    sensorStore,
		logger:   logger,
		nowFn:    time.Now,
	}
}

// Start 订阅传感器数据主题
func (c *MQTTConsumer) Start() error {
	topic := c.cfg.Topics.SensorData
	if err := c.client.Subscribe(topic, c.cfg.MQTT.QoS, c.handleMessage); err != nil {
		return fmt.Errorf("failed to subscribe to sensor topic: %w", err)
	}

	c.logger.Info("Sensor consumer started",
		zap.String("topic", topic),
	)
	return nil
}

// Stop 取消订阅
func (c *MQTTConsumer) Stop() {
	if err := c.client.Unsubscribe(c.cfg.Topics.SensorData); err != nil {
		c.logger.Warn("Failed to unsubscribe sensor topic", zap.Error(err))
	}
	c.logger.Info("Sensor consumer stopped")
}

// handleMessage 处理单条传感器消息
// 解析失败和队列满都只记录日志，不中断订阅
func (c *MQTTConsumer) handleMessage(topic string, payload []byte) error {
	parsed, err := ParseMessage(topic, payload, c.nowFn())
	if err != nil {
		return fmt.Errorf("parse sensor message: %w", err)
	}

	reading := c.mergePartial(parsed)

	if err := c.pipeline.Submit(reading); err != nil {
		if errors.Is(err, pipeline.ErrQueueFull) {
			// 丢弃计数已在流水线内递增
			c.logger.Warn("Ingest queue full, reading dropped",
				zap.String("sensor_id", reading.SensorID),
			)
			return nil
		}
		return fmt.Errorf("submit reading: %w", err)
	}
	return nil
}

// mergePartial 用当前状态补齐单通道消息缺失的字段
// 未知传感器的缺失字段保持零值
func (c *MQTTConsumer) mergePartial(parsed ParsedReading) models.Reading {
	reading := parsed.Reading
	if parsed.HasTemperature && parsed.HasHumidity {
		return reading
	}

	if snap, ok := c.store.Snapshot(reading.SensorID); ok {
		if !parsed.HasTemperature {
			reading.Temperature = snap.Temperature
		}
		if !parsed.HasHumidity {
			reading.Humidity = snap.Humidity
		}
	}
	return reading
}
