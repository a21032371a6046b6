package aggregator

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Hakob23/thermal-monitoring/internal/config"
	"github.com/Hakob23/thermal-monitoring/internal/models"
	"github.com/Hakob23/thermal-monitoring/internal/store"
)

// Sink 聚合结果下游
type Sink interface {
	PublishAggregate(ctx context.Context, window models.AggregatedWindow) error
}

// WindowAggregator 周期聚合器
// 每个周期为每个传感器计算尾随窗口内的汇总并发布；
// 窗口内没有有效采样的传感器直接跳过，不发布空结果
type WindowAggregator struct {
	cfg    *config.Config
	store  *store.SensorStore
	sink   Sink
	logger *zap.Logger
	nowFn  func() time.Time
}

// NewWindowAggregator 创建周期聚合器
func NewWindowAggregator(cfg *config.Config, sensorStore *store.SensorStore, sink Sink, logger *zap.Logger) *WindowAggregator {
	return &WindowAggregator{
		cfg:    cfg,
		store:  sensorStore,
		sink:   sink,
		logger: logger,
		nowFn:  time.Now,
	}
}

// Start 启动周期聚合（阻塞直到上下文取消）
func (a *WindowAggregator) Start(ctx context.Context) error {
	window := a.cfg.Monitor.AggregationWindow
	if window <= 0 {
		window = time.Minute
	}

	a.logger.Info("Window aggregator started",
		zap.Duration("window", window),
	)

	ticker := time.NewTicker(window)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			a.logger.Info("Window aggregator stopped")
			return nil
		case <-ticker.C:
			a.aggregateOnce(ctx)
		}
	}
}

// aggregateOnce 执行一次全量聚合
func (a *WindowAggregator) aggregateOnce(ctx context.Context) {
	now := a.nowFn()
	window := a.cfg.Monitor.AggregationWindow
	published := 0

	for _, snap := range a.store.AllSensors() {
		result, ok := BuildWindow(snap, window, now)
		if !ok {
			continue
		}
		a.deliver(ctx, result)
		published++
	}

	a.logger.Debug("Aggregation pass completed",
		zap.Int("windows_published", published),
	)
}

// BuildWindow 由快照计算尾随窗口内的聚合结果（纯函数）
// 返回 false 表示窗口内没有有效采样，应跳过该传感器
func BuildWindow(snap models.SensorSnapshot, window time.Duration, now time.Time) (models.AggregatedWindow, bool) {
	cutoff := now.Add(-window)

	var (
		sampleCount int
		validCount  int
		sumTemp     float64
		sumHum      float64
		sumPress    float64
		pressCount  int
		minTemp     float64
		maxTemp     float64
	)

	for _, sample := range snap.Samples {
		if sample.Timestamp.Before(cutoff) {
			continue
		}
		sampleCount++
		if !sample.Valid {
			continue
		}
		if validCount == 0 {
			minTemp = sample.Temperature
			maxTemp = sample.Temperature
		} else {
			if sample.Temperature < minTemp {
				minTemp = sample.Temperature
			}
			if sample.Temperature > maxTemp {
				maxTemp = sample.Temperature
			}
		}
		validCount++
		sumTemp += sample.Temperature
		sumHum += sample.Humidity
		if sample.Pressure != nil {
			sumPress += *sample.Pressure
			pressCount++
		}
	}

	if validCount == 0 {
		return models.AggregatedWindow{}, false
	}

	result := models.AggregatedWindow{
		Type:          "aggregated_data",
		SensorID:      snap.SensorID,
		Location:      snap.Location,
		Timestamp:     now,
		WindowSeconds: int(window.Seconds()),
		SampleCount:   sampleCount,
		ValidCount:    validCount,
		Temperature: models.TemperatureSummary{
			Avg: sumTemp / float64(validCount),
			Min: minTemp,
			Max: maxTemp,
		},
		Humidity: models.HumiditySummary{
			Avg: sumHum / float64(validCount),
		},
	}
	if pressCount > 0 {
		result.Pressure = models.PressureSummary{
			Avg: sumPress / float64(pressCount),
		}
	}

	return result, true
}

// deliver 调用聚合 sink（隔离 panic，单个 sink 故障不影响其他传感器）
func (a *WindowAggregator) deliver(ctx context.Context, window models.AggregatedWindow) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("Aggregate sink panicked",
				zap.String("sensor_id", window.SensorID),
				zap.Any("panic", r),
			)
		}
	}()

	if err := a.sink.PublishAggregate(ctx, window); err != nil {
		a.logger.Error("Failed to publish aggregated window",
			zap.String("sensor_id", window.SensorID),
			zap.Error(err),
		)
	}
}
