package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Hakob23/thermal-monitoring/internal/config"
	"github.com/Hakob23/thermal-monitoring/internal/evaluator"
	"github.com/Hakob23/thermal-monitoring/internal/models"
	"github.com/Hakob23/thermal-monitoring/internal/store"
)

// OfflineSweeper 离线传感器扫描器（独立的周期任务，不属于 worker 池）
// 标记为 inactive 的传感器在新采样到达前不会被重复扫描，
// 因此每个离线周期最多发出一次报警（再叠加常规节流）
type OfflineSweeper struct {
	cfg      *config.Config
	store    *store.SensorStore
	throttle *evaluator.AlertThrottle
	alertLog *store.AlertLog
	alerts   AlertSink
	logger   *zap.Logger
	metrics  *Metrics
	nowFn    func() time.Time
}

// NewOfflineSweeper 创建离线扫描器
func NewOfflineSweeper(
	cfg *config.Config,
	sensorStore *store.SensorStore,
	throttle *evaluator.AlertThrottle,
	alertLog *store.AlertLog,
	alerts AlertSink,
	metrics *Metrics,
	logger *zap.Logger,
) *OfflineSweeper {
	return &OfflineSweeper{
		cfg:      cfg,
		store:    sensorStore,
		throttle: throttle,
		alertLog: alertLog,
		alerts:   alerts,
		logger:   logger,
		metrics:  metrics,
		nowFn:    time.Now,
	}
}

// Start 启动周期扫描（阻塞直到上下文取消）
func (s *OfflineSweeper) Start(ctx context.Context) error {
	interval := s.cfg.Monitor.OfflineSweepInterval
	if interval <= 0 {
		interval = 5 * time.Second
	}

	s.logger.Info("Offline sweeper started",
		zap.Duration("interval", interval),
		zap.Duration("sensor_timeout", s.cfg.Monitor.SensorTimeout),
	)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Offline sweeper stopped")
			return nil
		case <-ticker.C:
			s.sweepOnce(ctx)
		}
	}
}

// sweepOnce 执行一次扫描
func (s *OfflineSweeper) sweepOnce(ctx context.Context) {
	now := s.nowFn()
	timeout := s.cfg.Monitor.SensorTimeout

	for _, snap := range s.store.AllSensors() {
		if !snap.Active {
			continue
		}
		if now.Sub(snap.LastUpdate) <= timeout {
			continue
		}

		// 先标记离线：新采样到达前不会再次进入本分支
		if !s.store.MarkInactive(snap.SensorID) {
			continue
		}

		candidate := models.AlertCandidate{
			SensorID:    snap.SensorID,
			Kind:        models.AlertSensorOffline,
			Severity:    models.SeverityCritical,
			Temperature: snap.Temperature,
			Humidity:    snap.Humidity,
			TempRate:    snap.TempRate,
		}

		alert, admitted := s.throttle.Admit(candidate, snap.Location, now)
		if !admitted {
			s.metrics.IncrementThrottled()
			continue
		}

		s.alertLog.Append(alert)
		s.metrics.IncrementAlerts()
		s.logger.Warn("Sensor offline",
			zap.String("sensor_id", snap.SensorID),
			zap.String("location", snap.Location),
			zap.Time("last_update", snap.LastUpdate),
		)
		s.deliver(ctx, alert)
	}
}

// deliver 调用报警 sink（隔离 panic，与 worker 一致）
func (s *OfflineSweeper) deliver(ctx context.Context, alert models.Alert) {
	defer func() {
		if r := recover(); r != nil {
			s.metrics.IncrementSinkErrors()
			s.logger.Error("Alert sink panicked",
				zap.String("event_id", alert.EventID),
				zap.Any("panic", r),
			)
		}
	}()

	if err := s.alerts.PublishAlert(ctx, alert); err != nil {
		s.metrics.IncrementSinkErrors()
		s.logger.Error("Failed to publish offline alert",
			zap.String("event_id", alert.EventID),
			zap.Error(err),
		)
	}
}
