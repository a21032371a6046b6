package pipeline

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Hakob23/thermal-monitoring/internal/analytics"
	"github.com/Hakob23/thermal-monitoring/internal/config"
	"github.com/Hakob23/thermal-monitoring/internal/evaluator"
	"github.com/Hakob23/thermal-monitoring/internal/models"
	"github.com/Hakob23/thermal-monitoring/internal/store"
)

// ErrQueueFull 有界队列已满，本次提交被拒绝
// 默认策略是丢弃并计数，调用方也可以选择把它当作背压处理
var ErrQueueFull = errors.New("ingest queue full")

// AlertSink 报警下游（协作方实现，约定为有界/非阻塞）
type AlertSink interface {
	PublishAlert(ctx context.Context, alert models.Alert) error
}

// TrendSink 趋势分析下游
type TrendSink interface {
	PublishTrend(ctx context.Context, trend models.TrendResult) error
}

// Pipeline 采样摄入流水线（有界队列 + 固定 worker 池）
// worker 之间只共享 SensorStore 和 AlertThrottle，两者各自内部同步
type Pipeline struct {
	cfg      *config.Config
	store    *store.SensorStore
	throttle *evaluator.AlertThrottle
	alertLog *store.AlertLog
	alerts   AlertSink
	trends   TrendSink
	logger   *zap.Logger
	metrics  *Metrics

	queue chan models.Reading
	wg    sync.WaitGroup
	nowFn func() time.Time
}

// NewPipeline 创建摄入流水线
func NewPipeline(
	cfg *config.Config,
	sensorStore *store.SensorStore,
	throttle *evaluator.AlertThrottle,
	alertLog *store.AlertLog,
	alerts AlertSink,
	trends TrendSink,
	logger *zap.Logger,
) *Pipeline {
	capacity := cfg.Monitor.QueueCapacity
	if capacity <= 0 {
		capacity = 1000
	}
	return &Pipeline{
		cfg:      cfg,
		store:    sensorStore,
		throttle: throttle,
		alertLog: alertLog,
		alerts:   alerts,
		trends:   trends,
		logger:   logger,
		metrics:  &Metrics{StartTime: time.Now()},
		queue:    make(chan models.Reading, capacity),
		nowFn:    time.Now,
	}
}

// Metrics 获取流水线指标
func (p *Pipeline) Metrics() *Metrics {
	return p.metrics
}

// Submit 提交一条采样
// 队列满时立即失败（不阻塞生产者），丢弃计数递增
func (p *Pipeline) Submit(reading models.Reading) error {
	p.metrics.IncrementSubmitted()
	select {
	case p.queue <- reading:
		return nil
	default:
		p.metrics.IncrementDropped()
		return ErrQueueFull
	}
}

// Start 启动 worker 池（阻塞直到上下文取消且所有 worker 退出）
func (p *Pipeline) Start(ctx context.Context) error {
	workerCount := p.cfg.Monitor.WorkerCount
	if workerCount <= 0 {
		workerCount = 4
	}

	p.logger.Info("Ingest pipeline started",
		zap.Int("worker_count", workerCount),
		zap.Int("queue_capacity", cap(p.queue)),
	)

	for i := 0; i < workerCount; i++ {
		p.wg.Add(1)
		go p.workerLoop(ctx, i)
	}

	// 指标报告协程
	p.wg.Add(1)
	go p.reportMetrics(ctx)

	p.wg.Wait()
	p.logger.Info("Ingest pipeline stopped")
	return nil
}

// workerLoop 单个 worker：等待队列项 → 处理 → 继续等待
// 上下文取消后直接退出，不保证清空队列（尽力而为语义）
func (p *Pipeline) workerLoop(ctx context.Context, id int) {
	defer p.wg.Done()

	p.logger.Debug("Worker started", zap.Int("worker_id", id))

	for {
		select {
		case <-ctx.Done():
			p.logger.Debug("Worker stopped", zap.Int("worker_id", id))
			return
		case reading := <-p.queue:
			p.process(ctx, reading)
		}
	}
}

// process 处理一条采样：更新状态 → 阈值评估 → 节流 → 发布
func (p *Pipeline) process(ctx context.Context, reading models.Reading) {
	snap := p.store.Apply(reading)
	p.metrics.IncrementProcessed()

	if !reading.Valid {
		// 无效采样不参与阈值评估，也不产生趋势
		p.metrics.IncrementInvalid()
		p.logger.Debug("Invalid reading recorded",
			zap.String("sensor_id", reading.SensorID),
			zap.Int64("invalid_count", snap.InvalidCount),
		)
		return
	}

	now := p.nowFn()

	candidates := evaluator.EvaluateThresholds(snap, p.cfg)
	for _, candidate := range candidates {
		alert, admitted := p.throttle.Admit(candidate, snap.Location, now)
		if !admitted {
			p.metrics.IncrementThrottled()
			continue
		}
		p.alertLog.Append(alert)
		p.metrics.IncrementAlerts()
		p.logger.Info("Alert emitted",
			zap.String("event_id", alert.EventID),
			zap.String("sensor_id", alert.SensorID),
			zap.String("kind", string(alert.Kind)),
			zap.String("message", alert.Message),
		)
		p.deliverAlert(ctx, alert)
	}

	if trend := analytics.Analyze(snap, p.cfg, now); trend != nil {
		p.metrics.IncrementTrends()
		p.deliverTrend(ctx, *trend)
	}
}

// deliverAlert 调用报警 sink（协作方代码，单独隔离 panic）
func (p *Pipeline) deliverAlert(ctx context.Context, alert models.Alert) {
	defer func() {
		if r := recover(); r != nil {
			p.metrics.IncrementSinkErrors()
			p.logger.Error("Alert sink panicked",
				zap.String("event_id", alert.EventID),
				zap.Any("panic", r),
			)
		}
	}()

	if err := p.alerts.PublishAlert(ctx, alert); err != nil {
		p.metrics.IncrementSinkErrors()
		p.logger.Error("Failed to publish alert",
			zap.String("event_id", alert.EventID),
			zap.Error(err),
		)
	}
}

// deliverTrend 调用趋势 sink（同样隔离 panic）
func (p *Pipeline) deliverTrend(ctx context.Context, trend models.TrendResult) {
	defer func() {
		if r := recover(); r != nil {
			p.metrics.IncrementSinkErrors()
			p.logger.Error("Trend sink panicked",
				zap.String("sensor_id", trend.SensorID),
				zap.Any("panic", r),
			)
		}
	}()

	if err := p.trends.PublishTrend(ctx, trend); err != nil {
		p.metrics.IncrementSinkErrors()
		p.logger.Error("Failed to publish trend",
			zap.String("sensor_id", trend.SensorID),
			zap.Error(err),
		)
	}
}

// reportMetrics 定期报告指标（每60秒）
func (p *Pipeline) reportMetrics(ctx context.Context) {
	defer p.wg.Done()

	ticker := time.NewTicker(60 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			snapshot := p.metrics.GetSnapshot()
			p.logger.Info("Pipeline metrics report",
				zap.Int64("readings_submitted", snapshot.ReadingsSubmitted),
				zap.Int64("readings_processed", snapshot.ReadingsProcessed),
				zap.Int64("readings_dropped", snapshot.ReadingsDropped),
				zap.Int64("readings_invalid", snapshot.ReadingsInvalid),
				zap.Int64("alerts_emitted", snapshot.AlertsEmitted),
				zap.Int64("alerts_throttled", snapshot.AlertsThrottled),
				zap.Int64("trends_emitted", snapshot.TrendsEmitted),
				zap.Int64("sink_errors", snapshot.SinkErrors),
				zap.Duration("uptime", time.Since(snapshot.StartTime)),
			)
		}
	}
}
