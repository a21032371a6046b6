package service

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Hakob23/thermal-monitoring/internal/aggregator"
	"github.com/Hakob23/thermal-monitoring/internal/config"
	"github.com/Hakob23/thermal-monitoring/internal/consumer"
	"github.com/Hakob23/thermal-monitoring/internal/evaluator"
	"github.com/Hakob23/thermal-monitoring/internal/mqtt"
	"github.com/Hakob23/thermal-monitoring/internal/notifier"
	"github.com/Hakob23/thermal-monitoring/internal/pipeline"
	"github.com/Hakob23/thermal-monitoring/internal/redisx"
	"github.com/Hakob23/thermal-monitoring/internal/store"
	"github.com/Hakob23/thermal-monitoring/internal/ws"
)

// MonitorService 温控监测服务（整合各层）
type MonitorService struct {
	config      *config.Config
	logger      *zap.Logger
	redisClient *redisx.Client
	mqttClient  *mqtt.Client

	// 各层组件
	sensorStore *store.SensorStore
	alertLog    *store.AlertLog
	throttle    *evaluator.AlertThrottle
	pipeline    *pipeline.Pipeline
	sweeper     *pipeline.OfflineSweeper
	aggregator  *aggregator.WindowAggregator
	consumer    *consumer.MQTTConsumer
	hub         *ws.Hub
	httpServer  *http.Server
}

// NewMonitorService 创建温控监测服务
func NewMonitorService(cfg *config.Config, logger *zap.Logger) (*MonitorService, error) {
	// 1. 连接 Redis
	redisClient, err := redisx.NewRedisClient(context.Background(), &cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("failed to connect redis: %w", err)
	}

	// 2. 连接 MQTT
	mqttClient, err := mqtt.NewClient(&cfg.MQTT, logger)
	if err != nil {
		redisClient.Close()
		return nil, fmt.Errorf("failed to connect mqtt: %w", err)
	}

	// 3. 创建状态层
	sensorStore := store.NewSensorStore(cfg.Monitor.HistorySize, cfg.Monitor.SensorLocations)
	alertLog := store.NewAlertLog(cfg.Monitor.MaxAlertLogSize)

	// 4. 创建报警构造与节流
	builder := evaluator.NewAlertBuilder(cfg)
	throttle := evaluator.NewAlertThrottle(cfg.Monitor.AlertCooldown, builder)

	// 5. 创建输出下游（MQTT + Redis Streams + WebSocket 广播）
	hub := ws.NewHub(logger)
	fanout := notifier.NewFanout(
		notifier.NewMQTTNotifier(cfg, mqttClient, logger),
		notifier.NewRedisNotifier(cfg, redisClient, logger),
		notifier.NewWSNotifier(hub),
	)

	// 6. 创建流水线与周期任务
	ingestPipeline := pipeline.NewPipeline(cfg, sensorStore, throttle, alertLog, fanout, fanout, logger)
	sweeper := pipeline.NewOfflineSweeper(cfg, sensorStore, throttle, alertLog, fanout, ingestPipeline.Metrics(), logger)
	windowAggregator := aggregator.NewWindowAggregator(cfg, sensorStore, fanout, logger)

	// 7. 创建消费者
	sensorConsumer := consumer.NewMQTTConsumer(cfg, mqttClient, ingestPipeline, sensorStore, logger)

	svc := &MonitorService{
		config:      cfg,
		logger:      logger,
		redisClient: redisClient,
		mqttClient:  mqttClient,
		sensorStore: sensorStore,
		alertLog:    alertLog,
		throttle:    throttle,
		pipeline:    ingestPipeline,
		sweeper:     sweeper,
		aggregator:  windowAggregator,
		consumer:    sensorConsumer,
		hub:         hub,
	}

	if cfg.WS.Addr != "" {
		mux := http.NewServeMux()
		mux.HandleFunc(cfg.WS.Path, hub.ServeWS)
		svc.httpServer = &http.Server{
			Addr:    cfg.WS.Addr,
			Handler: mux,
		}
	}

	return svc, nil
}

// Start 启动服务（阻塞直到上下文取消且所有组件退出）
func (s *MonitorService) Start(ctx context.Context) error {
	s.logger.Info("Starting thermal monitor service",
		zap.Float64("temp_min", s.config.Monitor.TempMin),
		zap.Float64("temp_max", s.config.Monitor.TempMax),
		zap.Float64("humidity_max", s.config.Monitor.HumidityMax),
		zap.Duration("sensor_timeout", s.config.Monitor.SensorTimeout),
	)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := s.pipeline.Start(ctx); err != nil {
			s.logger.Error("Pipeline exited with error", zap.Error(err))
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := s.sweeper.Start(ctx); err != nil {
			s.logger.Error("Offline sweeper exited with error", zap.Error(err))
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := s.aggregator.Start(ctx); err != nil {
			s.logger.Error("Window aggregator exited with error", zap.Error(err))
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := s.hub.Run(ctx); err != nil {
			s.logger.Error("WebSocket hub exited with error", zap.Error(err))
		}
	}()

	if s.httpServer != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.logger.Info("WebSocket endpoint listening",
				zap.String("addr", s.config.WS.Addr),
				zap.String("path", s.config.WS.Path),
			)
			if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				s.logger.Error("WebSocket server error", zap.Error(err))
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		s.statusLoop(ctx)
	}()

	// 最后订阅：确保下游全部就绪后才开始接收采样
	if err := s.consumer.Start(); err != nil {
		return fmt.Errorf("failed to start sensor consumer: %w", err)
	}

	<-ctx.Done()

	s.consumer.Stop()
	if s.httpServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn("WebSocket server shutdown error", zap.Error(err))
		}
	}

	wg.Wait()
	return nil
}

// Stop 停止服务并释放连接
func (s *MonitorService) Stop() error {
	s.logger.Info("Stopping thermal monitor service")

	s.mqttClient.Disconnect()

	if err := s.redisClient.Close(); err != nil {
		s.logger.Error("Failed to close redis",
			zap.Error(err),
		)
	}

	return nil
}

// statusLoop 周期输出系统状态概览
func (s *MonitorService) statusLoop(ctx context.Context) {
	interval := s.config.Monitor.StatusInterval
	if interval <= 0 {
		interval = 30 * time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.logStatus()
		}
	}
}

// logStatus 输出一次状态概览（活跃传感器数、平均温度、最近报警数）
func (s *MonitorService) logStatus() {
	sensors := s.sensorStore.AllSensors()

	activeCount := 0
	sumTemp := 0.0
	for _, snap := range sensors {
		if !snap.Active {
			continue
		}
		activeCount++
		sumTemp += snap.Temperature
	}

	avgTemp := 0.0
	if activeCount > 0 {
		avgTemp = sumTemp / float64(activeCount)
	}

	s.logger.Info("System status",
		zap.Int("sensors_total", len(sensors)),
		zap.Int("sensors_active", activeCount),
		zap.Float64("avg_temperature", avgTemp),
		zap.Int("alert_log_size", s.alertLog.Len()),
		zap.Int("ws_clients", s.hub.ClientCount()),
	)
}
