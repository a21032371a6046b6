package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// MQTTConfig MQTT配置
type MQTTConfig struct {
	Broker   string
	ClientID string
	Username string
	Password string
	QoS      byte
}

// RedisConfig Redis配置
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Config 温控监测服务配置
type Config struct {
	MQTT  MQTTConfig
	Redis RedisConfig

	// 监测引擎配置
	Monitor struct {
		// 阈值（摄氏度 / %RH）
		TempMin     float64 // 温度下限
		TempMax     float64 // 温度上限
		HumidityMax float64 // 湿度上限

		// 变化率限制（°C/min）
		TempRateLimit float64

		// 电源电压下限（V），低于该值触发 LOW_SUPPLY_VOLTAGE
		VoltageMin float64

		// 时间设置
		SensorTimeout        time.Duration // 超过该时长无更新判定离线
		AlertCooldown        time.Duration // 同一(传感器,类型)报警的最小间隔
		OfflineSweepInterval time.Duration // 离线扫描周期
		StatusInterval       time.Duration // 状态日志周期

		// 历史设置
		HistorySize     int // 每个传感器的历史环形缓冲区容量
		MaxAlertLogSize int // 最近报警日志容量

		// 聚合配置
		AggregationWindow time.Duration // 聚合窗口

		// 流水线配置
		WorkerCount   int // 工作协程数量
		QueueCapacity int // 有界队列容量

		// 趋势分析配置
		TrendMinSamples   int     // 最少采样数
		TrendSlopeLimit   float64 // 趋势提示的斜率阈值
		TrendReferenceLen int     // 置信度参考长度
		VentilationRH     float64 // 通风建议的湿度阈值

		// 传感器位置映射 id -> name
		SensorLocations map[string]string
	}

	// 订阅/发布主题配置
	Topics struct {
		SensorData string // 订阅主题，如 "sensors/+/+"
		AlertBase  string // 报警发布前缀
		TrendBase  string // 趋势发布前缀
		AggBase    string // 聚合发布前缀
	}

	// Redis Streams 配置
	Streams struct {
		Alerts     string        // 报警流
		Trends     string        // 趋势流
		Aggregates string        // 聚合流
		AlertTTL   time.Duration // 每传感器报警缓存 TTL
	}

	// WebSocket 广播配置
	WS struct {
		Addr string // 监听地址，空字符串表示关闭
		Path string
	}

	Log struct {
		Level  string
		Format string
	}
}

// Load 加载配置（环境变量覆盖默认值）
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.MQTT.Broker = getEnv("MQTT_BROKER", "tcp://localhost:1883")
	cfg.MQTT.ClientID = getEnv("MQTT_CLIENT_ID", "thermal-monitor")
	cfg.MQTT.Username = getEnv("MQTT_USERNAME", "")
	cfg.MQTT.Password = getEnv("MQTT_PASSWORD", "")
	cfg.MQTT.QoS = 1

	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = 0

	var err error
	if cfg.Monitor.TempMin, err = getEnvFloat("TEMP_MIN", 18.0); err != nil {
		return nil, err
	}
	if cfg.Monitor.TempMax, err = getEnvFloat("TEMP_MAX", 28.0); err != nil {
		return nil, err
	}
	if cfg.Monitor.HumidityMax, err = getEnvFloat("HUMIDITY_MAX", 60.0); err != nil {
		return nil, err
	}
	if cfg.Monitor.TempRateLimit, err = getEnvFloat("TEMP_RATE_LIMIT", 2.0); err != nil {
		return nil, err
	}
	if cfg.Monitor.VoltageMin, err = getEnvFloat("VOLTAGE_MIN", 3.0); err != nil {
		return nil, err
	}

	sensorTimeout, err := getEnvInt("SENSOR_TIMEOUT_SECONDS", 600)
	if err != nil {
		return nil, err
	}
	cfg.Monitor.SensorTimeout = time.Duration(sensorTimeout) * time.Second

	cooldown, err := getEnvInt("ALERT_COOLDOWN_SECONDS", 300)
	if err != nil {
		return nil, err
	}
	cfg.Monitor.AlertCooldown = time.Duration(cooldown) * time.Second

	sweep, err := getEnvInt("OFFLINE_SWEEP_SECONDS", 5)
	if err != nil {
		return nil, err
	}
	cfg.Monitor.OfflineSweepInterval = time.Duration(sweep) * time.Second

	status, err := getEnvInt("STATUS_INTERVAL_SECONDS", 30)
	if err != nil {
		return nil, err
	}
	cfg.Monitor.StatusInterval = time.Duration(status) * time.Second

	if cfg.Monitor.HistorySize, err = getEnvInt("HISTORY_SIZE", 100); err != nil {
		return nil, err
	}
	if cfg.Monitor.MaxAlertLogSize, err = getEnvInt("MAX_ALERT_LOG_SIZE", 1000); err != nil {
		return nil, err
	}

	aggWindow, err := getEnvInt("AGGREGATION_WINDOW_SECONDS", 60)
	if err != nil {
		return nil, err
	}
	cfg.Monitor.AggregationWindow = time.Duration(aggWindow) * time.Second

	if cfg.Monitor.WorkerCount, err = getEnvInt("WORKER_COUNT", 4); err != nil {
		return nil, err
	}
	if cfg.Monitor.QueueCapacity, err = getEnvInt("QUEUE_CAPACITY", 1000); err != nil {
		return nil, err
	}

	if cfg.Monitor.TrendMinSamples, err = getEnvInt("TREND_MIN_SAMPLES", 5); err != nil {
		return nil, err
	}
	if cfg.Monitor.TrendSlopeLimit, err = getEnvFloat("TREND_SLOPE_LIMIT", 0.5); err != nil {
		return nil, err
	}
	if cfg.Monitor.TrendReferenceLen, err = getEnvInt("TREND_REFERENCE_LEN", 10); err != nil {
		return nil, err
	}
	if cfg.Monitor.VentilationRH, err = getEnvFloat("VENTILATION_RH", 70.0); err != nil {
		return nil, err
	}

	cfg.Monitor.SensorLocations = parseLocations(getEnv("SENSOR_LOCATIONS", ""))

	cfg.Topics.SensorData = getEnv("TOPIC_SENSOR_DATA", "sensors/+/+")
	cfg.Topics.AlertBase = getEnv("TOPIC_ALERT_BASE", "thermal/alerts")
	cfg.Topics.TrendBase = getEnv("TOPIC_TREND_BASE", "thermal/analytics")
	cfg.Topics.AggBase = getEnv("TOPIC_AGG_BASE", "thermal/sensors")

	cfg.Streams.Alerts = getEnv("STREAM_ALERTS", "thermal:alerts:stream")
	cfg.Streams.Trends = getEnv("STREAM_TRENDS", "thermal:trends:stream")
	cfg.Streams.Aggregates = getEnv("STREAM_AGGREGATES", "thermal:aggregates:stream")
	alertTTL, err := getEnvInt("ALERT_CACHE_TTL_SECONDS", 30)
	if err != nil {
		return nil, err
	}
	cfg.Streams.AlertTTL = time.Duration(alertTTL) * time.Second

	cfg.WS.Addr = getEnv("WS_LISTEN_ADDR", ":8090")
	cfg.WS.Path = getEnv("WS_PATH", "/ws")

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	return cfg, nil
}

// parseLocations 解析 "id1=Kitchen,id2=Bedroom" 格式的位置映射
func parseLocations(raw string) map[string]string {
	locations := make(map[string]string)
	if raw == "" {
		return locations
	}
	for _, pair := range strings.Split(raw, ",") {
		parts := strings.SplitN(strings.TrimSpace(pair), "=", 2)
		if len(parts) != 2 || parts[0] == "" {
			continue
		}
		locations[parts[0]] = parts[1]
	}
	return locations
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %w", key, err)
	}
	return n, nil
}

func getEnvFloat(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %w", key, err)
	}
	return f, nil
}
