package store

import (
	"sync"
	"time"

	"github.com/Hakob23/thermal-monitoring/internal/models"
)

// sensorState 单个传感器的可变状态（仅在持有 store 锁时访问）
type sensorState struct {
	sensorID      string
	location      string
	temperature   float64
	humidity      float64
	pressure      *float64
	supplyVoltage *float64
	tempRate      float64
	confidence    float64
	firstSeen     time.Time
	lastUpdate    time.Time
	active        bool
	invalidCount  int64

	tempHistory     []models.HistoryPoint
	humidityHistory []models.HistoryPoint
	samples         []models.Sample
}

// SensorStore 传感器状态存储（单一粗粒度锁 + 快照拷贝）
// 读取方（sweeper、aggregator、状态查询）只拿到值拷贝，不会与写入竞争
type SensorStore struct {
	mu          sync.RWMutex
	sensors     map[string]*sensorState
	historySize int
	locations   map[string]string // 配置的 id -> 位置名映射
	nowFn       func() time.Time
}

// NewSensorStore 创建传感器状态存储
func NewSensorStore(historySize int, locations map[string]string) *SensorStore {
	if historySize <= 0 {
		historySize = 100
	}
	if locations == nil {
		locations = make(map[string]string)
	}
	return &SensorStore{
		sensors:     make(map[string]*sensorState),
		historySize: historySize,
		locations:   locations,
		nowFn:       time.Now,
	}
}

// Apply 应用一条采样并返回应用后的快照
// 变化率按有效采样的接收顺序和存储时钟计算，不使用采样的逻辑时间戳；
// 乱序投递会得到按接收顺序的符号
// 无效采样只更新 last_update/active 和无效计数，不进入数值和历史，
// 也不参与变化率计算
func (s *SensorStore) Apply(reading models.Reading) models.SensorSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.nowFn()

	state, ok := s.sensors[reading.SensorID]
	if !ok {
		state = &sensorState{
			sensorID:  reading.SensorID,
			location:  s.resolveLocation(reading.SensorID, reading.Location),
			firstSeen: now,
		}
		s.sensors[reading.SensorID] = state
	}
	if reading.Location != "" {
		state.location = s.resolveLocation(reading.SensorID, reading.Location)
	}

	if !reading.Valid {
		// 降级但仍在线的传感器：刷新 last_update 防止误报离线
		state.invalidCount++
		state.lastUpdate = now
		state.active = true
		state.samples = appendSample(state.samples, models.Sample{
			Temperature: reading.Temperature,
			Humidity:    reading.Humidity,
			Pressure:    reading.Pressure,
			Timestamp:   now,
			Valid:       false,
		}, s.historySize)
		return snapshotLocked(state)
	}

	// 变化率基于上一条有效采样计算（历史末尾的数值和时间戳）。
	// 无效采样会刷新 last_update，用它做分母会缩短时间窗、放大速率，
	// 首条采样无效时还会对着零值温度求差
	if n := len(state.tempHistory); n > 0 {
		prev := state.tempHistory[n-1]
		elapsed := now.Sub(prev.Timestamp).Minutes()
		if elapsed > 0 {
			state.tempRate = (reading.Temperature - prev.Value) / elapsed
		}
	}

	state.temperature = reading.Temperature
	state.humidity = reading.Humidity
	state.pressure = reading.Pressure
	state.supplyVoltage = reading.SupplyVoltage
	state.confidence = reading.Confidence
	state.lastUpdate = now
	state.active = true

	state.tempHistory = appendPoint(state.tempHistory, models.HistoryPoint{
		Value:     reading.Temperature,
		Timestamp: now,
	}, s.historySize)
	state.humidityHistory = appendPoint(state.humidityHistory, models.HistoryPoint{
		Value:     reading.Humidity,
		Timestamp: now,
	}, s.historySize)
	state.samples = appendSample(state.samples, models.Sample{
		Temperature: reading.Temperature,
		Humidity:    reading.Humidity,
		Pressure:    reading.Pressure,
		Timestamp:   now,
		Valid:       true,
	}, s.historySize)

	return snapshotLocked(state)
}

// Snapshot 获取单个传感器的快照
func (s *SensorStore) Snapshot(sensorID string) (models.SensorSnapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.sensors[sensorID]
	if !ok {
		return models.SensorSnapshot{}, false
	}
	return snapshotLocked(state), true
}

// AllSensors 获取所有传感器的快照
func (s *SensorStore) AllSensors() []models.SensorSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshots := make([]models.SensorSnapshot, 0, len(s.sensors))
	for _, state := range s.sensors {
		snapshots = append(snapshots, snapshotLocked(state))
	}
	return snapshots
}

// MarkInactive 标记传感器离线（新采样到达时由 Apply 重新激活）
func (s *SensorStore) MarkInactive(sensorID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.sensors[sensorID]
	if !ok || !state.active {
		return false
	}
	state.active = false
	return true
}

// Stats 基于温度历史计算单个传感器的统计信息
func (s *SensorStore) Stats(sensorID string) (models.SensorStats, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.sensors[sensorID]
	if !ok {
		return models.SensorStats{}, false
	}

	stats := models.SensorStats{
		SensorID:        state.sensorID,
		Location:        state.location,
		CurrentTemp:     state.temperature,
		CurrentHumidity: state.humidity,
	}

	if len(state.tempHistory) > 0 {
		sum := 0.0
		minTemp := state.tempHistory[0].Value
		maxTemp := minTemp
		for _, point := range state.tempHistory {
			sum += point.Value
			if point.Value < minTemp {
				minTemp = point.Value
			}
			if point.Value > maxTemp {
				maxTemp = point.Value
			}
		}
		stats.AvgTemp = sum / float64(len(state.tempHistory))
		stats.MinTemp = minTemp
		stats.MaxTemp = maxTemp
	}

	if !state.firstSeen.IsZero() {
		stats.UptimeMinutes = int(s.nowFn().Sub(state.firstSeen).Minutes())
	}

	return stats, true
}

// resolveLocation 优先使用采样携带的位置，其次是配置映射
func (s *SensorStore) resolveLocation(sensorID, readingLocation string) string {
	if readingLocation != "" {
		return readingLocation
	}
	if name, ok := s.locations[sensorID]; ok {
		return name
	}
	return "Unknown"
}

// snapshotLocked 在锁内做值拷贝（历史切片深拷贝，避免读取方与后续写入共享底层数组）
func snapshotLocked(state *sensorState) models.SensorSnapshot {
	snap := models.SensorSnapshot{
		SensorID:     state.sensorID,
		Location:     state.location,
		Temperature:  state.temperature,
		Humidity:     state.humidity,
		TempRate:     state.tempRate,
		Confidence:   state.confidence,
		LastUpdate:   state.lastUpdate,
		Active:       state.active,
		InvalidCount: state.invalidCount,
	}
	if state.pressure != nil {
		p := *state.pressure
		snap.Pressure = &p
	}
	if state.supplyVoltage != nil {
		v := *state.supplyVoltage
		snap.SupplyVoltage = &v
	}
	snap.TempHistory = append([]models.HistoryPoint(nil), state.tempHistory...)
	snap.HumidityHistory = append([]models.HistoryPoint(nil), state.humidityHistory...)
	snap.Samples = append([]models.Sample(nil), state.samples...)
	return snap
}

func appendPoint(history []models.HistoryPoint, point models.HistoryPoint, max int) []models.HistoryPoint {
	history = append(history, point)
	if len(history) > max {
		history = history[len(history)-max:]
	}
	return history
}

func appendSample(samples []models.Sample, sample models.Sample, max int) []models.Sample {
	samples = append(samples, sample)
	if len(samples) > max {
		samples = samples[len(samples)-max:]
	}
	return samples
}
