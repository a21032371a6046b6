package pipeline

import (
	"sync"
	"time"
)

// Metrics 流水线监控指标
type Metrics struct {
	mu sync.RWMutex

	// 采样处理统计
	ReadingsSubmitted int64 // 提交的采样总数
	ReadingsDropped   int64 // 队列满丢弃的采样数
	ReadingsProcessed int64 // worker 处理完成的采样数
	ReadingsInvalid   int64 // 无效采样数

	// 报警统计
	AlertsEmitted   int64 // 发出的报警数
	AlertsThrottled int64 // 被节流抑制的候选数
	TrendsEmitted   int64 // 发出的趋势结果数

	// sink 错误统计
	SinkErrors int64 // sink 调用失败/panic 次数

	// 启动时间
	StartTime time.Time
}

// GetSnapshot 获取指标快照（线程安全）
func (m *Metrics) GetSnapshot() Metrics {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Metrics{
		ReadingsSubmitted: m.ReadingsSubmitted,
		ReadingsDropped:   m.ReadingsDropped,
		ReadingsProcessed: m.ReadingsProcessed,
		ReadingsInvalid:   m.ReadingsInvalid,
		AlertsEmitted:     m.AlertsEmitted,
		AlertsThrottled:   m.AlertsThrottled,
		TrendsEmitted:     m.TrendsEmitted,
		SinkErrors:        m.SinkErrors,
		StartTime:         m.StartTime,
	}
}

// IncrementSubmitted 增加提交计数
func (m *Metrics) IncrementSubmitted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ReadingsSubmitted++
}

// IncrementDropped 增加丢弃计数
func (m *Metrics) IncrementDropped() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ReadingsDropped++
}

// IncrementProcessed 增加处理计数
func (m *Metrics) IncrementProcessed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ReadingsProcessed++
}

// IncrementInvalid 增加无效采样计数
func (m *Metrics) IncrementInvalid() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ReadingsInvalid++
}

// IncrementAlerts 增加报警计数
func (m *Metrics) IncrementAlerts() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AlertsEmitted++
}

// IncrementThrottled 增加节流计数
func (m *Metrics) IncrementThrottled() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AlertsThrottled++
}

// IncrementTrends 增加趋势计数
func (m *Metrics) IncrementTrends() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TrendsEmitted++
}

// IncrementSinkErrors 增加 sink 错误计数
func (m *Metrics) IncrementSinkErrors() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SinkErrors++
}
