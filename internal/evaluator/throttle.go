package evaluator

import (
	"sync"
	"time"

	"github.com/Hakob23/thermal-monitoring/internal/models"
)

// throttleKey 节流表键：(传感器, 报警类型)
type throttleKey struct {
	sensorID string
	kind     models.AlertKind
}

// AlertThrottle 报警节流器
// 同一 (sensor, kind) 在冷却窗口内最多发出一次报警；
// check-and-set 在同一把锁内完成，是报警发出的唯一串行化点，
// 两个 worker 并发评估同一传感器时也不会重复发出
type AlertThrottle struct {
	mu       sync.Mutex
	lastFire map[throttleKey]time.Time
	cooldown time.Duration
	builder  *AlertBuilder
}

// NewAlertThrottle 创建报警节流器
func NewAlertThrottle(cooldown time.Duration, builder *AlertBuilder) *AlertThrottle {
	return &AlertThrottle{
		lastFire: make(map[throttleKey]time.Time),
		cooldown: cooldown,
		builder:  builder,
	}
}

// Admit 尝试放行一条候选报警
// 首次出现或超过冷却窗口时记录 now 并返回构建好的报警，否则返回 false
func (t *AlertThrottle) Admit(candidate models.AlertCandidate, location string, now time.Time) (models.Alert, bool) {
	key := throttleKey{sensorID: candidate.SensorID, kind: candidate.Kind}

	t.mu.Lock()
	last, seen := t.lastFire[key]
	if seen && now.Sub(last) < t.cooldown {
		t.mu.Unlock()
		return models.Alert{}, false
	}
	t.lastFire[key] = now
	t.mu.Unlock()

	// 消息渲染在锁外进行
	return t.builder.Build(candidate, location, now), true
}
