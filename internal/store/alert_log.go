package store

import (
	"sync"

	"github.com/Hakob23/thermal-monitoring/internal/models"
)

// AlertLog 有界的最近报警日志（FIFO 淘汰）
type AlertLog struct {
	mu     sync.Mutex
	alerts []models.Alert
	max    int
}

// NewAlertLog 创建报警日志
func NewAlertLog(max int) *AlertLog {
	if max <= 0 {
		max = 1000
	}
	return &AlertLog{max: max}
}

// Append 追加一条报警
func (l *AlertLog) Append(alert models.Alert) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.alerts = append(l.alerts, alert)
	if len(l.alerts) > l.max {
		l.alerts = l.alerts[len(l.alerts)-l.max:]
	}
}

// Recent 返回最近 count 条报警（按时间先后顺序）
func (l *AlertLog) Recent(count int) []models.Alert {
	l.mu.Lock()
	defer l.mu.Unlock()

	if count <= 0 || len(l.alerts) == 0 {
		return nil
	}
	start := len(l.alerts) - count
	if start < 0 {
		start = 0
	}
	return append([]models.Alert(nil), l.alerts[start:]...)
}

// Len 当前日志长度
func (l *AlertLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.alerts)
}
