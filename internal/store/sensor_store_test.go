package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hakob23/thermal-monitoring/internal/models"
)

// fakeClock 可推进的测试时钟
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func newTestStore(historySize int) (*SensorStore, *fakeClock) {
	clock := &fakeClock{now: time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)}
	s := NewSensorStore(historySize, map[string]string{
		"sensor_01": "Kitchen",
	})
	s.nowFn = clock.Now
	return s, clock
}

func validReading(sensorID string, temp, humidity float64) models.Reading {
	return models.Reading{
		SensorID:    sensorID,
		Temperature: temp,
		Humidity:    humidity,
		Valid:       true,
		Confidence:  1.0,
	}
}

func TestApply_NewSensor(t *testing.T) {
	s, clock := newTestStore(100)

	snap := s.Apply(validReading("sensor_01", 22.5, 45.0))

	assert.Equal(t, "sensor_01", snap.SensorID)
	assert.Equal(t, "Kitchen", snap.Location)
	assert.Equal(t, 22.5, snap.Temperature)
	assert.Equal(t, 45.0, snap.Humidity)
	assert.Equal(t, 0.0, snap.TempRate) // 首条采样没有变化率
	assert.True(t, snap.Active)
	assert.Equal(t, clock.now, snap.LastUpdate)
	assert.Len(t, snap.TempHistory, 1)
	assert.Len(t, snap.HumidityHistory, 1)
	assert.Len(t, snap.Samples, 1)
}

func TestApply_UnknownLocation(t *testing.T) {
	s, _ := newTestStore(100)

	snap := s.Apply(validReading("sensor_99", 20.0, 40.0))
	assert.Equal(t, "Unknown", snap.Location)

	// 采样携带的位置优先于配置映射
	r := validReading("sensor_99", 20.0, 40.0)
	r.Location = "Garage"
	snap = s.Apply(r)
	assert.Equal(t, "Garage", snap.Location)
}

func TestApply_TempRate(t *testing.T) {
	s, clock := newTestStore(100)

	s.Apply(validReading("sensor_01", 20.0, 40.0))

	// 1分钟后温度上升3度 → 变化率 +3.0°C/min
	clock.Advance(time.Minute)
	snap := s.Apply(validReading("sensor_01", 23.0, 40.0))
	assert.InDelta(t, 3.0, snap.TempRate, 1e-9)

	// 2分钟后温度下降1度 → 变化率 -0.5°C/min
	clock.Advance(2 * time.Minute)
	snap = s.Apply(validReading("sensor_01", 22.0, 40.0))
	assert.InDelta(t, -0.5, snap.TempRate, 1e-9)
}

func TestApply_ZeroElapsedKeepsRate(t *testing.T) {
	s, clock := newTestStore(100)

	s.Apply(validReading("sensor_01", 20.0, 40.0))
	clock.Advance(time.Minute)
	s.Apply(validReading("sensor_01", 21.0, 40.0))

	// 同一时刻的第二条采样不更新变化率
	snap := s.Apply(validReading("sensor_01", 25.0, 40.0))
	assert.InDelta(t, 1.0, snap.TempRate, 1e-9)
}

func TestApply_InvalidFirstReadingNoRate(t *testing.T) {
	s, clock := newTestStore(100)

	// 首条采样无效：后续首条有效采样不得对着零值温度求变化率
	s.Apply(models.Reading{SensorID: "sensor_01", Temperature: 999.0, Valid: false})

	clock.Advance(time.Minute)
	snap := s.Apply(validReading("sensor_01", 22.0, 45.0))
	assert.Equal(t, 0.0, snap.TempRate)
	assert.Len(t, snap.TempHistory, 1)
}

func TestApply_InvalidBetweenValidReadings(t *testing.T) {
	s, clock := newTestStore(100)

	s.Apply(validReading("sensor_01", 20.0, 45.0))

	// 9分钟后一条无效采样，再过1分钟一条有效采样：
	// 变化率必须按两条有效采样之间的完整10分钟计算（0.3°C/min），
	// 不能被无效采样刷新的 last_update 缩短为1分钟（3.0°C/min）
	clock.Advance(9 * time.Minute)
	s.Apply(models.Reading{SensorID: "sensor_01", Temperature: 999.0, Valid: false})

	clock.Advance(time.Minute)
	snap := s.Apply(validReading("sensor_01", 23.0, 45.0))
	assert.InDelta(t, 0.3, snap.TempRate, 1e-9)
}

func TestApply_HistoryBounded(t *testing.T) {
	s, clock := newTestStore(5)

	for i := 0; i < 12; i++ {
		s.Apply(validReading("sensor_01", 20.0+float64(i), 40.0))
		clock.Advance(time.Second)
	}

	snap, ok := s.Snapshot("sensor_01")
	require.True(t, ok)
	assert.Len(t, snap.TempHistory, 5)
	assert.Len(t, snap.HumidityHistory, 5)
	assert.Len(t, snap.Samples, 5)
	// 保留的是最新的5条
	assert.Equal(t, 27.0, snap.TempHistory[0].Value)
	assert.Equal(t, 31.0, snap.TempHistory[4].Value)
}

func TestApply_InvalidReading(t *testing.T) {
	s, clock := newTestStore(100)

	s.Apply(validReading("sensor_01", 22.0, 45.0))

	clock.Advance(time.Minute)
	invalid := models.Reading{
		SensorID:    "sensor_01",
		Temperature: 999.0,
		Humidity:    45.0,
		Valid:       false,
	}
	snap := s.Apply(invalid)

	// 数值和历史不受影响
	assert.Equal(t, 22.0, snap.Temperature)
	assert.Len(t, snap.TempHistory, 1)
	assert.Equal(t, int64(1), snap.InvalidCount)

	// last_update 被刷新，传感器仍在线
	assert.Equal(t, clock.now, snap.LastUpdate)
	assert.True(t, snap.Active)

	// 无效采样进入样本环（标记 Valid=false），供聚合统计
	require.Len(t, snap.Samples, 2)
	assert.False(t, snap.Samples[1].Valid)
}

func TestMarkInactive(t *testing.T) {
	s, _ := newTestStore(100)

	assert.False(t, s.MarkInactive("missing"))

	s.Apply(validReading("sensor_01", 22.0, 45.0))
	assert.True(t, s.MarkInactive("sensor_01"))
	// 已离线的传感器重复标记返回 false
	assert.False(t, s.MarkInactive("sensor_01"))

	// 新采样重新激活
	snap := s.Apply(validReading("sensor_01", 22.0, 45.0))
	assert.True(t, snap.Active)
	assert.True(t, s.MarkInactive("sensor_01"))
}

func TestSnapshot_Isolation(t *testing.T) {
	s, _ := newTestStore(100)

	s.Apply(validReading("sensor_01", 22.0, 45.0))
	snap, ok := s.Snapshot("sensor_01")
	require.True(t, ok)

	// 修改快照不影响存储内部状态
	snap.TempHistory[0].Value = -100.0
	snap.Samples[0].Temperature = -100.0

	fresh, _ := s.Snapshot("sensor_01")
	assert.Equal(t, 22.0, fresh.TempHistory[0].Value)
	assert.Equal(t, 22.0, fresh.Samples[0].Temperature)
}

func TestStats(t *testing.T) {
	s, clock := newTestStore(100)

	_, ok := s.Stats("missing")
	assert.False(t, ok)

	for _, temp := range []float64{20.0, 24.0, 22.0} {
		s.Apply(validReading("sensor_01", temp, 40.0))
		clock.Advance(time.Minute)
	}

	stats, ok := s.Stats("sensor_01")
	require.True(t, ok)
	assert.Equal(t, "Kitchen", stats.Location)
	assert.Equal(t, 22.0, stats.CurrentTemp)
	assert.InDelta(t, 22.0, stats.AvgTemp, 1e-9)
	assert.Equal(t, 20.0, stats.MinTemp)
	assert.Equal(t, 24.0, stats.MaxTemp)
	assert.Equal(t, 3, stats.UptimeMinutes)
}

func TestAllSensors(t *testing.T) {
	s, _ := newTestStore(100)

	s.Apply(validReading("sensor_01", 22.0, 45.0))
	s.Apply(validReading("sensor_02", 19.0, 50.0))

	snapshots := s.AllSensors()
	assert.Len(t, snapshots, 2)
}
