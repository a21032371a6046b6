package models

import (
	"time"
)

// HistoryPoint 历史缓冲区中的一个带时间戳的数值
type HistoryPoint struct {
	Value     float64   `json:"value"`
	Timestamp time.Time `json:"timestamp"`
}

// Sample 聚合用的完整采样记录（包含无效采样，用于 valid_count 统计）
type Sample struct {
	Temperature float64   `json:"temperature"`
	Humidity    float64   `json:"humidity"`
	Pressure    *float64  `json:"pressure,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
	Valid       bool      `json:"valid"`
}

// SensorSnapshot 传感器状态的不可变副本（在锁内取值拷贝，供评估器无锁使用）
type SensorSnapshot struct {
	SensorID       string         `json:"sensor_id"`
	Location       string         `json:"location"`
	Temperature    float64        `json:"temperature"`
	Humidity       float64        `json:"humidity"`
	Pressure       *float64       `json:"pressure,omitempty"`
	SupplyVoltage  *float64       `json:"supply_voltage,omitempty"`
	TempRate       float64        `json:"temp_rate"` // 温度变化率 °C/min
	Confidence     float64        `json:"confidence"`
	LastUpdate     time.Time      `json:"last_update"`
	Active         bool           `json:"active"`
	InvalidCount   int64          `json:"invalid_count"`
	TempHistory    []HistoryPoint `json:"-"`
	HumidityHistory []HistoryPoint `json:"-"`
	Samples        []Sample       `json:"-"`
}

// SensorStats 单个传感器的统计信息（基于温度历史计算）
type SensorStats struct {
	SensorID        string  `json:"sensor_id"`
	Location        string  `json:"location"`
	CurrentTemp     float64 `json:"current_temp"`
	CurrentHumidity float64 `json:"current_humidity"`
	AvgTemp         float64 `json:"avg_temp"`
	MinTemp         float64 `json:"min_temp"`
	MaxTemp         float64 `json:"max_temp"`
	UptimeMinutes   int     `json:"uptime_minutes"`
}
