package models

import (
	"time"
)

// AlertKind 报警类型（封闭枚举，消息格式化时必须穷举）
type AlertKind string

const (
	AlertTempTooLow       AlertKind = "TEMP_TOO_LOW"
	AlertTempTooHigh      AlertKind = "TEMP_TOO_HIGH"
	AlertHumidityTooHigh  AlertKind = "HUMIDITY_TOO_HIGH"
	AlertTempRisingFast   AlertKind = "TEMP_RISING_FAST"
	AlertTempFallingFast  AlertKind = "TEMP_FALLING_FAST"
	AlertLowSupplyVoltage AlertKind = "LOW_SUPPLY_VOLTAGE"
	AlertSensorOffline    AlertKind = "SENSOR_OFFLINE"
)

// Severity 报警级别
type Severity string

const (
	SeverityWarning  Severity = "WARNING"
	SeverityCritical Severity = "CRITICAL"
)

// AlertCandidate 阈值评估产生的候选报警（节流前）
type AlertCandidate struct {
	SensorID      string
	Kind          AlertKind
	Severity      Severity
	Temperature   float64
	Humidity      float64
	TempRate      float64
	SupplyVoltage float64 // 仅 LOW_SUPPLY_VOLTAGE 使用
}

// Alert 通过节流的用户可见报警事件（创建后不可变，所有权交给通知 sink）
type Alert struct {
	EventID     string    `json:"event_id"`
	SensorID    string    `json:"sensor_id"`
	Kind        AlertKind `json:"kind"`
	Severity    Severity  `json:"severity"`
	Location    string    `json:"location"`
	Timestamp   time.Time `json:"timestamp"`
	Temperature float64   `json:"temperature"`
	Humidity    float64   `json:"humidity"`
	TempRate    float64   `json:"temp_rate"`
	Message     string    `json:"message"`
}
