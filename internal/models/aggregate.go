package models

import (
	"time"
)

// TemperatureSummary 窗口内温度汇总
type TemperatureSummary struct {
	Avg float64 `json:"avg"`
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// HumiditySummary 窗口内湿度汇总
type HumiditySummary struct {
	Avg float64 `json:"avg"`
}

// PressureSummary 窗口内气压汇总
type PressureSummary struct {
	Avg float64 `json:"avg"`
}

// AggregatedWindow 单个传感器在尾随窗口内的聚合结果
type AggregatedWindow struct {
	Type          string             `json:"type"` // 固定为 "aggregated_data"
	SensorID      string             `json:"sensor_id"`
	Location      string             `json:"location"`
	Timestamp     time.Time          `json:"timestamp"`
	WindowSeconds int                `json:"window_seconds"`
	SampleCount   int                `json:"sample_count"`
	ValidCount    int                `json:"valid_count"`
	Temperature   TemperatureSummary `json:"temperature"`
	Humidity      HumiditySummary    `json:"humidity"`
	Pressure      PressureSummary    `json:"pressure"`
}
