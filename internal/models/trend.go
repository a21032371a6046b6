package models

import (
	"time"
)

// TrendResult 回归分析结果（咨询性输出，不经过节流）
type TrendResult struct {
	SensorID        string    `json:"sensor_id"`
	AnalysisType    string    `json:"analysis_type"` // 固定为 "trend_analysis"
	Slope           float64   `json:"slope"`         // °C/采样点
	Intercept       float64   `json:"intercept"`
	Confidence      float64   `json:"confidence"` // 0.0-1.0
	SampleCount     int       `json:"sample_count"`
	Alerts          []string  `json:"alerts"`          // 趋势提示，如 "Rising temperature trend detected"
	Recommendations []string  `json:"recommendations"` // 建议，如 "Monitor for overheating"
	ProcessedAt     time.Time `json:"processed_at"`
}
