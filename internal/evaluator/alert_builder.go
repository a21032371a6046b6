package evaluator

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Hakob23/thermal-monitoring/internal/config"
	"github.com/Hakob23/thermal-monitoring/internal/models"
)

// AlertBuilder 报警事件构建器（渲染用户可读消息）
type AlertBuilder struct {
	cfg *config.Config
}

// NewAlertBuilder 创建报警事件构建器
func NewAlertBuilder(cfg *config.Config) *AlertBuilder {
	return &AlertBuilder{cfg: cfg}
}

// Build 由候选报警构建最终报警事件
func (b *AlertBuilder) Build(candidate models.AlertCandidate, location string, now time.Time) models.Alert {
	return models.Alert{
		EventID:     uuid.New().String(),
		SensorID:    candidate.SensorID,
		Kind:        candidate.Kind,
		Severity:    candidate.Severity,
		Location:    location,
		Timestamp:   now,
		Temperature: candidate.Temperature,
		Humidity:    candidate.Humidity,
		TempRate:    candidate.TempRate,
		Message:     b.formatMessage(candidate, location),
	}
}

// formatMessage 按报警类型渲染消息（封闭枚举，必须穷举）
func (b *AlertBuilder) formatMessage(candidate models.AlertCandidate, location string) string {
	var msg string

	switch candidate.Kind {
	case models.AlertTempTooLow:
		msg = fmt.Sprintf("Temperature too low: %.1f°C (min: %.1f°C)",
			candidate.Temperature, b.cfg.Monitor.TempMin)
	case models.AlertTempTooHigh:
		msg = fmt.Sprintf("Temperature too high: %.1f°C (max: %.1f°C)",
			candidate.Temperature, b.cfg.Monitor.TempMax)
	case models.AlertHumidityTooHigh:
		msg = fmt.Sprintf("Humidity too high: %.1f%% (max: %.1f%%)",
			candidate.Humidity, b.cfg.Monitor.HumidityMax)
	case models.AlertTempRisingFast:
		msg = fmt.Sprintf("Temperature rising rapidly: %.2f°C/min (limit: %.2f°C/min)",
			candidate.TempRate, b.cfg.Monitor.TempRateLimit)
	case models.AlertTempFallingFast:
		msg = fmt.Sprintf("Temperature falling rapidly: %.2f°C/min (limit: -%.2f°C/min)",
			candidate.TempRate, b.cfg.Monitor.TempRateLimit)
	case models.AlertLowSupplyVoltage:
		msg = fmt.Sprintf("Low supply voltage: %.2fV (min: %.2fV)",
			candidate.SupplyVoltage, b.cfg.Monitor.VoltageMin)
	case models.AlertSensorOffline:
		msg = fmt.Sprintf("Sensor offline for more than %d minutes",
			int(b.cfg.Monitor.SensorTimeout.Minutes()))
	default:
		msg = fmt.Sprintf("Unknown alert kind: %s", candidate.Kind)
	}

	if location != "" && location != "Unknown" {
		msg += " in " + location
	}

	return msg
}
