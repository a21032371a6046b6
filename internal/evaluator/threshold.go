package evaluator

import (
	"github.com/Hakob23/thermal-monitoring/internal/config"
	"github.com/Hakob23/thermal-monitoring/internal/models"
)

// EvaluateThresholds 阈值评估（纯函数，无副作用，多条规则可同时触发）
// 只依赖快照和配置，便于用合成快照直接做单元测试
func EvaluateThresholds(snap models.SensorSnapshot, cfg *config.Config) []models.AlertCandidate {
	var candidates []models.AlertCandidate

	base := models.AlertCandidate{
		SensorID:    snap.SensorID,
		Severity:    models.SeverityWarning,
		Temperature: snap.Temperature,
		Humidity:    snap.Humidity,
		TempRate:    snap.TempRate,
	}

	if snap.Temperature < cfg.Monitor.TempMin {
		c := base
		c.Kind = models.AlertTempTooLow
		candidates = append(candidates, c)
	}

	if snap.Temperature > cfg.Monitor.TempMax {
		c := base
		c.Kind = models.AlertTempTooHigh
		candidates = append(candidates, c)
	}

	if snap.Humidity > cfg.Monitor.HumidityMax {
		c := base
		c.Kind = models.AlertHumidityTooHigh
		candidates = append(candidates, c)
	}

	if snap.TempRate > cfg.Monitor.TempRateLimit {
		c := base
		c.Kind = models.AlertTempRisingFast
		candidates = append(candidates, c)
	}

	if snap.TempRate < -cfg.Monitor.TempRateLimit {
		c := base
		c.Kind = models.AlertTempFallingFast
		candidates = append(candidates, c)
	}

	// 电源电压为协作方上报的可选字段
	if snap.SupplyVoltage != nil && *snap.SupplyVoltage < cfg.Monitor.VoltageMin {
		c := base
		c.Kind = models.AlertLowSupplyVoltage
		c.SupplyVoltage = *snap.SupplyVoltage
		candidates = append(candidates, c)
	}

	return candidates
}
