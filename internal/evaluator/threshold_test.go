package evaluator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hakob23/thermal-monitoring/internal/config"
	"github.com/Hakob23/thermal-monitoring/internal/models"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Monitor.TempMin = 18.0
	cfg.Monitor.TempMax = 28.0
	cfg.Monitor.HumidityMax = 60.0
	cfg.Monitor.TempRateLimit = 2.0
	cfg.Monitor.VoltageMin = 3.0
	return cfg
}

func kinds(candidates []models.AlertCandidate) []models.AlertKind {
	result := make([]models.AlertKind, 0, len(candidates))
	for _, c := range candidates {
		result = append(result, c.Kind)
	}
	return result
}

func TestEvaluateThresholds_InRange(t *testing.T) {
	snap := models.SensorSnapshot{
		SensorID:    "sensor_01",
		Temperature: 22.0,
		Humidity:    45.0,
		TempRate:    0.5,
	}

	assert.Empty(t, EvaluateThresholds(snap, testConfig()))
}

func TestEvaluateThresholds_TempTooHigh(t *testing.T) {
	snap := models.SensorSnapshot{
		SensorID:    "sensor_01",
		Temperature: 30.0,
		Humidity:    45.0,
	}

	candidates := EvaluateThresholds(snap, testConfig())
	require.Len(t, candidates, 1)
	assert.Equal(t, models.AlertTempTooHigh, candidates[0].Kind)
	assert.Equal(t, models.SeverityWarning, candidates[0].Severity)
	assert.Equal(t, 30.0, candidates[0].Temperature)
}

func TestEvaluateThresholds_TempTooLow(t *testing.T) {
	snap := models.SensorSnapshot{Temperature: 15.0, Humidity: 45.0}

	candidates := EvaluateThresholds(snap, testConfig())
	require.Len(t, candidates, 1)
	assert.Equal(t, models.AlertTempTooLow, candidates[0].Kind)
}

func TestEvaluateThresholds_Boundary(t *testing.T) {
	// 阈值比较是严格不等式：正好等于边界不触发
	snap := models.SensorSnapshot{Temperature: 28.0, Humidity: 60.0, TempRate: 2.0}
	assert.Empty(t, EvaluateThresholds(snap, testConfig()))

	snap = models.SensorSnapshot{Temperature: 18.0, Humidity: 0.0, TempRate: -2.0}
	assert.Empty(t, EvaluateThresholds(snap, testConfig()))
}

func TestEvaluateThresholds_RateRules(t *testing.T) {
	snap := models.SensorSnapshot{Temperature: 22.0, Humidity: 45.0, TempRate: 2.5}
	candidates := EvaluateThresholds(snap, testConfig())
	require.Len(t, candidates, 1)
	assert.Equal(t, models.AlertTempRisingFast, candidates[0].Kind)

	snap.TempRate = -2.5
	candidates = EvaluateThresholds(snap, testConfig())
	require.Len(t, candidates, 1)
	assert.Equal(t, models.AlertTempFallingFast, candidates[0].Kind)
}

func TestEvaluateThresholds_SupplyVoltage(t *testing.T) {
	voltage := 2.8
	snap := models.SensorSnapshot{
		Temperature:   22.0,
		Humidity:      45.0,
		SupplyVoltage: &voltage,
	}

	candidates := EvaluateThresholds(snap, testConfig())
	require.Len(t, candidates, 1)
	assert.Equal(t, models.AlertLowSupplyVoltage, candidates[0].Kind)
	assert.Equal(t, 2.8, candidates[0].SupplyVoltage)

	// 未上报电压不触发
	snap.SupplyVoltage = nil
	assert.Empty(t, EvaluateThresholds(snap, testConfig()))
}

func TestEvaluateThresholds_MultipleRules(t *testing.T) {
	// 高温 + 高湿 + 快速上升同时触发
	snap := models.SensorSnapshot{
		Temperature: 32.0,
		Humidity:    75.0,
		TempRate:    3.0,
	}

	candidates := EvaluateThresholds(snap, testConfig())
	assert.ElementsMatch(t, []models.AlertKind{
		models.AlertTempTooHigh,
		models.AlertHumidityTooHigh,
		models.AlertTempRisingFast,
	}, kinds(candidates))
}
