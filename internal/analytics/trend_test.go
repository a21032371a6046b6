package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hakob23/thermal-monitoring/internal/config"
	"github.com/Hakob23/thermal-monitoring/internal/models"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Monitor.TrendMinSamples = 5
	cfg.Monitor.TrendSlopeLimit = 0.5
	cfg.Monitor.TrendReferenceLen = 10
	cfg.Monitor.VentilationRH = 70.0
	return cfg
}

func historyOf(values ...float64) []models.HistoryPoint {
	base := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)
	history := make([]models.HistoryPoint, 0, len(values))
	for i, v := range values {
		history = append(history, models.HistoryPoint{
			Value:     v,
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		})
	}
	return history
}

func TestAnalyze_InsufficientSamples(t *testing.T) {
	snap := models.SensorSnapshot{
		SensorID:    "sensor_01",
		TempHistory: historyOf(20.0, 21.0, 22.0, 23.0),
	}

	assert.Nil(t, Analyze(snap, testConfig(), time.Now()))
}

func TestAnalyze_RisingTrend(t *testing.T) {
	now := time.Now()
	snap := models.SensorSnapshot{
		SensorID:    "sensor_01",
		Confidence:  1.0,
		Humidity:    45.0,
		TempHistory: historyOf(20.0, 21.0, 22.0, 23.0, 24.0),
	}

	result := Analyze(snap, testConfig(), now)
	require.NotNil(t, result)
	assert.Equal(t, "trend_analysis", result.AnalysisType)
	assert.InDelta(t, 1.0, result.Slope, 1e-9)
	assert.InDelta(t, 20.0, result.Intercept, 1e-9)
	assert.Equal(t, 5, result.SampleCount)
	assert.Equal(t, now, result.ProcessedAt)
	assert.Contains(t, result.Alerts, "Rising temperature trend detected")
	assert.Contains(t, result.Recommendations, "Monitor for overheating")
}

func TestAnalyze_FallingTrend(t *testing.T) {
	snap := models.SensorSnapshot{
		SensorID:    "sensor_01",
		Confidence:  1.0,
		Humidity:    45.0,
		TempHistory: historyOf(24.0, 23.0, 22.0, 21.0, 20.0),
	}

	result := Analyze(snap, testConfig(), time.Now())
	require.NotNil(t, result)
	assert.InDelta(t, -1.0, result.Slope, 1e-9)
	assert.Contains(t, result.Alerts, "Falling temperature trend detected")
	assert.Contains(t, result.Recommendations, "Check heating system")
}

func TestAnalyze_FlatTrendNoAdvisories(t *testing.T) {
	snap := models.SensorSnapshot{
		SensorID:    "sensor_01",
		Confidence:  1.0,
		Humidity:    45.0,
		TempHistory: historyOf(22.0, 22.1, 22.0, 21.9, 22.0),
	}

	result := Analyze(snap, testConfig(), time.Now())
	require.NotNil(t, result)
	assert.Empty(t, result.Alerts)
	assert.Empty(t, result.Recommendations)
}

func TestAnalyze_Confidence(t *testing.T) {
	// 5条历史、数据置信度1.0 → 5/10 = 0.5
	snap := models.SensorSnapshot{
		Confidence:  1.0,
		TempHistory: historyOf(22.0, 22.0, 22.0, 22.0, 22.0),
	}
	result := Analyze(snap, testConfig(), time.Now())
	require.NotNil(t, result)
	assert.InDelta(t, 0.5, result.Confidence, 1e-9)

	// 历史充足时钳制在1.0
	values := make([]float64, 30)
	for i := range values {
		values[i] = 22.0
	}
	snap.TempHistory = historyOf(values...)
	result = Analyze(snap, testConfig(), time.Now())
	require.NotNil(t, result)
	assert.Equal(t, 1.0, result.Confidence)
}

func TestAnalyze_VentilationAdvisory(t *testing.T) {
	snap := models.SensorSnapshot{
		Confidence:  1.0,
		Humidity:    75.0,
		TempHistory: historyOf(22.0, 22.0, 22.0, 22.0, 22.0),
	}

	result := Analyze(snap, testConfig(), time.Now())
	require.NotNil(t, result)
	assert.Contains(t, result.Alerts, "High humidity detected")
	assert.Contains(t, result.Recommendations, "Improve ventilation")
}

func TestLinearRegression_SinglePoint(t *testing.T) {
	slope, intercept := linearRegression(historyOf(22.0))
	assert.Equal(t, 0.0, slope)
	assert.Equal(t, 22.0, intercept)
}
