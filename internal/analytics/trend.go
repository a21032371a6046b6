package analytics

import (
	"math"
	"time"

	"github.com/Hakob23/thermal-monitoring/internal/config"
	"github.com/Hakob23/thermal-monitoring/internal/models"
)

// Analyze 对单个传感器的温度历史做趋势分析（纯函数）
// 采样数不足返回 nil（不是错误）
// 回归以采样序号为自变量：采样间隔大致均匀时与按时间回归等价
func Analyze(snap models.SensorSnapshot, cfg *config.Config, now time.Time) *models.TrendResult {
	history := snap.TempHistory
	if len(history) < cfg.Monitor.TrendMinSamples {
		return nil
	}

	slope, intercept := linearRegression(history)

	result := &models.TrendResult{
		SensorID:     snap.SensorID,
		AnalysisType: "trend_analysis",
		Slope:        slope,
		Intercept:    intercept,
		SampleCount:  len(history),
		ProcessedAt:  now,
	}

	// 置信度由数据来源置信度和历史长度共同决定
	result.Confidence = math.Min(1.0,
		snap.Confidence*float64(len(history))/float64(cfg.Monitor.TrendReferenceLen))

	// 趋势提示（咨询性输出，不是报警，不经过节流）
	if math.Abs(slope) > cfg.Monitor.TrendSlopeLimit {
		if slope > 0 {
			result.Alerts = append(result.Alerts, "Rising temperature trend detected")
			result.Recommendations = append(result.Recommendations, "Monitor for overheating")
		} else {
			result.Alerts = append(result.Alerts, "Falling temperature trend detected")
			result.Recommendations = append(result.Recommendations, "Check heating system")
		}
	}

	if snap.Humidity > cfg.Monitor.VentilationRH {
		result.Alerts = append(result.Alerts, "High humidity detected")
		result.Recommendations = append(result.Recommendations, "Improve ventilation")
	}

	return result
}

// linearRegression 对 value-序号 做最小二乘回归
func linearRegression(history []models.HistoryPoint) (slope, intercept float64) {
	n := float64(len(history))
	sumX := n * (n - 1) / 2.0
	var sumY, sumXY, sumX2 float64

	for i, point := range history {
		x := float64(i)
		sumY += point.Value
		sumXY += x * point.Value
		sumX2 += x * x
	}

	denom := n*sumX2 - sumX*sumX
	if denom == 0 {
		// 单点序列：斜率无定义，按水平趋势处理
		return 0, sumY / n
	}

	slope = (n*sumXY - sumX*sumY) / denom
	intercept = (sumY - slope*sumX) / n
	return slope, intercept
}
