package consumer

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Hakob23/thermal-monitoring/internal/models"
)

// 物理量程（超出即判定采样无效，但传感器仍算在线）
const (
	TempFloor     = -40.0 // °C
	TempCeil      = 85.0
	HumidityFloor = 0.0 // %RH
	HumidityCeil  = 100.0
)

// ParsedReading 单条消息的解析结果
// 单通道主题（.../temperature、.../humidity）只携带一个字段，
// 缺失的字段由调用方用当前状态补齐
type ParsedReading struct {
	Reading        models.Reading
	HasTemperature bool
	HasHumidity    bool
}

// dataPayload 组合通道 sensors/{id}/data 的 JSON 载荷
type dataPayload struct {
	Temperature   *float64 `json:"temperature"`
	Humidity      *float64 `json:"humidity"`
	Pressure      *float64 `json:"pressure"`
	SupplyVoltage *float64 `json:"supply_voltage"`
	Location      string   `json:"location"`
	Confidence    *float64 `json:"confidence"`
}

// ParseMessage 解析一条传感器消息
// 主题格式：sensors/{sensor_id}/{data|temperature|humidity}
func ParseMessage(topic string, payload []byte, now time.Time) (ParsedReading, error) {
	parts := strings.Split(topic, "/")
	if len(parts) != 3 || parts[0] != "sensors" || parts[1] == "" {
		return ParsedReading{}, fmt.Errorf("malformed sensor topic: %s", topic)
	}

	sensorID := parts[1]
	channel := parts[2]

	switch channel {
	case "data":
		return parseDataPayload(sensorID, payload, now)
	case "temperature":
		value, err := parseScalar(payload)
		if err != nil {
			return ParsedReading{}, fmt.Errorf("invalid temperature payload for %s: %w", sensorID, err)
		}
		return ParsedReading{
			Reading: models.Reading{
				SensorID:    sensorID,
				Temperature: value,
				Timestamp:   now,
				Valid:       value >= TempFloor && value <= TempCeil,
				Confidence:  1.0,
			},
			HasTemperature: true,
		}, nil
	case "humidity":
		value, err := parseScalar(payload)
		if err != nil {
			return ParsedReading{}, fmt.Errorf("invalid humidity payload for %s: %w", sensorID, err)
		}
		return ParsedReading{
			Reading: models.Reading{
				SensorID:   sensorID,
				Humidity:   value,
				Timestamp:  now,
				Valid:      value >= HumidityFloor && value <= HumidityCeil,
				Confidence: 1.0,
			},
			HasHumidity: true,
		}, nil
	default:
		return ParsedReading{}, fmt.Errorf("unknown sensor channel %q in topic %s", channel, topic)
	}
}

// parseDataPayload 解析组合通道的 JSON 载荷
// temperature 和 humidity 必须同时存在，其余字段可选
func parseDataPayload(sensorID string, payload []byte, now time.Time) (ParsedReading, error) {
	var data dataPayload
	if err := json.Unmarshal(payload, &data); err != nil {
		return ParsedReading{}, fmt.Errorf("invalid data payload for %s: %w", sensorID, err)
	}
	if data.Temperature == nil {
		return ParsedReading{}, fmt.Errorf("data payload for %s missing temperature", sensorID)
	}
	if data.Humidity == nil {
		return ParsedReading{}, fmt.Errorf("data payload for %s missing humidity", sensorID)
	}

	confidence := 1.0
	if data.Confidence != nil {
		confidence = *data.Confidence
	}

	reading := models.Reading{
		SensorID:      sensorID,
		Location:      data.Location,
		Temperature:   *data.Temperature,
		Humidity:      *data.Humidity,
		Pressure:      data.Pressure,
		SupplyVoltage: data.SupplyVoltage,
		Timestamp:     now,
		Confidence:    confidence,
	}
	reading.Valid = reading.Temperature >= TempFloor && reading.Temperature <= TempCeil &&
		reading.Humidity >= HumidityFloor && reading.Humidity <= HumidityCeil

	return ParsedReading{
		Reading:        reading,
		HasTemperature: true,
		HasHumidity:    true,
	}, nil
}

// parseScalar 解析单通道主题的纯数字载荷
func parseScalar(payload []byte) (float64, error) {
	text := strings.TrimSpace(string(payload))
	if text == "" {
		return 0, fmt.Errorf("empty payload")
	}
	value, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %w", err)
	}
	return value, nil
}
