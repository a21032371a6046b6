package models

import (
	"time"
)

// Reading 一条已验证的传感器采样（由协作方完成字节级解码和校验）
// Valid=false 表示数值超出物理范围或校验失败，引擎信任该标志
type Reading struct {
	SensorID      string    `json:"sensor_id"`
	Location      string    `json:"location"`
	Temperature   float64   `json:"temperature"`    // 摄氏度
	Humidity      float64   `json:"humidity"`       // 相对湿度 %
	Pressure      *float64  `json:"pressure,omitempty"`       // hPa（可选）
	SupplyVoltage *float64  `json:"supply_voltage,omitempty"` // 电源电压 V（可选，协作方上报）
	Timestamp     time.Time `json:"timestamp"`      // 采集时间戳
	Valid         bool      `json:"valid"`
	Confidence    float64   `json:"confidence"` // 数据来源置信度 0.0-1.0
}
