package consumer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var parseTime = time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)

func TestParseMessage_DataChannel(t *testing.T) {
	payload := []byte(`{
		"temperature": 22.5,
		"humidity": 45.0,
		"pressure": 1013.2,
		"supply_voltage": 3.3,
		"location": "Kitchen",
		"confidence": 0.9
	}`)

	parsed, err := ParseMessage("sensors/sensor_01/data", payload, parseTime)
	require.NoError(t, err)
	assert.True(t, parsed.HasTemperature)
	assert.True(t, parsed.HasHumidity)

	reading := parsed.Reading
	assert.Equal(t, "sensor_01", reading.SensorID)
	assert.Equal(t, "Kitchen", reading.Location)
	assert.Equal(t, 22.5, reading.Temperature)
	assert.Equal(t, 45.0, reading.Humidity)
	require.NotNil(t, reading.Pressure)
	assert.Equal(t, 1013.2, *reading.Pressure)
	require.NotNil(t, reading.SupplyVoltage)
	assert.Equal(t, 3.3, *reading.SupplyVoltage)
	assert.Equal(t, 0.9, reading.Confidence)
	assert.Equal(t, parseTime, reading.Timestamp)
	assert.True(t, reading.Valid)
}

func TestParseMessage_DataChannelDefaults(t *testing.T) {
	parsed, err := ParseMessage("sensors/s1/data", []byte(`{"temperature":20,"humidity":50}`), parseTime)
	require.NoError(t, err)
	assert.Nil(t, parsed.Reading.Pressure)
	assert.Nil(t, parsed.Reading.SupplyVoltage)
	assert.Equal(t, 1.0, parsed.Reading.Confidence)
	assert.Empty(t, parsed.Reading.Location)
}

func TestParseMessage_OutOfRangeInvalid(t *testing.T) {
	// 超出物理量程的采样标记为无效，但仍可提交
	parsed, err := ParseMessage("sensors/s1/data", []byte(`{"temperature":120,"humidity":50}`), parseTime)
	require.NoError(t, err)
	assert.False(t, parsed.Reading.Valid)

	parsed, err = ParseMessage("sensors/s1/data", []byte(`{"temperature":20,"humidity":150}`), parseTime)
	require.NoError(t, err)
	assert.False(t, parsed.Reading.Valid)

	parsed, err = ParseMessage("sensors/s1/temperature", []byte("-55.0"), parseTime)
	require.NoError(t, err)
	assert.False(t, parsed.Reading.Valid)
}

func TestParseMessage_TemperatureChannel(t *testing.T) {
	parsed, err := ParseMessage("sensors/sensor_01/temperature", []byte(" 23.5 \n"), parseTime)
	require.NoError(t, err)
	assert.True(t, parsed.HasTemperature)
	assert.False(t, parsed.HasHumidity)
	assert.Equal(t, 23.5, parsed.Reading.Temperature)
	assert.True(t, parsed.Reading.Valid)
}

func TestParseMessage_HumidityChannel(t *testing.T) {
	parsed, err := ParseMessage("sensors/sensor_01/humidity", []byte("55"), parseTime)
	require.NoError(t, err)
	assert.False(t, parsed.HasTemperature)
	assert.True(t, parsed.HasHumidity)
	assert.Equal(t, 55.0, parsed.Reading.Humidity)
}

func TestParseMessage_Errors(t *testing.T) {
	tests := []struct {
		name    string
		topic   string
		payload string
	}{
		{"wrong prefix", "devices/s1/data", `{"temperature":20,"humidity":50}`},
		{"missing sensor id", "sensors//data", `{"temperature":20,"humidity":50}`},
		{"too few segments", "sensors/s1", `{}`},
		{"unknown channel", "sensors/s1/voltage", "3.3"},
		{"bad json", "sensors/s1/data", `{not-json`},
		{"missing temperature", "sensors/s1/data", `{"humidity":50}`},
		{"missing humidity", "sensors/s1/data", `{"temperature":20}`},
		{"non-numeric scalar", "sensors/s1/temperature", "warm"},
		{"empty scalar", "sensors/s1/humidity", "  "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseMessage(tt.topic, []byte(tt.payload), parseTime)
			assert.Error(t, err)
		})
	}
}
