package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMetric(t *testing.T) {
	cases := []struct {
		in    string
		want  float64
		valid bool
	}{
		{"85.5", 85.5, true},
		{" 42 ", 42, true},
		{"0", 0, false},
		{"-3", 0, false},
		{"", 0, false},
		{"n/a", 0, false},
		{"NaN", 0, false},
		{"Inf", 0, false},
	}

	for _, tc := range cases {
		got, ok := Metric(tc.in)
		assert.Equal(t, tc.valid, ok, "input %q", tc.in)
		assert.Equal(t, tc.want, got, "input %q", tc.in)
	}
}

func TestNumberKeepsSignAndDefaultsToZero(t *testing.T) {
	assert.Equal(t, -120.5, Number("-120.5"))
	assert.Equal(t, 0.0, Number("garbage"))
	assert.Equal(t, 0.0, Number(""))
	assert.Equal(t, 0.0, Number("Inf"))
}

func TestCategory(t *testing.T) {
	assert.Equal(t, "Volta", Category("Volta"))
	assert.Equal(t, NotActive, Category(""))
	assert.Equal(t, NotActive, Category("   "))
}

func TestBatteryRecordHasLocation(t *testing.T) {
	lat, lon, zero := 1.29, 103.85, 0.0

	assert.True(t, (&BatteryRecord{Latitude: &lat, Longitude: &lon}).HasLocation())
	assert.False(t, (&BatteryRecord{}).HasLocation())
	assert.False(t, (&BatteryRecord{Latitude: &zero, Longitude: &zero}).HasLocation())
	assert.True(t, (&BatteryRecord{Latitude: &zero, Longitude: &lon}).HasLocation())
}
