package fleet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleetview/internal/domain/telemetry"
)

func signal(v float64) *float64 {
	return &v
}

func TestSummarizeEmptyInput(t *testing.T) {
	assert.Nil(t, Summarize(nil))
	assert.Nil(t, Summarize([]telemetry.BatteryRecord{}))
}

func TestSummarizeCountsAndBuckets(t *testing.T) {
	records := []telemetry.BatteryRecord{
		{
			PackageName:   "PKG-001",
			StatusBinding: telemetry.StatusBound,
			SOC:           "15",
			SOH:           "92",
			Signal:        signal(5),
			ChargingCycle: "10",
			RatedCapacity: "100",
		},
		{
			PackageName:   "PKG-002",
			StatusBinding: telemetry.StatusUnbound,
			SOC:           "80",
			SOH:           "40",
		},
	}

	s := Summarize(records)
	require.NotNil(t, s)

	assert.Equal(t, 2, s.TotalBatteries)
	assert.Equal(t, 1, s.ActiveBatteries)
	assert.InDelta(t, 50.0, s.ActiveBatteriesPercentage, 1e-9)

	assert.Equal(t, 1, s.SOCCategories.Critical)
	assert.Equal(t, 0, s.SOCCategories.Low)
	assert.Equal(t, 0, s.SOCCategories.Medium)
	assert.Equal(t, 0, s.SOCCategories.High)
	assert.Equal(t, 0, s.SOCCategories.Full)
	assert.Equal(t, 0, s.SOCCategories.Unknown)

	// The inactive record's SOH does not reach the buckets at all.
	assert.Equal(t, 1, s.SOHCategories.Good)
	assert.Equal(t, 0, s.SOHCategories.Critical)

	assert.Equal(t, 1, s.SignalCategories.Poor)
	assert.Equal(t, 1, s.SignalCategories.NoSignal)

	assert.InDelta(t, 50.0, s.AvgCapacity, 1e-9)
}

func TestSummarizeTotalMatchesInputLength(t *testing.T) {
	for _, n := range []int{1, 3, 17} {
		records := make([]telemetry.BatteryRecord, n)
		s := Summarize(records)
		require.NotNil(t, s)
		assert.Equal(t, n, s.TotalBatteries)
		assert.LessOrEqual(t, s.ActiveBatteries, s.TotalBatteries)
		assert.GreaterOrEqual(t, s.ActiveBatteriesPercentage, 0.0)
		assert.LessOrEqual(t, s.ActiveBatteriesPercentage, 100.0)
	}
}

func TestSOCBucketBoundaries(t *testing.T) {
	cases := []struct {
		soc    string
		bucket func(SOCBuckets) int
		name   string
	}{
		{"0", func(b SOCBuckets) int { return b.Unknown }, "zero is no reading, not critical"},
		{"not-a-number", func(b SOCBuckets) int { return b.Unknown }, "garbage is unknown"},
		{"", func(b SOCBuckets) int { return b.Unknown }, "empty is unknown"},
		{"20", func(b SOCBuckets) int { return b.Critical }, "upper bound is inclusive"},
		{"21", func(b SOCBuckets) int { return b.Low }, "just above critical"},
		{"40", func(b SOCBuckets) int { return b.Low }, "low upper bound"},
		{"60", func(b SOCBuckets) int { return b.Medium }, "medium upper bound"},
		{"80", func(b SOCBuckets) int { return b.High }, "high upper bound"},
		{"80.5", func(b SOCBuckets) int { return b.Full }, "above high is full"},
		{"100", func(b SOCBuckets) int { return b.Full }, "full"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := Summarize([]telemetry.BatteryRecord{
				{StatusBinding: telemetry.StatusBound, SOC: tc.soc},
			})
			require.NotNil(t, s)
			assert.Equal(t, 1, tc.bucket(s.SOCCategories))
		})
	}
}

func TestSOHBucketBoundaries(t *testing.T) {
	cases := []struct {
		soh    string
		bucket func(SOHBuckets) int
	}{
		{"0", func(b SOHBuckets) int { return b.Unknown }},
		{"40", func(b SOHBuckets) int { return b.Critical }},
		{"70", func(b SOHBuckets) int { return b.Poor }},
		{"85", func(b SOHBuckets) int { return b.Fair }},
		{"95", func(b SOHBuckets) int { return b.Good }},
		{"96", func(b SOHBuckets) int { return b.Excellent }},
	}

	for _, tc := range cases {
		s := Summarize([]telemetry.BatteryRecord{
			{StatusBinding: telemetry.StatusBound, SOH: tc.soh},
		})
		require.NotNil(t, s)
		assert.Equal(t, 1, tc.bucket(s.SOHCategories), "soh=%s", tc.soh)
	}
}

func TestBucketsPartitionActiveRecords(t *testing.T) {
	records := []telemetry.BatteryRecord{
		{StatusBinding: telemetry.StatusBound, SOC: "10", SOH: "30"},
		{StatusBinding: telemetry.StatusBound, SOC: "55", SOH: "90"},
		{StatusBinding: telemetry.StatusBound, SOC: "oops", SOH: ""},
		{StatusBinding: telemetry.StatusBound, SOC: "99", SOH: "99"},
		{StatusBinding: telemetry.StatusUnbound, SOC: "50", SOH: "50"},
	}

	s := Summarize(records)
	require.NotNil(t, s)

	soc := s.SOCCategories
	assert.Equal(t, s.ActiveBatteries, soc.Valid()+soc.Unknown)

	soh := s.SOHCategories
	assert.Equal(t, s.ActiveBatteries, soh.Valid()+soh.Unknown)
}

func TestSignalBucketsCoverAllRecords(t *testing.T) {
	records := []telemetry.BatteryRecord{
		{StatusBinding: telemetry.StatusBound, Signal: signal(0)},
		{StatusBinding: telemetry.StatusBound, Signal: signal(7)},
		{StatusBinding: telemetry.StatusUnbound, Signal: signal(8)},
		{StatusBinding: telemetry.StatusUnbound, Signal: signal(16)},
		{StatusBinding: telemetry.StatusUnbound, Signal: signal(24)},
		{StatusBinding: telemetry.StatusUnbound, Signal: signal(31)},
		{StatusBinding: telemetry.StatusUnbound},
		{StatusBinding: telemetry.StatusUnbound, Signal: signal(99)},
	}

	s := Summarize(records)
	require.NotNil(t, s)

	b := s.SignalCategories
	// Inactive records are still bucketed: signal coverage is fleet-wide.
	assert.Equal(t, 2, b.Poor)
	assert.Equal(t, 1, b.Fair)
	assert.Equal(t, 1, b.Good)
	assert.Equal(t, 2, b.Excellent)
	assert.Equal(t, 2, b.NoSignal)
	assert.Equal(t, s.TotalBatteries, b.Poor+b.Fair+b.Good+b.Excellent+b.NoSignal)
}

func TestAveragesSkipInvalidReadings(t *testing.T) {
	records := []telemetry.BatteryRecord{
		{StatusBinding: telemetry.StatusBound, SOC: "40", SOH: "80", ChargingCycle: "100"},
		{StatusBinding: telemetry.StatusBound, SOC: "60", SOH: "0", ChargingCycle: "abc"},
		{StatusBinding: telemetry.StatusBound, SOC: "bad", SOH: "90", ChargingCycle: "50"},
	}

	s := Summarize(records)
	require.NotNil(t, s)

	// Invalid readings are out of both numerator and denominator.
	assert.InDelta(t, 50.0, s.AvgSOC, 1e-9)
	assert.InDelta(t, 85.0, s.AvgSOH, 1e-9)

	// Charging cycles average over every record, unreadable counts as zero.
	assert.InDelta(t, 50.0, s.AvgChargingCycle, 1e-9)
}

func TestEnergyEfficiency(t *testing.T) {
	t.Run("zero discharge yields zero regardless of charge", func(t *testing.T) {
		s := Summarize([]telemetry.BatteryRecord{
			{StatusBinding: telemetry.StatusBound, BattWhCharge: "500", BattWhDischarge: "0"},
			{StatusBinding: telemetry.StatusBound, BattWhCharge: "300", BattWhDischarge: "0"},
		})
		require.NotNil(t, s)
		assert.Zero(t, s.EnergyEfficiency)
	})

	t.Run("negative discharge totals are taken absolute", func(t *testing.T) {
		s := Summarize([]telemetry.BatteryRecord{
			{StatusBinding: telemetry.StatusBound, BattWhCharge: "450", BattWhDischarge: "-500"},
		})
		require.NotNil(t, s)
		assert.InDelta(t, 90.0, s.EnergyEfficiency, 1e-9)
	})
}

func TestWorkingHours(t *testing.T) {
	s := Summarize([]telemetry.BatteryRecord{
		{
			StatusBinding:         telemetry.StatusBound,
			DischargeWorkingHours: "30",
			ChargeWorkingHours:    "20",
			IdleWorkingHours:      "50",
		},
	})
	require.NotNil(t, s)

	assert.InDelta(t, 100.0, s.TotalWorkingHours, 1e-9)
	assert.InDelta(t, 50.0, s.ActiveTimePercentage, 1e-9)
}

func TestMaxTempSpansAllRecords(t *testing.T) {
	s := Summarize([]telemetry.BatteryRecord{
		{StatusBinding: telemetry.StatusBound, MaxCellTemp: "35.5"},
		{StatusBinding: telemetry.StatusUnbound, MaxCellTemp: "41.2"},
		{StatusBinding: telemetry.StatusBound, MaxCellTemp: "junk"},
	})
	require.NotNil(t, s)
	assert.InDelta(t, 41.2, s.MaxTemp, 1e-9)
}

func TestCategoricalHistograms(t *testing.T) {
	s := Summarize([]telemetry.BatteryRecord{
		{StatusBinding: telemetry.StatusBound, Brand: "Volta", SoftwareVersion: "2.1.0"},
		{StatusBinding: telemetry.StatusBound, Brand: "Volta", SoftwareVersion: ""},
		{StatusBinding: telemetry.StatusUnbound, Brand: "", SoftwareVersion: "2.1.0"},
	})
	require.NotNil(t, s)

	assert.Equal(t, 2, s.BrandDistribution["Volta"])
	assert.Equal(t, 1, s.BrandDistribution[telemetry.NotActive])
	assert.Equal(t, 2, s.SoftwareVersions["2.1.0"])
	assert.Equal(t, 1, s.SoftwareVersions[telemetry.NotActive])
}

func TestAvgEstimatedCycles(t *testing.T) {
	t.Run("soh at or below end of life contributes zero but stays counted", func(t *testing.T) {
		s := Summarize([]telemetry.BatteryRecord{
			{StatusBinding: telemetry.StatusBound, SOH: "65", ChargingCycle: "20"},
		})
		require.NotNil(t, s)
		assert.Zero(t, s.AvgEstimatedCycles)
	})

	t.Run("healthy package projects remaining cycles", func(t *testing.T) {
		// soh=90, cycles=100: rate=(100-90)/100=0.1, remaining=(90-70)/0.1=200.
		s := Summarize([]telemetry.BatteryRecord{
			{StatusBinding: telemetry.StatusBound, SOH: "90", ChargingCycle: "100"},
		})
		require.NotNil(t, s)
		assert.InDelta(t, 200.0, s.AvgEstimatedCycles, 1e-9)
	})

	t.Run("end-of-life package halves the fleet average", func(t *testing.T) {
		s := Summarize([]telemetry.BatteryRecord{
			{StatusBinding: telemetry.StatusBound, SOH: "90", ChargingCycle: "100"},
			{StatusBinding: telemetry.StatusBound, SOH: "65", ChargingCycle: "20"},
		})
		require.NotNil(t, s)
		assert.InDelta(t, 100.0, s.AvgEstimatedCycles, 1e-9)
	})

	t.Run("pristine soh yields zero rate and zero estimate", func(t *testing.T) {
		s := Summarize([]telemetry.BatteryRecord{
			{StatusBinding: telemetry.StatusBound, SOH: "100", ChargingCycle: "5"},
		})
		require.NotNil(t, s)
		assert.Zero(t, s.AvgEstimatedCycles)
	})
}

func TestSummarizeNeverProducesNaN(t *testing.T) {
	// A batch of entirely malformed records must still come back finite.
	s := Summarize([]telemetry.BatteryRecord{
		{SOC: "NaN", SOH: "Inf", ChargingCycle: "-", BattWhDischarge: "x"},
		{StatusBinding: "??", MaxCellTemp: "", RatedCapacity: "inf"},
	})
	require.NotNil(t, s)

	for name, v := range map[string]float64{
		"active_percentage": s.ActiveBatteriesPercentage,
		"avg_soc":           s.AvgSOC,
		"avg_soh":           s.AvgSOH,
		"avg_cycle":         s.AvgChargingCycle,
		"avg_capacity":      s.AvgCapacity,
		"efficiency":        s.EnergyEfficiency,
		"working_hours":     s.TotalWorkingHours,
		"active_time":       s.ActiveTimePercentage,
		"max_temp":          s.MaxTemp,
		"est_cycles":        s.AvgEstimatedCycles,
	} {
		assert.False(t, v != v, "%s is NaN", name)
		assert.False(t, v > 1e308 || v < -1e308, "%s overflows", name)
	}
}
