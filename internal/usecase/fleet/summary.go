package fleet

import (
	"math"

	"fleetview/internal/domain/telemetry"
)

// SOC bucket boundaries, inclusive upper bounds scanned in ascending order.
const (
	socCriticalMax = 20
	socLowMax      = 40
	socMediumMax   = 60
	socHighMax     = 80
)

// SOH bucket boundaries.
const (
	sohCriticalMax = 40
	sohPoorMax     = 70
	sohFairMax     = 85
	sohGoodMax     = 95
)

// Signal strength bucket boundaries (raw modem scale, 0-31).
const (
	signalPoorMax      = 7
	signalFairMax      = 15
	signalGoodMax      = 23
	signalExcellentMax = 31
)

// sohEndOfLife is the SOH percentage treated as end of battery life by the
// remaining-cycle estimate. Heuristic carried over from the product team;
// not a validated degradation model.
const sohEndOfLife = 70

// SOCBuckets counts active packages per state-of-charge band. Unknown holds
// packages whose reading was missing or unparsable.
type SOCBuckets struct {
	Critical int `json:"critical"`
	Low      int `json:"low"`
	Medium   int `json:"medium"`
	High     int `json:"high"`
	Full     int `json:"full"`
	Unknown  int `json:"unknown"`
}

// Valid returns the number of active packages with a readable SOC.
func (b SOCBuckets) Valid() int {
	return b.Critical + b.Low + b.Medium + b.High + b.Full
}

// SOHBuckets counts active packages per state-of-health band.
type SOHBuckets struct {
	Critical  int `json:"critical"`
	Poor      int `json:"poor"`
	Fair      int `json:"fair"`
	Good      int `json:"good"`
	Excellent int `json:"excellent"`
	Unknown   int `json:"unknown"`
}

// Valid returns the number of active packages with a readable SOH.
func (b SOHBuckets) Valid() int {
	return b.Critical + b.Poor + b.Fair + b.Good + b.Excellent
}

// SignalBuckets counts all packages per signal-strength band. NoSignal is
// the remainder: packages that reported no signal value at all.
type SignalBuckets struct {
	Poor      int `json:"poor"`
	Fair      int `json:"fair"`
	Good      int `json:"good"`
	Excellent int `json:"excellent"`
	NoSignal  int `json:"no_signal"`
}

// Summary is the aggregate view the dashboard cards render. It is derived
// from a single batch of battery records and never persisted.
type Summary struct {
	TotalBatteries            int     `json:"total_batteries"`
	ActiveBatteries           int     `json:"active_batteries"`
	ActiveBatteriesPercentage float64 `json:"active_batteries_percentage"`

	SOCCategories    SOCBuckets    `json:"soc_categories"`
	SOHCategories    SOHBuckets    `json:"soh_categories"`
	SignalCategories SignalBuckets `json:"signal_categories"`

	AvgSOC           float64 `json:"avg_soc"`
	AvgSOH           float64 `json:"avg_soh"`
	AvgChargingCycle float64 `json:"avg_charging_cycle"`
	AvgCapacity      float64 `json:"avg_capacity"`

	EnergyEfficiency     float64 `json:"energy_efficiency"`
	TotalWorkingHours    float64 `json:"total_working_hours"`
	ActiveTimePercentage float64 `json:"active_time_percentage"`
	MaxTemp              float64 `json:"max_temp"`

	BrandDistribution map[string]int `json:"brand_distribution"`
	SoftwareVersions  map[string]int `json:"software_versions"`

	AvgEstimatedCycles float64 `json:"avg_estimated_cycles"`
}

// Summarize computes the fleet summary for a batch of battery records.
// It is a pure function of its input: no I/O, deterministic, and it never
// panics or produces NaN/Inf regardless of how malformed the records are.
// A nil or empty batch yields nil, which callers render as an empty state.
func Summarize(records []telemetry.BatteryRecord) *Summary {
	if len(records) == 0 {
		return nil
	}

	s := &Summary{
		TotalBatteries:    len(records),
		BrandDistribution: make(map[string]int),
		SoftwareVersions:  make(map[string]int),
	}

	var (
		socSum, sohSum         float64
		socValid, sohValid     int
		cycleSum, capacitySum  float64
		chargeWh, dischargeWh  float64
		activeHours, idleHours float64
		estimates              []float64
	)

	for i := range records {
		r := &records[i]

		s.BrandDistribution[telemetry.Category(r.Brand)]++
		s.SoftwareVersions[telemetry.Category(r.SoftwareVersion)]++

		cycleSum += telemetry.Number(r.ChargingCycle)
		capacitySum += telemetry.Number(r.RatedCapacity)
		chargeWh += telemetry.Number(r.BattWhCharge)
		dischargeWh += telemetry.Number(r.BattWhDischarge)

		discharge := telemetry.Number(r.DischargeWorkingHours)
		charge := telemetry.Number(r.ChargeWorkingHours)
		activeHours += discharge + charge
		idleHours += telemetry.Number(r.IdleWorkingHours)

		if temp := telemetry.Number(r.MaxCellTemp); temp > s.MaxTemp {
			s.MaxTemp = temp
		}

		bucketSignal(&s.SignalCategories, r.Signal)

		if !r.IsActive() {
			continue
		}
		s.ActiveBatteries++

		soc, socOK := telemetry.Metric(r.SOC)
		bucketSOC(&s.SOCCategories, soc, socOK)
		if socOK {
			socSum += soc
			socValid++
		}

		soh, sohOK := telemetry.Metric(r.SOH)
		bucketSOH(&s.SOHCategories, soh, sohOK)
		if sohOK {
			sohSum += soh
			sohValid++
		}

		// Remaining-cycle estimate: only packages with a real SOH and at
		// least one recorded cycle qualify; packages at or below end of
		// life stay in the list as zero and drag the average down.
		cycles, cyclesOK := telemetry.Metric(r.ChargingCycle)
		if sohOK && cyclesOK {
			estimates = append(estimates, estimateRemainingCycles(soh, cycles))
		}
	}

	total := float64(s.TotalBatteries)
	s.ActiveBatteriesPercentage = float64(s.ActiveBatteries) / total * 100
	s.AvgChargingCycle = cycleSum / total
	s.AvgCapacity = capacitySum / total

	if socValid > 0 {
		s.AvgSOC = socSum / float64(socValid)
	}
	if sohValid > 0 {
		s.AvgSOH = sohSum / float64(sohValid)
	}

	if dischargeWh != 0 {
		s.EnergyEfficiency = math.Abs(chargeWh/math.Abs(dischargeWh)) * 100
	}

	s.TotalWorkingHours = activeHours + idleHours
	if s.TotalWorkingHours > 0 {
		s.ActiveTimePercentage = activeHours / s.TotalWorkingHours * 100
	}

	if len(estimates) > 0 {
		var sum float64
		for _, e := range estimates {
			sum += e
		}
		s.AvgEstimatedCycles = sum / float64(len(estimates))
	}

	return s
}

func bucketSignal(b *SignalBuckets, signal *float64) {
	if signal == nil {
		b.NoSignal++
		return
	}
	v := *signal
	switch {
	case v < 0 || v > signalExcellentMax:
		// Out-of-scale readings count as no signal rather than inventing
		// a bucket for them.
		b.NoSignal++
	case v <= signalPoorMax:
		b.Poor++
	case v <= signalFairMax:
		b.Fair++
	case v <= signalGoodMax:
		b.Good++
	default:
		b.Excellent++
	}
}

func bucketSOC(b *SOCBuckets, soc float64, ok bool) {
	switch {
	case !ok:
		b.Unknown++
	case soc <= socCriticalMax:
		b.Critical++
	case soc <= socLowMax:
		b.Low++
	case soc <= socMediumMax:
		b.Medium++
	case soc <= socHighMax:
		b.High++
	default:
		b.Full++
	}
}

func bucketSOH(b *SOHBuckets, soh float64, ok bool) {
	switch {
	case !ok:
		b.Unknown++
	case soh <= sohCriticalMax:
		b.Critical++
	case soh <= sohPoorMax:
		b.Poor++
	case soh <= sohFairMax:
		b.Fair++
	case soh <= sohGoodMax:
		b.Good++
	default:
		b.Excellent++
	}
}

// estimateRemainingCycles projects how many charge cycles remain before the
// package reaches end of life, assuming degradation continues at the
// historical per-cycle rate.
func estimateRemainingCycles(soh, chargingCycle float64) float64 {
	if soh <= sohEndOfLife {
		return 0
	}
	remainingHealth := soh - sohEndOfLife
	degradationRate := (100 - soh) / chargingCycle
	if degradationRate <= 0 {
		return 0
	}
	return remainingHealth / degradationRate
}
