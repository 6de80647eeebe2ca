package telemetry

// Collection identifies one device collection on the telemetry platform.
type Collection string

const (
	CollectionBatteries   Collection = "batteries"
	CollectionGensets     Collection = "gensets"
	CollectionPowerMeters Collection = "power_meters"
	CollectionAlarms      Collection = "alarms"
)

const (
	// StatusBound marks a package as bound/active for the requesting user.
	StatusBound   = "1"
	StatusUnbound = "0"

	// NotActive is the histogram category for empty brand/software values.
	NotActive = "Not Active"
)

// BatteryRecord is one battery package as returned by the telemetry
// platform. Every numeric field except Signal, Latitude and Longitude is
// transmitted as a string and must be parsed defensively; "0" and garbage
// both mean "no reading". Working-hour fields are plain hours, no unit
// conversion is applied anywhere.
type BatteryRecord struct {
	PackageName   string `json:"package_name"`
	StatusBinding string `json:"status_binding"`

	SOC           string `json:"soc"`
	SOH           string `json:"soh"`
	ChargingCycle string `json:"charging_cycle"`

	BattWhCharge    string `json:"batt_wh_charge"`
	BattWhDischarge string `json:"batt_wh_discharge"`

	DischargeWorkingHours string `json:"discharge_working_hours"`
	ChargeWorkingHours    string `json:"charge_working_hours"`
	IdleWorkingHours      string `json:"idle_working_hours"`
	WorkingHourTelemetry  string `json:"working_hour_telemetri"`

	MaxCellTemp     string `json:"max_cell_temp"`
	Brand           string `json:"brand"`
	SoftwareVersion string `json:"software_version"`
	RatedCapacity   string `json:"rated_capacity"`

	Signal    *float64 `json:"signal,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// IsActive reports whether the package is currently bound to the user.
func (r *BatteryRecord) IsActive() bool {
	return r.StatusBinding == StatusBound
}

// HasLocation reports whether the record carries usable coordinates.
// The platform sends (0,0) for devices without a GPS fix.
func (r *BatteryRecord) HasLocation() bool {
	if r.Latitude == nil || r.Longitude == nil {
		return false
	}
	return *r.Latitude != 0 || *r.Longitude != 0
}

// GensetRecord is one generator package. PLN fields describe grid power,
// genset fields describe generator power.
type GensetRecord struct {
	PackageName   string `json:"package_name"`
	StatusBinding string `json:"status_binding"`

	FuelLevel          string `json:"fuel_level"`
	GensetVoltage      string `json:"genset_voltage"`
	GensetCurrent      string `json:"genset_current"`
	GensetPower        string `json:"genset_power"`
	PLNVoltage         string `json:"pln_voltage"`
	PLNCurrent         string `json:"pln_current"`
	PLNPower           string `json:"pln_power"`
	GensetWorkingHours string `json:"genset_working_hours"`
	EngineTemp         string `json:"engine_temp"`
}

// PowerMeterRecord is one power-meter package.
type PowerMeterRecord struct {
	PackageName   string `json:"package_name"`
	StatusBinding string `json:"status_binding"`

	Voltage     string `json:"voltage"`
	Current     string `json:"current"`
	ActivePower string `json:"active_power"`
	PowerFactor string `json:"power_factor"`
	Frequency   string `json:"frequency"`
	EnergyTotal string `json:"energy_total"`
}

// AlarmRecord is one alarm event for a package.
type AlarmRecord struct {
	PackageName string `json:"package_name"`
	AlarmType   string `json:"alarm_type"`
	AlarmValue  string `json:"alarm_value"`
	Level       string `json:"level"`
	OccurredAt  string `json:"occurred_at"`
}

// CellParameterRecord is one cell reading inside a battery package.
type CellParameterRecord struct {
	PackageName string `json:"package_name"`
	CellNo      string `json:"cell_no"`
	Voltage     string `json:"voltage"`
	Temperature string `json:"temperature"`
}

// HistoryPoint is one sample in a charge/discharge time series.
type HistoryPoint struct {
	PackageName     string `json:"package_name"`
	Timestamp       string `json:"timestamp"`
	SOC             string `json:"soc"`
	Voltage         string `json:"voltage"`
	Current         string `json:"current"`
	Power           string `json:"power"`
	BattWhCharge    string `json:"batt_wh_charge"`
	BattWhDischarge string `json:"batt_wh_discharge"`
}
