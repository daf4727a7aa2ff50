package domain

import "fmt"

// MaxBatteryPercent bounds BatteryLife, BatteryLevel and UsableBatteryLevel.
const MaxBatteryPercent = 100

// BatteryState is the telemetry reported for a vehicle.
type BatteryState struct {
	BatteryLife        uint32 `json:"battery_life"`
	BatteryLevel       uint32 `json:"battery_level"`
	UsableBatteryLevel uint32 `json:"usable_battery_level"`
	BatteryRange       uint32 `json:"battery_range"`
}

// Validate checks percentage bounds and that usable charge does not exceed charge.
func (b BatteryState) Validate() error {
	if b.BatteryLife > MaxBatteryPercent {
		return fmt.Errorf("%w: battery life %d exceeds %d", ErrInvalidInput, b.BatteryLife, MaxBatteryPercent)
	}
	if b.BatteryLevel > MaxBatteryPercent {
		return fmt.Errorf("%w: battery level %d exceeds %d", ErrInvalidInput, b.BatteryLevel, MaxBatteryPercent)
	}
	if b.UsableBatteryLevel > MaxBatteryPercent {
		return fmt.Errorf("%w: usable battery level %d exceeds %d", ErrInvalidInput, b.UsableBatteryLevel, MaxBatteryPercent)
	}
	if b.UsableBatteryLevel > b.BatteryLevel {
		return fmt.Errorf("%w: usable battery level %d exceeds battery level %d", ErrInvalidInput, b.UsableBatteryLevel, b.BatteryLevel)
	}
	return nil
}

// EVCarState is the latest telemetry snapshot for one VIN. Writes replace it whole.
type EVCarState struct {
	VINNumber string `json:"vin_number"`
	BatteryState
}
