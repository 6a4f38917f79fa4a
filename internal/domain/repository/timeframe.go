package repository

import "strings"

// Timeframe is a chart window preset label.
type Timeframe string

const (
	TF24H Timeframe = "24H"
	TF7D  Timeframe = "7D"
	TF30D Timeframe = "30D"
	TF3M  Timeframe = "3M"
	TF1Y  Timeframe = "1Y"
)

var timeframeDays = map[Timeframe]int{
	TF24H: 1,
	TF7D:  7,
	TF30D: 30,
	TF3M:  90,
	TF1Y:  365,
}

// Timeframes lists the presets in display order.
func Timeframes() []Timeframe { return []Timeframe{TF24H, TF7D, TF30D, TF3M, TF1Y} }

// IsValidTimeframe returns true if tf is a supported preset.
func IsValidTimeframe(tf Timeframe) bool {
	_, ok := timeframeDays[tf]
	return ok
}

// DefaultTimeframe returns the default preset.
func DefaultTimeframe() Timeframe { return TF30D }

// NormalizeTimeframe converts a raw label to a valid preset (or default).
func NormalizeTimeframe(s string) Timeframe {
	tf := Timeframe(strings.ToUpper(strings.TrimSpace(s)))
	if IsValidTimeframe(tf) {
		return tf
	}
	return DefaultTimeframe()
}

// Days returns the upstream day window for the preset.
func (tf Timeframe) Days() int {
	if d, ok := timeframeDays[tf]; ok {
		return d
	}
	return timeframeDays[DefaultTimeframe()]
}
