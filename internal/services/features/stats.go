package features

import (
	"math"

	"CryptoView/internal/domain/models"
)

// RangePosition places current within [low, high] as a percentage clamped to [0, 100].
// A zero-width range yields the midpoint.
func RangePosition(low, high, current float64) float64 {
	span := high - low
	if span == 0 || !finite(span) || !finite(current) {
		return 50
	}
	return clamp((current-low)/span*100, 0, 100)
}

// SupplyProgress reports circulating/max as a clamped percentage; ok is false when max is unknown.
func SupplyProgress(circulating float64, max *float64) (float64, bool) {
	if max == nil || *max <= 0 || !finite(*max) || !finite(circulating) {
		return 0, false
	}
	return clamp(circulating / *max * 100, 0, 100), true
}

// CapToVolume is market cap divided by 24h volume; ok is false when volume is not usable.
func CapToVolume(marketCap, volume float64) (float64, bool) {
	if volume <= 0 || !finite(volume) || !finite(marketCap) {
		return 0, false
	}
	return marketCap / volume, true
}

// Tone buckets a 24h change for cell coloring.
type Tone string

const (
	ToneSurge    Tone = "surge"
	ToneStrongUp Tone = "strong_up"
	ToneUp       Tone = "up"
	ToneDown     Tone = "down"
	ToneStrongDn Tone = "strong_down"
	ToneCollapse Tone = "collapse"
)

// ChangeTone maps a percentage change onto six buckets.
func ChangeTone(pct float64) Tone {
	switch {
	case pct >= 15:
		return ToneSurge
	case pct >= 5:
		return ToneStrongUp
	case pct >= 0:
		return ToneUp
	case pct > -5:
		return ToneDown
	case pct > -15:
		return ToneStrongDn
	default:
		return ToneCollapse
	}
}

// AssetStats is the derived numeric view shown on an asset detail panel.
type AssetStats struct {
	RangePosition  float64  `json:"range_position"`
	SupplyProgress *float64 `json:"supply_progress,omitempty"`
	CapToVolume    *float64 `json:"cap_to_volume,omitempty"`
	FromATH        float64  `json:"from_ath_pct"`
	Tone           Tone     `json:"tone"`
}

// StatsFor derives the detail-panel numbers for an asset.
func StatsFor(a models.Asset) AssetStats {
	st := AssetStats{
		RangePosition: RangePosition(a.Low24h, a.High24h, a.CurrentPrice),
		FromATH:       a.ATHChangePercentage,
		Tone:          ChangeTone(a.PriceChangePercentage24h),
	}
	if a.CirculatingSupply != nil {
		if p, ok := SupplyProgress(*a.CirculatingSupply, a.MaxSupply); ok {
			st.SupplyProgress = &p
		}
	}
	if r, ok := CapToVolume(a.MarketCap, a.TotalVolume); ok {
		st.CapToVolume = &r
	}
	return st
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
