package features

import (
	"sort"

	"CryptoView/internal/domain/models"
)

// MovingAverageWindow is the SMA period drawn on the price chart.
const MovingAverageWindow = 20

// NormalizeCandles drops repeated timestamps (first occurrence wins) and sorts
// ascending by time. Applying it twice yields the same series.
func NormalizeCandles(raw []models.Candle) []models.Candle {
	seen := make(map[int64]struct{}, len(raw))
	out := make([]models.Candle, 0, len(raw))
	for _, c := range raw {
		if _, dup := seen[c.Time]; dup {
			continue
		}
		seen[c.Time] = struct{}{}
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time < out[j].Time })
	return out
}

// SimpleMovingAverage returns one point per candle from index window-1 onward,
// each the mean of the window closes ending at that candle.
func SimpleMovingAverage(candles []models.Candle, window int) []models.AveragePoint {
	if window <= 0 || len(candles) < window {
		return []models.AveragePoint{}
	}
	out := make([]models.AveragePoint, 0, len(candles)-window+1)
	for i := window - 1; i < len(candles); i++ {
		sum := 0.0
		for _, c := range candles[i-window+1 : i+1] {
			sum += c.Close
		}
		out = append(out, models.AveragePoint{Time: candles[i].Time, Value: sum / float64(window)})
	}
	return out
}
