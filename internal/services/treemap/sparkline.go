package treemap

import "math"

// Point is a vertex in cell-local pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// sparkBand is the share of the cell height the sparkline occupies, measured from the bottom.
const sparkBand = 0.4

// SparklinePoints spreads prices across the cell width and maps them into the
// bottom band of its height. A flat series is drawn on the bottom edge.
func SparklinePoints(prices []float64, w, h float64) []Point {
	if len(prices) < 2 || !(w > 0) || !(h > 0) {
		return nil
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, p := range prices {
		lo = math.Min(lo, p)
		hi = math.Max(hi, p)
	}
	span := hi - lo
	if span == 0 || math.IsNaN(span) || math.IsInf(span, 0) {
		span = 1
	}
	last := float64(len(prices) - 1)
	out := make([]Point, len(prices))
	for i, p := range prices {
		out[i] = Point{
			X: float64(i) / last * w,
			Y: h - (p-lo)/span*(h*sparkBand),
		}
	}
	return out
}
