// Package overlay projects analysis price levels onto chart pixel coordinates.
package overlay

import "math"

// Scale is the chart's own price and time projection. ok is false when the
// value cannot be placed, for example when the chart has no data yet.
type Scale interface {
	PriceToY(price float64) (y float64, ok bool)
	TimeToX(t int64) (x float64, ok bool)
}

// LinearScale is a plain price/time projection with zoom and pan, used when
// the rendering surface reports its visible ranges instead of a live scale.
type LinearScale struct {
	Width     float64 `json:"width" validate:"gt=0"`
	Height    float64 `json:"height" validate:"gt=0"`
	PriceLow  float64 `json:"price_low"`
	PriceHigh float64 `json:"price_high" validate:"gtfield=PriceLow"`
	TimeFrom  int64   `json:"time_from"`
	TimeTo    int64   `json:"time_to" validate:"gtfield=TimeFrom"`
}

func (s LinearScale) PriceToY(price float64) (float64, bool) {
	span := s.PriceHigh - s.PriceLow
	if !(span > 0) || !(s.Height > 0) || math.IsNaN(price) || math.IsInf(price, 0) {
		return 0, false
	}
	return (s.PriceHigh - price) / span * s.Height, true
}

func (s LinearScale) TimeToX(t int64) (float64, bool) {
	span := float64(s.TimeTo - s.TimeFrom)
	if !(span > 0) || !(s.Width > 0) {
		return 0, false
	}
	return float64(t-s.TimeFrom) / span * s.Width, true
}

// Zoom narrows (factor > 1) or widens both visible ranges around their centres.
func (s LinearScale) Zoom(factor float64) LinearScale {
	if !(factor > 0) {
		return s
	}
	mid := (s.PriceHigh + s.PriceLow) / 2
	half := (s.PriceHigh - s.PriceLow) / 2 / factor
	s.PriceLow, s.PriceHigh = mid-half, mid+half

	tmid := (s.TimeFrom + s.TimeTo) / 2
	thalf := int64(float64(s.TimeTo-s.TimeFrom) / 2 / factor)
	if thalf < 1 {
		thalf = 1
	}
	s.TimeFrom, s.TimeTo = tmid-thalf, tmid+thalf
	return s
}

// Pan shifts the visible ranges by a time and price offset.
func (s LinearScale) Pan(dt int64, dp float64) LinearScale {
	s.TimeFrom += dt
	s.TimeTo += dt
	s.PriceLow += dp
	s.PriceHigh += dp
	return s
}
