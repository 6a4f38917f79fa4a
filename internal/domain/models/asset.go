package models

import "math"

// Asset is a market snapshot for one tracked coin, in the upstream markets shape.
type Asset struct {
	ID                       string     `json:"id"`
	Symbol                   string     `json:"symbol"`
	Name                     string     `json:"name"`
	Image                    string     `json:"image,omitempty"`
	CurrentPrice             float64    `json:"current_price"`
	MarketCap                float64    `json:"market_cap"`
	MarketCapRank            *int       `json:"market_cap_rank"`
	TotalVolume              float64    `json:"total_volume"`
	High24h                  float64    `json:"high_24h"`
	Low24h                   float64    `json:"low_24h"`
	PriceChangePercentage24h float64    `json:"price_change_percentage_24h"`
	ATH                      float64    `json:"ath"`
	ATHChangePercentage      float64    `json:"ath_change_percentage"`
	ATL                      float64    `json:"atl"`
	ATLChangePercentage      float64    `json:"atl_change_percentage"`
	CirculatingSupply        *float64   `json:"circulating_supply"`
	TotalSupply              *float64   `json:"total_supply"`
	MaxSupply                *float64   `json:"max_supply"`
	Sparkline7d              *Sparkline `json:"sparkline_in_7d,omitempty"`
}

// Sparkline holds the 7-day price series, oldest first.
type Sparkline struct {
	Price []float64 `json:"price"`
}

// HasValidMarketCap reports whether the capitalization is a positive finite number.
func (a Asset) HasValidMarketCap() bool {
	return isPositiveFinite(a.MarketCap)
}

// SparklinePrices returns the 7-day series or nil.
func (a Asset) SparklinePrices() []float64 {
	if a.Sparkline7d == nil {
		return nil
	}
	return a.Sparkline7d.Price
}

// SearchCandidate is one hit from the symbol search endpoint.
type SearchCandidate struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Symbol        string `json:"symbol"`
	MarketCapRank *int   `json:"market_cap_rank"`
	Thumb         string `json:"thumb"`
}

// Candle is one OHLC sample. Time is seconds since epoch.
type Candle struct {
	Time  int64   `json:"time"`
	Open  float64 `json:"open"`
	High  float64 `json:"high"`
	Low   float64 `json:"low"`
	Close float64 `json:"close"`
}

// AveragePoint is one point of a moving average series.
type AveragePoint struct {
	Time  int64   `json:"time"`
	Value float64 `json:"value"`
}

func isPositiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
