package overlay

import (
	"math"

	"CryptoView/internal/domain/models"
)

// Band is a vertical pixel span.
type Band struct {
	Top    float64 `json:"top"`
	Height float64 `json:"height"`
}

// BandFor projects the price interval [a, b] in either order.
func BandFor(s Scale, a, b float64) (Band, bool) {
	ya, ok := s.PriceToY(a)
	if !ok {
		return Band{}, false
	}
	yb, ok := s.PriceToY(b)
	if !ok {
		return Band{}, false
	}
	return Band{Top: math.Min(ya, yb), Height: math.Abs(ya - yb)}, true
}

// ZoneBand is a projected analysis zone.
type ZoneBand struct {
	Type        string  `json:"type"`
	Description string  `json:"description"`
	PriceLow    float64 `json:"price_low"`
	PriceHigh   float64 `json:"price_high"`
	Band
}

// PriceBand is a price interval together with its projection.
type PriceBand struct {
	PriceLow  float64 `json:"price_low"`
	PriceHigh float64 `json:"price_high"`
	Band
}

// RangeBands is the projected dealing range split at equilibrium.
type RangeBands struct {
	High         float64   `json:"high"`
	Low          float64   `json:"low"`
	Equilibrium  float64   `json:"equilibrium"`
	EquilibriumY float64   `json:"equilibrium_y"`
	Premium      PriceBand `json:"premium"`
	Discount     PriceBand `json:"discount"`
}

// Frame is one full projection of an analysis against a scale.
type Frame struct {
	Seq   uint64      `json:"seq"`
	Zones []ZoneBand  `json:"zones"`
	Range *RangeBands `json:"dealing_range,omitempty"`
}

// Project maps every zone and the dealing range of r through s. Levels the
// scale cannot place are skipped.
func Project(r *models.AnalysisResult, s Scale) Frame {
	f := Frame{Zones: []ZoneBand{}}
	if r == nil || s == nil {
		return f
	}
	for _, z := range r.TechnicalStructure.Zones {
		b, ok := BandFor(s, z.PriceHigh, z.PriceLow)
		if !ok {
			continue
		}
		f.Zones = append(f.Zones, ZoneBand{
			Type:        z.Type,
			Description: z.Description,
			PriceLow:    z.PriceLow,
			PriceHigh:   z.PriceHigh,
			Band:        b,
		})
	}
	if dr := r.TechnicalStructure.DealingRange; dr != nil {
		f.Range = projectRange(*dr, s)
	}
	return f
}

func projectRange(dr models.DealingRange, s Scale) *RangeBands {
	eq := dr.Equilibrium()
	premium, ok := BandFor(s, eq, dr.High)
	if !ok {
		return nil
	}
	discount, ok := BandFor(s, dr.Low, eq)
	if !ok {
		return nil
	}
	eqY, _ := s.PriceToY(eq)
	return &RangeBands{
		High:         dr.High,
		Low:          dr.Low,
		Equilibrium:  eq,
		EquilibriumY: eqY,
		Premium:      PriceBand{PriceLow: eq, PriceHigh: dr.High, Band: premium},
		Discount:     PriceBand{PriceLow: dr.Low, PriceHigh: eq, Band: discount},
	}
}
