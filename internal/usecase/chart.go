package usecase

import (
	"context"
	"strings"

	"CryptoView/internal/domain/models"
	domrepo "CryptoView/internal/domain/repository"
	"CryptoView/internal/services/features"
)

// ChartData is the candle series of one asset plus its moving average.
type ChartData struct {
	AssetID       string                `json:"asset_id"`
	Days          int                   `json:"days"`
	Candles       []models.Candle       `json:"candles"`
	MovingAverage []models.AveragePoint `json:"moving_average"`
}

// ChartUseCase serves chart series for the detail view.
type ChartUseCase struct {
	market domrepo.MarketData
	window int
}

func NewChartUseCase(market domrepo.MarketData) *ChartUseCase {
	return &ChartUseCase{market: market, window: features.MovingAverageWindow}
}

// GetChart fetches the OHLC window, drops repeated timestamps, sorts and
// derives the moving average. A non-positive days uses the default preset.
func (u *ChartUseCase) GetChart(ctx context.Context, id string, days int) ChartData {
	if days <= 0 {
		days = domrepo.DefaultTimeframe().Days()
	}
	id = strings.TrimSpace(id)
	candles := features.NormalizeCandles(u.market.GetOHLC(ctx, id, days))
	return ChartData{
		AssetID:       id,
		Days:          days,
		Candles:       candles,
		MovingAverage: features.SimpleMovingAverage(candles, u.window),
	}
}

// GetChartForTimeframe resolves a preset label such as "7D" and fetches it.
func (u *ChartUseCase) GetChartForTimeframe(ctx context.Context, id, label string) ChartData {
	return u.GetChart(ctx, id, domrepo.NormalizeTimeframe(label).Days())
}
