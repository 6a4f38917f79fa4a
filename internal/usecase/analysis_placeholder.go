package usecase

import (
	"errors"

	"CryptoView/internal/domain/models"
	"CryptoView/internal/domain/service"
)

const (
	summaryMissingKey = "API Key missing in environment variables."
	summaryFailed     = "Failed to generate analysis due to an API error."
)

func placeholder(invalidation, summary string) *models.CombinedAnalysis {
	return &models.CombinedAnalysis{
		TechnicalAnalysis: models.AnalysisResult{
			MarketContext: models.MarketContext{
				Phase:      models.PhaseConsolidation,
				Bias:       models.BiasRangeBound,
				Volatility: models.LevelLow,
			},
			TechnicalStructure: models.TechnicalStructure{
				MarketStructure: "N/A",
				KeyLevels:       "N/A",
				LiquidityFocus:  "N/A",
				Zones:           []models.Zone{},
			},
			Setup: models.TradeSetup{
				Direction:            models.DirectionNeutral,
				EntryZone:            "N/A",
				StopLoss:             "N/A",
				TakeProfits:          []string{},
				InvalidationCriteria: invalidation,
				RiskRewardRatio:      "0:0",
				ConfidenceLevel:      models.LevelLow,
			},
			Confluences: []string{},
			Management:  models.TradeManagement{PartialTakeProfit: "N/A", BreakEvenCondition: "N/A"},
			Summary:     summary,
		},
		NewsAnalysis: models.NewsBundle{
			GlobalSentiment: models.SentimentNeutral,
			NewsItems:       []models.NewsItem{},
		},
	}
}

// PlaceholderAnalysis is the neutral result shown when generation did not
// succeed. A missing credential is reported as a configuration problem,
// anything else as a transient failure.
func PlaceholderAnalysis(err error) *models.CombinedAnalysis {
	if errors.Is(err, service.ErrMissingCredential) {
		return placeholder("API Key Missing", summaryMissingKey)
	}
	return placeholder("Generation Failed", summaryFailed)
}

// IsPlaceholder reports whether a was produced by PlaceholderAnalysis.
func IsPlaceholder(a *models.CombinedAnalysis) bool {
	if a == nil {
		return false
	}
	s := a.TechnicalAnalysis.Summary
	return s == summaryMissingKey || s == summaryFailed
}
