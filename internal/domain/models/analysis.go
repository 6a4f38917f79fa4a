package models

import "time"

// Market context enumerations.
const (
	PhaseAccumulation  = "Accumulation"
	PhaseExpansion     = "Expansion"
	PhaseDistribution  = "Distribution"
	PhaseConsolidation = "Consolidation"

	BiasBullish    = "Bullish"
	BiasBearish    = "Bearish"
	BiasRangeBound = "Range-bound"

	DirectionLong    = "Long"
	DirectionShort   = "Short"
	DirectionNeutral = "Neutral"

	ZoneOrderBlock    = "Order Block"
	ZoneFairValueGap  = "FVG"
	ZoneResistance    = "Resistance"
	ZoneSupport       = "Support"
	LevelHigh         = "High"
	LevelMedium       = "Medium"
	LevelLow          = "Low"
	SentimentPositive = "Positive"
	SentimentNegative = "Negative"
	SentimentNeutral  = "Neutral"
)

type MarketContext struct {
	Phase      string `json:"phase" validate:"required,oneof=Accumulation Expansion Distribution Consolidation"`
	Bias       string `json:"bias" validate:"required,oneof=Bullish Bearish Range-bound"`
	Volatility string `json:"volatility" validate:"required,oneof=Low Normal High"`
}

// Zone is an analyst-marked price band. PriceLow must not exceed PriceHigh.
type Zone struct {
	Type        string  `json:"type" validate:"required,oneof='Order Block' FVG Resistance Support"`
	PriceLow    float64 `json:"priceLow" validate:"gte=0"`
	PriceHigh   float64 `json:"priceHigh" validate:"gtefield=PriceLow"`
	Description string  `json:"description" validate:"required"`
}

// DealingRange is the recent swing high / swing low band.
type DealingRange struct {
	High float64 `json:"high" validate:"gtefield=Low"`
	Low  float64 `json:"low" validate:"gte=0"`
}

// Equilibrium is the midpoint of the dealing range.
func (d DealingRange) Equilibrium() float64 {
	return (d.High + d.Low) / 2
}

type TechnicalStructure struct {
	MarketStructure string        `json:"marketStructure" validate:"required"`
	KeyLevels       string        `json:"keyLevels" validate:"required"`
	LiquidityFocus  string        `json:"liquidityFocus" validate:"required"`
	Zones           []Zone        `json:"zones" validate:"dive"`
	DealingRange    *DealingRange `json:"dealingRange,omitempty"`
}

// TradeSetup carries price expressions as display strings; they are not guaranteed numeric.
type TradeSetup struct {
	Direction            string   `json:"direction" validate:"required,oneof=Long Short Neutral"`
	EntryZone            string   `json:"entryZone" validate:"required"`
	StopLoss             string   `json:"stopLoss" validate:"required"`
	TakeProfits          []string `json:"takeProfits"`
	InvalidationCriteria string   `json:"invalidationCriteria" validate:"required"`
	RiskRewardRatio      string   `json:"riskRewardRatio" validate:"required"`
	ConfidenceLevel      string   `json:"confidenceLevel" validate:"required,oneof=High Medium Low"`
}

type TradeManagement struct {
	PartialTakeProfit  string `json:"partialTakeProfit" validate:"required"`
	BreakEvenCondition string `json:"breakEvenCondition" validate:"required"`
}

// AnalysisResult is the structured technical analysis for one asset.
type AnalysisResult struct {
	MarketContext      MarketContext      `json:"marketContext" validate:"required"`
	TechnicalStructure TechnicalStructure `json:"technicalStructure" validate:"required"`
	Setup              TradeSetup         `json:"setup" validate:"required"`
	Confluences        []string           `json:"confluences"`
	Management         TradeManagement    `json:"management" validate:"required"`
	Summary            string             `json:"summary" validate:"required"`
}

type NewsItem struct {
	Title             string `json:"title" validate:"required"`
	Source            string `json:"source" validate:"required"`
	TimeAgo           string `json:"timeAgo,omitempty"`
	ImpactLevel       string `json:"impactLevel" validate:"required,oneof=High Medium Low"`
	ImpactDescription string `json:"impactDescription" validate:"required"`
	Sentiment         string `json:"sentiment" validate:"required,oneof=Positive Negative Neutral"`
	URL               string `json:"url,omitempty"`
}

// NewsBundle is the news-impact half of a combined analysis.
type NewsBundle struct {
	GlobalSentiment string     `json:"globalSentiment" validate:"required,oneof=Bullish Bearish Neutral"`
	NewsItems       []NewsItem `json:"newsItems" validate:"dive"`
}

// CombinedAnalysis is the single response document returned by the analysis API.
type CombinedAnalysis struct {
	TechnicalAnalysis AnalysisResult `json:"technicalAnalysis" validate:"required"`
	NewsAnalysis      NewsBundle     `json:"newsAnalysis" validate:"required"`
}

// AnalysisState is the orchestrator state for the selected asset.
type AnalysisState string

const (
	AnalysisIdle    AnalysisState = "idle"
	AnalysisLoading AnalysisState = "loading"
	AnalysisReady   AnalysisState = "ready"
	AnalysisFailed  AnalysisState = "failed"
)

// AnalysisSnapshot is what callers observe for the current selection.
type AnalysisSnapshot struct {
	AssetID   string            `json:"asset_id"`
	State     AnalysisState     `json:"state"`
	Data      *CombinedAnalysis `json:"data,omitempty"`
	FromCache bool              `json:"from_cache"`
	UpdatedAt time.Time         `json:"updated_at"`
}
