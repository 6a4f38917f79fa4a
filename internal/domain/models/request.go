package models

// AddAssetRequest asks the roster to track one more asset.
type AddAssetRequest struct {
	ID string `json:"id" validate:"required,max=100,assetid"`
}

// LayoutRequest is a treemap viewport size in pixels.
type LayoutRequest struct {
	Width  float64 `json:"width" validate:"gte=0,lte=10000"`
	Height float64 `json:"height" validate:"gte=0,lte=10000"`
}

// PointerStep is one pan or zoom delta of a pointer gesture.
type PointerStep struct {
	DX   float64 `json:"dx"`
	DY   float64 `json:"dy"`
	Zoom float64 `json:"zoom" validate:"gte=0"`
}

// GestureRequest replays a pointer gesture on the treemap.
type GestureRequest struct {
	Width  float64       `json:"width" validate:"gte=0,lte=10000"`
	Height float64       `json:"height" validate:"gte=0,lte=10000"`
	K      float64       `json:"k" default:"1" validate:"gte=1,lte=8"`
	X      float64       `json:"x"`
	Y      float64       `json:"y"`
	StartX float64       `json:"start_x" validate:"gte=0"`
	StartY float64       `json:"start_y" validate:"gte=0"`
	Steps  []PointerStep `json:"steps" validate:"max=500,dive"`
}

// AssetPathRequest addresses one asset.
type AssetPathRequest struct {
	ID string `param:"id" validate:"required,max=100,assetid"`
}

// ChartRequest selects a candle window by days or preset label.
type ChartRequest struct {
	ID   string `param:"id" validate:"required,max=100,assetid"`
	Days int    `query:"days" validate:"gte=0,lte=3650"`
	TF   string `query:"tf" validate:"omitempty,oneof=24H 7D 30D 3M 1Y 24h 7d 30d 3m 1y"`
}

// AnalysisRequest requests the analysis of one asset.
type AnalysisRequest struct {
	ID    string `param:"id" validate:"required,max=100,assetid"`
	Force bool   `query:"force"`
}

// SearchRequest is a one-shot search.
type SearchRequest struct {
	Query   string `query:"q" validate:"max=100"`
	Exclude string `query:"exclude"`
}

// SearchInputRequest is one keystroke of a search session.
type SearchInputRequest struct {
	ID          string   `param:"id" validate:"required,uuid"`
	Query       string   `json:"query" validate:"max=100"`
	ExistingIDs []string `json:"existing_ids" validate:"max=500"`
}

// SessionPathRequest addresses one search session.
type SessionPathRequest struct {
	ID string `param:"id" validate:"required,uuid"`
}
