package api

import (
	"github.com/labstack/echo/v4"

	domrepo "CryptoView/internal/domain/repository"
	apimetrics "CryptoView/internal/service/metrics"
	"CryptoView/internal/service/ratelimit"
	"CryptoView/internal/service/stream"
	"CryptoView/internal/services/treemap"
	"CryptoView/internal/usecase"
	applogger "CryptoView/pkg/logger"
)

// Deps are the use cases served over HTTP.
type Deps struct {
	Roster     *usecase.MarketRoster
	MarketData domrepo.MarketData
	Charts     *usecase.ChartUseCase
	Viewers    *usecase.AnalysisViewers
	Sessions   *usecase.SearchSessions
	Hub        *stream.Hub
	Layout     *treemap.Engine
	Limiter    *ratelimit.Limiter
	SearchOpts usecase.SearchOptions

	// token bucket applied per viewer to forced analysis refreshes
	RefreshBurst  float64
	RefreshPerSec float64
}

// Handler implements the echo routes of the dashboard API.
type Handler struct {
	Deps
	logger *applogger.Logger
}

func NewHandler(logger *applogger.Logger, deps Deps) *Handler {
	apimetrics.Register()
	if logger == nil {
		logger = applogger.NewNop()
	}
	if deps.Layout == nil {
		deps.Layout = treemap.NewEngine(treemap.DefaultOptions())
	}
	if deps.Limiter == nil {
		deps.Limiter = ratelimit.New(nil)
	}
	return &Handler{Deps: deps, logger: logger}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")

	g.GET("/market", h.Market)
	g.POST("/market/refresh", h.RefreshMarket)
	g.POST("/market/coins", h.AddCoin)
	g.POST("/market/layout", h.MarketLayout)
	g.POST("/market/gesture", h.MarketGesture)

	g.GET("/coins/:id/chart", h.Chart)
	g.GET("/coins/:id/stats", h.Stats)
	g.GET("/coins/:id/analysis", h.Analysis)
	g.POST("/coins/:id/overlay", h.Overlay)

	g.GET("/search", h.Search)
	g.POST("/search/sessions", h.CreateSearchSession)
	g.PUT("/search/sessions/:id", h.SearchInput)
	g.GET("/search/sessions/:id", h.SearchResult)
	g.DELETE("/search/sessions/:id", h.CloseSearchSession)

	e.GET("/ws/market", h.MarketStream)
	e.GET("/ws/coins/:id/overlay", h.OverlayStream)
}
