package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"CryptoView/internal/domain/models"
	apimetrics "CryptoView/internal/service/metrics"
	"CryptoView/internal/services/features"
	"CryptoView/internal/services/overlay"
	"CryptoView/internal/usecase"
	xhttp "CryptoView/pkg/http"
	applogger "CryptoView/pkg/logger"
)

// Chart returns candles and the moving average for an asset. days wins over tf.
func (h *Handler) Chart(c echo.Context) error {
	start := time.Now()
	req := &models.ChartRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	ctx := c.Request().Context()

	var data usecase.ChartData
	if req.Days > 0 || req.TF == "" {
		data = h.Charts.GetChart(ctx, req.ID, req.Days)
	} else {
		data = h.Charts.GetChartForTimeframe(ctx, req.ID, req.TF)
	}
	apimetrics.Observe("chart", start, false)
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=60")
	return xhttp.SuccessResponse(c, data)
}

type statsResponse struct {
	Asset models.Asset        `json:"asset"`
	Stats features.AssetStats `json:"stats"`
}

// Stats returns the derived detail-panel numbers of an asset.
func (h *Handler) Stats(c echo.Context) error {
	req := &models.AssetPathRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	a, ok := h.resolveAsset(c.Request().Context(), req.ID)
	if !ok {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("asset %s not found", req.ID))
	}
	return xhttp.SuccessResponse(c, statsResponse{Asset: a, Stats: features.StatsFor(a)})
}

// Analysis runs the analysis flow for the calling viewer. Forced refreshes
// are rate limited per viewer.
func (h *Handler) Analysis(c echo.Context) error {
	start := time.Now()
	req := &models.AnalysisRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	viewer := xhttp.ViewerID(c)

	if req.Force {
		if ok, wait := h.Limiter.Reserve(viewer+":analysis", h.RefreshBurst, h.RefreshPerSec); !ok {
			apimetrics.RateLimited.WithLabelValues("analysis").Inc()
			h.logger.Warn("analysis refresh rate limited", applogger.String("viewer", viewer), applogger.Duration("retry_after", wait))
			return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("analysis refresh rate limited").WithRetryAfter(wait))
		}
	}

	snap, err := h.Viewers.Analyze(c.Request().Context(), viewer, req.ID, req.Force)
	apimetrics.Observe("analysis", start, err != nil || snap.State == models.AnalysisFailed)
	if errors.Is(err, usecase.ErrAssetNotFound) {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("asset %s not found", req.ID))
	}
	if err != nil {
		return xhttp.AppErrorResponse(c, xhttp.InternalError("analysis failed").WithError(err))
	}
	return xhttp.SuccessResponse(c, snap)
}

type overlayRequest struct {
	ID        string              `param:"id" validate:"required,max=100,assetid"`
	Scale     overlay.LinearScale `json:"scale"`
	HideLines bool                `json:"hide_lines"`
}

type overlayResponse struct {
	AssetID string              `json:"asset_id"`
	Frame   overlay.Frame       `json:"frame"`
	Lines   []overlay.PriceLine `json:"lines,omitempty"`
}

// Overlay projects the cached analysis of an asset against a chart scale.
// It never triggers generation.
func (h *Handler) Overlay(c echo.Context) error {
	req := &overlayRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	data, ok := h.Viewers.Cached(c.Request().Context(), req.ID)
	if !ok || usecase.IsPlaceholder(data) {
		return xhttp.AppErrorResponse(c, xhttp.NewAppError(xhttp.CodeAnalysisNotCached, "no analysis cached for "+req.ID, http.StatusNotFound))
	}

	resp := overlayResponse{
		AssetID: req.ID,
		Frame:   overlay.Project(&data.TechnicalAnalysis, req.Scale),
	}
	if !req.HideLines {
		resp.Lines = overlay.LevelsFor(data.TechnicalAnalysis.Setup)
	}
	return xhttp.SuccessResponse(c, resp)
}

func (h *Handler) resolveAsset(ctx context.Context, id string) (models.Asset, bool) {
	if a, ok := h.Roster.Lookup(id); ok {
		return a, true
	}
	found := h.MarketData.GetByIDs(ctx, []string{id})
	if len(found) == 0 {
		return models.Asset{}, false
	}
	return found[0], true
}
