package api

import (
	"errors"
	"time"

	"github.com/labstack/echo/v4"

	"CryptoView/internal/domain/models"
	apimetrics "CryptoView/internal/service/metrics"
	"CryptoView/internal/services/treemap"
	"CryptoView/internal/usecase"
	xhttp "CryptoView/pkg/http"
	applogger "CryptoView/pkg/logger"
)

// Market returns the current roster snapshot.
func (h *Handler) Market(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.Roster.Snapshot())
}

// RefreshMarket re-fetches the roster. A refresh already in flight is not
// queued; the current snapshot is returned instead.
func (h *Handler) RefreshMarket(c echo.Context) error {
	start := time.Now()
	err := h.Roster.TryRefresh(c.Request().Context())
	apimetrics.Observe("market_refresh", start, err != nil && !errors.Is(err, usecase.ErrBusy))
	switch {
	case errors.Is(err, usecase.ErrBusy):
		return xhttp.AcceptedResponse(c, h.Roster.Snapshot())
	case err != nil:
		h.logger.Error("market refresh failed", applogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.ServiceUnavailableError("market refresh failed").WithError(err))
	}
	return xhttp.SuccessResponse(c, h.Roster.Snapshot())
}

// AddCoin adds an asset to the roster.
func (h *Handler) AddCoin(c echo.Context) error {
	start := time.Now()
	req := &models.AddAssetRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	err := h.Roster.AddAsset(c.Request().Context(), req.ID)
	apimetrics.Observe("market_add", start, err != nil)
	if err != nil {
		var rej *usecase.RejectionError
		if errors.As(err, &rej) {
			return xhttp.AppErrorResponse(c, xhttp.UnprocessableError(xhttp.CodeInvalidMarketCap, rej.Error()).
				WithParam("id", req.ID))
		}
		h.logger.Error("add asset failed", applogger.String("id", req.ID), applogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.ServiceUnavailableError("could not add asset").WithError(err))
	}
	return xhttp.SuccessResponse(c, h.Roster.Snapshot())
}

// MarketLayout lays the roster out as a treemap for the given viewport.
func (h *Handler) MarketLayout(c echo.Context) error {
	req := &models.LayoutRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	snap := h.Roster.Snapshot()
	return xhttp.SuccessResponse(c, h.Layout.Layout(snap.Assets, req.Width, req.Height))
}

type gestureResponse struct {
	Viewport treemap.Viewport `json:"viewport"`
	Moved    bool             `json:"moved"`
	Selected *models.Asset    `json:"selected,omitempty"`
}

// MarketGesture replays a pointer gesture against the current layout and
// reports the resulting viewport and, for a tap, the selected asset.
func (h *Handler) MarketGesture(c echo.Context) error {
	req := &models.GestureRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	snap := h.Roster.Snapshot()
	layout := h.Layout.Layout(snap.Assets, req.Width, req.Height)
	cells := make([]treemap.Cell, 0, len(layout.Tiles))
	for _, t := range layout.Tiles {
		cells = append(cells, t.Cell)
	}

	v := treemap.Viewport{Width: req.Width, Height: req.Height, K: req.K, X: req.X, Y: req.Y}.Pan(0, 0)
	g := treemap.Begin(v, req.StartX, req.StartY)
	for _, s := range req.Steps {
		g.Drag(s.DX, s.DY)
		if s.Zoom > 0 {
			g.Zoom(s.Zoom)
		}
	}

	resp := gestureResponse{Viewport: g.Viewport(), Moved: g.Moved()}
	if cell, ok := g.End(cells); ok {
		if a, found := h.Roster.Lookup(cell.ID); found {
			resp.Selected = &a
		}
	}
	return xhttp.SuccessResponse(c, resp)
}
