package api

import (
	"context"

	"github.com/labstack/echo/v4"

	"CryptoView/internal/domain/models"
	"CryptoView/internal/usecase"
	xhttp "CryptoView/pkg/http"
)

// MarketStream pushes roster snapshots over a websocket.
func (h *Handler) MarketStream(c echo.Context) error {
	return h.Hub.ServeRoster(c)
}

// OverlayStream streams overlay frames for an asset while the client reports
// its chart scale. The cached analysis is re-read on every reload request.
func (h *Handler) OverlayStream(c echo.Context) error {
	req := &models.AssetPathRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	return h.Hub.ServeOverlay(c, func(ctx context.Context) *models.AnalysisResult {
		data, ok := h.Viewers.Cached(ctx, req.ID)
		if !ok || usecase.IsPlaceholder(data) {
			return nil
		}
		return &data.TechnicalAnalysis
	})
}
