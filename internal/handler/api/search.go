package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"CryptoView/internal/domain/models"
	"CryptoView/internal/usecase"
	xhttp "CryptoView/pkg/http"
	xutil "CryptoView/pkg/util"
)

// Search runs an undebounced search, leaving out excluded ids.
func (h *Handler) Search(c echo.Context) error {
	req := &models.SearchRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	exclude := xutil.SplitIDs(req.Exclude)
	if len(exclude) == 0 {
		exclude = h.Roster.Snapshot().IDs
	}
	return xhttp.SuccessResponse(c, usecase.SearchOnce(c.Request().Context(), h.MarketData, req.Query, exclude, h.SearchOpts))
}

type sessionResponse struct {
	ID string `json:"id"`
}

// CreateSearchSession opens a debounced search session.
func (h *Handler) CreateSearchSession(c echo.Context) error {
	return xhttp.CreatedResponse(c, sessionResponse{ID: h.Sessions.Create()})
}

// SearchInput feeds one keystroke into a session. When no existing ids are
// sent, the current roster is excluded.
func (h *Handler) SearchInput(c echo.Context) error {
	req := &models.SearchInputRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	existing := req.ExistingIDs
	if existing == nil {
		existing = h.Roster.Snapshot().IDs
	}
	res, err := h.Sessions.Input(req.ID, req.Query, existing)
	if err != nil {
		return h.sessionError(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

// SearchResult returns what a session currently shows.
func (h *Handler) SearchResult(c echo.Context) error {
	req := &models.SessionPathRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res, err := h.Sessions.Result(req.ID)
	if err != nil {
		return h.sessionError(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

// CloseSearchSession tears a session down.
func (h *Handler) CloseSearchSession(c echo.Context) error {
	req := &models.SessionPathRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if err := h.Sessions.Close(req.ID); err != nil {
		return h.sessionError(c, err)
	}
	return xhttp.NoContentResponse(c)
}

func (h *Handler) sessionError(c echo.Context, err error) error {
	if errors.Is(err, usecase.ErrSessionNotFound) {
		return xhttp.AppErrorResponse(c, xhttp.NewAppError(xhttp.CodeSessionNotFound, err.Error(), http.StatusNotFound))
	}
	return xhttp.AppErrorResponse(c, xhttp.InternalError("search session failed").WithError(err))
}
