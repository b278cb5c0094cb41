package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/parcel-portal/internal/api/middleware"
	"github.com/99minutos/parcel-portal/internal/core/domain"
	"github.com/99minutos/parcel-portal/internal/core/ports"
)

// ParcelRequestHandler serves submitted requests to API clients holding a
// bearer token.
type ParcelRequestHandler struct {
	svc ports.ParcelRequestService
}

func NewParcelRequestHandler(svc ports.ParcelRequestService) *ParcelRequestHandler {
	return &ParcelRequestHandler{svc: svc}
}

type parcelRequestList struct {
	Data []*domain.ParcelRequest `json:"data"`
}

// Get returns one parcel request. Clients see their own requests only.
//
// @Summary      Get a parcel request
// @Tags         requests
// @Produce      json
// @Security     BearerAuth
// @Param        reference  path      string  true  "Request reference (PR-XXXXXXXX)"
// @Success      200        {object}  domain.ParcelRequest
// @Failure      401        {object}  authErrorResponse
// @Failure      403        {object}  authErrorResponse
// @Failure      404        {object}  authErrorResponse
// @Router       /api/requests/{reference} [get]
func (h *ParcelRequestHandler) Get(c echo.Context) error {
	req, err := h.svc.Get(c.Request().Context(), scopeOwner(c), c.Param("reference"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, req)
}

// List returns the caller's newest requests.
//
// @Summary      List own parcel requests
// @Tags         requests
// @Produce      json
// @Security     BearerAuth
// @Param        limit  query     int  false  "Max items (default 20, max 50)"
// @Success      200    {object}  parcelRequestList
// @Failure      400    {object}  authErrorResponse
// @Failure      401    {object}  authErrorResponse
// @Router       /api/requests [get]
func (h *ParcelRequestHandler) List(c echo.Context) error {
	limit := 20
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be a positive integer")
		}
		limit = n
	}

	reqs, err := h.svc.ListRecent(c.Request().Context(), currentUserID(c), limit)
	if err != nil {
		return err
	}
	if reqs == nil {
		reqs = []*domain.ParcelRequest{}
	}
	return c.JSON(http.StatusOK, parcelRequestList{Data: reqs})
}

// scopeOwner is the owner filter for lookups: admins see every request.
func scopeOwner(c echo.Context) string {
	if role, _ := c.Get(middleware.KeyRole).(string); role == domain.RoleAdmin {
		return ""
	}
	return currentUserID(c)
}
