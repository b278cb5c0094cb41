package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/parcel-portal/internal/api/session"
	"github.com/99minutos/parcel-portal/internal/core/domain"
	"github.com/99minutos/parcel-portal/internal/core/ports"
	"github.com/99minutos/parcel-portal/internal/ui/requestform"
)

const recentRequests = 10

// ParcelRequests is what the request form pages need from the service layer.
type ParcelRequests interface {
	ports.ParcelRequestService
	For(ownerID string) ports.ParcelRequestSubmitter
}

type RequestFormHandler struct {
	svc ParcelRequests
	log zerolog.Logger
}

func NewRequestFormHandler(svc ParcelRequests, log zerolog.Logger) *RequestFormHandler {
	return &RequestFormHandler{svc: svc, log: log}
}

// Show handles GET /requests/new.
func (h *RequestFormHandler) Show(c echo.Context) error {
	return h.render(c, http.StatusOK, h.form(c))
}

// Field handles POST /requests/new/field, the per-keystroke update.
func (h *RequestFormHandler) Field(c echo.Context) error {
	field, ok := domain.ParseDraftField(c.FormValue("field"))
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown field")
	}
	h.form(c).OnChange(field, c.FormValue("value"))
	return c.NoContent(http.StatusNoContent)
}

// Submit handles POST /requests. The posted values replace the draft before
// it is handed to the controller.
func (h *RequestFormHandler) Submit(c echo.Context) error {
	form := h.form(c)
	var draft domain.ParcelRequestDraft
	for _, f := range domain.DraftFields {
		draft.Set(f, c.FormValue(string(f)))
	}
	if err := form.Replace(draft); err != nil {
		if errors.Is(err, requestform.ErrSubmitInFlight) {
			return h.render(c, http.StatusConflict, form)
		}
		return err
	}

	outcome, err := form.Submit(c.Request().Context())
	switch {
	case errors.Is(err, requestform.ErrSubmitInFlight):
		return h.render(c, http.StatusConflict, form)
	case err != nil:
		return err
	}

	switch outcome {
	case requestform.OutcomeAccepted:
		// Keep the notice for the redirected page.
		return c.Redirect(http.StatusSeeOther, "/requests/new")
	case requestform.OutcomeFailed:
		return h.render(c, http.StatusServiceUnavailable, form)
	default:
		return h.render(c, http.StatusUnprocessableEntity, form)
	}
}

// Cancel handles POST /requests/cancel.
func (h *RequestFormHandler) Cancel(c echo.Context) error {
	h.form(c).Cancel()
	return c.Redirect(http.StatusSeeOther, "/")
}

func (h *RequestFormHandler) form(c echo.Context) *requestform.Controller {
	userID := currentUserID(c)
	return session.From(c).RequestForm(userID, func(onClose func()) *requestform.Controller {
		return requestform.New(h.svc.For(userID), h.log, onClose)
	})
}

func (h *RequestFormHandler) render(c echo.Context, status int, form *requestform.Controller) error {
	p := newPage(c)
	p.Form = form.View()

	recent, err := h.svc.ListRecent(c.Request().Context(), currentUserID(c), recentRequests)
	if err != nil {
		h.log.Warn().Err(err).Msg("list recent parcel requests")
	}
	p.Recent = recent
	return c.Render(status, "request_form", p)
}
