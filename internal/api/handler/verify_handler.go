package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/parcel-portal/internal/core/domain"
	"github.com/99minutos/parcel-portal/internal/core/ports"
)

type VerifyHandler struct {
	svc ports.VerificationService
}

func NewVerifyHandler(svc ports.VerificationService) *VerifyHandler {
	return &VerifyHandler{svc: svc}
}

// Verify handles GET /verify?token=.
func (h *VerifyHandler) Verify(c echo.Context) error {
	p := newPage(c)
	email, err := h.svc.Verify(c.Request().Context(), c.QueryParam("token"))
	switch {
	case errors.Is(err, domain.ErrInvalidToken):
		p.Error = "This verification link is invalid or has expired."
		return c.Render(http.StatusBadRequest, "verify", p)
	case err != nil:
		return err
	}
	p.Message = email + " is verified. You can sign in now."
	return c.Render(http.StatusOK, "verify", p)
}
