package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/parcel-portal/internal/api/handler"
	"github.com/99minutos/parcel-portal/internal/core/domain"
)

// errorResponse is the error envelope of the JSON routes.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that maps known domain
// errors to status codes and logs everything else without leaking it. JSON
// clients get {"error": "<message>"}, browsers get the error page.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		if wantsJSON(c) {
			_ = c.JSON(code, errorResponse{Error: msg})
			return
		}

		p := handler.Page{Status: code, Message: msg}
		if rerr := c.Render(code, "error", p); rerr != nil {
			log.Error().Err(rerr).Msg("render error page")
			_ = c.String(code, msg)
		}
	}
}

func wantsJSON(c echo.Context) bool {
	req := c.Request()
	for _, prefix := range []string{"/auth/", "/api/", "/health"} {
		if strings.HasPrefix(req.URL.Path, prefix) {
			return true
		}
	}
	return strings.Contains(req.Header.Get(echo.HeaderAccept), echo.MIMEApplicationJSON)
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	switch {
	case errors.Is(err, domain.ErrParcelRequestNotFound):
		return http.StatusNotFound, "parcel request not found"
	case errors.Is(err, domain.ErrInvalidToken):
		return http.StatusBadRequest, "invalid or expired token"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, "user not found"
	case errors.Is(err, domain.ErrUserExists):
		return http.StatusConflict, "user already exists"
	}

	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}
