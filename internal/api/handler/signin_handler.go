package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/parcel-portal/internal/api/middleware"
	"github.com/99minutos/parcel-portal/internal/api/session"
	"github.com/99minutos/parcel-portal/internal/core/domain"
	"github.com/99minutos/parcel-portal/internal/ui/signin"
)

// SignInHandler serves the sign-in page on top of the session's controller.
type SignInHandler struct {
	tokenTTL     time.Duration
	secureCookie bool
}

func NewSignInHandler(tokenTTL time.Duration, secureCookie bool) *SignInHandler {
	return &SignInHandler{tokenTTL: tokenTTL, secureCookie: secureCookie}
}

// Show handles GET /signin.
func (h *SignInHandler) Show(c echo.Context) error {
	return h.render(c, http.StatusOK, session.From(c).SignIn)
}

// Submit handles POST /signin.
func (h *SignInHandler) Submit(c echo.Context) error {
	sess := session.From(c)
	ctrl := sess.SignIn
	ctrl.SetEmail(c.FormValue("email"))
	ctrl.SetPassword(c.FormValue("password"))

	if err := ctrl.AttemptSignIn(c.Request().Context()); err != nil {
		if errors.Is(err, signin.ErrSignInInFlight) {
			return h.render(c, http.StatusConflict, ctrl)
		}
		return err
	}

	if target := sess.Nav.Take(); target != "" {
		h.setToken(c, sess.Auth.TakeToken())
		return c.Redirect(http.StatusSeeOther, target)
	}

	status := http.StatusUnauthorized
	if f := ctrl.LastFailure(); f != nil && f.Kind == domain.AuthTooManyRequests {
		status = http.StatusTooManyRequests
	}
	return h.render(c, status, ctrl)
}

// Resend handles POST /signin/resend.
func (h *SignInHandler) Resend(c echo.Context) error {
	ctrl := session.From(c).SignIn
	if err := ctrl.ResendVerification(c.Request().Context()); err != nil {
		if errors.Is(err, signin.ErrResendInFlight) {
			return h.render(c, http.StatusConflict, ctrl)
		}
		return err
	}
	return h.render(c, http.StatusOK, ctrl)
}

// TogglePassword handles POST /signin/password-visibility. The typed values
// come along so nothing is lost on the round trip.
func (h *SignInHandler) TogglePassword(c echo.Context) error {
	ctrl := session.From(c).SignIn
	ctrl.SetEmail(c.FormValue("email"))
	ctrl.SetPassword(c.FormValue("password"))
	ctrl.TogglePasswordVisibility()
	return h.render(c, http.StatusOK, ctrl)
}

// SignOut handles GET /signout.
func (h *SignInHandler) SignOut(c echo.Context) error {
	session.From(c).CloseRequestForm()
	c.SetCookie(&http.Cookie{
		Name:     middleware.TokenCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
	return c.Redirect(http.StatusSeeOther, "/")
}

func (h *SignInHandler) setToken(c echo.Context, token string) {
	c.SetCookie(&http.Cookie{
		Name:     middleware.TokenCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(h.tokenTTL),
	})
}

func (h *SignInHandler) render(c echo.Context, status int, ctrl *signin.Controller) error {
	p := newPage(c)
	p.Form = ctrl.View()
	return c.Render(status, "signin", p)
}
