package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/parcel-portal/internal/core/domain"
	"github.com/99minutos/parcel-portal/internal/core/ports"
)

// AuthHandler serves the JSON auth API used by scripts and integrations.
type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type registerRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
	Email    string `json:"email" validate:"required,email"`
	Role     string `json:"role" validate:"required,oneof=admin client"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type authResponse struct {
	Token string       `json:"token,omitempty"`
	User  *domain.User `json:"user,omitempty"`
}

type authErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// Register creates a new, unverified user account and sends the verification
// e-mail.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "User registration details"
// @Success      201   {object}  authResponse
// @Failure      400   {object}  authErrorResponse
// @Failure      409   {object}  authErrorResponse
// @Failure      500   {object}  authErrorResponse
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, authErrorResponse{Error: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, authErrorResponse{Error: err.Error()})
	}

	user, err := h.authService.Register(c.Request().Context(), req.Username, req.Password, req.Email, req.Role)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUserExists):
			return c.JSON(http.StatusConflict, authErrorResponse{Error: err.Error()})
		case errors.Is(err, domain.ErrInvalidCredentials):
			return c.JSON(http.StatusBadRequest, authErrorResponse{Error: err.Error()})
		}
		return err
	}

	return c.JSON(http.StatusCreated, authResponse{User: user})
}

// Login authenticates a user and returns a JWT token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  authErrorResponse
// @Failure      401   {object}  authErrorResponse
// @Failure      403   {object}  authErrorResponse
// @Failure      404   {object}  authErrorResponse
// @Failure      429   {object}  authErrorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, authErrorResponse{Error: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, authErrorResponse{Error: err.Error()})
	}

	token, user, err := h.authService.SignIn(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		var ae *domain.AuthError
		if !errors.As(err, &ae) {
			return err
		}
		return c.JSON(authStatus(ae.Code), authErrorResponse{Error: ae.Message, Code: ae.Code})
	}

	return c.JSON(http.StatusOK, authResponse{Token: token, User: user})
}

func authStatus(code string) int {
	switch code {
	case domain.CodeUserNotFound:
		return http.StatusNotFound
	case domain.CodeTooManyRequests:
		return http.StatusTooManyRequests
	case domain.CodeEmailNotVerified:
		return http.StatusForbidden
	default:
		return http.StatusUnauthorized
	}
}
