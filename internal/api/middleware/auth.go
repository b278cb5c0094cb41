package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// TokenCookie carries the session JWT for browser pages.
const TokenCookie = "token"

// Context keys set by Auth and AuthPage.
const (
	KeyUserID = "user_id"
	KeyEmail  = "email"
	KeyRole   = "role"
)

// Auth validates the bearer JWT and injects claims into context. It answers
// 401 when the token is missing or invalid.
func Auth(jwtSecret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			claims, ok := parseToken(parts[1], jwtSecret)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}
			setClaims(c, claims)
			return next(c)
		}
	}
}

// AuthPage reads the JWT from the token cookie. Browsers without a valid
// token are sent to loginPath.
func AuthPage(jwtSecret, loginPath string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !LoadPageClaims(c, jwtSecret) {
				return c.Redirect(http.StatusSeeOther, loginPath)
			}
			return next(c)
		}
	}
}

// PageClaims loads the token cookie claims when present and always continues.
func PageClaims(jwtSecret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			LoadPageClaims(c, jwtSecret)
			return next(c)
		}
	}
}

// LoadPageClaims injects the claims of a valid token cookie into context and
// reports whether there was one.
func LoadPageClaims(c echo.Context, jwtSecret string) bool {
	ck, err := c.Cookie(TokenCookie)
	if err != nil || ck.Value == "" {
		return false
	}
	claims, ok := parseToken(ck.Value, jwtSecret)
	if !ok {
		return false
	}
	setClaims(c, claims)
	return true
}

func parseToken(raw, jwtSecret string) (jwt.MapClaims, bool) {
	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(jwtSecret), nil
	})
	if err != nil || !tkn.Valid {
		return nil, false
	}
	return claims, true
}

func setClaims(c echo.Context, claims jwt.MapClaims) {
	c.Set(KeyUserID, claims["sub"])
	c.Set(KeyEmail, claims["email"])
	c.Set(KeyRole, claims["role"])
}
