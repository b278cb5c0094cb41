package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/99minutos/parcel-portal/internal/api/middleware"
	"github.com/99minutos/parcel-portal/internal/core/domain"
)

// Page is the data every HTML template receives.
type Page struct {
	SignedIn bool
	Email    string
	Form     any
	Recent   []*domain.ParcelRequest
	Status   int
	Message  string
	Error    string
}

// newPage fills the signed-in fields from the claims in context.
func newPage(c echo.Context) Page {
	userID, _ := c.Get(middleware.KeyUserID).(string)
	email, _ := c.Get(middleware.KeyEmail).(string)
	return Page{SignedIn: userID != "", Email: email}
}

// currentUserID returns the subject of the session token.
func currentUserID(c echo.Context) string {
	id, _ := c.Get(middleware.KeyUserID).(string)
	return id
}
