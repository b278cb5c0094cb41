package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type HomeHandler struct{}

func NewHomeHandler() *HomeHandler {
	return &HomeHandler{}
}

// Show handles GET /.
func (h *HomeHandler) Show(c echo.Context) error {
	return c.Render(http.StatusOK, "home", newPage(c))
}
