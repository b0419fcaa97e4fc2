package router

import (
	"userhub/internal/adapter/api/handler"

	"github.com/labstack/echo/v4"
)

func Setup(e *echo.Echo, handlers *handler.Handlers) {
	SetupUserRouter(e, handlers.User)
	SetupHealthRouter(e, handlers.Health)
}
