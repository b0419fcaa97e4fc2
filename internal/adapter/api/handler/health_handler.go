package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"userhub/internal/domain/service"
	"userhub/pkg/logger"
)

type HealthHandler struct {
	store service.HealthChecker
}

func NewHealthHandler(store service.HealthChecker) *HealthHandler {
	return &HealthHandler{
		store: store,
	}
}

func (h *HealthHandler) CheckHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "Server is running",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func (h *HealthHandler) CheckStoreHealth(c echo.Context) error {
	if err := h.store.Ping(c.Request().Context()); err != nil {
		logger.Error("Record store health check failed: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"status": "Record store connection failed",
			"error":  err.Error(),
		})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"status": "Record store connected successfully",
	})
}
