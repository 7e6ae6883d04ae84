package handler

import (
	"errors"
	"fmt"
	"net/http"

	"cart-recovery-service/internal/dto"
	"cart-recovery-service/internal/service"

	"github.com/labstack/echo/v4"
)

type RecoveryHandler struct {
	recoveryService  service.RecoveryService
	schedulerService service.SchedulerService
}

func NewRecoveryHandler(recoveryService service.RecoveryService, schedulerService service.SchedulerService) *RecoveryHandler {
	return &RecoveryHandler{
		recoveryService:  recoveryService,
		schedulerService: schedulerService,
	}
}

// ProcessCalls runs one scheduler pass, optionally preceded by a backfill
// of historical webhook records (?processAll=true).
func (h *RecoveryHandler) ProcessCalls(c echo.Context) error {
	ctx := c.Request().Context()

	if c.QueryParam("processAll") == "true" {
		if err := h.recoveryService.ProcessAllWebhookCalls(ctx); err != nil {
			return fmt.Errorf("process all webhook calls: %w", err)
		}
	}

	if err := h.schedulerService.ProcessScheduledCalls(ctx); err != nil {
		return fmt.Errorf("process scheduled calls: %w", err)
	}

	return c.JSON(http.StatusOK, dto.RecoveryRunResponse{
		Success: true,
		Message: "scheduled calls processed successfully",
	})
}

func (h *RecoveryHandler) GetStats(c echo.Context) error {
	ctx := c.Request().Context()

	stats, err := h.recoveryService.GetDailyStats(ctx, c.QueryParam("date"))
	if errors.Is(err, service.ErrInvalidDate) {
		return echo.NewHTTPError(http.StatusBadRequest, "date must be YYYY-MM-DD")
	}
	if err != nil {
		return fmt.Errorf("fetch recovery stats: %w", err)
	}

	return c.JSON(http.StatusOK, stats)
}
