package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/begintolern/linkmint-core/internal/delivery/http/middleware"
	"github.com/begintolern/linkmint-core/internal/domain"
	"github.com/begintolern/linkmint-core/internal/usecase/ops"
	"github.com/labstack/echo/v4"
)

type OpsHandler struct {
	Watchdog *ops.Watchdog
	Floats   domain.FloatRepository
}

func NewOpsHandler(watchdog *ops.Watchdog, floatRepo domain.FloatRepository) *OpsHandler {
	return &OpsHandler{Watchdog: watchdog, Floats: floatRepo}
}

func (h *OpsHandler) Health(c echo.Context) error {
	snapshot := h.Watchdog.Health()
	status := http.StatusOK
	if !snapshot.DatastoreOK {
		status = http.StatusServiceUnavailable
	}
	return c.JSON(status, snapshot)
}

// Heal dispatches a named remedy. Unknown actions are client errors, not
// silent no-ops.
func (h *OpsHandler) Heal(c echo.Context) error {
	actor := middleware.ActorFrom(c)
	action := c.Param("action")

	var result interface{}
	var err error
	switch action {
	case "enable-auto-disbursement":
		err = h.Watchdog.EnableAutoDisbursement(actor)
		result = map[string]string{"status": "ok"}
	case "retry-stuck-payouts":
		var count int
		count, err = h.Watchdog.RetryStuckPayouts(actor)
		result = map[string]int{"retried": count}
	case "purge-expired-tokens":
		var count int64
		count, err = h.Watchdog.PurgeExpiredTokens(actor)
		result = map[string]int64{"purged": count}
	case "trim-event-logs":
		var count int64
		count, err = h.Watchdog.TrimEventLogs(actor)
		result = map[string]int64{"trimmed": count}
	default:
		return c.JSON(http.StatusBadRequest, ResponseError{Error: "unknown heal action: " + action})
	}

	if err != nil {
		if errors.Is(err, domain.ErrNotAuthorized) {
			return c.JSON(http.StatusForbidden, ResponseError{Error: err.Error()})
		}
		slog.Error("heal action failed", "action", action, "error", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Error: err.Error()})
	}
	return c.JSON(http.StatusOK, result)
}

type floatTopUpRequest struct {
	AmountMinor int64  `json:"amount_minor"`
	Note        string `json:"note"`
}

func (h *OpsHandler) FloatTopUp(c echo.Context) error {
	var req floatTopUpRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Error: err.Error()})
	}
	if err := h.Floats.TopUp(req.AmountMinor, req.Note); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Error: err.Error()})
	}
	balance, err := h.Floats.Get()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ResponseError{Error: err.Error()})
	}
	return c.JSON(http.StatusOK, balance)
}
