package handlers

import (
	"log/slog"
	"net/http"

	"github.com/begintolern/linkmint-core/internal/delivery/http/middleware"
	"github.com/begintolern/linkmint-core/internal/usecase/disburse"
	"github.com/labstack/echo/v4"
)

type DisburseHandler struct {
	Runner *disburse.Runner
}

func NewDisburseHandler(runner *disburse.Runner) *DisburseHandler {
	return &DisburseHandler{Runner: runner}
}

type runDisbursementRequest struct {
	BatchSize int  `json:"batch_size"`
	DryRun    bool `json:"dry_run"`
	Force     bool `json:"force"`
}

func (h *DisburseHandler) Run(c echo.Context) error {
	var req runDisbursementRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Error: err.Error()})
	}

	result, err := h.Runner.Run(disburse.RunParams{
		BatchSize: req.BatchSize,
		DryRun:    req.DryRun,
		Force:     req.Force,
		Actor:     middleware.ActorFrom(c),
	})
	if err != nil {
		slog.Error("disbursement run failed", "error", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Error: err.Error()})
	}
	return c.JSON(http.StatusOK, result)
}
