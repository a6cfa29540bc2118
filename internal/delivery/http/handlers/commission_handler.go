package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/begintolern/linkmint-core/internal/delivery/http/middleware"
	"github.com/begintolern/linkmint-core/internal/domain"
	"github.com/begintolern/linkmint-core/internal/usecase/commission"
	"github.com/labstack/echo/v4"
)

type ResponseError struct {
	Error string `json:"error"`
}

type CommissionHandler struct {
	Commissions commission.CommissionUsecase
}

func NewCommissionHandler(uc commission.CommissionUsecase) *CommissionHandler {
	return &CommissionHandler{Commissions: uc}
}

func (h *CommissionHandler) GetByID(c echo.Context) error {
	result, err := h.Commissions.GetByID(c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrCommissionNotFound) {
			return c.JSON(http.StatusNotFound, ResponseError{Error: err.Error()})
		}
		slog.Error("failed to get commission", "id", c.Param("id"), "error", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Error: err.Error()})
	}
	return c.JSON(http.StatusOK, result)
}

func (h *CommissionHandler) List(c echo.Context) error {
	filters := domain.CommissionFilters{
		UserID: c.QueryParam("user_id"),
	}
	if status := c.QueryParam("status"); status != "" {
		filters.Statuses = []domain.CommissionStatus{domain.CommissionStatus(status)}
	}
	if from := c.QueryParam("date_from"); from != "" {
		if t, err := time.Parse(time.RFC3339, from); err == nil {
			filters.DateFrom = t
		}
	}
	if to := c.QueryParam("date_to"); to != "" {
		if t, err := time.Parse(time.RFC3339, to); err == nil {
			filters.DateTo = t
		}
	}

	page := parseInt64(c.QueryParam("page"), 1)
	limit := parseInt64(c.QueryParam("limit"), 50)

	commissions, total, err := h.Commissions.GetCommissions(filters, page, limit)
	if err != nil {
		slog.Error("failed to list commissions", "error", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Error: err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"commissions": commissions,
		"total":       total,
		"page":        page,
		"limit":       limit,
	})
}

func (h *CommissionHandler) Balance(c echo.Context) error {
	userID := c.Param("user_id")
	total, err := h.Commissions.ApprovedUnpaidTotal(userID)
	if err != nil {
		slog.Error("failed to compute balance", "user_id", userID, "error", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Error: err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"user_id":               userID,
		"approved_unpaid_minor": total,
	})
}

type transitionRequest struct {
	Note   string `json:"note"`
	Reason string `json:"reason"`
	TxnID  string `json:"txn_id"`
}

func (h *CommissionHandler) Approve(c echo.Context) error {
	var req transitionRequest
	_ = c.Bind(&req)
	err := h.Commissions.Approve(c.Param("id"), middleware.ActorFrom(c), req.Note)
	return transitionResponse(c, err)
}

func (h *CommissionHandler) MarkPaid(c echo.Context) error {
	var req transitionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Error: err.Error()})
	}
	err := h.Commissions.MarkPaid(c.Param("id"), req.TxnID, middleware.ActorFrom(c))
	return transitionResponse(c, err)
}

func (h *CommissionHandler) Fail(c echo.Context) error {
	var req transitionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Error: err.Error()})
	}
	err := h.Commissions.Fail(c.Param("id"), req.Reason, middleware.ActorFrom(c))
	return transitionResponse(c, err)
}

func transitionResponse(c echo.Context, err error) error {
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	case errors.Is(err, domain.ErrNotAuthorized):
		return c.JSON(http.StatusForbidden, ResponseError{Error: err.Error()})
	case errors.Is(err, domain.ErrCommissionNotFound), errors.Is(err, domain.ErrPayoutNotFound):
		return c.JSON(http.StatusNotFound, ResponseError{Error: err.Error()})
	case errors.Is(err, domain.ErrAlreadyPaid), errors.Is(err, domain.ErrInvalidTransition):
		return c.JSON(http.StatusConflict, ResponseError{Error: err.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, ResponseError{Error: err.Error()})
	}
}

func parseInt64(raw string, fallback int64) int64 {
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
