package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/begintolern/linkmint-core/internal/delivery/http/middleware"
	"github.com/begintolern/linkmint-core/internal/domain"
	"github.com/begintolern/linkmint-core/internal/usecase/payout"
	"github.com/labstack/echo/v4"
)

type PayoutHandler struct {
	Payouts payout.PayoutUsecase
}

func NewPayoutHandler(uc payout.PayoutUsecase) *PayoutHandler {
	return &PayoutHandler{Payouts: uc}
}

type submitPayoutRequest struct {
	AmountMinor  int64  `json:"amount_minor"`
	Method       string `json:"method"`
	Provider     string `json:"provider"`
	WalletNumber string `json:"wallet_number"`
	BankName     string `json:"bank_name"`
	BankAccount  string `json:"bank_account"`
}

// Submit is self-service: the requesting user comes from the token, never
// from the body.
func (h *PayoutHandler) Submit(c echo.Context) error {
	var req submitPayoutRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Error: err.Error()})
	}
	actor := middleware.ActorFrom(c)

	request, err := h.Payouts.Submit(&payout.SubmitInput{
		UserID:       actor.UserID,
		AmountMinor:  req.AmountMinor,
		Method:       req.Method,
		Provider:     req.Provider,
		WalletNumber: req.WalletNumber,
		BankName:     req.BankName,
		BankAccount:  req.BankAccount,
	})
	if err != nil {
		if errors.Is(err, domain.ErrAmountExceedsTotal) {
			return c.JSON(http.StatusUnprocessableEntity, ResponseError{Error: err.Error()})
		}
		slog.Error("payout submission failed", "user_id", actor.UserID, "error", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Error: err.Error()})
	}
	return c.JSON(http.StatusCreated, request)
}

func (h *PayoutHandler) GetByID(c echo.Context) error {
	request, err := h.Payouts.GetByID(c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrPayoutNotFound) {
			return c.JSON(http.StatusNotFound, ResponseError{Error: err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, ResponseError{Error: err.Error()})
	}
	actor := middleware.ActorFrom(c)
	if !actor.Admin() && request.UserID != actor.UserID {
		return c.JSON(http.StatusForbidden, ResponseError{Error: domain.ErrNotAuthorized.Error()})
	}
	return c.JSON(http.StatusOK, request)
}

func (h *PayoutHandler) Approve(c echo.Context) error {
	var req transitionRequest
	_ = c.Bind(&req)
	err := h.Payouts.MarkProcessing(c.Param("id"), middleware.ActorFrom(c), req.Note)
	return transitionResponse(c, err)
}

func (h *PayoutHandler) Deny(c echo.Context) error {
	var req transitionRequest
	_ = c.Bind(&req)
	err := h.Payouts.Deny(c.Param("id"), middleware.ActorFrom(c), req.Note)
	return transitionResponse(c, err)
}
