package disburse

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/begintolern/linkmint-core/internal/domain"
	"github.com/begintolern/linkmint-core/internal/infrastructure/sender"
)

// processCommission pays one cleared commission. The sender call precedes
// the status flip; a commission is never marked paid without confirmed
// sender success, and a sender failure leaves it APPROVED for the next run.
func (r *Runner) processCommission(c *domain.Commission, item *ItemResult) {
	if c == nil {
		item.Outcome = OutcomeError
		item.Reason = "commission vanished from selection"
		return
	}
	if c.AmountMinor <= 0 {
		// Upstream schema drift can leave a zero-amount row; skip rather
		// than bother the sender.
		item.Outcome = OutcomeSkipped
		item.Reason = string(domain.RejectNoAmountDetected)
		r.Events.Log(&domain.EventLog{
			Type:     "disburse_skipped",
			Severity: domain.SeverityWarn,
			Message:  string(domain.RejectNoAmountDetected),
			Detail:   fmt.Sprintf("commission=%s", c.ID),
		})
		return
	}

	res, err := r.Sender.Send(sender.SendRequest{
		UserID:      c.UserID,
		Destination: c.UserID,
		AmountMinor: c.AmountMinor,
		Currency:    r.Currency,
		Memo:        fmt.Sprintf("commission %s", c.ID),
	})
	if err != nil {
		item.Outcome = OutcomeError
		item.Reason = "payout_error"
		r.Metrics.RecordSenderError()
		r.Events.Log(&domain.EventLog{
			Type:     "payout_error",
			Severity: domain.SeverityError,
			Message:  err.Error(),
			Detail:   fmt.Sprintf("commission=%s amount=%d", c.ID, c.AmountMinor),
		})
		return
	}

	// Standard payouts never touch the float: the funds already cleared.
	if err := r.Commissions.MarkPaid(c.ID, res.TransactionID, 0); err != nil {
		if errors.Is(err, domain.ErrAlreadyPaid) {
			// A concurrent run won the race; our transaction observed the
			// terminal state and did nothing.
			item.Outcome = OutcomeSkipped
			item.Reason = string(domain.RejectAlreadyPaid)
			r.Events.Log(&domain.EventLog{
				Type:     "disburse_skipped",
				Severity: domain.SeverityWarn,
				Message:  string(domain.RejectAlreadyPaid),
				Detail:   fmt.Sprintf("commission=%s concurrent run already paid it", c.ID),
			})
			return
		}
		item.Outcome = OutcomeError
		item.Reason = err.Error()
		r.Events.Log(&domain.EventLog{
			Type:     "payout_commit_failed",
			Severity: domain.SeverityError,
			Message:  err.Error(),
			Detail:   fmt.Sprintf("commission=%s txn=%s sent but not committed", c.ID, res.TransactionID),
		})
		return
	}

	item.Outcome = OutcomePaid
	item.TxnID = res.TransactionID
	r.Metrics.RecordCommissionPaid("batch")
	r.Metrics.RecordDisbursed("standard", r.Currency, c.AmountMinor)
	r.publishPaid(c.UserID, c.ID, "commission", c.AmountMinor, res.TransactionID)
}

type paidEvent struct {
	UserID        string `json:"user_id"`
	RefID         string `json:"ref_id"`
	Kind          string `json:"kind"`
	AmountMinor   int64  `json:"amount_minor"`
	TransactionID string `json:"transaction_id"`
}

func (r *Runner) publishPaid(userID, refID, kind string, amountMinor int64, txnID string) {
	if r.Publisher == nil {
		return
	}
	go func(event paidEvent) {
		value, err := json.Marshal(event)
		if err != nil {
			slog.Error("failed to marshal paid event", "error", err.Error())
			return
		}
		if err := r.Publisher.Publish(r.PayoutTopic, domain.Message{Key: []byte(event.UserID), Value: value}); err != nil {
			slog.Error("failed to publish paid event", "stage", "disburse", "error", err.Error())
		}
	}(paidEvent{
		UserID:        userID,
		RefID:         refID,
		Kind:          kind,
		AmountMinor:   amountMinor,
		TransactionID: txnID,
	})
}
