package disburse

import (
	"errors"
	"fmt"

	"github.com/begintolern/linkmint-core/internal/domain"
	"github.com/begintolern/linkmint-core/internal/infrastructure/sender"
)

// processRequest fulfils one early payout request. The PROCESSING claim is
// the overlap guard between concurrent runs; the settle transaction is the
// only place with financial side effects.
func (r *Runner) processRequest(req *domain.PayoutRequest, item *ItemResult) {
	if req == nil {
		item.Outcome = OutcomeError
		item.Reason = "payout request vanished from selection"
		return
	}

	if err := r.Requests.UpdateStatus(req.ID, domain.PayoutPending, domain.PayoutProcessing, "claimed by batch runner"); err != nil {
		// Another run claimed it first.
		item.Outcome = OutcomeSkipped
		item.Reason = "claimed_elsewhere"
		return
	}

	legs, disbursedMinor, err := r.coveringLegs(req)
	if err != nil {
		item.Outcome = OutcomeError
		item.Reason = err.Error()
		return
	}
	if disbursedMinor == 0 {
		// Approved balance raced away between submission and now.
		note := "approved balance no longer covers request"
		if err := r.Requests.UpdateStatus(req.ID, domain.PayoutProcessing, domain.PayoutFailed, note); err != nil {
			note = note + " (deny transition also failed: " + err.Error() + ")"
		}
		item.Outcome = OutcomeRejected
		item.Reason = "insufficient_approved_balance"
		r.Events.Log(&domain.EventLog{
			Type:     "payout_request_failed",
			Severity: domain.SeverityWarn,
			Message:  "insufficient approved balance at execution",
			Detail:   fmt.Sprintf("request=%s user=%s requested=%d", req.ID, req.UserID, req.AmountMinor),
		})
		r.Metrics.RecordPayoutRequest(string(domain.PayoutFailed))
		return
	}

	res, err := r.Sender.Send(sender.SendRequest{
		UserID:      req.UserID,
		Destination: req.Destination(),
		AmountMinor: disbursedMinor,
		Currency:    r.Currency,
		Memo:        fmt.Sprintf("early payout %s", req.ID),
	})
	if err != nil {
		// Left in PROCESSING deliberately: the stuck-payout remedy returns
		// it to PENDING after the timeout, and no money moved on our books.
		item.Outcome = OutcomeError
		item.Reason = "payout_error"
		r.Metrics.RecordSenderError()
		r.Events.Log(&domain.EventLog{
			Type:     "payout_error",
			Severity: domain.SeverityError,
			Message:  err.Error(),
			Detail:   fmt.Sprintf("request=%s amount=%d", req.ID, disbursedMinor),
		})
		return
	}

	legIDs := make([]string, len(legs))
	for i, leg := range legs {
		legIDs[i] = leg.ID
	}

	// One transaction: float decrement, commission flips with the request
	// marker, request -> PAID, audit row. All or nothing.
	if err := r.Commissions.SettlePayoutRequest(req.ID, res.TransactionID, legIDs, disbursedMinor); err != nil {
		severity := domain.SeverityError
		reason := err.Error()
		if errors.Is(err, domain.ErrAlreadyPaid) {
			reason = string(domain.RejectAlreadyPaid)
		}
		item.Outcome = OutcomeError
		item.Reason = reason
		// Money left but the books did not move; this is the loudest alarm
		// the service can raise short of halting.
		r.Events.Log(&domain.EventLog{
			Type:     "payout_commit_failed",
			Severity: severity,
			Message:  err.Error(),
			Detail:   fmt.Sprintf("request=%s txn=%s sent but not committed", req.ID, res.TransactionID),
		})
		return
	}

	item.Outcome = OutcomePaid
	item.AmountMinor = disbursedMinor
	item.TxnID = res.TransactionID
	if disbursedMinor != req.AmountMinor {
		item.Reason = fmt.Sprintf("disbursed %d of requested %d (whole commissions only)", disbursedMinor, req.AmountMinor)
	}
	r.Metrics.RecordPayoutRequest(string(domain.PayoutPaid))
	r.Metrics.RecordDisbursed("early", r.Currency, disbursedMinor)
	r.publishPaid(req.UserID, req.ID, "payout_request", disbursedMinor, res.TransactionID)
}

// coveringLegs picks the user's oldest approved-unpaid commissions whose
// whole amounts fit inside the requested figure. Partial legs are never
// split: the ledger flips commissions atomically or not at all.
func (r *Runner) coveringLegs(req *domain.PayoutRequest) ([]*domain.Commission, int64, error) {
	legs, err := r.Commissions.ListApprovedUnpaidByUser(req.UserID)
	if err != nil {
		return nil, 0, fmt.Errorf("listing approved-unpaid commissions: %w", err)
	}
	var selected []*domain.Commission
	var sum int64
	for _, leg := range legs {
		if sum+leg.AmountMinor > req.AmountMinor {
			break
		}
		selected = append(selected, leg)
		sum += leg.AmountMinor
	}
	return selected, sum, nil
}
