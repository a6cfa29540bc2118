package commission

import (
	"errors"
	"fmt"

	"github.com/begintolern/linkmint-core/internal/domain"
)

// Approve moves a PENDING commission to APPROVED on behalf of an authorized
// actor. This is the admin/clearance entry point; kafka-carried clearance
// goes through Ingest instead.
func (uc *DefaultCommissionUsecase) Approve(id string, actor domain.Actor, note string) error {
	if !actor.CanTransitionPayouts() {
		return domain.ErrNotAuthorized
	}
	if err := uc.Commissions.Approve(id); err != nil {
		uc.logTransitionFailure("commission_approve_failed", id, actor, err)
		return err
	}
	uc.Events.Log(&domain.EventLog{
		Type:     "commission_approved",
		Severity: domain.SeverityInfo,
		Message:  fmt.Sprintf("commission %s approved", id),
		Detail:   fmt.Sprintf("actor=%s note=%s", actor.UserID, note),
	})
	uc.Metrics.RecordCommissionApproved()
	return nil
}

// MarkPaid is the admin path for flipping a commission to PAID after an
// out-of-band disbursement. It shares the transactional repo guard with the
// batch runner, so a double payment attempt fails ErrAlreadyPaid here too.
func (uc *DefaultCommissionUsecase) MarkPaid(id, externalTxnID string, actor domain.Actor) error {
	if !actor.CanTransitionPayouts() {
		return domain.ErrNotAuthorized
	}
	if err := uc.Commissions.MarkPaid(id, externalTxnID, 0); err != nil {
		uc.logTransitionFailure("commission_mark_paid_failed", id, actor, err)
		return err
	}
	uc.Events.Log(&domain.EventLog{
		Type:     "commission_paid",
		Severity: domain.SeverityInfo,
		Message:  fmt.Sprintf("commission %s marked paid", id),
		Detail:   fmt.Sprintf("actor=%s txn=%s", actor.UserID, externalTxnID),
	})
	uc.Metrics.RecordCommissionPaid("manual")
	return nil
}

// Fail discards a PENDING/APPROVED commission with a reason. Paid
// commissions are terminal.
func (uc *DefaultCommissionUsecase) Fail(id, reason string, actor domain.Actor) error {
	if !actor.CanTransitionPayouts() {
		return domain.ErrNotAuthorized
	}
	if err := uc.Commissions.Fail(id, reason); err != nil {
		uc.logTransitionFailure("commission_fail_failed", id, actor, err)
		return err
	}
	uc.Events.Log(&domain.EventLog{
		Type:     "commission_failed",
		Severity: domain.SeverityWarn,
		Message:  fmt.Sprintf("commission %s failed", id),
		Detail:   fmt.Sprintf("actor=%s reason=%s", actor.UserID, reason),
	})
	return nil
}

// Double-payment attempts are the one failure class that must never pass
// quietly, so they log at ERROR regardless of caller handling.
func (uc *DefaultCommissionUsecase) logTransitionFailure(eventType, id string, actor domain.Actor, err error) {
	severity := domain.SeverityWarn
	if errors.Is(err, domain.ErrAlreadyPaid) {
		severity = domain.SeverityError
	}
	uc.Events.Log(&domain.EventLog{
		Type:     eventType,
		Severity: severity,
		Message:  err.Error(),
		Detail:   fmt.Sprintf("commission=%s actor=%s", id, actor.UserID),
	})
}
