package payout

import (
	"fmt"

	"github.com/begintolern/linkmint-core/internal/domain"
)

// MarkProcessing moves PENDING -> PROCESSING. Only authorized actors drive
// lifecycle edges, and every edge carries a logged note.
func (uc *DefaultPayoutUsecase) MarkProcessing(id string, actor domain.Actor, note string) error {
	return uc.transition(id, domain.PayoutPending, domain.PayoutProcessing, actor, note)
}

// Deny fails a request from PENDING or PROCESSING. PAID is terminal, so a
// deny attempt on a paid request hits the repo guard and fails.
func (uc *DefaultPayoutUsecase) Deny(id string, actor domain.Actor, note string) error {
	request, err := uc.Requests.GetByID(id)
	if err != nil {
		return err
	}
	return uc.transition(id, request.Status, domain.PayoutFailed, actor, note)
}

func (uc *DefaultPayoutUsecase) transition(id string, from, to domain.PayoutStatus, actor domain.Actor, note string) error {
	if !actor.CanTransitionPayouts() {
		return domain.ErrNotAuthorized
	}
	if !domain.CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, from, to)
	}
	if err := uc.Requests.UpdateStatus(id, from, to, note); err != nil {
		return err
	}
	uc.Events.Log(&domain.EventLog{
		Type:     "payout_request_transition",
		Severity: domain.SeverityInfo,
		Message:  fmt.Sprintf("payout request %s: %s -> %s", id, from, to),
		Detail:   fmt.Sprintf("actor=%s note=%s", actor.UserID, note),
	})
	uc.Metrics.RecordPayoutRequest(string(to))
	return nil
}
