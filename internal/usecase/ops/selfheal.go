package ops

import (
	"fmt"
	"log/slog"

	"github.com/begintolern/linkmint-core/internal/domain"
)

// Manual remedies. Each is independently invocable, guarded by actor
// authorization, idempotent, and logged. Running one twice is always safe.

// EnableAutoDisbursement re-opens the disbursement valve after a halt.
func (w *Watchdog) EnableAutoDisbursement(actor domain.Actor) error {
	if !actor.Admin() {
		return domain.ErrNotAuthorized
	}
	enabled, err := w.Settings.GetBool(domain.SettingAutoDisbursement, true)
	if err != nil {
		return fmt.Errorf("reading auto-disbursement flag: %w", err)
	}
	if enabled {
		return nil
	}
	if err := w.Settings.SetBool(domain.SettingAutoDisbursement, true); err != nil {
		return fmt.Errorf("enabling auto-disbursement: %w", err)
	}
	w.Metrics.SetAutoDisbursement(true)
	w.Events.Log(&domain.EventLog{
		Type:     "auto_disbursement_enabled",
		Severity: domain.SeverityInfo,
		Message:  "auto-disbursement re-enabled",
		Detail:   fmt.Sprintf("actor=%s", actor.UserID),
	})
	return nil
}

// RetryStuckPayouts returns requests stuck past the timeout to PENDING so
// the next batch picks them up. No money moved for these: the settle
// transaction either committed (status PAID) or did not run.
func (w *Watchdog) RetryStuckPayouts(actor domain.Actor) (int, error) {
	if !actor.Admin() {
		return 0, domain.ErrNotAuthorized
	}
	cutoff := w.Now().Add(-w.Cfg.StuckTimeout)
	stuck, err := w.Requests.ListStuck(cutoff)
	if err != nil {
		return 0, fmt.Errorf("listing stuck payout requests: %w", err)
	}

	retried := 0
	for _, req := range stuck {
		if req.Status != domain.PayoutProcessing {
			continue
		}
		if err := w.Requests.UpdateStatus(req.ID, domain.PayoutProcessing, domain.PayoutPending, "reset by stuck-payout remedy"); err != nil {
			slog.Error("failed to reset stuck payout request",
				"request_id", req.ID, "error", err.Error())
			continue
		}
		retried++
	}

	if retried > 0 {
		w.Events.Log(&domain.EventLog{
			Type:     "stuck_payouts_reset",
			Severity: domain.SeverityWarn,
			Message:  fmt.Sprintf("%d stuck payout requests returned to pending", retried),
			Detail:   fmt.Sprintf("actor=%s cutoff=%s", actor.UserID, cutoff.Format("2006-01-02T15:04:05Z")),
		})
	}
	return retried, nil
}

// PurgeExpiredTokens drops short-lived tokens past their expiry.
func (w *Watchdog) PurgeExpiredTokens(actor domain.Actor) (int64, error) {
	if !actor.Admin() {
		return 0, domain.ErrNotAuthorized
	}
	purged, err := w.Tokens.DeleteExpired(w.Now())
	if err != nil {
		return 0, fmt.Errorf("purging expired tokens: %w", err)
	}
	if purged > 0 {
		w.Events.Log(&domain.EventLog{
			Type:     "expired_tokens_purged",
			Severity: domain.SeverityInfo,
			Message:  fmt.Sprintf("%d expired tokens purged", purged),
			Detail:   fmt.Sprintf("actor=%s", actor.UserID),
		})
	}
	return purged, nil
}

// TrimEventLogs removes operational rows older than the retention window.
// The audit trail inside the window is untouched.
func (w *Watchdog) TrimEventLogs(actor domain.Actor) (int64, error) {
	if !actor.Admin() {
		return 0, domain.ErrNotAuthorized
	}
	cutoff := w.Now().Add(-w.Cfg.LogRetention)
	trimmed, err := w.EventLogs.TrimBefore(cutoff)
	if err != nil {
		return 0, fmt.Errorf("trimming event logs: %w", err)
	}
	if trimmed > 0 {
		w.Events.Log(&domain.EventLog{
			Type:     "event_logs_trimmed",
			Severity: domain.SeverityInfo,
			Message:  fmt.Sprintf("%d event log rows trimmed", trimmed),
			Detail:   fmt.Sprintf("actor=%s cutoff=%s", actor.UserID, cutoff.Format("2006-01-02")),
		})
	}
	return trimmed, nil
}
