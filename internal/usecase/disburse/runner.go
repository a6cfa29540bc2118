package disburse

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/begintolern/linkmint-core/internal/domain"
	"github.com/begintolern/linkmint-core/internal/infrastructure/logger"
	"github.com/begintolern/linkmint-core/internal/infrastructure/metrics"
	"github.com/begintolern/linkmint-core/internal/infrastructure/sender"
	"github.com/begintolern/linkmint-core/internal/usecase/eligibility"
	"github.com/jaevor/go-nanoid"
)

const (
	// DefaultBatchSize bounds a run when the caller does not.
	DefaultBatchSize = 200
	// MaxBatchSize is the hard ceiling regardless of the trigger parameters.
	MaxBatchSize = 200
)

type RunParams struct {
	BatchSize int
	DryRun    bool
	// Force bypasses the auto-disbursement flag for a manual admin trigger.
	Force bool
	Actor domain.Actor
}

type ItemOutcome string

const (
	OutcomePaid     ItemOutcome = "paid"
	OutcomeSkipped  ItemOutcome = "skipped"
	OutcomeRejected ItemOutcome = "rejected"
	OutcomeError    ItemOutcome = "error"
	OutcomePreview  ItemOutcome = "preview"
)

type ItemResult struct {
	ID          string      `json:"id"`
	Kind        string      `json:"kind"` // commission | payout_request
	UserID      string      `json:"user_id"`
	AmountMinor int64       `json:"amount_minor"`
	Outcome     ItemOutcome `json:"outcome"`
	Reason      string      `json:"reason,omitempty"`
	TxnID       string      `json:"txn_id,omitempty"`
}

type RunResult struct {
	RunID          string       `json:"run_id"`
	DryRun         bool         `json:"dry_run"`
	Halted         bool         `json:"halted"`
	Items          []ItemResult `json:"items"`
	PaidCount      int          `json:"paid_count"`
	TotalPaidMinor int64        `json:"total_paid_minor"`
}

// Runner selects payable obligations, gates them and commits results
// transactionally. It tolerates overlapping invocations: every side effect
// sits behind a transaction that re-checks terminal state.
type Runner struct {
	Commissions domain.CommissionRepository
	Requests    domain.PayoutRequestRepository
	Profiles    domain.UserProfileRepository
	Settings    domain.Settings
	Gate        *eligibility.Gate
	Sender      sender.PaymentSender
	Events      logger.EventLogger
	Metrics     *metrics.PayoutMetrics
	Publisher   domain.PublisherPort
	PayoutTopic string
	Currency    string
	Now         func() time.Time

	newRunID func() string
}

func NewRunner(
	commissionRepo domain.CommissionRepository,
	requestRepo domain.PayoutRequestRepository,
	profileRepo domain.UserProfileRepository,
	settings domain.Settings,
	gate *eligibility.Gate,
	paymentSender sender.PaymentSender,
	events logger.EventLogger,
	payoutMetrics *metrics.PayoutMetrics,
	publisher domain.PublisherPort,
	payoutTopic, currency string) *Runner {

	gen, err := nanoid.Standard(15)
	if err != nil {
		panic(fmt.Sprintf("nanoid init: %v", err))
	}
	return &Runner{
		Commissions: commissionRepo,
		Requests:    requestRepo,
		Profiles:    profileRepo,
		Settings:    settings,
		Gate:        gate,
		Sender:      paymentSender,
		Events:      events,
		Metrics:     payoutMetrics,
		Publisher:   publisher,
		PayoutTopic: payoutTopic,
		Currency:    currency,
		Now:         func() time.Time { return time.Now().UTC() },
		newRunID:    gen,
	}
}

// Run executes one disbursement pass. Safe to call concurrently and
// repeatedly: duplicate invocations converge on the terminal-state guards.
func (r *Runner) Run(params RunParams) (*RunResult, error) {
	started := r.Now()
	result := &RunResult{RunID: r.newRunID(), DryRun: params.DryRun}

	enabled, err := r.Settings.GetBool(domain.SettingAutoDisbursement, true)
	if err != nil {
		return nil, fmt.Errorf("reading auto-disbursement flag: %w", err)
	}
	if !enabled && !params.Force {
		result.Halted = true
		slog.Warn("disbursement halted by ops flag", "run_id", result.RunID)
		return result, nil
	}

	batchSize := params.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if batchSize > MaxBatchSize {
		batchSize = MaxBatchSize
	}

	now := r.Now()
	commissions, err := r.Commissions.ListDisbursable(now, batchSize)
	if err != nil {
		return nil, fmt.Errorf("selecting disbursable commissions: %w", err)
	}
	requests, err := r.Requests.ListPending(batchSize)
	if err != nil {
		return nil, fmt.Errorf("selecting pending payout requests: %w", err)
	}

	candidates, items := r.buildCandidates(commissions, requests)

	gate := r.Gate
	if params.DryRun {
		gate = gate.WithLogger(&logger.MemoryEventLogger{})
	}
	verdicts, err := gate.AdmitBatch(candidates, now)
	if err != nil {
		return nil, fmt.Errorf("eligibility gate: %w", err)
	}

	for i, verdict := range verdicts {
		item := items[i]
		if verdict.Rejection != nil {
			item.Outcome = OutcomeRejected
			item.Reason = string(verdict.Rejection.Code)
			if !params.DryRun {
				r.Metrics.RecordEligibilityRejection(string(verdict.Rejection.Code))
			}
			result.Items = append(result.Items, *item)
			continue
		}
		if params.DryRun {
			item.Outcome = OutcomePreview
			result.Items = append(result.Items, *item)
			continue
		}

		switch item.Kind {
		case "commission":
			r.processCommission(commissionByID(commissions, item.ID), item)
		case "payout_request":
			r.processRequest(requestByID(requests, item.ID), item)
		}
		if item.Outcome == OutcomePaid {
			result.PaidCount++
			result.TotalPaidMinor += item.AmountMinor
		}
		result.Items = append(result.Items, *item)
	}

	outcome := "completed"
	if params.DryRun {
		outcome = "dry_run"
	}
	r.Metrics.RecordBatch(outcome, params.DryRun, r.Now().Sub(started).Seconds())

	slog.Info("disbursement batch finished",
		"run_id", result.RunID,
		"dry_run", params.DryRun,
		"items", len(result.Items),
		"paid", result.PaidCount,
		"total_paid_minor", result.TotalPaidMinor)

	return result, nil
}

func (r *Runner) buildCandidates(commissions []*domain.Commission, requests []*domain.PayoutRequest) ([]eligibility.Candidate, []*ItemResult) {
	candidates := make([]eligibility.Candidate, 0, len(commissions)+len(requests))
	items := make([]*ItemResult, 0, cap(candidates))

	for _, c := range commissions {
		candidates = append(candidates, eligibility.Candidate{
			ID:          c.ID,
			UserID:      c.UserID,
			AmountMinor: c.AmountMinor,
			Early:       false,
		})
		items = append(items, &ItemResult{
			ID:          c.ID,
			Kind:        "commission",
			UserID:      c.UserID,
			AmountMinor: c.AmountMinor,
		})
	}

	for _, req := range requests {
		profile, err := r.Profiles.GetByUserID(req.UserID)
		if err != nil {
			slog.Error("profile lookup failed, treating as ineligible",
				"user_id", req.UserID, "error", err.Error())
			profile = nil
		}
		candidates = append(candidates, eligibility.Candidate{
			ID:          req.ID,
			UserID:      req.UserID,
			AmountMinor: req.AmountMinor,
			Early:       true,
			Profile:     profile,
		})
		items = append(items, &ItemResult{
			ID:          req.ID,
			Kind:        "payout_request",
			UserID:      req.UserID,
			AmountMinor: req.AmountMinor,
		})
	}

	return candidates, items
}

func commissionByID(commissions []*domain.Commission, id string) *domain.Commission {
	for _, c := range commissions {
		if c.ID == id {
			return c
		}
	}
	return nil
}

func requestByID(requests []*domain.PayoutRequest, id string) *domain.PayoutRequest {
	for _, req := range requests {
		if req.ID == id {
			return req
		}
	}
	return nil
}
