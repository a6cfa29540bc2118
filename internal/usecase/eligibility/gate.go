package eligibility

import (
	"fmt"
	"time"

	"github.com/begintolern/linkmint-core/internal/domain"
	"github.com/begintolern/linkmint-core/internal/infrastructure/logger"
)

// Config holds the trust/honeymoon thresholds for early payouts.
type Config struct {
	MinTrustScore      int
	HoneymoonDays      int
	AllowListedUserIDs []string
}

// Candidate is one payout attempt evaluated by the gate. Early candidates
// want funds ahead of clearance; standard candidates have already cleared
// and bypass trust/age/float.
type Candidate struct {
	ID          string
	UserID      string
	AmountMinor int64
	Early       bool
	Profile     *domain.UserProfile
}

// Result pairs a candidate with its verdict.
type Result struct {
	Candidate Candidate
	Rejection *domain.Rejection
}

// Gate decides whether funds may leave the platform. Terminal-state
// (already-paid) re-checks are deliberately not here: they happen inside
// the disbursement transaction, which is the only place that can close the
// race.
type Gate struct {
	cfg       Config
	allowList map[string]bool
	floats    domain.FloatRepository
	events    logger.EventLogger
}

func NewGate(cfg Config, floats domain.FloatRepository, events logger.EventLogger) *Gate {
	allow := make(map[string]bool, len(cfg.AllowListedUserIDs))
	for _, id := range cfg.AllowListedUserIDs {
		allow[id] = true
	}
	return &Gate{cfg: cfg, allowList: allow, floats: floats, events: events}
}

// WithLogger returns a copy of the gate writing rejections to a different
// sink. Dry runs use it to preview without touching the audit trail.
func (g *Gate) WithLogger(events logger.EventLogger) *Gate {
	copied := *g
	copied.events = events
	return &copied
}

// AdmitBatch applies the ordered rules to a whole batch. Per-candidate
// trust/age failures reject only that candidate; an early-payout total
// exceeding the current float rejects every early candidate, with no partial
// fulfillment.
func (g *Gate) AdmitBatch(candidates []Candidate, now time.Time) ([]Result, error) {
	results := make([]Result, len(candidates))
	var earlyTotal int64

	for i, c := range candidates {
		results[i] = Result{Candidate: c}
		if !c.Early {
			continue
		}
		if rej := g.checkTrustAndAge(c, now); rej != nil {
			results[i].Rejection = rej
			g.logRejection(c, rej)
			continue
		}
		earlyTotal += c.AmountMinor
	}

	if earlyTotal == 0 {
		return results, nil
	}

	// Float is re-read fresh for every batch; the figure from a previous
	// run is never trusted.
	balance, err := g.floats.Get()
	if err != nil {
		return nil, fmt.Errorf("reading float balance: %w", err)
	}
	if earlyTotal > balance.BalanceMinor {
		rej := &domain.Rejection{
			Code: domain.RejectInsufficientFloat,
			Message: fmt.Sprintf("early batch total %d exceeds float %d",
				earlyTotal, balance.BalanceMinor),
		}
		for i := range results {
			if results[i].Candidate.Early && results[i].Rejection == nil {
				results[i].Rejection = rej
				g.logRejection(results[i].Candidate, rej)
			}
		}
	}

	return results, nil
}

// checkTrustAndAge is rule 1: the allow-list bypasses trust and honeymoon,
// never the float cap.
func (g *Gate) checkTrustAndAge(c Candidate, now time.Time) *domain.Rejection {
	if g.allowList[c.UserID] || (c.Profile != nil && c.Profile.AllowListed) {
		return nil
	}
	if c.Profile == nil || c.Profile.TrustScore < g.cfg.MinTrustScore {
		score := -1
		if c.Profile != nil {
			score = c.Profile.TrustScore
		}
		return &domain.Rejection{
			Code: domain.RejectTrustTooLow,
			Message: fmt.Sprintf("user %s trust score %d below minimum %d",
				c.UserID, score, g.cfg.MinTrustScore),
		}
	}
	if age := c.Profile.AccountAgeDays(now); age < g.cfg.HoneymoonDays {
		return &domain.Rejection{
			Code: domain.RejectAccountTooYoung,
			Message: fmt.Sprintf("user %s account age %dd below honeymoon %dd",
				c.UserID, age, g.cfg.HoneymoonDays),
		}
	}
	return nil
}

func (g *Gate) logRejection(c Candidate, rej *domain.Rejection) {
	g.events.Log(&domain.EventLog{
		Type:     "eligibility_rejected",
		Severity: domain.SeverityWarn,
		Message:  string(rej.Code),
		Detail:   fmt.Sprintf("candidate=%s user=%s amount=%d: %s", c.ID, c.UserID, c.AmountMinor, rej.Message),
	})
}
