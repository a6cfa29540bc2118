package ops

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/begintolern/linkmint-core/internal/domain"
	"github.com/begintolern/linkmint-core/internal/infrastructure/logger"
	"github.com/begintolern/linkmint-core/internal/infrastructure/metrics"
)

// LeaderLock is the datastore-mediated mutual exclusion for the watchdog.
// Only the holder runs an iteration; everyone else backs off to the next
// interval.
type LeaderLock interface {
	TryAcquire() (bool, error)
	Release() error
}

// HeartbeatMarker persists the once-per-UTC-day dedup marker. MarkSent
// returns true only for the first caller of a given day.
type HeartbeatMarker interface {
	MarkSent(day string) (bool, error)
}

// HealthPinger reports datastore reachability.
type HealthPinger interface {
	Ping() error
}

type Config struct {
	// ErrorThreshold is the recent ERROR-row count that counts as a spike.
	ErrorThreshold int64
	// ErrorWindow is how far back the error count looks.
	ErrorWindow time.Duration
	// SustainedTicks is how many consecutive spiking iterations trigger the
	// autonomous halt.
	SustainedTicks int
	// StuckTimeout ages out payout requests stuck in PENDING/PROCESSING.
	StuckTimeout time.Duration
	// LogRetention bounds how much operational history trimming keeps.
	LogRetention time.Duration
	// FloatLowWaterMinor is the reserve level below which the watchdog warns.
	FloatLowWaterMinor int64
	AlertTopic         string
}

type HealthSnapshot struct {
	DatastoreOK      bool  `json:"datastore_ok"`
	QueueDepth       int64 `json:"queue_depth"`
	RecentErrors     int64 `json:"recent_errors"`
	FloatMinor       int64 `json:"float_minor"`
	AutoDisbursement bool  `json:"auto_disbursement"`
}

// Watchdog is the leader-elected monitor. It owns no goroutines; the
// background scheduler calls Tick and the watchdog tolerates overlapping
// or duplicate invocations through the lock and idempotent writes.
type Watchdog struct {
	Lock        LeaderLock
	Pinger      HealthPinger
	Commissions domain.CommissionRepository
	Requests    domain.PayoutRequestRepository
	EventLogs   domain.EventLogRepository
	Tokens      domain.AuthTokenRepository
	Floats      domain.FloatRepository
	Settings    domain.Settings
	Marker      HeartbeatMarker
	Publisher   domain.PublisherPort
	Events      logger.EventLogger
	Metrics     *metrics.PayoutMetrics
	Cfg         Config
	Now         func() time.Time

	// consecutiveSpikes lives in memory only; leadership makes the single
	// writer assumption hold.
	consecutiveSpikes int
	// lowFloatWarned latches the low-water warning so a depleted reserve
	// alerts once, not every interval.
	lowFloatWarned bool
}

func NewWatchdog(
	lock LeaderLock,
	pinger HealthPinger,
	commissionRepo domain.CommissionRepository,
	requestRepo domain.PayoutRequestRepository,
	eventLogRepo domain.EventLogRepository,
	tokenRepo domain.AuthTokenRepository,
	floatRepo domain.FloatRepository,
	settings domain.Settings,
	marker HeartbeatMarker,
	publisher domain.PublisherPort,
	events logger.EventLogger,
	payoutMetrics *metrics.PayoutMetrics,
	cfg Config) *Watchdog {

	return &Watchdog{
		Lock:        lock,
		Pinger:      pinger,
		Commissions: commissionRepo,
		Requests:    requestRepo,
		EventLogs:   eventLogRepo,
		Tokens:      tokenRepo,
		Floats:      floatRepo,
		Settings:    settings,
		Marker:      marker,
		Publisher:   publisher,
		Events:      events,
		Metrics:     payoutMetrics,
		Cfg:         cfg,
		Now:         func() time.Time { return time.Now().UTC() },
	}
}

// Tick runs one watchdog iteration. The lock is released unconditionally,
// whatever the iteration did or failed to do.
func (w *Watchdog) Tick() error {
	acquired, err := w.Lock.TryAcquire()
	if err != nil {
		return fmt.Errorf("acquiring watchdog lock: %w", err)
	}
	if !acquired {
		return nil
	}
	defer func() {
		if err := w.Lock.Release(); err != nil {
			slog.Error("failed to release watchdog lock", "error", err.Error())
		}
	}()

	snapshot := w.Health()

	w.Metrics.SetQueueDepth(snapshot.QueueDepth)
	w.Metrics.SetFloatBalance(snapshot.FloatMinor)
	w.Metrics.SetAutoDisbursement(snapshot.AutoDisbursement)

	if snapshot.RecentErrors >= w.Cfg.ErrorThreshold {
		w.consecutiveSpikes++
	} else {
		w.consecutiveSpikes = 0
	}

	if w.consecutiveSpikes >= w.Cfg.SustainedTicks && snapshot.AutoDisbursement {
		if err := w.haltDisbursement(snapshot); err != nil {
			return err
		}
	}

	w.checkFloatLowWater(snapshot)
	w.emitHeartbeat(snapshot)
	return nil
}

func (w *Watchdog) checkFloatLowWater(snapshot HealthSnapshot) {
	if w.Cfg.FloatLowWaterMinor <= 0 {
		return
	}
	if snapshot.FloatMinor >= w.Cfg.FloatLowWaterMinor {
		w.lowFloatWarned = false
		return
	}
	if w.lowFloatWarned {
		return
	}
	w.lowFloatWarned = true
	w.Events.Log(&domain.EventLog{
		Type:     "float_low_water",
		Severity: domain.SeverityWarn,
		Message:  "disbursement float below low-water mark",
		Detail:   fmt.Sprintf("float=%d low_water=%d", snapshot.FloatMinor, w.Cfg.FloatLowWaterMinor),
	})
	w.alert("float_low_water", snapshot)
	slog.Warn("disbursement float below low-water mark",
		"float_minor", snapshot.FloatMinor,
		"low_water_minor", w.Cfg.FloatLowWaterMinor)
}

// Health gathers the current signal set. Never fails: unreachable
// dependencies degrade the snapshot instead.
func (w *Watchdog) Health() HealthSnapshot {
	snapshot := HealthSnapshot{DatastoreOK: w.Pinger.Ping() == nil}

	if approved, err := w.Commissions.CountByStatus(domain.CommissionApproved); err == nil {
		snapshot.QueueDepth += approved
	}
	if pending, err := w.Requests.CountByStatus(domain.PayoutPending); err == nil {
		snapshot.QueueDepth += pending
	}
	if errs, err := w.EventLogs.CountSince(domain.SeverityError, w.Now().Add(-w.Cfg.ErrorWindow)); err == nil {
		snapshot.RecentErrors = errs
	}
	if balance, err := w.Floats.Get(); err == nil {
		snapshot.FloatMinor = balance.BalanceMinor
	}
	if enabled, err := w.Settings.GetBool(domain.SettingAutoDisbursement, true); err == nil {
		snapshot.AutoDisbursement = enabled
	}
	return snapshot
}

func (w *Watchdog) haltDisbursement(snapshot HealthSnapshot) error {
	if err := w.Settings.SetBool(domain.SettingAutoDisbursement, false); err != nil {
		return fmt.Errorf("disabling auto-disbursement: %w", err)
	}
	w.consecutiveSpikes = 0
	w.Metrics.RecordWatchdogHalt()
	w.Metrics.SetAutoDisbursement(false)
	w.Events.Log(&domain.EventLog{
		Type:     "auto_disbursement_halted",
		Severity: domain.SeverityError,
		Message:  "watchdog disabled auto-disbursement after sustained error spike",
		Detail:   fmt.Sprintf("recent_errors=%d threshold=%d", snapshot.RecentErrors, w.Cfg.ErrorThreshold),
	})
	w.alert("auto_disbursement_halted", snapshot)
	slog.Error("watchdog halted auto-disbursement",
		"recent_errors", snapshot.RecentErrors,
		"threshold", w.Cfg.ErrorThreshold)
	return nil
}

// emitHeartbeat publishes the daily proof-of-life, deduplicated through
// the persisted marker so restarts and overlapping leaders send one per
// UTC day at most.
func (w *Watchdog) emitHeartbeat(snapshot HealthSnapshot) {
	day := w.Now().Format("2006-01-02")
	first, err := w.Marker.MarkSent(day)
	if err != nil {
		slog.Error("heartbeat marker check failed", "error", err.Error())
		return
	}
	if !first {
		return
	}
	w.Metrics.RecordHeartbeat()
	w.Events.Log(&domain.EventLog{
		Type:     "ops_heartbeat",
		Severity: domain.SeverityInfo,
		Message:  "daily heartbeat",
		Detail:   fmt.Sprintf("day=%s queue_depth=%d float=%d", day, snapshot.QueueDepth, snapshot.FloatMinor),
	})
	w.alert("heartbeat", snapshot)
}

type alertEvent struct {
	Kind     string         `json:"kind"`
	At       time.Time      `json:"at"`
	Snapshot HealthSnapshot `json:"snapshot"`
}

func (w *Watchdog) alert(kind string, snapshot HealthSnapshot) {
	if w.Publisher == nil {
		return
	}
	value, err := json.Marshal(alertEvent{Kind: kind, At: w.Now(), Snapshot: snapshot})
	if err != nil {
		slog.Error("failed to marshal ops alert", "error", err.Error())
		return
	}
	if err := w.Publisher.Publish(w.Cfg.AlertTopic, domain.Message{Key: []byte(kind), Value: value}); err != nil {
		slog.Error("failed to publish ops alert", "kind", kind, "error", err.Error())
	}
}
