package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PayoutMetrics aggregates all commission/payout instrumentation.
type PayoutMetrics struct {
	CommissionsCreatedTotal       prometheus.CounterVec
	CommissionsCreatedAmountTotal prometheus.CounterVec
	CommissionsApprovedTotal      prometheus.Counter
	CommissionsPaidTotal          prometheus.CounterVec
	AttributionRejectedTotal      prometheus.CounterVec

	PayoutRequestsTotal          prometheus.CounterVec
	EligibilityRejectionsTotal   prometheus.CounterVec
	DisbursementBatchesTotal     prometheus.CounterVec
	DisbursementDuration         prometheus.HistogramVec
	DisbursedAmountTotal         prometheus.CounterVec
	SenderErrorsTotal            prometheus.Counter

	FloatBalanceGauge        prometheus.Gauge
	AutoDisbursementGauge    prometheus.Gauge
	PendingQueueDepthGauge   prometheus.Gauge
	WatchdogHaltsTotal       prometheus.Counter
	HeartbeatsSentTotal      prometheus.Counter
}

func NewPayoutMetrics() *PayoutMetrics {
	return &PayoutMetrics{
		CommissionsCreatedTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "commissions_created_total",
				Help: "Commissions written to the ledger",
			},
			[]string{"type", "currency"},
		),

		CommissionsCreatedAmountTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "commissions_created_amount_total",
				Help: "Total commission amount created, minor units",
			},
			[]string{"type", "currency"},
		),

		CommissionsApprovedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "commissions_approved_total",
				Help: "Commissions cleared for disbursement",
			},
		),

		CommissionsPaidTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "commissions_paid_total",
				Help: "Commissions flipped to PAID",
			},
			[]string{"path"},
		),

		AttributionRejectedTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "attribution_rejected_total",
				Help: "Order events rejected by the split calculator",
			},
			[]string{"code"},
		),

		PayoutRequestsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payout_requests_total",
				Help: "Payout requests by terminal disposition",
			},
			[]string{"status"},
		),

		EligibilityRejectionsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "eligibility_rejections_total",
				Help: "Payout attempts blocked by the eligibility gate",
			},
			[]string{"code"},
		),

		DisbursementBatchesTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "disbursement_batches_total",
				Help: "Batch runner invocations by outcome",
			},
			[]string{"outcome"},
		),

		DisbursementDuration: *promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "disbursement_batch_duration_seconds",
				Help:    "Wall time of a disbursement batch",
				Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
			},
			[]string{"dry_run"},
		),

		DisbursedAmountTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "disbursed_amount_total",
				Help: "Amount sent out, minor units",
			},
			[]string{"kind", "currency"},
		),

		SenderErrorsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "sender_errors_total",
				Help: "External sender call failures",
			},
		),

		FloatBalanceGauge: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "float_balance_minor",
				Help: "Current platform reserve, minor units",
			},
		),

		AutoDisbursementGauge: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "auto_disbursement_enabled",
				Help: "1 when the scheduler may disburse, 0 when halted",
			},
		),

		PendingQueueDepthGauge: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "pending_payout_queue_depth",
				Help: "Approved-unpaid commissions plus pending requests",
			},
		),

		WatchdogHaltsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "watchdog_halts_total",
				Help: "Times the watchdog disabled auto-disbursement",
			},
		),

		HeartbeatsSentTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "watchdog_heartbeats_sent_total",
				Help: "Daily heartbeats emitted",
			},
		),
	}
}

func (m *PayoutMetrics) RecordCommissionCreated(typ, currency string, amountMinor int64) {
	m.CommissionsCreatedTotal.WithLabelValues(typ, currency).Inc()
	m.CommissionsCreatedAmountTotal.WithLabelValues(typ, currency).Add(float64(amountMinor))
}

func (m *PayoutMetrics) RecordCommissionApproved() {
	m.CommissionsApprovedTotal.Inc()
}

func (m *PayoutMetrics) RecordCommissionPaid(path string) {
	m.CommissionsPaidTotal.WithLabelValues(path).Inc()
}

func (m *PayoutMetrics) RecordAttributionRejected(code string) {
	m.AttributionRejectedTotal.WithLabelValues(code).Inc()
}

func (m *PayoutMetrics) RecordPayoutRequest(status string) {
	m.PayoutRequestsTotal.WithLabelValues(status).Inc()
}

func (m *PayoutMetrics) RecordEligibilityRejection(code string) {
	m.EligibilityRejectionsTotal.WithLabelValues(code).Inc()
}

func (m *PayoutMetrics) RecordBatch(outcome string, dryRun bool, durationSeconds float64) {
	m.DisbursementBatchesTotal.WithLabelValues(outcome).Inc()
	dr := "false"
	if dryRun {
		dr = "true"
	}
	m.DisbursementDuration.WithLabelValues(dr).Observe(durationSeconds)
}

func (m *PayoutMetrics) RecordDisbursed(kind, currency string, amountMinor int64) {
	m.DisbursedAmountTotal.WithLabelValues(kind, currency).Add(float64(amountMinor))
}

func (m *PayoutMetrics) RecordSenderError() {
	m.SenderErrorsTotal.Inc()
}

func (m *PayoutMetrics) SetFloatBalance(minor int64) {
	m.FloatBalanceGauge.Set(float64(minor))
}

func (m *PayoutMetrics) SetAutoDisbursement(enabled bool) {
	if enabled {
		m.AutoDisbursementGauge.Set(1)
	} else {
		m.AutoDisbursementGauge.Set(0)
	}
}

func (m *PayoutMetrics) SetQueueDepth(depth int64) {
	m.PendingQueueDepthGauge.Set(float64(depth))
}

func (m *PayoutMetrics) RecordWatchdogHalt() {
	m.WatchdogHaltsTotal.Inc()
}

func (m *PayoutMetrics) RecordHeartbeat() {
	m.HeartbeatsSentTotal.Inc()
}
