package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

type LedgerMetrics struct {
	transitions   *prometheus.CounterVec
	auditFailures *prometheus.CounterVec
	replays       prometheus.Counter
	snapshotRows  *prometheus.GaugeVec
	snapshotRuns  *prometheus.CounterVec
}

var (
	ledgerOnce     sync.Once
	ledgerRegistry *LedgerMetrics
)

// Ledger returns the process-wide collectors, registering them on first use.
func Ledger() *LedgerMetrics {
	ledgerOnce.Do(func() {
		ledgerRegistry = &LedgerMetrics{
			transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "ledger_transitions_total",
				Help: "Loan lifecycle operations by action and outcome.",
			}, []string{"action", "outcome"}),
			auditFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "ledger_audit_failures_total",
				Help: "Audit rows that could not be written, by entity type.",
			}, []string{"entity"}),
			replays: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "ledger_idempotent_replays_total",
				Help: "Repayments answered from an earlier write with the same idempotency key.",
			}),
			snapshotRows: prometheus.NewGaugeVec(prometheus.GaugeOpts{
				Name: "ledger_exposure_snapshot_rows",
				Help: "Rows written by the most recent exposure snapshot run, by granularity.",
			}, []string{"granularity"}),
			snapshotRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "ledger_exposure_snapshot_runs_total",
				Help: "Exposure snapshot runs by outcome.",
			}, []string{"outcome"}),
		}
		prometheus.MustRegister(
			ledgerRegistry.transitions,
			ledgerRegistry.auditFailures,
			ledgerRegistry.replays,
			ledgerRegistry.snapshotRows,
			ledgerRegistry.snapshotRuns,
		)
	})
	return ledgerRegistry
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (m *LedgerMetrics) ObserveTransition(action string, err error) {
	if m == nil {
		return
	}
	if action == "" {
		action = "unknown"
	}
	m.transitions.WithLabelValues(action, outcome(err)).Inc()
}

func (m *LedgerMetrics) ObserveAuditFailure(entity string) {
	if m == nil {
		return
	}
	if entity == "" {
		entity = "unknown"
	}
	m.auditFailures.WithLabelValues(entity).Inc()
}

func (m *LedgerMetrics) ObserveReplay() {
	if m == nil {
		return
	}
	m.replays.Inc()
}

func (m *LedgerMetrics) SetSnapshotRows(granularity string, n int) {
	if m == nil {
		return
	}
	m.snapshotRows.WithLabelValues(granularity).Set(float64(n))
}

func (m *LedgerMetrics) ObserveSnapshotRun(err error) {
	if m == nil {
		return
	}
	m.snapshotRuns.WithLabelValues(outcome(err)).Inc()
}
