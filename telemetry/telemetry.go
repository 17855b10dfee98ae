// FILE: telemetry/telemetry.go
// Package telemetry – Prometheus metrics for the decision kernel.
//
// Exposes these counters/gauges through small setter functions (no package
// in this module calls the setters or imports this package):
//   • kernel_throttle_decisions_total{level}   – C5 throttle outcomes
//   • kernel_kill_switch_trips_total{reason}   – C6 FSM triggers
//   • kernel_flatten_runs_total{result}        – C8 executor outcomes
//   • kernel_margin_tier{account}              – C4 current margin tier rank (gauge)
//   • kernel_hft_flags_total                   – C5 accounts newly flagged HFT
//   • kernel_report_exports_total{format}      – C11 report export calls
//
// These are registered in init() and served by whatever HTTP handler the
// host binary wires up at /metrics (promhttp.Handler()).
package telemetry

import "github.com/prometheus/client_golang/prometheus"

var (
	throttleDecisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kernel_throttle_decisions_total",
			Help: "Compliance throttle decisions by level",
		},
		[]string{"level"},
	)

	killSwitchTrips = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kernel_kill_switch_trips_total",
			Help: "Kill-switch FSM triggers by reason",
		},
		[]string{"reason"},
	)

	flattenRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kernel_flatten_runs_total",
			Help: "Flatten executor runs by result (completed|aborted|skipped)",
		},
		[]string{"result"},
	)

	marginTier = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "kernel_margin_tier",
			Help: "Current margin tier rank per account (0=SAFE .. 4=CRITICAL)",
		},
		[]string{"account"},
	)

	hftFlags = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "kernel_hft_flags_total",
			Help: "Accounts newly latched into the HFT set",
		},
	)

	reportExports = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kernel_report_exports_total",
			Help: "Regulatory report exports by format",
		},
		[]string{"format"},
	)
)

func init() {
	prometheus.MustRegister(throttleDecisions)
	prometheus.MustRegister(killSwitchTrips)
	prometheus.MustRegister(flattenRuns)
	prometheus.MustRegister(marginTier)
	prometheus.MustRegister(hftFlags)
	prometheus.MustRegister(reportExports)
}

// IncThrottleDecision records one throttle decision at the given level
// (e.g. "ALLOW", "WARN", "DELAY", "REJECT", "BLOCK").
func IncThrottleDecision(level string) { throttleDecisions.WithLabelValues(level).Inc() }

// IncKillSwitchTrip records one kill-switch trigger with its dominant reason.
func IncKillSwitchTrip(reason string) { killSwitchTrips.WithLabelValues(reason).Inc() }

// IncFlattenRun records one flatten-executor outcome.
func IncFlattenRun(result string) { flattenRuns.WithLabelValues(result).Inc() }

// SetMarginTier publishes the current margin tier rank for an account.
func SetMarginTier(account string, rank int) { marginTier.WithLabelValues(account).Set(float64(rank)) }

// IncHFTFlagged records one account newly latched into the HFT set.
func IncHFTFlagged() { hftFlags.Inc() }

// IncReportExport records one report export in the given format.
func IncReportExport(format string) { reportExports.WithLabelValues(format).Inc() }
