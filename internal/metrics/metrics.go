// Package metrics exposes Prometheus instrumentation for a proving run, so
// operators can watch scan progress on long-running jobs.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// BatchesScanned counts label batches the prover has processed.
	BatchesScanned = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "postprove",
		Name:      "batches_scanned_total",
		Help:      "Number of label batches scanned across all nonce ranges.",
	})

	// NonceRangesEscalated counts how many times the orchestrator has
	// widened the nonce range after an unsuccessful iteration.
	NonceRangesEscalated = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "postprove",
		Name:      "nonce_ranges_escalated_total",
		Help:      "Number of nonce-range escalations performed without finding a proof.",
	})

	// LabelsPassedMSB counts labels that passed the MSB difficulty filter.
	LabelsPassedMSB = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "postprove",
		Name:      "labels_passed_msb_total",
		Help:      "Number of (nonce, label) pairs passing the MSB difficulty filter.",
	})

	// LabelsPassedLSB counts labels that additionally passed the LSB
	// tiebreak after an MSB tie.
	LabelsPassedLSB = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "postprove",
		Name:      "labels_passed_lsb_total",
		Help:      "Number of (nonce, label) pairs passing the LSB tiebreak after an MSB tie.",
	})

	// CurrentNonceRangeStart reports the start of the nonce range currently
	// being scanned.
	CurrentNonceRangeStart = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "postprove",
		Name:      "current_nonce_range_start",
		Help:      "Start of the nonce range currently being scanned.",
	})
)

// Registry is the collector registry proving runs publish to. Kept separate
// from prometheus.DefaultRegisterer so embedding this package in a larger
// binary doesn't collide with unrelated metrics.
var Registry = prometheus.NewRegistry()

func init() {
	Registry.MustRegister(
		BatchesScanned,
		NonceRangesEscalated,
		LabelsPassedMSB,
		LabelsPassedLSB,
		CurrentNonceRangeStart,
	)
}
