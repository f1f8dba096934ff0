package metrics

import (
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var stateBytes atomic.Int64

var (
	GateApplications = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lightning_gate_applications_total",
		Help: "Total number of gate, generator and matrix applications",
	}, []string{"gate", "kernel"})

	KernelDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "lightning_kernel_duration_seconds",
		Help:    "Histogram of kernel execution times",
		Buckets: prometheus.ExponentialBuckets(1e-7, 4, 12),
	}, []string{"kernel"})

	ValidationErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lightning_validation_errors_total",
		Help: "Total number of rejected operations",
	}, []string{"operation", "error_type"})

	StateVectorBytes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "lightning_state_vector_bytes",
		Help: "Bytes currently held by live state vectors",
	})

	AdjointDuration = promauto.NewSummary(prometheus.SummaryOpts{
		Name: "lightning_adjoint_duration_seconds",
		Help: "Duration of adjoint Jacobian computations",
	})

	AdjointJacobianEntries = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "lightning_adjoint_jacobian_entries",
		Help:    "Number of entries (observables x trainable parameters) per Jacobian",
		Buckets: prometheus.ExponentialBuckets(1, 4, 8),
	})

	NumericalInstability = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lightning_numerical_instability_total",
		Help: "Total number of NaN/Inf values detected",
	}, []string{"source", "type"})

	ExportedRecords = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lightning_exported_records_total",
		Help: "Arrow records exported, by kind",
	}, []string{"kind"})
)

func RecordGateApplication(gate, kernel string, duration time.Duration) {
	GateApplications.WithLabelValues(gate, kernel).Inc()
	KernelDuration.WithLabelValues(kernel).Observe(duration.Seconds())
}

func RecordValidationError(operation, errorType string) {
	ValidationErrors.WithLabelValues(operation, errorType).Inc()
}

// RecordStateAlloc adjusts the live state-vector byte count by delta.
func RecordStateAlloc(delta int64) {
	StateVectorBytes.Set(float64(stateBytes.Add(delta)))
}

// StateBytes returns the live state-vector byte count.
func StateBytes() int64 {
	return stateBytes.Load()
}

func RecordAdjoint(observables, params int, duration time.Duration) {
	AdjointDuration.Observe(duration.Seconds())
	AdjointJacobianEntries.Observe(float64(observables * params))
}

func RecordNumericalInstability(source string, nanCount, infCount int) {
	if nanCount > 0 {
		NumericalInstability.WithLabelValues(source, "nan").Add(float64(nanCount))
	}
	if infCount > 0 {
		NumericalInstability.WithLabelValues(source, "inf").Add(float64(infCount))
	}
}

func RecordExport(kind string, records int) {
	ExportedRecords.WithLabelValues(kind).Add(float64(records))
}
