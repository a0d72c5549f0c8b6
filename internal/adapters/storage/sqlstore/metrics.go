package sqlstore

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jsamuelsen/contentslots/internal/domain"
)

// Outcome label values.
const (
	outcomeOK        = "ok"
	outcomeDuplicate = "duplicate"
	outcomeError     = "error"
)

// Option mutation kinds.
const (
	mutationInsert = "insert"
	mutationUpdate = "update"
	mutationDelete = "delete"
)

// Metrics holds the store's Prometheus collectors. A nil *Metrics is a no-op.
type Metrics struct {
	operationDuration *prometheus.HistogramVec
	optionMutations   *prometheus.CounterVec
	acquireFailures   *prometheus.CounterVec
}

// NewMetrics creates the store collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		operationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "contentslots",
			Subsystem: "store",
			Name:      "operation_duration_seconds",
			Help:      "Duration of content slot store operations, connection acquisition included.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation", "outcome"}),
		optionMutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "contentslots",
			Subsystem: "store",
			Name:      "option_mutations_total",
			Help:      "Option rows inserted, updated or deleted by reconciliation. Updates count only affected rows.",
		}, []string{"kind"}),
		acquireFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "contentslots",
			Subsystem: "store",
			Name:      "acquire_failures_total",
			Help:      "Connection acquisitions that failed, by diagnostic code.",
		}, []string{"code"}),
	}

	for _, c := range []prometheus.Collector{m.operationDuration, m.optionMutations, m.acquireFailures} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

func (m *Metrics) observe(op string, err error, elapsed time.Duration) {
	if m == nil {
		return
	}

	outcome := outcomeOK

	switch {
	case err == nil:
	case domain.IsDuplicateEntry(err):
		outcome = outcomeDuplicate
	default:
		outcome = outcomeError
	}

	m.operationDuration.WithLabelValues(op, outcome).Observe(elapsed.Seconds())
}

func (m *Metrics) mutation(kind string) {
	if m == nil {
		return
	}

	m.optionMutations.WithLabelValues(kind).Inc()
}

func (m *Metrics) acquireFailed(err error) {
	if m == nil {
		return
	}

	code := CodeUnknown

	var storageErr *domain.StorageError
	if errors.As(err, &storageErr) && storageErr.Code != "" {
		code = storageErr.Code
	}

	m.acquireFailures.WithLabelValues(code).Inc()
}
