package metrics

import (
	"errors"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// HistogramBuckets are latency buckets in milliseconds. Desk calls are
// expected well under a second; Square round trips can take several.
var HistogramBuckets = []float64{
	10, 25, 50, 100, 200, 300, 500,
	750, 1000, 1500, 2000, 3000, 5000,
	10000, 20000, 30000,
}

// Metric describes one collector. Type is one of counter_vec,
// histogram_vec or summary_vec.
type Metric struct {
	ID          string
	Name        string
	Description string
	Type        string
	Args        []string
}

// NewMetric builds the collector for m. It panics on an unknown Type, which
// only happens with a bad definition in this package.
func NewMetric(m *Metric, subsystem string) prometheus.Collector {
	switch m.Type {
	case "counter_vec":
		return prometheus.NewCounterVec(prometheus.CounterOpts{
			Subsystem: subsystem,
			Name:      m.Name,
			Help:      m.Description,
		}, m.Args)
	case "histogram_vec":
		return prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Subsystem: subsystem,
			Name:      m.Name,
			Help:      m.Description,
			Buckets:   HistogramBuckets,
		}, m.Args)
	case "summary_vec":
		return prometheus.NewSummaryVec(prometheus.SummaryOpts{
			Subsystem: subsystem,
			Name:      m.Name,
			Help:      m.Description,
		}, m.Args)
	}
	panic("metrics: unknown metric type " + m.Type)
}

var MetricsBusinessProcess = &Metric{
	ID:          "bpDur",
	Name:        "bp_dur",
	Description: "process latency in milliseconds",
	Type:        "histogram_vec",
	Args:        []string{"type", "subtype"},
}

var MetricsCheckinOutcome = &Metric{
	ID:          "checkinOutcome",
	Name:        "checkin_total",
	Description: "Check-in attempts, partitioned by outcome.",
	Type:        "counter_vec",
	Args:        []string{"outcome"},
}

var MetricsWebhookOutcome = &Metric{
	ID:          "webhookOutcome",
	Name:        "webhook_total",
	Description: "Payment webhook deliveries, partitioned by event type and result.",
	Type:        "counter_vec",
	Args:        []string{"type", "result"},
}

const Subsystem = "frontdesk"

var (
	bpDur          = NewMetric(MetricsBusinessProcess, Subsystem).(*prometheus.HistogramVec)
	checkinOutcome = NewMetric(MetricsCheckinOutcome, Subsystem).(*prometheus.CounterVec)
	webhookOutcome = NewMetric(MetricsWebhookOutcome, Subsystem).(*prometheus.CounterVec)

	registerOnce sync.Once
)

// RegisterBusinessMetrics adds the domain collectors to reg. Calling it more
// than once is a no-op. Unregistered collectors still count, so services can
// be exercised without a registry.
func RegisterBusinessMetrics(reg prometheus.Registerer) error {
	var err error
	registerOnce.Do(func() {
		for _, c := range []prometheus.Collector{bpDur, checkinOutcome, webhookOutcome} {
			if e := reg.Register(c); e != nil {
				var are prometheus.AlreadyRegisteredError
				if !errors.As(e, &are) {
					err = e
					return
				}
			}
		}
	})
	return err
}

func ObserveCheckin(outcome string) {
	checkinOutcome.WithLabelValues(outcome).Inc()
}

func ObserveWebhook(eventType, result string) {
	if eventType == "" {
		eventType = "unknown"
	}
	webhookOutcome.WithLabelValues(eventType, result).Inc()
}

// ObserveProcess records the latency of a business process step.
func ObserveProcess(typ, subtype string, start time.Time) {
	bpDur.WithLabelValues(typ, subtype).Observe(MillisecondsSince(start))
}
