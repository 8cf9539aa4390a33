package collector

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"dockstats/internal/models"
)

const namespace = "dockstats"

// Instrumentation holds the exporter's own metrics, served apart from the
// container metrics.
type Instrumentation struct {
	scrapes    *prometheus.CounterVec
	duration   prometheus.Histogram
	containers prometheus.Gauge
}

func NewInstrumentation(reg prometheus.Registerer) *Instrumentation {
	i := &Instrumentation{
		scrapes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scrapes_total",
			Help:      "Scrapes served, by result (ok or the failing stage).",
		}, []string{"result"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "scrape_duration_seconds",
			Help:      "Time spent reading the runtime and rendering metrics.",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}),
		containers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "scrape_containers",
			Help:      "Containers reported by the last successful scrape.",
		}),
	}
	reg.MustRegister(i.scrapes, i.duration, i.containers)
	return i
}

func (i *Instrumentation) observe(rec models.ScrapeRecord, elapsed time.Duration) {
	if i == nil {
		return
	}
	result := models.OutcomeOK
	if rec.Outcome != models.OutcomeOK {
		result = rec.Stage
	}
	i.scrapes.WithLabelValues(result).Inc()
	i.duration.Observe(elapsed.Seconds())
	if rec.Outcome == models.OutcomeOK {
		i.containers.Set(float64(rec.Containers))
	}
}
