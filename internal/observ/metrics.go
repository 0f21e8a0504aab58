package observ

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "perlsense"

// Metrics exports workspace and index activity to Prometheus. It satisfies
// workspace.Metrics.
type Metrics struct {
	filesIndexed   prometheus.Counter
	symbolsIndexed prometheus.Counter
	indexSymbols   prometheus.Gauge
	parseSeconds   prometheus.Histogram
	reparses       *prometheus.CounterVec
}

// NewMetrics registers the collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		filesIndexed: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "index",
			Name:      "files_total",
			Help:      "Files whose symbols were (re)indexed",
		}),
		symbolsIndexed: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "index",
			Name:      "symbols_indexed_total",
			Help:      "Symbols written to the index, counting replacements",
		}),
		indexSymbols: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "index",
			Name:      "symbols",
			Help:      "Symbols currently in the index",
		}),
		parseSeconds: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "parser",
			Name:      "parse_seconds",
			Help:      "Full parse plus symbol extraction time per file",
			Buckets:   []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 1},
		}),
		reparses: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "parser",
			Name:      "reparses_total",
			Help:      "Incremental reparses by mode (fast, region, full)",
		}, []string{"mode"}),
	}
}

func (m *Metrics) FileIndexed(symbols int) {
	m.filesIndexed.Inc()
	m.symbolsIndexed.Add(float64(symbols))
}

func (m *Metrics) IndexSize(symbols int) { m.indexSymbols.Set(float64(symbols)) }

func (m *Metrics) ParseDone(d time.Duration) { m.parseSeconds.Observe(d.Seconds()) }

func (m *Metrics) Reparsed(mode string) { m.reparses.WithLabelValues(mode).Inc() }

// Handler serves the metrics gathered by g in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
