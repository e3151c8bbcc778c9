package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/phyten/sigloc/internal/model"
)

// metrics はサーバごとのレジストリに登録します。テストで複数のサーバを作っても衝突しません。
type metrics struct {
	requests *prometheus.CounterVec
	lines    *prometheus.CounterVec
	duration prometheus.Histogram
	scans    *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	f := promauto.With(reg)
	return &metrics{
		// classify requests by language and outcome
		requests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sigloc_classify_requests_total",
				Help: "Total classify requests by language and status",
			},
			[]string{"lang", "status"},
		),
		lines: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sigloc_classified_lines_total",
				Help: "Total classified lines by kind",
			},
			[]string{"kind"},
		),
		duration: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "sigloc_classify_duration_seconds",
				Help:    "Time spent classifying a single snippet",
				Buckets: prometheus.ExponentialBuckets(0.00005, 4, 8),
			},
		),
		scans: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sigloc_scan_requests_total",
				Help: "Total directory scans by status",
			},
			[]string{"status"},
		),
	}
}

func (m *metrics) recordRequest(lang, status string) {
	if lang == "" {
		lang = "unknown"
	}
	m.requests.WithLabelValues(lang, status).Inc()
}

func (m *metrics) recordCounts(c model.Counts) {
	m.lines.WithLabelValues(string(model.LineCode)).Add(float64(c.Code))
	m.lines.WithLabelValues(string(model.LineComment)).Add(float64(c.Comment))
	m.lines.WithLabelValues(string(model.LineBlank)).Add(float64(c.Blank))
}
