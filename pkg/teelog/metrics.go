// Copyright 2026 Outreach Corporation. All Rights Reserved.

// Description: Prometheus metrics for sessions and supervised runs.

package teelog

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the counters teelog reports. A nil *Metrics reports
// nothing.
type Metrics struct {
	linesTotal     *prometheus.CounterVec
	rotationsTotal prometheus.Counter
	sweptTotal     prometheus.Counter
	failuresTotal  prometheus.Counter
}

// NewMetrics registers the teelog counters with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		linesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "teelog_lines_written_total",
			Help: "Lines appended to log files, by stream",
		}, []string{"stream"}),
		rotationsTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "teelog_rotations_total",
			Help: "Log files opened because the day changed",
		}),
		sweptTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "teelog_swept_files_total",
			Help: "Log files removed by the retention sweep",
		}),
		failuresTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "teelog_sink_failures_total",
			Help: "Times file logging was disabled after an error",
		}),
	}
}

func (m *Metrics) linesWritten(stream string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.linesTotal.WithLabelValues(stream).Add(float64(n))
}

func (m *Metrics) rotated() {
	if m == nil {
		return
	}
	m.rotationsTotal.Inc()
}

func (m *Metrics) swept() {
	if m == nil {
		return
	}
	m.sweptTotal.Inc()
}

func (m *Metrics) sinkFailed() {
	if m == nil {
		return
	}
	m.failuresTotal.Inc()
}
