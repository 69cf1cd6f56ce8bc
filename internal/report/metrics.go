package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/leaderreps/testcenter/internal/testparser"
)

// MetricsNamespace prefixes every exported metric.
const MetricsNamespace = "testcenter"

// RunMetrics holds the gauges describing one run. Each RunMetrics has its
// own registry, so exporting never touches the global default registry.
type RunMetrics struct {
	registry *prometheus.Registry

	tests     *prometheus.GaugeVec
	passRate  *prometheus.GaugeVec
	duration  *prometheus.GaugeVec
	timestamp *prometheus.GaugeVec
}

// NewRunMetrics creates and registers the run gauges.
func NewRunMetrics() *RunMetrics {
	m := &RunMetrics{
		registry: prometheus.NewRegistry(),
		tests: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: MetricsNamespace,
			Name:      "tests",
			Help:      "Number of tests in the last run by status",
		}, []string{"env", "status"}),
		passRate: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: MetricsNamespace,
			Name:      "pass_rate_percent",
			Help:      "Percentage of passed tests in the last run",
		}, []string{"env"}),
		duration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: MetricsNamespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of the last run as reported by the runner",
		}, []string{"env"}),
		timestamp: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: MetricsNamespace,
			Name:      "run_timestamp_seconds",
			Help:      "Unix time the last run was parsed",
		}, []string{"env"}),
	}
	m.registry.MustRegister(m.tests, m.passRate, m.duration, m.timestamp)
	return m
}

// Registry returns the registry holding the run gauges.
func (m *RunMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// Observe sets the gauges from res.
func (m *RunMetrics) Observe(res *testparser.RunResult, env string) {
	m.tests.WithLabelValues(env, string(testparser.StatusPassed)).Set(float64(res.Summary.Passed))
	m.tests.WithLabelValues(env, string(testparser.StatusFailed)).Set(float64(res.Summary.Failed))
	m.tests.WithLabelValues(env, string(testparser.StatusSkipped)).Set(float64(res.Summary.Skipped))
	m.tests.WithLabelValues(env, "total").Set(float64(res.Summary.Total))
	m.passRate.WithLabelValues(env).Set(float64(res.PassRate()))
	if d, ok := ParseDuration(res.Duration); ok {
		m.duration.WithLabelValues(env).Set(d.Seconds())
	}
	if !res.Timestamp.IsZero() {
		m.timestamp.WithLabelValues(env).Set(float64(res.Timestamp.UnixMilli()) / 1000)
	}
}

// WriteTextfile writes the gauges in the Prometheus text format, for the
// node_exporter textfile collector. The file is replaced atomically.
func (m *RunMetrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics to %s: %w", path, err)
	}
	return nil
}

// WriteMetrics observes res and writes it to path.
func WriteMetrics(path string, res *testparser.RunResult, env string) error {
	m := NewRunMetrics()
	m.Observe(res, env)
	return m.WriteTextfile(path)
}

// ParseDuration parses a runner duration such as "850ms", "42.9s",
// "1.5m" or "2m 5s".
func ParseDuration(s string) (time.Duration, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), " ", "")
	if s == "" {
		return 0, false
	}
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return 0, false
	}
	return d, true
}
