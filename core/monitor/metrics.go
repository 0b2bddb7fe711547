package monitor

import "github.com/prometheus/client_golang/prometheus"

var (
	detectionLatency *prometheus.HistogramVec
	monitoringActive prometheus.Gauge
	ingestedReadings *prometheus.CounterVec
)

func newCollectors() (*prometheus.HistogramVec, prometheus.Gauge, *prometheus.CounterVec) {
	lat := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gridmon_detection_duration_seconds",
			Help:    "Time spent fetching history and running the anomaly strategy",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		},
		[]string{"sensor_kind"},
	)
	active := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "gridmon_monitoring_active",
		Help: "1 when anomaly analysis is enabled",
	})
	ingested := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gridmon_ingested_readings_total",
			Help: "Number of sensor readings ingested",
		},
		[]string{"sensor_kind"},
	)
	return lat, active, ingested
}

func init() {
	detectionLatency, monitoringActive, ingestedReadings = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers monitor metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(detectionLatency, monitoringActive, ingestedReadings)
}

// ResetMetrics reinitializes the collectors for tests and registers them on
// reg when not nil.
func ResetMetrics(reg prometheus.Registerer) {
	detectionLatency, monitoringActive, ingestedReadings = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}
