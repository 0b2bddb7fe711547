package events

import "github.com/kilianp07/gridmon/core/model"

// AnomalyEvent is published when an anomaly is stored or its status changes.
// Source is "detector", "simulation" or "operator".
type AnomalyEvent struct {
	Anomaly model.Anomaly
	Source  string
}

// MonitoringEvent is published when anomaly analysis is toggled.
type MonitoringEvent struct {
	Active bool
}
