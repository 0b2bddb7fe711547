// Package events defines the grid events emitted on the event bus.
//
// Available event types:
//   - ReadingEvent: a sensor reading was ingested
//   - AnomalyEvent: an anomaly was stored or changed status
//   - CommandEvent: an operator command was executed or undone
//   - MonitoringEvent: anomaly analysis was switched on or off
package events
