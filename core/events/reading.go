package events

import "github.com/kilianp07/gridmon/core/model"

// ReadingEvent is published for each ingested reading.
type ReadingEvent struct {
	Reading  model.SensorData
	ObjectID string
}
