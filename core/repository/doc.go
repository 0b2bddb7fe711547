// Package repository is the single in-memory source of truth for network
// objects, sensor readings, anomalies, recommendations, forecasts and reports.
//
// Every collection is guarded by its own lock so the simulation driver and
// operator actions can write concurrently without lost updates. Reads return
// copies and observe the state committed at call time. Collections are
// append-only apart from the explicit status and load mutation points.
package repository
