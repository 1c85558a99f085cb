package events

import (
	"context"
	"time"
)

// Event types
const (
	TypeDatasetReloaded = "dataset.reloaded"
)

// Event announces a change of the served dataset
type Event struct {
	Type        string    `json:"type"`
	Version     string    `json:"version"`
	Generation  int       `json:"generation"`
	Seed        int64     `json:"seed"`
	Markets     int       `json:"markets"`
	GeneratedAt time.Time `json:"generatedAt"`
}

// Bus fans dataset events out to subscribers
type Bus interface {
	// Publish delivers an event to all current subscribers
	Publish(ctx context.Context, event Event) error

	// Subscribe returns a channel of events that is closed once ctx is done
	Subscribe(ctx context.Context) (<-chan Event, error)

	// HealthCheck verifies the bus is usable
	HealthCheck(ctx context.Context) error

	Close() error
}
