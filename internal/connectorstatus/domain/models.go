// Package domain contains connector runtime state derived from the
// processor.run.status.running metric stream.
package domain

import (
	"context"
	"time"
)

// State is the reported run state of a connector.
type State string

const (
	StateRunning State = "RUNNING"
	StateStopped State = "STOPPED"
	StateUnknown State = "UNKNOWN"
)

// Lookback window bounds in minutes.
const (
	MinLookbackMinutes = 5
	MaxLookbackMinutes = 1440
)

// StateFromValue maps the latest metric sample to a state. The collector
// emits 1 for running and 0 for stopped; anything else is treated as unknown.
func StateFromValue(v float64) State {
	switch v {
	case 1:
		return StateRunning
	case 0:
		return StateStopped
	default:
		return StateUnknown
	}
}

// ClampLookback bounds a requested window, substituting def when the request
// left it unset.
func ClampLookback(minutes, def int) int {
	if minutes == 0 {
		minutes = def
	}
	if minutes < MinLookbackMinutes {
		return MinLookbackMinutes
	}
	if minutes > MaxLookbackMinutes {
		return MaxLookbackMinutes
	}
	return minutes
}

// Connector is the latest observed state of one connector instance.
type Connector struct {
	ConnectorName  string    `json:"connector_name"`
	ConnectorID    string    `json:"connector_id"`
	RuntimeKey     string    `json:"runtime_key"`
	DeploymentID   string    `json:"deployment_id"`
	PodName        string    `json:"pod_name"`
	State          State     `json:"state"`
	LastReportedAt time.Time `json:"last_reported_at"`
}

// Summary counts connectors by state.
type Summary struct {
	Total   int `json:"total"`
	Running int `json:"running"`
	Stopped int `json:"stopped"`
	Unknown int `json:"unknown"`
}

// ListRequest selects the reporting window.
type ListRequest struct {
	LookbackMinutes int
}

// ListResponse is the connector status board.
type ListResponse struct {
	LookbackMinutes int         `json:"lookback_minutes"`
	Summary         Summary     `json:"summary"`
	Connectors      []Connector `json:"connectors"`
}

// Service exposes connector status reads.
type Service interface {
	List(ctx context.Context, req ListRequest) (ListResponse, error)
	Names(ctx context.Context) ([]string, error)
}
