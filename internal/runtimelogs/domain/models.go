// Package domain contains runtime log inspection types: recent error log
// records and connections whose flowfiles have been queued past a threshold.
package domain

import (
	"context"
	"time"
)

// ErrorRecord is one ERROR level log line emitted by a runtime.
type ErrorRecord struct {
	Timestamp     time.Time `json:"timestamp"`
	RuntimeKey    string    `json:"runtime_key"`
	DeploymentID  string    `json:"deployment_id"`
	PodName       string    `json:"pod_name"`
	ConnectorName string    `json:"connector_name"`
	Logger        string    `json:"logger"`
	Message       string    `json:"message"`
}

// ErrorSummary aggregates the error window.
type ErrorSummary struct {
	TotalErrors         int `json:"total_errors"`
	AffectedRuntimes    int `json:"affected_runtimes"`
	AffectedDeployments int `json:"affected_deployments"`
}

// ErrorsRequest selects the reporting window.
type ErrorsRequest struct {
	LookbackMinutes int
}

// ErrorsResponse is the error log board.
type ErrorsResponse struct {
	LookbackMinutes int           `json:"lookback_minutes"`
	Summary         ErrorSummary  `json:"summary"`
	Errors          []ErrorRecord `json:"errors"`
}

// StuckConnection is a queue whose oldest flowfile exceeded the threshold.
// Runtime keys are namespaces and can repeat across deployments, so the
// deployment is part of the connection identity.
type StuckConnection struct {
	DeploymentID   string    `json:"deployment_id"`
	RuntimeKey     string    `json:"runtime_key"`
	ConnectorName  string    `json:"connector_name"`
	ConnectorID    string    `json:"connector_id"`
	QueuedMinutes  float64   `json:"queued_minutes"`
	LastReportedAt time.Time `json:"last_reported_at"`
}

// StuckRequest selects the window and queue age threshold.
type StuckRequest struct {
	LookbackMinutes  int
	ThresholdMinutes int
}

// StuckResponse lists stuck connections, longest queued first.
type StuckResponse struct {
	LookbackMinutes  int               `json:"lookback_minutes"`
	ThresholdMinutes int               `json:"threshold_minutes"`
	Connections      []StuckConnection `json:"connections"`
}

// Service exposes runtime log reads.
type Service interface {
	Errors(ctx context.Context, req ErrorsRequest) (ErrorsResponse, error)
	Stuck(ctx context.Context, req StuckRequest) (StuckResponse, error)
}
