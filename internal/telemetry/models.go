// Package telemetry contains the raw event model for standalone deployments.
// Warehouse deployments never write this table; the connector, log, and
// rollup queries read it through the same column names the warehouse view
// layer exposes.
package telemetry

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Record types mirrored from the warehouse telemetry event stream.
const (
	RecordTypeMetric = "METRIC"
	RecordTypeLog    = "LOG"
)

// Metric names the dashboard consumes.
const (
	MetricConnectorRunning = "processor.run.status.running"
	MetricQueuedDuration   = "connection.queued.duration.max"
	MetricCreditUsage      = "credit.usage"
)

// Credit type tags on credit.usage metrics.
const (
	CreditTypeRuntime   = "runtime"
	CreditTypeDataPlane = "data_plane"
)

// Event stores one telemetry record.
type Event struct {
	ID                 snowflake.ID      `gorm:"primaryKey"`
	Timestamp          time.Time         `gorm:"not null;index"`
	RecordType         string            `gorm:"type:text;not null;index"`
	MetricName         string            `gorm:"type:text;index"`
	Value              float64           `gorm:"not null;default:0"`
	DeploymentID       string            `gorm:"type:text"`
	RuntimeKey         string            `gorm:"type:text;index"`
	PodName            string            `gorm:"type:text"`
	ConnectorName      string            `gorm:"type:text"`
	ConnectorID        string            `gorm:"type:text"`
	CreditType         string            `gorm:"type:text"`
	DataPlaneType      string            `gorm:"type:text"`
	LogLevel           string            `gorm:"type:text"`
	Logger             string            `gorm:"type:text"`
	Message            string            `gorm:"type:text"`
	RecordAttributes   datatypes.JSONMap `gorm:"type:jsonb"`
	ResourceAttributes datatypes.JSONMap `gorm:"type:jsonb"`
	CreatedAt          time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Event) TableName() string { return "telemetry_events" }
