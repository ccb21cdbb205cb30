// Package domain contains connector configuration backups and their daily
// schedules.
package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// objectNameLayout is the timestamp part of a backup object name.
const objectNameLayout = "20060102_150405"

// Backup is one stored connector configuration snapshot.
type Backup struct {
	ID            snowflake.ID   `gorm:"primaryKey" json:"id"`
	ConnectorName string         `gorm:"type:text;not null;index" json:"connector_name"`
	ObjectName    string         `gorm:"type:text;not null;uniqueIndex" json:"object_name"`
	Trigger       string         `gorm:"type:text;not null" json:"trigger"`
	Payload       datatypes.JSON `gorm:"type:jsonb" json:"payload"`
	CreatedAt     time.Time      `gorm:"not null" json:"created_at"`
}

// TableName sets the database table name.
func (Backup) TableName() string { return "connector_backups" }

// Backup triggers.
const (
	TriggerManual    = "manual"
	TriggerScheduled = "scheduled"
)

// ObjectName builds the stored object name for a snapshot taken at t.
func ObjectName(connector string, t time.Time) string {
	return fmt.Sprintf("%s_%s.json", connector, t.UTC().Format(objectNameLayout))
}

// Schedule runs a daily backup of one connector at a fixed UTC time of day.
// Stage names the destination stage for the snapshot; standalone mode stores
// payloads in the database and keeps the name for the warehouse deployment.
type Schedule struct {
	ID            snowflake.ID `gorm:"primaryKey" json:"id"`
	ConnectorName string       `gorm:"type:text;not null;index" json:"connector_name"`
	Stage         string       `gorm:"type:text;not null;default:''" json:"stage"`
	TimeOfDay     string       `gorm:"type:text;not null" json:"time_of_day"`
	Enabled       bool         `gorm:"not null;default:true" json:"enabled"`
	LastRunAt     *time.Time   `json:"last_run_at,omitempty"`
	CreatedAt     time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time    `gorm:"not null" json:"updated_at"`
}

// TableName sets the database table name.
func (Schedule) TableName() string { return "backup_schedules" }

// ParseTimeOfDay validates an HH:MM wall time and returns hour and minute.
func ParseTimeOfDay(s string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, 0, fmt.Errorf("time of day must be HH:MM: %w", err)
	}
	return t.Hour(), t.Minute(), nil
}

// Due reports whether the schedule should fire at now. A schedule fires once
// per day, at or after its wall time, and never twice in the same day.
func (s Schedule) Due(now time.Time) bool {
	if !s.Enabled {
		return false
	}
	hour, minute, err := ParseTimeOfDay(s.TimeOfDay)
	if err != nil {
		return false
	}
	now = now.UTC()
	todayRun := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, time.UTC)
	if now.Before(todayRun) {
		return false
	}
	return s.LastRunAt == nil || s.LastRunAt.UTC().Before(todayRun)
}

// CreateScheduleRequest registers a daily backup. Stage is optional.
type CreateScheduleRequest struct {
	ConnectorName string `json:"connector_name"`
	Stage         string `json:"stage"`
	TimeOfDay     string `json:"time_of_day"`
}

// Service exposes backup operations.
type Service interface {
	BackupNow(ctx context.Context, connectorName string) (Backup, error)
	ListBackups(ctx context.Context, connectorName string) ([]Backup, error)
	CreateSchedule(ctx context.Context, req CreateScheduleRequest) (Schedule, error)
	ListSchedules(ctx context.Context) ([]Schedule, error)
	DeleteSchedule(ctx context.Context, id snowflake.ID) error
	RunDue(ctx context.Context) error
}
