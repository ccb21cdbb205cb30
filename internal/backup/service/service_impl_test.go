package service

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	backupdomain "github.com/smallbiznis/flowsight/internal/backup/domain"
	"github.com/smallbiznis/flowsight/internal/clock"
	"github.com/smallbiznis/flowsight/internal/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestService(t *testing.T, now time.Time) (*Service, *gorm.DB, *clock.FakeClock) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&telemetry.Event{}, &backupdomain.Backup{}, &backupdomain.Schedule{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	fc := clock.NewFakeClock(now)
	svc := &Service{
		db:    db,
		node:  node,
		clock: fc,
		log:   zap.NewNop(),
	}
	return svc, db, fc
}

func seedConnector(t *testing.T, db *gorm.DB, name string, at time.Time) {
	t.Helper()
	node, err := snowflake.NewNode(2)
	require.NoError(t, err)
	require.NoError(t, db.Create(&telemetry.Event{
		ID:            node.Generate(),
		Timestamp:     at,
		RecordType:    telemetry.RecordTypeMetric,
		MetricName:    telemetry.MetricConnectorRunning,
		Value:         1,
		ConnectorName: name,
		ConnectorID:   name + "-id",
		RuntimeKey:    "rt-1",
		DeploymentID:  "dep-1",
	}).Error)
}

func TestBackupNowStoresSnapshot(t *testing.T) {
	now := time.Date(2026, time.August, 29, 14, 30, 45, 0, time.UTC)
	svc, db, _ := newTestService(t, now)
	seedConnector(t, db, "postgres-cdc", now.Add(-time.Minute))

	b, err := svc.BackupNow(context.Background(), "postgres-cdc")
	require.NoError(t, err)

	assert.Equal(t, "postgres-cdc_20260829_143045.json", b.ObjectName)
	assert.Equal(t, backupdomain.TriggerManual, b.Trigger)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(b.Payload, &payload))
	assert.Equal(t, "postgres-cdc", payload["connector_name"])
	assert.Equal(t, "rt-1", payload["runtime_key"])

	stored, err := svc.ListBackups(context.Background(), "postgres-cdc")
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, b.ObjectName, stored[0].ObjectName)
}

func TestBackupNowUnknownConnector(t *testing.T) {
	now := time.Date(2026, time.August, 29, 14, 0, 0, 0, time.UTC)
	svc, _, _ := newTestService(t, now)

	_, err := svc.BackupNow(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrUnknownConnector)
}

func TestCreateScheduleValidatesTimeOfDay(t *testing.T) {
	now := time.Date(2026, time.August, 29, 14, 0, 0, 0, time.UTC)
	svc, _, _ := newTestService(t, now)

	_, err := svc.CreateSchedule(context.Background(), backupdomain.CreateScheduleRequest{
		ConnectorName: "postgres-cdc",
		TimeOfDay:     "25:99",
	})
	assert.Error(t, err)

	sched, err := svc.CreateSchedule(context.Background(), backupdomain.CreateScheduleRequest{
		ConnectorName: "postgres-cdc",
		Stage:         "backup_stage",
		TimeOfDay:     "02:30",
	})
	require.NoError(t, err)
	assert.True(t, sched.Enabled)
	assert.Equal(t, "02:30", sched.TimeOfDay)
	assert.Equal(t, "backup_stage", sched.Stage)

	stored, err := svc.ListSchedules(context.Background())
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "backup_stage", stored[0].Stage)
}

func TestRunDueFiresOncePerDay(t *testing.T) {
	now := time.Date(2026, time.August, 29, 2, 0, 0, 0, time.UTC)
	svc, db, fc := newTestService(t, now)
	seedConnector(t, db, "kafka-sink", now.Add(-time.Hour))

	_, err := svc.CreateSchedule(context.Background(), backupdomain.CreateScheduleRequest{
		ConnectorName: "kafka-sink",
		TimeOfDay:     "02:30",
	})
	require.NoError(t, err)

	// before the wall time: nothing fires
	require.NoError(t, svc.RunDue(context.Background()))
	backups, err := svc.ListBackups(context.Background(), "kafka-sink")
	require.NoError(t, err)
	assert.Empty(t, backups)

	// past the wall time: fires once
	fc.Advance(45 * time.Minute)
	require.NoError(t, svc.RunDue(context.Background()))
	require.NoError(t, svc.RunDue(context.Background()))
	backups, err = svc.ListBackups(context.Background(), "kafka-sink")
	require.NoError(t, err)
	require.Len(t, backups, 1)
	assert.Equal(t, backupdomain.TriggerScheduled, backups[0].Trigger)

	// next day it fires again
	fc.Advance(24 * time.Hour)
	require.NoError(t, svc.RunDue(context.Background()))
	backups, err = svc.ListBackups(context.Background(), "kafka-sink")
	require.NoError(t, err)
	assert.Len(t, backups, 2)
}

func TestDeleteScheduleMissing(t *testing.T) {
	now := time.Date(2026, time.August, 29, 14, 0, 0, 0, time.UTC)
	svc, _, _ := newTestService(t, now)

	err := svc.DeleteSchedule(context.Background(), snowflake.ID(12345))
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestScheduleDue(t *testing.T) {
	run := time.Date(2026, time.August, 28, 9, 0, 0, 0, time.UTC)
	sched := backupdomain.Schedule{ConnectorName: "c", TimeOfDay: "09:00", Enabled: true}

	assert.False(t, sched.Due(run.Add(-time.Minute)))
	assert.True(t, sched.Due(run))

	sched.LastRunAt = &run
	assert.False(t, sched.Due(run.Add(time.Hour)))
	assert.True(t, sched.Due(run.Add(24*time.Hour)))

	sched.Enabled = false
	assert.False(t, sched.Due(run.Add(24*time.Hour)))
}
