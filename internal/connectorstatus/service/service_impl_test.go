package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/flowsight/internal/clock"
	"github.com/smallbiznis/flowsight/internal/config"
	connectordomain "github.com/smallbiznis/flowsight/internal/connectorstatus/domain"
	"github.com/smallbiznis/flowsight/internal/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestService(t *testing.T, now time.Time) (*Service, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&telemetry.Event{}))

	svc := &Service{
		db:        db,
		clock:     clock.NewFakeClock(now),
		log:       zap.NewNop(),
		dashboard: config.NewStaticDashboardConfigHolder(config.DefaultDashboardConfig()),
	}
	return svc, db
}

func statusEvent(name, runtime, pod string, value float64, at time.Time) telemetry.Event {
	return telemetry.Event{
		ID:            snowflakeID(),
		Timestamp:     at,
		RecordType:    telemetry.RecordTypeMetric,
		MetricName:    telemetry.MetricConnectorRunning,
		Value:         value,
		ConnectorName: name,
		RuntimeKey:    runtime,
		PodName:       pod,
	}
}

var nextID int64

func snowflakeID() snowflake.ID {
	nextID++
	return snowflake.ID(nextID)
}

func TestListLatestSampleWins(t *testing.T) {
	now := time.Date(2026, time.August, 29, 12, 0, 0, 0, time.UTC)
	svc, db := newTestService(t, now)

	require.NoError(t, db.Create([]telemetry.Event{
		statusEvent("postgres-cdc", "rt-1", "pod-a", 0, now.Add(-10*time.Minute)),
		statusEvent("postgres-cdc", "rt-1", "pod-a", 1, now.Add(-2*time.Minute)),
		statusEvent("kafka-sink", "rt-1", "pod-b", 0, now.Add(-5*time.Minute)),
		statusEvent("s3-loader", "rt-2", "pod-c", 7, now.Add(-1*time.Minute)),
	}).Error)

	resp, err := svc.List(context.Background(), connectordomain.ListRequest{})
	require.NoError(t, err)

	assert.Equal(t, 30, resp.LookbackMinutes)
	assert.Equal(t, connectordomain.Summary{Total: 3, Running: 1, Stopped: 1, Unknown: 1}, resp.Summary)

	require.Len(t, resp.Connectors, 3)
	assert.Equal(t, "kafka-sink", resp.Connectors[0].ConnectorName)
	assert.Equal(t, connectordomain.StateStopped, resp.Connectors[0].State)
	assert.Equal(t, "postgres-cdc", resp.Connectors[1].ConnectorName)
	assert.Equal(t, connectordomain.StateRunning, resp.Connectors[1].State)
	assert.Equal(t, connectordomain.StateUnknown, resp.Connectors[2].State)
}

func TestListIgnoresSamplesOutsideWindow(t *testing.T) {
	now := time.Date(2026, time.August, 29, 12, 0, 0, 0, time.UTC)
	svc, db := newTestService(t, now)

	require.NoError(t, db.Create([]telemetry.Event{
		statusEvent("old-connector", "rt-1", "pod-a", 1, now.Add(-2*time.Hour)),
	}).Error)

	resp, err := svc.List(context.Background(), connectordomain.ListRequest{LookbackMinutes: 15})
	require.NoError(t, err)
	assert.Equal(t, 15, resp.LookbackMinutes)
	assert.Zero(t, resp.Summary.Total)
	assert.Empty(t, resp.Connectors)
}

func TestListClampsLookback(t *testing.T) {
	now := time.Date(2026, time.August, 29, 12, 0, 0, 0, time.UTC)
	svc, _ := newTestService(t, now)

	resp, err := svc.List(context.Background(), connectordomain.ListRequest{LookbackMinutes: 3})
	require.NoError(t, err)
	assert.Equal(t, connectordomain.MinLookbackMinutes, resp.LookbackMinutes)

	resp, err = svc.List(context.Background(), connectordomain.ListRequest{LookbackMinutes: 100000})
	require.NoError(t, err)
	assert.Equal(t, connectordomain.MaxLookbackMinutes, resp.LookbackMinutes)
}

func TestNamesDistinctSorted(t *testing.T) {
	now := time.Date(2026, time.August, 29, 12, 0, 0, 0, time.UTC)
	svc, db := newTestService(t, now)

	require.NoError(t, db.Create([]telemetry.Event{
		statusEvent("zeta", "rt-1", "pod-a", 1, now),
		statusEvent("alpha", "rt-1", "pod-a", 1, now),
		statusEvent("alpha", "rt-2", "pod-b", 0, now),
		statusEvent("", "rt-3", "pod-c", 1, now),
	}).Error)

	names, err := svc.Names(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "zeta"}, names)
}

func TestStateFromValue(t *testing.T) {
	assert.Equal(t, connectordomain.StateRunning, connectordomain.StateFromValue(1))
	assert.Equal(t, connectordomain.StateStopped, connectordomain.StateFromValue(0))
	assert.Equal(t, connectordomain.StateUnknown, connectordomain.StateFromValue(0.5))
	assert.Equal(t, connectordomain.StateUnknown, connectordomain.StateFromValue(-1))
}
