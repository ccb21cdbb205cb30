package rollup

import (
	"math"
	"testing"
	"time"

	creditusagedomain "github.com/smallbiznis/flowsight/internal/creditusage/domain"
	"github.com/smallbiznis/flowsight/internal/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int, hour int) time.Time {
	return time.Date(2026, time.August, d, hour, 0, 0, 0, time.UTC)
}

func TestAggregateEmpty(t *testing.T) {
	assert.Empty(t, Aggregate(nil))
}

func TestAggregateSingleRuntime(t *testing.T) {
	events := []telemetry.Event{
		{RuntimeKey: "etl-prod", DataPlaneType: "SNOWFLAKE", CreditType: telemetry.CreditTypeRuntime, Value: 10, Timestamp: day(1, 3), DeploymentID: "dep-1"},
		{RuntimeKey: "etl-prod", DataPlaneType: "SNOWFLAKE", CreditType: telemetry.CreditTypeRuntime, Value: 20, Timestamp: day(1, 9), DeploymentID: "dep-1"},
		{RuntimeKey: "etl-prod", DataPlaneType: "SNOWFLAKE", CreditType: telemetry.CreditTypeDataPlane, Value: 5, Timestamp: day(2, 3), DeploymentID: "dep-2"},
	}

	rows := Aggregate(events)
	require.Len(t, rows, 1)

	row := rows[0]
	assert.Equal(t, "etl-prod", row.RuntimeKey)
	assert.Equal(t, "SNOWFLAKE", row.DataPlaneType)
	assert.Equal(t, int64(2), row.ActiveDays)
	assert.Equal(t, int64(2), row.DataPlanesUsed)
	assert.Equal(t, 30.0, row.TotalRuntimeCredits)
	assert.Equal(t, 5.0, row.TotalDataPlaneCredits)
	assert.Equal(t, 35.0, row.TotalCredits)
	assert.Equal(t, 17.5, row.AvgDailyCredits)
	assert.Equal(t, 5.0, row.MinDailyCredits)
	assert.Equal(t, 30.0, row.MaxDailyCredits)
	// sample stddev of {30, 5}
	assert.InDelta(t, math.Sqrt(312.5), row.StddevDailyCredits, 1e-9)
	assert.Equal(t, day(1, 0), row.FirstUsageDate)
	assert.Equal(t, day(2, 0), row.LastUsageDate)
	assert.Equal(t, creditusagedomain.UsageCategoryLow, row.UsageCategory)
	assert.Equal(t, creditusagedomain.CostModelStandard, row.CostModel)
}

func TestAggregateSingleDayHasZeroStddev(t *testing.T) {
	rows := Aggregate([]telemetry.Event{
		{RuntimeKey: "rt", Value: 12, Timestamp: day(5, 1)},
		{RuntimeKey: "rt", Value: 8, Timestamp: day(5, 20)},
	})
	require.Len(t, rows, 1)
	assert.Equal(t, int64(1), rows[0].ActiveDays)
	assert.Zero(t, rows[0].StddevDailyCredits)
	assert.Equal(t, 20.0, rows[0].AvgDailyCredits)
}

func TestAggregateOrdersByTotalCreditsDesc(t *testing.T) {
	rows := Aggregate([]telemetry.Event{
		{RuntimeKey: "small", Value: 1, Timestamp: day(1, 0)},
		{RuntimeKey: "big", Value: 100, Timestamp: day(1, 0)},
		{RuntimeKey: "mid", Value: 10, Timestamp: day(1, 0)},
	})
	require.Len(t, rows, 3)
	assert.Equal(t, "big", rows[0].RuntimeKey)
	assert.Equal(t, "mid", rows[1].RuntimeKey)
	assert.Equal(t, "small", rows[2].RuntimeKey)
}

func TestAggregateSkipsEventsWithoutRuntimeKey(t *testing.T) {
	rows := Aggregate([]telemetry.Event{
		{RuntimeKey: "", Value: 50, Timestamp: day(1, 0)},
		{RuntimeKey: "rt", Value: 1, Timestamp: day(1, 0)},
	})
	require.Len(t, rows, 1)
	assert.Equal(t, "rt", rows[0].RuntimeKey)
}

func TestAggregateSplitsByDataPlaneType(t *testing.T) {
	rows := Aggregate([]telemetry.Event{
		{RuntimeKey: "rt", DataPlaneType: "SNOWFLAKE", Value: 5, Timestamp: day(1, 0)},
		{RuntimeKey: "rt", DataPlaneType: "BYOC", Value: 5, Timestamp: day(1, 0)},
	})
	assert.Len(t, rows, 2)
}
