// Package rollup materializes the cost analysis table from raw telemetry in
// standalone mode. Warehouse deployments keep the relation as a view and never
// run this.
package rollup

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/smallbiznis/flowsight/internal/clock"
	"github.com/smallbiznis/flowsight/internal/config"
	creditusagedomain "github.com/smallbiznis/flowsight/internal/creditusage/domain"
	obsmetrics "github.com/smallbiznis/flowsight/internal/observability/metrics"
	"github.com/smallbiznis/flowsight/internal/telemetry"
	"github.com/smallbiznis/flowsight/internal/warehouse"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const dayLayout = "2006-01-02"

type Params struct {
	fx.In

	Cfg        config.Config
	DB         *gorm.DB
	Clock      clock.Clock
	Log        *zap.Logger
	ObsMetrics *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	cfg        config.Config
	db         *gorm.DB
	clock      clock.Clock
	log        *zap.Logger
	obsMetrics *obsmetrics.Metrics
}

func NewService(p Params) *Service {
	return &Service{
		cfg:        p.Cfg,
		db:         p.DB,
		clock:      p.Clock,
		log:        p.Log.Named("creditusage.rollup"),
		obsMetrics: p.ObsMetrics,
	}
}

// Rebuild recomputes every cost analysis row from the telemetry window and
// swaps the table contents in one transaction, so readers never observe a
// partially built relation.
func (s *Service) Rebuild(ctx context.Context) error {
	now := s.clock.Now()
	windowDays := s.cfg.Rollup.WindowDays
	if windowDays <= 0 {
		windowDays = 30
	}
	since := now.AddDate(0, 0, -windowDays)

	var events []telemetry.Event
	err := s.db.WithContext(ctx).
		Where("record_type = ? AND metric_name = ? AND timestamp >= ?",
			telemetry.RecordTypeMetric, telemetry.MetricCreditUsage, since).
		Find(&events).Error
	if err != nil {
		s.obsMetrics.RecordRollupRun(ctx, false)
		return warehouse.Classify("credit usage rollup", err)
	}

	rows := Aggregate(events)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM " + warehouse.CostAnalysisRelation).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		s.obsMetrics.RecordRollupRun(ctx, false)
		return warehouse.Classify("credit usage rollup", err)
	}

	s.obsMetrics.RecordRollupRun(ctx, true)
	s.log.Info("cost analysis rebuilt",
		zap.Int("events", len(events)),
		zap.Int("rows", len(rows)),
		zap.Int("window_days", windowDays),
	)
	return nil
}

type runtimeAccumulator struct {
	runtimeKey       string
	dataPlaneType    string
	runtimeCredits   float64
	dataPlaneCredits float64
	dailyCredits     map[string]float64
	deployments      map[string]struct{}
	firstUsage       time.Time
	lastUsage        time.Time
}

// Aggregate folds credit.usage events into cost analysis records with the
// same semantics as the warehouse view: per-day daily statistics, sample
// standard deviation over the day series, and derived classifications.
func Aggregate(events []telemetry.Event) []creditusagedomain.Record {
	type key struct{ runtime, dataPlane string }
	accs := make(map[key]*runtimeAccumulator)

	for _, ev := range events {
		if ev.RuntimeKey == "" {
			continue
		}
		k := key{runtime: ev.RuntimeKey, dataPlane: ev.DataPlaneType}
		acc, ok := accs[k]
		if !ok {
			acc = &runtimeAccumulator{
				runtimeKey:    ev.RuntimeKey,
				dataPlaneType: ev.DataPlaneType,
				dailyCredits:  make(map[string]float64),
				deployments:   make(map[string]struct{}),
				firstUsage:    ev.Timestamp,
				lastUsage:     ev.Timestamp,
			}
			accs[k] = acc
		}

		switch ev.CreditType {
		case telemetry.CreditTypeDataPlane:
			acc.dataPlaneCredits += ev.Value
		default:
			acc.runtimeCredits += ev.Value
		}
		acc.dailyCredits[ev.Timestamp.UTC().Format(dayLayout)] += ev.Value
		if ev.DeploymentID != "" {
			acc.deployments[ev.DeploymentID] = struct{}{}
		}
		if ev.Timestamp.Before(acc.firstUsage) {
			acc.firstUsage = ev.Timestamp
		}
		if ev.Timestamp.After(acc.lastUsage) {
			acc.lastUsage = ev.Timestamp
		}
	}

	rows := make([]creditusagedomain.Record, 0, len(accs))
	for _, acc := range accs {
		rows = append(rows, acc.record())
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].TotalCredits != rows[j].TotalCredits {
			return rows[i].TotalCredits > rows[j].TotalCredits
		}
		if rows[i].RuntimeKey != rows[j].RuntimeKey {
			return rows[i].RuntimeKey < rows[j].RuntimeKey
		}
		return rows[i].DataPlaneType < rows[j].DataPlaneType
	})
	return rows
}

func (acc *runtimeAccumulator) record() creditusagedomain.Record {
	daily := make([]float64, 0, len(acc.dailyCredits))
	for _, v := range acc.dailyCredits {
		daily = append(daily, v)
	}
	avg, stddev, min, max := dailyStats(daily)

	row := creditusagedomain.Record{
		RuntimeKey:            acc.runtimeKey,
		DataPlaneType:         acc.dataPlaneType,
		ActiveDays:            int64(len(acc.dailyCredits)),
		DataPlanesUsed:        int64(len(acc.deployments)),
		TotalRuntimeCredits:   acc.runtimeCredits,
		TotalDataPlaneCredits: acc.dataPlaneCredits,
		AvgDailyCredits:       avg,
		StddevDailyCredits:    stddev,
		MinDailyCredits:       min,
		MaxDailyCredits:       max,
		FirstUsageDate:        dateOnly(acc.firstUsage),
		LastUsageDate:         dateOnly(acc.lastUsage),
	}
	row.Derive()
	return row
}

// dailyStats returns mean, sample standard deviation, min and max of the
// per-day credit series. Stddev is 0 when the series has fewer than two days.
func dailyStats(daily []float64) (avg, stddev, min, max float64) {
	if len(daily) == 0 {
		return 0, 0, 0, 0
	}
	min, max = daily[0], daily[0]
	var sum float64
	for _, v := range daily {
		sum += v
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	avg = sum / float64(len(daily))
	if len(daily) < 2 {
		return avg, 0, min, max
	}
	var sq float64
	for _, v := range daily {
		d := v - avg
		sq += d * d
	}
	stddev = math.Sqrt(sq / float64(len(daily)-1))
	return avg, stddev, min, max
}

func dateOnly(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
