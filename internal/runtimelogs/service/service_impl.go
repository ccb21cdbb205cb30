package service

import (
	"context"
	"sort"
	"time"

	"github.com/smallbiznis/flowsight/internal/clock"
	"github.com/smallbiznis/flowsight/internal/config"
	connectordomain "github.com/smallbiznis/flowsight/internal/connectorstatus/domain"
	obsmetrics "github.com/smallbiznis/flowsight/internal/observability/metrics"
	logdomain "github.com/smallbiznis/flowsight/internal/runtimelogs/domain"
	"github.com/smallbiznis/flowsight/internal/telemetry"
	"github.com/smallbiznis/flowsight/internal/warehouse"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// maxErrorRows caps how many log lines one view renders.
const maxErrorRows = 1000

const logLevelError = "ERROR"

type Params struct {
	fx.In

	DB         *gorm.DB
	Clock      clock.Clock
	Log        *zap.Logger
	Dashboard  *config.DashboardConfigHolder
	ObsMetrics *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	clock      clock.Clock
	log        *zap.Logger
	dashboard  *config.DashboardConfigHolder
	obsMetrics *obsmetrics.Metrics
}

func NewService(p Params) logdomain.Service {
	return &Service{
		db:         p.DB,
		clock:      p.Clock,
		log:        p.Log.Named("runtimelogs.service"),
		dashboard:  p.Dashboard,
		obsMetrics: p.ObsMetrics,
	}
}

// Errors lists ERROR level log records inside the lookback window, newest
// first, with counts of distinct runtimes and deployments affected.
func (s *Service) Errors(ctx context.Context, req logdomain.ErrorsRequest) (logdomain.ErrorsResponse, error) {
	lookback := connectordomain.ClampLookback(req.LookbackMinutes, s.dashboard.Get().LookbackMinutes)
	since := s.clock.Now().Add(-time.Duration(lookback) * time.Minute)

	s.obsMetrics.RecordWarehouseQuery(ctx, "runtime_logs")

	var events []telemetry.Event
	err := s.db.WithContext(ctx).
		Where("record_type = ? AND log_level = ? AND timestamp >= ?",
			telemetry.RecordTypeLog, logLevelError, since).
		Order("timestamp DESC").
		Limit(maxErrorRows).
		Find(&events).Error
	if err != nil {
		classified := warehouse.Classify("runtime logs", err)
		s.obsMetrics.RecordWarehouseError(ctx, "runtime_logs", warehouse.ErrorType(classified))
		return logdomain.ErrorsResponse{}, classified
	}

	resp := logdomain.ErrorsResponse{LookbackMinutes: lookback}
	runtimes := make(map[string]struct{})
	deployments := make(map[string]struct{})
	for _, ev := range events {
		resp.Errors = append(resp.Errors, logdomain.ErrorRecord{
			Timestamp:     ev.Timestamp,
			RuntimeKey:    ev.RuntimeKey,
			DeploymentID:  ev.DeploymentID,
			PodName:       ev.PodName,
			ConnectorName: ev.ConnectorName,
			Logger:        ev.Logger,
			Message:       ev.Message,
		})
		if ev.RuntimeKey != "" {
			runtimes[ev.RuntimeKey] = struct{}{}
		}
		if ev.DeploymentID != "" {
			deployments[ev.DeploymentID] = struct{}{}
		}
	}
	resp.Summary = logdomain.ErrorSummary{
		TotalErrors:         len(resp.Errors),
		AffectedRuntimes:    len(runtimes),
		AffectedDeployments: len(deployments),
	}
	return resp, nil
}

// Stuck reports connections whose maximum queued duration inside the window
// exceeds the threshold. The collector reports queue age in milliseconds.
func (s *Service) Stuck(ctx context.Context, req logdomain.StuckRequest) (logdomain.StuckResponse, error) {
	cfg := s.dashboard.Get()
	lookback := connectordomain.ClampLookback(req.LookbackMinutes, cfg.LookbackMinutes)
	threshold := req.ThresholdMinutes
	if threshold <= 0 {
		threshold = cfg.StuckThresholdMin
	}
	since := s.clock.Now().Add(-time.Duration(lookback) * time.Minute)

	s.obsMetrics.RecordWarehouseQuery(ctx, "stuck_flowfiles")

	var events []telemetry.Event
	err := s.db.WithContext(ctx).
		Where("record_type = ? AND metric_name = ? AND timestamp >= ?",
			telemetry.RecordTypeMetric, telemetry.MetricQueuedDuration, since).
		Find(&events).Error
	if err != nil {
		classified := warehouse.Classify("stuck flowfiles", err)
		s.obsMetrics.RecordWarehouseError(ctx, "stuck_flowfiles", warehouse.ErrorType(classified))
		return logdomain.StuckResponse{}, classified
	}

	type key struct{ deployment, runtime, connector, connectorID string }
	peaks := make(map[key]logdomain.StuckConnection)
	for _, ev := range events {
		minutes := ev.Value / 1000 / 60
		k := key{deployment: ev.DeploymentID, runtime: ev.RuntimeKey, connector: ev.ConnectorName, connectorID: ev.ConnectorID}
		peak, ok := peaks[k]
		if !ok || minutes > peak.QueuedMinutes {
			peaks[k] = logdomain.StuckConnection{
				DeploymentID:   ev.DeploymentID,
				RuntimeKey:     ev.RuntimeKey,
				ConnectorName:  ev.ConnectorName,
				ConnectorID:    ev.ConnectorID,
				QueuedMinutes:  minutes,
				LastReportedAt: ev.Timestamp,
			}
		}
	}

	resp := logdomain.StuckResponse{LookbackMinutes: lookback, ThresholdMinutes: threshold}
	for _, peak := range peaks {
		if peak.QueuedMinutes > float64(threshold) {
			resp.Connections = append(resp.Connections, peak)
		}
	}
	sort.Slice(resp.Connections, func(i, j int) bool {
		return resp.Connections[i].QueuedMinutes > resp.Connections[j].QueuedMinutes
	})
	return resp, nil
}
