package service

import (
	"context"
	"sort"
	"time"

	"github.com/smallbiznis/flowsight/internal/clock"
	"github.com/smallbiznis/flowsight/internal/config"
	connectordomain "github.com/smallbiznis/flowsight/internal/connectorstatus/domain"
	obsmetrics "github.com/smallbiznis/flowsight/internal/observability/metrics"
	"github.com/smallbiznis/flowsight/internal/telemetry"
	"github.com/smallbiznis/flowsight/internal/warehouse"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// maxStatusRows caps how many raw status samples one refresh scans.
const maxStatusRows = 1000

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

func NewService(p Params) connectordomain.Service {
	return &Service{
		db:         p.DB,
		clock:      p.Clock,
		log:        p.Log.Named("connectorstatus.service"),
		dashboard:  p.Dashboard,
		obsMetrics: p.ObsMetrics,
	}
}

// List reports the latest observed state per connector instance inside the
// lookback window. Samples arrive newest-first, so the first row per
// (connector, runtime, pod) key wins.
func (s *Service) List(ctx context.Context, req connectordomain.ListRequest) (connectordomain.ListResponse, error) {
	lookback := connectordomain.ClampLookback(req.LookbackMinutes, s.dashboard.Get().LookbackMinutes)
	since := s.clock.Now().Add(-time.Duration(lookback) * time.Minute)

	s.obsMetrics.RecordWarehouseQuery(ctx, "connector_status")

	var events []telemetry.Event
	err := s.db.WithContext(ctx).
		Where("record_type = ? AND metric_name = ? AND timestamp >= ?",
			telemetry.RecordTypeMetric, telemetry.MetricConnectorRunning, since).
		Order("timestamp DESC").
		Limit(maxStatusRows).
		Find(&events).Error
	if err != nil {
		classified := warehouse.Classify("connector status", err)
		s.obsMetrics.RecordWarehouseError(ctx, "connector_status", warehouse.ErrorType(classified))
		return connectordomain.ListResponse{}, classified
	}

	resp := connectordomain.ListResponse{LookbackMinutes: lookback}

	type key struct{ connector, runtime, pod string }
	seen := make(map[key]struct{})
	for _, ev := range events {
		k := key{connector: ev.ConnectorName, runtime: ev.RuntimeKey, pod: ev.PodName}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}

		state := connectordomain.StateFromValue(ev.Value)
		resp.Connectors = append(resp.Connectors, connectordomain.Connector{
			ConnectorName:  ev.ConnectorName,
			ConnectorID:    ev.ConnectorID,
			RuntimeKey:     ev.RuntimeKey,
			DeploymentID:   ev.DeploymentID,
			PodName:        ev.PodName,
			State:          state,
			LastReportedAt: ev.Timestamp,
		})

		resp.Summary.Total++
		switch state {
		case connectordomain.StateRunning:
			resp.Summary.Running++
		case connectordomain.StateStopped:
			resp.Summary.Stopped++
		default:
			resp.Summary.Unknown++
		}
	}

	sort.Slice(resp.Connectors, func(i, j int) bool {
		a, b := resp.Connectors[i], resp.Connectors[j]
		if a.ConnectorName != b.ConnectorName {
			return a.ConnectorName < b.ConnectorName
		}
		if a.RuntimeKey != b.RuntimeKey {
			return a.RuntimeKey < b.RuntimeKey
		}
		return a.PodName < b.PodName
	})
	return resp, nil
}

// Names lists the distinct connector names ever observed, for backup target
// selection.
func (s *Service) Names(ctx context.Context) ([]string, error) {
	var names []string
	err := s.db.WithContext(ctx).
		Model(&telemetry.Event{}).
		Distinct("connector_name").
		Where("connector_name <> ''").
		Order("connector_name").
		Pluck("connector_name", &names).Error
	if err != nil {
		return nil, warehouse.Classify("connector names", err)
	}
	return names, nil
}
