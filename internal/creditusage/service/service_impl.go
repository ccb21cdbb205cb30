package service

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/smallbiznis/flowsight/internal/cache"
	"github.com/smallbiznis/flowsight/internal/config"
	creditusagedomain "github.com/smallbiznis/flowsight/internal/creditusage/domain"
	obsmetrics "github.com/smallbiznis/flowsight/internal/observability/metrics"
	"github.com/smallbiznis/flowsight/internal/warehouse"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const cacheKeyAll = "credit_usage:all"

type Params struct {
	fx.In

	Repo       creditusagedomain.Repository
	Log        *zap.Logger
	Dashboard  *config.DashboardConfigHolder
	ObsMetrics *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	repo       creditusagedomain.Repository
	log        *zap.Logger
	dashboard  *config.DashboardConfigHolder
	obsMetrics *obsmetrics.Metrics
	rows       cache.Cache[string, []creditusagedomain.Record]
}

func NewService(p Params) creditusagedomain.Service {
	return &Service{
		repo:       p.Repo,
		log:        p.Log.Named("creditusage.service"),
		dashboard:  p.Dashboard,
		obsMetrics: p.ObsMetrics,
		rows:       cache.NewTTLCache[string, []creditusagedomain.Record](),
	}
}

// List fetches the cost analysis rows, applies the request filters, and
// summarizes the filtered subset.
func (s *Service) List(ctx context.Context, req creditusagedomain.ListRequest) (creditusagedomain.ListResponse, error) {
	rows, err := s.fetchAll(ctx)
	if err != nil {
		return creditusagedomain.ListResponse{}, err
	}

	filtered := Filter(rows, req.Search, req.Categories, req.Efficiencies)
	return creditusagedomain.ListResponse{
		Summary: Summarize(filtered),
		Records: filtered,
	}, nil
}

// ExportCSV writes the filtered rows as CSV and returns the row count.
func (s *Service) ExportCSV(ctx context.Context, req creditusagedomain.ListRequest, w io.Writer) (int, error) {
	rows, err := s.fetchAll(ctx)
	if err != nil {
		return 0, err
	}

	filtered := Filter(rows, req.Search, req.Categories, req.Efficiencies)
	if err := WriteCSV(w, filtered); err != nil {
		return 0, err
	}
	s.obsMetrics.RecordExportedRows(ctx, len(filtered))
	return len(filtered), nil
}

// fetchAll reads the relation through a short-lived cache so one page view
// with several widgets issues a single warehouse query.
func (s *Service) fetchAll(ctx context.Context) ([]creditusagedomain.Record, error) {
	if cached, ok := s.rows.Get(cacheKeyAll); ok {
		return cached, nil
	}

	s.obsMetrics.RecordWarehouseQuery(ctx, "credit_usage")
	rows, err := s.repo.FetchAll(ctx)
	if err != nil {
		s.obsMetrics.RecordWarehouseError(ctx, "credit_usage", warehouse.ErrorType(err))
		s.log.Warn("credit usage fetch failed", zap.Error(err))
		return nil, err
	}
	if len(rows) == 0 {
		// An empty relation and a missing relation surface the same guidance.
		s.obsMetrics.RecordWarehouseError(ctx, "credit_usage", warehouse.ErrorType(warehouse.ErrDataUnavailable))
		return nil, warehouse.ErrDataUnavailable
	}

	ttl := time.Duration(s.dashboard.Get().CacheTTLSeconds) * time.Second
	s.rows.Set(cacheKeyAll, rows, ttl)
	return rows, nil
}

// Summarize computes page-level aggregates. Rows are keyed by (runtime, data
// plane type), so the runtime count is over distinct runtime keys. An empty
// input yields zeroes.
func Summarize(rows []creditusagedomain.Record) creditusagedomain.Summary {
	var summary creditusagedomain.Summary
	runtimes := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		summary.TotalCredits += row.TotalCredits
		summary.TotalActiveDays += row.ActiveDays
		runtimes[row.RuntimeKey] = struct{}{}
	}
	summary.RuntimeCount = len(runtimes)
	if summary.RuntimeCount > 0 {
		summary.AvgCreditsPerRuntime = summary.TotalCredits / float64(summary.RuntimeCount)
	}
	return summary
}

// Filter keeps rows matching the search text and the selected category and
// efficiency sets. An empty set means no constraint, not "match nothing".
func Filter(rows []creditusagedomain.Record, search string, categories []creditusagedomain.UsageCategory, efficiencies []creditusagedomain.EfficiencyRating) []creditusagedomain.Record {
	search = strings.ToLower(strings.TrimSpace(search))
	categorySet := toSet(categories)
	efficiencySet := toSet(efficiencies)

	filtered := make([]creditusagedomain.Record, 0, len(rows))
	for _, row := range rows {
		if search != "" && !strings.Contains(strings.ToLower(row.RuntimeKey), search) {
			continue
		}
		if len(categorySet) > 0 {
			if _, ok := categorySet[row.UsageCategory]; !ok {
				continue
			}
		}
		if len(efficiencySet) > 0 {
			if _, ok := efficiencySet[row.EfficiencyRating]; !ok {
				continue
			}
		}
		filtered = append(filtered, row)
	}
	return filtered
}

func toSet[T comparable](values []T) map[T]struct{} {
	if len(values) == 0 {
		return nil
	}
	set := make(map[T]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
