package repository

import (
	"context"

	creditusagedomain "github.com/smallbiznis/flowsight/internal/creditusage/domain"
	"github.com/smallbiznis/flowsight/internal/warehouse"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

const fetchAllQuery = `SELECT
	runtime_key,
	data_plane_type,
	active_days,
	data_planes_used,
	total_runtime_credits,
	total_data_plane_credits,
	total_credits,
	avg_daily_credits,
	stddev_daily_credits,
	min_daily_credits,
	max_daily_credits,
	credits_per_active_day,
	runtime_cost_percentage,
	data_plane_cost_percentage,
	cost_model,
	usage_category,
	usage_pattern,
	efficiency_rating,
	first_usage_date,
	last_usage_date
FROM openflow_cost_analysis
ORDER BY total_credits DESC`

type Params struct {
	fx.In

	DB *gorm.DB
}

type repository struct {
	db *gorm.DB
}

// New builds the cost analysis read repository.
func New(p Params) creditusagedomain.Repository {
	return &repository{db: p.DB}
}

func (r *repository) FetchAll(ctx context.Context) ([]creditusagedomain.Record, error) {
	var rows []creditusagedomain.Record
	if err := r.db.WithContext(ctx).Raw(fetchAllQuery).Scan(&rows).Error; err != nil {
		return nil, warehouse.Classify("credit usage", err)
	}
	return rows, nil
}
