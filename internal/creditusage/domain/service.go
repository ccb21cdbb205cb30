package domain

import (
	"context"
	"io"
)

// ListRequest carries the page filters. Empty filter sets pass every row.
type ListRequest struct {
	Search       string             `json:"search"`
	Categories   []UsageCategory    `json:"categories"`
	Efficiencies []EfficiencyRating `json:"efficiencies"`
}

// Summary holds the page-level aggregates over the filtered rows.
type Summary struct {
	TotalCredits         float64 `json:"total_credits"`
	RuntimeCount         int     `json:"runtime_count"`
	AvgCreditsPerRuntime float64 `json:"avg_credits_per_runtime"`
	TotalActiveDays      int64   `json:"total_active_days"`
}

// ListResponse is the credit usage page payload.
type ListResponse struct {
	Summary Summary  `json:"summary"`
	Records []Record `json:"records"`
}

// Repository reads the cost analysis relation.
type Repository interface {
	FetchAll(ctx context.Context) ([]Record, error)
}

// Service is the credit usage query and summary layer.
type Service interface {
	List(ctx context.Context, req ListRequest) (ListResponse, error)
	ExportCSV(ctx context.Context, req ListRequest, w io.Writer) (int, error)
}
