// Package domain contains the credit usage record and its classification rules.
package domain

import "time"

// UsageCategory buckets a runtime by total credits consumed.
type UsageCategory string

const (
	UsageCategoryHigh   UsageCategory = "HIGH_USAGE"
	UsageCategoryMedium UsageCategory = "MEDIUM_USAGE"
	UsageCategoryLow    UsageCategory = "LOW_USAGE"
)

// UsagePattern buckets a runtime by how many days it was active.
type UsagePattern string

const (
	UsagePatternContinuous UsagePattern = "CONTINUOUS"
	UsagePatternFrequent   UsagePattern = "FREQUENT"
	UsagePatternRegular    UsagePattern = "REGULAR"
	UsagePatternSporadic   UsagePattern = "SPORADIC"
)

// EfficiencyRating buckets a runtime by credits per active day.
type EfficiencyRating string

const (
	EfficiencyVeryEfficient EfficiencyRating = "VERY_EFFICIENT"
	EfficiencyEfficient     EfficiencyRating = "EFFICIENT"
	EfficiencyModerate      EfficiencyRating = "MODERATE"
	EfficiencyInefficient   EfficiencyRating = "INEFFICIENT"
)

// CostModel identifies the pricing model applied to a runtime.
type CostModel string

// CostModelStandard is the only model the reference view emits; the column
// exists as an extension point.
const CostModelStandard CostModel = "STANDARD"

// Record is one row of the cost analysis relation: a (runtime, data plane
// type) pair with aggregated credit metrics and derived classifications.
type Record struct {
	RuntimeKey              string           `gorm:"column:runtime_key;primaryKey" json:"runtime_key"`
	DataPlaneType           string           `gorm:"column:data_plane_type;primaryKey" json:"data_plane_type"`
	ActiveDays              int64            `gorm:"column:active_days" json:"active_days"`
	DataPlanesUsed          int64            `gorm:"column:data_planes_used" json:"data_planes_used"`
	TotalRuntimeCredits     float64          `gorm:"column:total_runtime_credits" json:"total_runtime_credits"`
	TotalDataPlaneCredits   float64          `gorm:"column:total_data_plane_credits" json:"total_data_plane_credits"`
	TotalCredits            float64          `gorm:"column:total_credits" json:"total_credits"`
	AvgDailyCredits         float64          `gorm:"column:avg_daily_credits" json:"avg_daily_credits"`
	StddevDailyCredits      float64          `gorm:"column:stddev_daily_credits" json:"stddev_daily_credits"`
	MinDailyCredits         float64          `gorm:"column:min_daily_credits" json:"min_daily_credits"`
	MaxDailyCredits         float64          `gorm:"column:max_daily_credits" json:"max_daily_credits"`
	CreditsPerActiveDay     float64          `gorm:"column:credits_per_active_day" json:"credits_per_active_day"`
	RuntimeCostPercentage   float64          `gorm:"column:runtime_cost_percentage" json:"runtime_cost_percentage"`
	DataPlaneCostPercentage float64          `gorm:"column:data_plane_cost_percentage" json:"data_plane_cost_percentage"`
	CostModel               CostModel        `gorm:"column:cost_model" json:"cost_model"`
	UsageCategory           UsageCategory    `gorm:"column:usage_category" json:"usage_category"`
	UsagePattern            UsagePattern     `gorm:"column:usage_pattern" json:"usage_pattern"`
	EfficiencyRating        EfficiencyRating `gorm:"column:efficiency_rating" json:"efficiency_rating"`
	FirstUsageDate          time.Time        `gorm:"column:first_usage_date" json:"first_usage_date"`
	LastUsageDate           time.Time        `gorm:"column:last_usage_date" json:"last_usage_date"`
}

// TableName sets the source relation name.
func (Record) TableName() string { return "openflow_cost_analysis" }

// Columns is the stable read schema, in export order.
var Columns = []string{
	"RUNTIME_KEY",
	"DATA_PLANE_TYPE",
	"ACTIVE_DAYS",
	"DATA_PLANES_USED",
	"TOTAL_RUNTIME_CREDITS",
	"TOTAL_DATA_PLANE_CREDITS",
	"TOTAL_CREDITS",
	"AVG_DAILY_CREDITS",
	"STDDEV_DAILY_CREDITS",
	"MIN_DAILY_CREDITS",
	"MAX_DAILY_CREDITS",
	"CREDITS_PER_ACTIVE_DAY",
	"RUNTIME_COST_PERCENTAGE",
	"DATA_PLANE_COST_PERCENTAGE",
	"COST_MODEL",
	"USAGE_CATEGORY",
	"USAGE_PATTERN",
	"EFFICIENCY_RATING",
	"FIRST_USAGE_DATE",
	"LAST_USAGE_DATE",
}
