package domain

// Classification thresholds. Ordered checks, first match wins; boundaries
// are strict so a runtime at exactly 1000 credits stays MEDIUM_USAGE.
const (
	highUsageCredits   = 1000
	mediumUsageCredits = 100

	continuousDays = 60
	frequentDays   = 30
	regularDays    = 7

	veryEfficientPerDay = 10
	efficientPerDay     = 50
	moderatePerDay      = 100
)

// ClassifyUsage buckets total credits into a usage category.
func ClassifyUsage(totalCredits float64) UsageCategory {
	switch {
	case totalCredits > highUsageCredits:
		return UsageCategoryHigh
	case totalCredits > mediumUsageCredits:
		return UsageCategoryMedium
	default:
		return UsageCategoryLow
	}
}

// ClassifyPattern buckets active days into a usage pattern.
func ClassifyPattern(activeDays int64) UsagePattern {
	switch {
	case activeDays > continuousDays:
		return UsagePatternContinuous
	case activeDays > frequentDays:
		return UsagePatternFrequent
	case activeDays > regularDays:
		return UsagePatternRegular
	default:
		return UsagePatternSporadic
	}
}

// ClassifyEfficiency buckets credits per active day into an efficiency rating.
func ClassifyEfficiency(creditsPerActiveDay float64) EfficiencyRating {
	switch {
	case creditsPerActiveDay < veryEfficientPerDay:
		return EfficiencyVeryEfficient
	case creditsPerActiveDay < efficientPerDay:
		return EfficiencyEfficient
	case creditsPerActiveDay < moderatePerDay:
		return EfficiencyModerate
	default:
		return EfficiencyInefficient
	}
}

// PerActiveDay computes total credits per active day, 0 when no days.
func PerActiveDay(totalCredits float64, activeDays int64) float64 {
	if activeDays <= 0 {
		return 0
	}
	return totalCredits / float64(activeDays)
}

// CostShares splits runtime and data plane credits into percentages of the
// total. Both are 0 when the total is 0.
func CostShares(runtimeCredits, dataPlaneCredits float64) (runtimePct, dataPlanePct float64) {
	total := runtimeCredits + dataPlaneCredits
	if total <= 0 {
		return 0, 0
	}
	return runtimeCredits / total * 100, dataPlaneCredits / total * 100
}

// Derive fills every derived and classified field from the aggregated ones.
func (r *Record) Derive() {
	r.TotalCredits = r.TotalRuntimeCredits + r.TotalDataPlaneCredits
	r.CreditsPerActiveDay = PerActiveDay(r.TotalCredits, r.ActiveDays)
	r.RuntimeCostPercentage, r.DataPlaneCostPercentage = CostShares(r.TotalRuntimeCredits, r.TotalDataPlaneCredits)
	r.CostModel = CostModelStandard
	r.UsageCategory = ClassifyUsage(r.TotalCredits)
	r.UsagePattern = ClassifyPattern(r.ActiveDays)
	r.EfficiencyRating = ClassifyEfficiency(r.CreditsPerActiveDay)
}
