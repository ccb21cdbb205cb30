package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyUsageBoundaries(t *testing.T) {
	tests := []struct {
		credits float64
		want    UsageCategory
	}{
		{0, UsageCategoryLow},
		{100, UsageCategoryLow},
		{100.01, UsageCategoryMedium},
		{1000, UsageCategoryMedium},
		{1000.0001, UsageCategoryHigh},
		{1001, UsageCategoryHigh},
		{1500, UsageCategoryHigh},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyUsage(tt.credits), "credits=%v", tt.credits)
	}
}

func TestClassifyPatternBoundaries(t *testing.T) {
	tests := []struct {
		days int64
		want UsagePattern
	}{
		{0, UsagePatternSporadic},
		{5, UsagePatternSporadic},
		{7, UsagePatternSporadic},
		{8, UsagePatternRegular},
		{30, UsagePatternRegular},
		{31, UsagePatternFrequent},
		{60, UsagePatternFrequent},
		{61, UsagePatternContinuous},
		{80, UsagePatternContinuous},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyPattern(tt.days), "days=%d", tt.days)
	}
}

func TestClassifyEfficiencyBoundaries(t *testing.T) {
	tests := []struct {
		perDay float64
		want   EfficiencyRating
	}{
		{0, EfficiencyVeryEfficient},
		{9.99, EfficiencyVeryEfficient},
		{10, EfficiencyEfficient},
		{49.99, EfficiencyEfficient},
		{50, EfficiencyModerate},
		{99.99, EfficiencyModerate},
		{100, EfficiencyInefficient},
		{500, EfficiencyInefficient},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyEfficiency(tt.perDay), "perDay=%v", tt.perDay)
	}
}

func TestPerActiveDayZeroDivisionSafe(t *testing.T) {
	assert.Zero(t, PerActiveDay(100, 0))
	assert.Zero(t, PerActiveDay(100, -1))
	assert.Equal(t, 25.0, PerActiveDay(100, 4))
}

func TestCostSharesZeroTotal(t *testing.T) {
	runtimePct, dataPlanePct := CostShares(0, 0)
	assert.Zero(t, runtimePct)
	assert.Zero(t, dataPlanePct)
}

func TestCostSharesSumToHundred(t *testing.T) {
	cases := [][2]float64{
		{30, 70},
		{1, 2},
		{0.1, 99.9},
		{123.456, 654.321},
	}
	for _, c := range cases {
		runtimePct, dataPlanePct := CostShares(c[0], c[1])
		assert.InDelta(t, 100, runtimePct+dataPlanePct, 0.01, "runtime=%v dataPlane=%v", c[0], c[1])
	}
}

func TestDeriveFillsEverything(t *testing.T) {
	rows := []Record{
		{RuntimeKey: "heavy", TotalRuntimeCredits: 1400, TotalDataPlaneCredits: 100, ActiveDays: 80},
		{RuntimeKey: "light", TotalRuntimeCredits: 40, TotalDataPlaneCredits: 10, ActiveDays: 5},
	}
	for i := range rows {
		rows[i].Derive()
	}

	assert.Equal(t, UsageCategoryHigh, rows[0].UsageCategory)
	assert.Equal(t, UsagePatternContinuous, rows[0].UsagePattern)
	assert.Equal(t, 1500.0, rows[0].TotalCredits)

	assert.Equal(t, UsageCategoryLow, rows[1].UsageCategory)
	assert.Equal(t, UsagePatternSporadic, rows[1].UsagePattern)
	assert.Equal(t, 50.0, rows[1].TotalCredits)

	for _, row := range rows {
		assert.Equal(t, row.TotalRuntimeCredits+row.TotalDataPlaneCredits, row.TotalCredits)
		assert.Equal(t, CostModelStandard, row.CostModel)
		assert.InDelta(t, 100, row.RuntimeCostPercentage+row.DataPlaneCostPercentage, 0.01)
	}
}
