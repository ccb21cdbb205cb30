package service

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	creditusagedomain "github.com/smallbiznis/flowsight/internal/creditusage/domain"
)

const dateLayout = "2006-01-02"

// WriteCSV serializes rows with the stable column header. Numbers use the
// shortest representation that survives a parse round trip.
func WriteCSV(w io.Writer, rows []creditusagedomain.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(creditusagedomain.Columns); err != nil {
		return err
	}
	for _, row := range rows {
		record := []string{
			row.RuntimeKey,
			row.DataPlaneType,
			strconv.FormatInt(row.ActiveDays, 10),
			strconv.FormatInt(row.DataPlanesUsed, 10),
			formatFloat(row.TotalRuntimeCredits),
			formatFloat(row.TotalDataPlaneCredits),
			formatFloat(row.TotalCredits),
			formatFloat(row.AvgDailyCredits),
			formatFloat(row.StddevDailyCredits),
			formatFloat(row.MinDailyCredits),
			formatFloat(row.MaxDailyCredits),
			formatFloat(row.CreditsPerActiveDay),
			formatFloat(row.RuntimeCostPercentage),
			formatFloat(row.DataPlaneCostPercentage),
			string(row.CostModel),
			string(row.UsageCategory),
			string(row.UsagePattern),
			string(row.EfficiencyRating),
			row.FirstUsageDate.Format(dateLayout),
			row.LastUsageDate.Format(dateLayout),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ParseCSV reads an export back into records.
func ParseCSV(r io.Reader) ([]creditusagedomain.Record, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) != len(creditusagedomain.Columns) {
		return nil, fmt.Errorf("expected %d columns, got %d", len(creditusagedomain.Columns), len(header))
	}

	var rows []creditusagedomain.Record
	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return nil, err
		}
		row, err := parseRecord(record)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		rows = append(rows, row)
	}
}

func parseRecord(record []string) (creditusagedomain.Record, error) {
	var (
		row creditusagedomain.Record
		err error
	)

	row.RuntimeKey = record[0]
	row.DataPlaneType = record[1]
	if row.ActiveDays, err = strconv.ParseInt(record[2], 10, 64); err != nil {
		return row, err
	}
	if row.DataPlanesUsed, err = strconv.ParseInt(record[3], 10, 64); err != nil {
		return row, err
	}

	floats := []*float64{
		&row.TotalRuntimeCredits,
		&row.TotalDataPlaneCredits,
		&row.TotalCredits,
		&row.AvgDailyCredits,
		&row.StddevDailyCredits,
		&row.MinDailyCredits,
		&row.MaxDailyCredits,
		&row.CreditsPerActiveDay,
		&row.RuntimeCostPercentage,
		&row.DataPlaneCostPercentage,
	}
	for i, dst := range floats {
		if *dst, err = strconv.ParseFloat(record[4+i], 64); err != nil {
			return row, err
		}
	}

	row.CostModel = creditusagedomain.CostModel(record[14])
	row.UsageCategory = creditusagedomain.UsageCategory(record[15])
	row.UsagePattern = creditusagedomain.UsagePattern(record[16])
	row.EfficiencyRating = creditusagedomain.EfficiencyRating(record[17])
	if row.FirstUsageDate, err = time.Parse(dateLayout, record[18]); err != nil {
		return row, err
	}
	if row.LastUsageDate, err = time.Parse(dateLayout, record[19]); err != nil {
		return row, err
	}
	return row, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
