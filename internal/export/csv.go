// Package export writes trip records to interchange formats.
package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/gigtrack/gig/internal/models"
	"github.com/gigtrack/gig/internal/report"
)

var csvHeader = []string{
	"date", "km_driven", "hours_worked", "total_earnings",
	"additional_costs", "net_profit", "id",
}

// WriteCSV writes records to w as CSV, oldest first, with the net profit
// computed under the given cost model.
func WriteCSV(w io.Writer, records []models.TripRecord, settings models.Settings) error {
	sorted := make([]models.TripRecord, len(records))
	copy(sorted, records)
	report.SortByDate(sorted)

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for i := range sorted {
		rec := &sorted[i]
		row := []string{
			rec.Date,
			fmt.Sprintf("%.2f", rec.KmDriven),
			fmt.Sprintf("%.2f", rec.HoursWorked),
			fmt.Sprintf("%.2f", rec.TotalEarnings),
			fmt.Sprintf("%.2f", rec.AdditionalCosts),
			fmt.Sprintf("%.2f", rec.NetProfit(settings)),
			rec.ID,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
