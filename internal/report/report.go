// Package report aggregates trip records into earnings summaries.
package report

import (
	"fmt"
	"sort"
	"time"

	"github.com/gigtrack/gig/internal/models"
)

// Period selects the grouping granularity for reports.
type Period string

const (
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
)

// ParsePeriod validates a user-supplied period name.
func ParsePeriod(s string) (Period, error) {
	switch Period(s) {
	case PeriodDay, PeriodWeek, PeriodMonth:
		return Period(s), nil
	}
	return "", fmt.Errorf("unknown period %q (want day, week or month)", s)
}

// Summary holds aggregated figures for a set of trip records.
type Summary struct {
	Trips           int     `json:"trips"`
	KmDriven        float64 `json:"km_driven"`
	HoursWorked     float64 `json:"hours_worked"`
	TotalEarnings   float64 `json:"total_earnings"`
	AdditionalCosts float64 `json:"additional_costs"`
	VehicleCosts    float64 `json:"vehicle_costs"`
	NetProfit       float64 `json:"net_profit"`
	ProfitPerHour   float64 `json:"profit_per_hour"`
	ProfitPerKm     float64 `json:"profit_per_km"`
}

// Group is a summary labelled with the period it covers.
type Group struct {
	Label   string  `json:"label"` // e.g. "2026-08-14", "2026-W33", "2026-08"
	Summary Summary `json:"summary"`
}

// Summarize aggregates records under the given cost model.
func Summarize(records []models.TripRecord, settings models.Settings) Summary {
	var s Summary
	for i := range records {
		rec := &records[i]
		s.Trips++
		s.KmDriven += rec.KmDriven
		s.HoursWorked += rec.HoursWorked
		s.TotalEarnings += rec.TotalEarnings
		s.AdditionalCosts += rec.AdditionalCosts
		s.VehicleCosts += rec.KmDriven * settings.CostPerKm
		s.NetProfit += rec.NetProfit(settings)
	}
	if s.HoursWorked > 0 {
		s.ProfitPerHour = s.NetProfit / s.HoursWorked
	}
	if s.KmDriven > 0 {
		s.ProfitPerKm = s.NetProfit / s.KmDriven
	}
	return s
}

// GroupByPeriod buckets records by day, ISO week or month and summarizes each
// bucket. Groups are returned in chronological order. Records with unparsable
// dates are skipped.
func GroupByPeriod(records []models.TripRecord, period Period, settings models.Settings) []Group {
	buckets := make(map[string][]models.TripRecord)
	for _, rec := range records {
		t, err := time.Parse(models.DateLayout, rec.Date)
		if err != nil {
			continue
		}
		key := bucketKey(t, period)
		buckets[key] = append(buckets[key], rec)
	}

	labels := make([]string, 0, len(buckets))
	for label := range buckets {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	groups := make([]Group, 0, len(labels))
	for _, label := range labels {
		groups = append(groups, Group{
			Label:   label,
			Summary: Summarize(buckets[label], settings),
		})
	}
	return groups
}

func bucketKey(t time.Time, period Period) string {
	switch period {
	case PeriodWeek:
		year, week := t.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", year, week)
	case PeriodMonth:
		return t.Format("2006-01")
	default:
		return t.Format(models.DateLayout)
	}
}

// SortByDate orders records oldest first, with ID as tiebreaker so the order
// is stable across runs.
func SortByDate(records []models.TripRecord) {
	sort.Slice(records, func(i, j int) bool {
		if records[i].Date != records[j].Date {
			return records[i].Date < records[j].Date
		}
		return records[i].ID < records[j].ID
	})
}
