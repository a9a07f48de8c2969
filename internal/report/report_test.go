package report

import (
	"math"
	"testing"

	"github.com/gigtrack/gig/internal/models"
)

var settings = models.Settings{CostPerKm: 0.50}

func rec(id, date string, km, earnings, costs, hours float64) models.TripRecord {
	return models.TripRecord{
		ID: id, Date: date,
		KmDriven: km, TotalEarnings: earnings,
		AdditionalCosts: costs, HoursWorked: hours,
	}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestSummarize(t *testing.T) {
	records := []models.TripRecord{
		rec("a", "2026-08-14", 100, 150, 10, 8),
		rec("b", "2026-08-15", 50, 80, 0, 4),
	}
	s := Summarize(records, settings)

	if s.Trips != 2 || s.KmDriven != 150 || s.HoursWorked != 12 {
		t.Errorf("totals: %+v", s)
	}
	// (150-10-50) + (80-0-25) = 145
	if !almostEqual(s.NetProfit, 145) {
		t.Errorf("net = %v, want 145", s.NetProfit)
	}
	if !almostEqual(s.VehicleCosts, 75) {
		t.Errorf("vehicle costs = %v, want 75", s.VehicleCosts)
	}
	if !almostEqual(s.ProfitPerHour, 145.0/12) {
		t.Errorf("per hour = %v", s.ProfitPerHour)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil, settings)
	if s.Trips != 0 || s.ProfitPerHour != 0 || s.ProfitPerKm != 0 {
		t.Errorf("empty summary should be all zeros: %+v", s)
	}
}

func TestGroupByPeriod(t *testing.T) {
	records := []models.TripRecord{
		rec("a", "2026-08-14", 10, 20, 0, 1), // Friday, week 33
		rec("b", "2026-08-14", 10, 30, 0, 1),
		rec("c", "2026-08-17", 10, 40, 0, 1), // Monday, week 34
		rec("d", "2026-09-01", 10, 50, 0, 1),
	}

	days := GroupByPeriod(records, PeriodDay, settings)
	if len(days) != 3 || days[0].Label != "2026-08-14" || days[0].Summary.Trips != 2 {
		t.Errorf("day groups: %+v", days)
	}

	weeks := GroupByPeriod(records, PeriodWeek, settings)
	if len(weeks) != 3 {
		t.Fatalf("week groups: %+v", weeks)
	}
	if weeks[0].Label != "2026-W33" || weeks[1].Label != "2026-W34" {
		t.Errorf("week labels: %q %q", weeks[0].Label, weeks[1].Label)
	}

	months := GroupByPeriod(records, PeriodMonth, settings)
	if len(months) != 2 || months[0].Label != "2026-08" || months[1].Label != "2026-09" {
		t.Errorf("month groups: %+v", months)
	}
	if months[0].Summary.Trips != 3 {
		t.Errorf("august trips = %d, want 3", months[0].Summary.Trips)
	}
}

func TestGroupByPeriodSkipsBadDates(t *testing.T) {
	records := []models.TripRecord{
		rec("a", "2026-08-14", 10, 20, 0, 1),
		rec("b", "not-a-date", 10, 30, 0, 1),
	}
	groups := GroupByPeriod(records, PeriodDay, settings)
	if len(groups) != 1 {
		t.Errorf("groups = %+v", groups)
	}
}

func TestParsePeriod(t *testing.T) {
	for _, good := range []string{"day", "week", "month"} {
		if _, err := ParsePeriod(good); err != nil {
			t.Errorf("ParsePeriod(%q): %v", good, err)
		}
	}
	if _, err := ParsePeriod("year"); err == nil {
		t.Error("ParsePeriod(year) should fail")
	}
}

func TestSortByDateIsStable(t *testing.T) {
	records := []models.TripRecord{
		rec("z", "2026-08-14", 0, 0, 0, 0),
		rec("a", "2026-08-14", 0, 0, 0, 0),
		rec("m", "2026-08-01", 0, 0, 0, 0),
	}
	SortByDate(records)
	want := []string{"m", "a", "z"}
	for i, id := range want {
		if records[i].ID != id {
			t.Fatalf("order = %v, want %v", records, want)
		}
	}
}
