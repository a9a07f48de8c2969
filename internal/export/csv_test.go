package export

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/gigtrack/gig/internal/models"
)

func TestWriteCSV(t *testing.T) {
	records := []models.TripRecord{
		{ID: "b", Date: "2026-08-15", KmDriven: 50, TotalEarnings: 80, HoursWorked: 4},
		{ID: "a", Date: "2026-08-14", KmDriven: 100, TotalEarnings: 150, AdditionalCosts: 10, HoursWorked: 8},
	}
	settings := models.Settings{CostPerKm: 0.50}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, records, settings); err != nil {
		t.Fatalf("write: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want header + 2", len(rows))
	}
	if rows[0][0] != "date" || rows[0][5] != "net_profit" {
		t.Errorf("header = %v", rows[0])
	}
	// Oldest first
	if rows[1][6] != "a" || rows[2][6] != "b" {
		t.Errorf("order = %v / %v", rows[1], rows[2])
	}
	// 150 - 10 - 100*0.50 = 90.00
	if rows[1][5] != "90.00" {
		t.Errorf("net profit = %q, want 90.00", rows[1][5])
	}
}

func TestWriteCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, nil, models.Settings{CostPerKm: 0.75}); err != nil {
		t.Fatalf("write: %v", err)
	}
	rows, _ := csv.NewReader(&buf).ReadAll()
	if len(rows) != 1 {
		t.Errorf("empty export should contain only the header, got %d rows", len(rows))
	}
}
