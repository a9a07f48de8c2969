package models

import (
	"encoding/json"
	"testing"
)

func TestNetProfit(t *testing.T) {
	rec := TripRecord{KmDriven: 100, TotalEarnings: 150, AdditionalCosts: 10}
	got := rec.NetProfit(Settings{CostPerKm: 0.50})
	if got != 90 {
		t.Errorf("net = %v, want 90", got)
	}
	// A costly day can be negative.
	loss := TripRecord{KmDriven: 200, TotalEarnings: 50}
	if got := loss.NetProfit(Settings{CostPerKm: 0.75}); got != -100 {
		t.Errorf("net = %v, want -100", got)
	}
}

func TestValidateRecord(t *testing.T) {
	valid := &TripRecord{ID: "r1", Date: "2026-08-14", KmDriven: 10, TotalEarnings: 20, HoursWorked: 2}
	if err := ValidateRecord(valid); err != nil {
		t.Errorf("valid record rejected: %v", err)
	}

	cases := map[string]*TripRecord{
		"missing id":   {Date: "2026-08-14"},
		"missing date": {ID: "r1"},
		"bad date":     {ID: "r1", Date: "14.08.2026"},
		"negative km":  {ID: "r1", Date: "2026-08-14", KmDriven: -1},
		"negative pay": {ID: "r1", Date: "2026-08-14", TotalEarnings: -5},
	}
	for name, rec := range cases {
		if err := ValidateRecord(rec); err == nil {
			t.Errorf("%s: expected validation error", name)
		}
	}
}

func TestPendingOperationPayload(t *testing.T) {
	rec := &TripRecord{ID: "r1", Date: "2026-08-14", TotalEarnings: 99}
	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatal(err)
	}
	op := PendingOperation{Kind: OpCreate, RecordID: "r1", Payload: data}
	decoded, err := op.Record()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.TotalEarnings != 99 {
		t.Errorf("decoded = %+v", decoded)
	}

	del := PendingOperation{Kind: OpDelete, RecordID: "r1"}
	decoded, err = del.Record()
	if err != nil || decoded != nil {
		t.Errorf("delete payload = %+v, %v; want nil, nil", decoded, err)
	}
}
