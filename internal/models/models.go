package models

import (
	"encoding/json"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// DateLayout is the calendar-date format used for TripRecord.Date.
const DateLayout = "2006-01-02"

// TripRecord holds one completed trip's earnings, cost and distance data.
// IDs are generated client-side so records can be created offline.
type TripRecord struct {
	ID              string  `json:"id" validate:"required"`
	Date            string  `json:"date" validate:"required,datetime=2006-01-02"`
	KmDriven        float64 `json:"km_driven" validate:"gte=0"`
	TotalEarnings   float64 `json:"total_earnings" validate:"gte=0"`
	AdditionalCosts float64 `json:"additional_costs,omitempty" validate:"gte=0"`
	HoursWorked     float64 `json:"hours_worked,omitempty" validate:"gte=0"`
}

// NewRecordID generates a client-side record ID.
func NewRecordID() string {
	return uuid.NewString()
}

// OperationKind is the mutation type of a pending operation.
type OperationKind string

const (
	OpCreate OperationKind = "create"
	OpUpdate OperationKind = "update"
	OpDelete OperationKind = "delete"
)

// PendingOperation is a queued, not-yet-confirmed local mutation awaiting
// remote application. Payload carries the full record snapshot for create and
// update; it is nil for delete.
type PendingOperation struct {
	OperationID string          `json:"operation_id"`
	Kind        OperationKind   `json:"kind"`
	RecordID    string          `json:"record_id"`
	Payload     json.RawMessage `json:"payload,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Record decodes the payload snapshot. Returns nil for delete operations.
func (op *PendingOperation) Record() (*TripRecord, error) {
	if len(op.Payload) == 0 {
		return nil, nil
	}
	var rec TripRecord
	if err := json.Unmarshal(op.Payload, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Settings holds the user's cost model.
type Settings struct {
	CostPerKm float64 `json:"cost_per_km"`
}

// DefaultCostPerKm is applied when no cost has been configured.
const DefaultCostPerKm = 0.75

// NetProfit returns earnings minus additional costs minus the per-km vehicle cost.
func (r *TripRecord) NetProfit(s Settings) float64 {
	return r.TotalEarnings - r.AdditionalCosts - r.KmDriven*s.CostPerKm
}

// Session is the process-wide identity and entitlement state, constructed once
// at startup and passed explicitly to the components that need it.
type Session struct {
	UserID  string
	Email   string
	Premium bool
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateRecord checks a TripRecord against its field constraints.
func ValidateRecord(rec *TripRecord) error {
	return validate.Struct(rec)
}
