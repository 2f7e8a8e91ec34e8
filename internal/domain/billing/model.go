package billing

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusPending   = "pending"
	StatusPartial   = "partial"
	StatusCompleted = "completed"
)

// Entry is one financial record, optionally linked to a treatment. Amount is
// this entry's own paid amount; TotalDue, TotalPaid and RemainingBalance are
// aggregate snapshot fields that every row linked to the same treatment
// mirrors identically after each reconciliation.
type Entry struct {
	ID               uuid.UUID  `db:"id" json:"id"`
	PatientID        uuid.UUID  `db:"patient_id" json:"patient_id"`
	TreatmentID      *uuid.UUID `db:"tooth_treatment_id" json:"tooth_treatment_id,omitempty"`
	Amount           float64    `db:"amount" json:"amount"`
	TotalDue         float64    `db:"total_amount_due" json:"total_amount_due"`
	TotalPaid        float64    `db:"treatment_total_paid" json:"treatment_total_paid"`
	RemainingBalance float64    `db:"remaining_balance" json:"remaining_balance"`
	Status           string     `db:"status" json:"status"`
	PaymentDate      time.Time  `db:"payment_date" json:"payment_date"`
	Description      string     `db:"description" json:"description"`
	Notes            *string    `db:"notes" json:"notes,omitempty"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updated_at"`
}

// Summary is the derived billing state for one treatment.
type Summary struct {
	TreatmentID      uuid.UUID `json:"treatment_id"`
	TotalDue         float64   `json:"total_amount_due"`
	TotalPaid        float64   `json:"treatment_total_paid"`
	RemainingBalance float64   `json:"remaining_balance"`
	Status           string    `json:"status"`
	EntryCount       int       `json:"entry_count"`
}
