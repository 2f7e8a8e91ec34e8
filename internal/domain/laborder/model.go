package laborder

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// Order is an external laboratory work order. At most one order is linked to
// a given treatment at a time, and only while that treatment's category is
// prosthetic.
type Order struct {
	ID               uuid.UUID  `db:"id" json:"id"`
	LabID            uuid.UUID  `db:"lab_id" json:"lab_id"`
	PatientID        uuid.UUID  `db:"patient_id" json:"patient_id"`
	TreatmentID      *uuid.UUID `db:"tooth_treatment_id" json:"tooth_treatment_id,omitempty"`
	ToothNumber      int        `db:"tooth_number" json:"tooth_number"`
	ServiceName      string     `db:"service_name" json:"service_name"`
	Cost             float64    `db:"cost" json:"cost"`
	PaidAmount       float64    `db:"paid_amount" json:"paid_amount"`
	RemainingBalance float64    `db:"remaining_balance" json:"remaining_balance"`
	Status           string     `db:"status" json:"status"`
	OrderDate        time.Time  `db:"order_date" json:"order_date"`
	Notes            *string    `db:"notes" json:"notes,omitempty"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updated_at"`
}
