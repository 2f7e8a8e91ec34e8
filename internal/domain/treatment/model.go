package treatment

import (
	"time"

	"github.com/google/uuid"
)

// Treatment categories. CategoryProsthetic is the one category that carries
// an optional laboratory work order alongside the clinical record.
const (
	CategoryPreventive  = "preventive"
	CategoryRestorative = "restorative"
	CategoryEndodontic  = "endodontic"
	CategoryPeriodontal = "periodontal"
	CategoryProsthetic  = "prosthetic"
	CategoryOrthodontic = "orthodontic"
	CategorySurgical    = "surgical"
	CategoryCosmetic    = "cosmetic"
)

const (
	StatusPlanned    = "planned"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

// ToothTreatment is one planned or performed procedure on one tooth.
// Priority is the 1-based execution order within the tooth's plan; for a
// fixed (patient, tooth_number) pair the priorities of all treatments form a
// contiguous sequence 1..N.
type ToothTreatment struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	PatientID      uuid.UUID  `db:"patient_id" json:"patient_id"`
	ToothNumber    int        `db:"tooth_number" json:"tooth_number"`
	ToothName      string     `db:"tooth_name" json:"tooth_name"`
	TreatmentType  string     `db:"treatment_type" json:"treatment_type"`
	Category       string     `db:"treatment_category" json:"treatment_category"`
	Status         string     `db:"treatment_status" json:"treatment_status"`
	Cost           float64    `db:"cost" json:"cost"`
	Priority       int        `db:"priority" json:"priority"`
	StartDate      time.Time  `db:"start_date" json:"start_date"`
	CompletionDate *time.Time `db:"completion_date" json:"completion_date,omitempty"`
	Notes          *string    `db:"notes" json:"notes,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}

// Session is a clinical visit belonging to exactly one treatment. Sessions
// are not financial records; they only matter to reconciliation when their
// parent treatment is deleted.
type Session struct {
	ID          uuid.UUID `db:"id" json:"id"`
	TreatmentID uuid.UUID `db:"tooth_treatment_id" json:"tooth_treatment_id"`
	Date        time.Time `db:"session_date" json:"session_date"`
	Description string    `db:"description" json:"description"`
	Notes       *string   `db:"notes" json:"notes,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

func ValidCategory(c string) bool {
	switch c {
	case CategoryPreventive, CategoryRestorative, CategoryEndodontic, CategoryPeriodontal,
		CategoryProsthetic, CategoryOrthodontic, CategorySurgical, CategoryCosmetic:
		return true
	}
	return false
}

func ValidStatus(s string) bool {
	switch s {
	case StatusPlanned, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}
