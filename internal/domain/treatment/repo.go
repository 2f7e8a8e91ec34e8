package treatment

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the persistence gateway for tooth treatments.
type Repository interface {
	Create(ctx context.Context, t *ToothTreatment) error
	GetByID(ctx context.Context, id uuid.UUID) (*ToothTreatment, error)
	Update(ctx context.Context, t *ToothTreatment) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*ToothTreatment, error)
	// ListByTooth returns the plan for one tooth sorted by priority ascending.
	ListByTooth(ctx context.Context, patientID uuid.UUID, toothNumber int) ([]*ToothTreatment, error)
	// MaxPriority returns the highest priority in use for the tooth, or 0
	// when the tooth has no treatments.
	MaxPriority(ctx context.Context, patientID uuid.UUID, toothNumber int) (int, error)
	// Reorder assigns priority = index+1 to each id in orderedIDs, as one
	// batch. Callers must pass the complete order for the tooth.
	Reorder(ctx context.Context, orderedIDs []uuid.UUID) error
}

// SessionRepository is the persistence gateway for treatment sessions.
type SessionRepository interface {
	Create(ctx context.Context, s *Session) error
	GetByID(ctx context.Context, id uuid.UUID) (*Session, error)
	Update(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByTreatment(ctx context.Context, treatmentID uuid.UUID) ([]*Session, error)
	DeleteByTreatment(ctx context.Context, treatmentID uuid.UUID) error
}
