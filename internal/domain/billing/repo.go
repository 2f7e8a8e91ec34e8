package billing

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the persistence gateway for billing entries.
type Repository interface {
	Create(ctx context.Context, e *Entry) error
	GetByID(ctx context.Context, id uuid.UUID) (*Entry, error)
	Update(ctx context.Context, e *Entry) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Entry, error)
	// ListByTreatment returns all rows linked to one treatment, oldest first.
	ListByTreatment(ctx context.Context, treatmentID uuid.UUID) ([]*Entry, error)
	// ListLinked returns every row carrying a treatment link, for the orphan
	// sweep.
	ListLinked(ctx context.Context) ([]*Entry, error)
}
