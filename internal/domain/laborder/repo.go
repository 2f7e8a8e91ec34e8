package laborder

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the persistence gateway for lab orders.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*Order, error)
	Update(ctx context.Context, o *Order) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Order, error)
	// ListByTreatment returns orders linked to one treatment, oldest first.
	// The schema allows at most one, but the synchronizer still reads the
	// list defensively.
	ListByTreatment(ctx context.Context, treatmentID uuid.UUID) ([]*Order, error)
	// ListUnlinkedByPatient returns pending orders with no treatment link
	// for one patient, for relink recovery. Cancelled and completed orders
	// are never relink candidates.
	ListUnlinkedByPatient(ctx context.Context, patientID uuid.UUID) ([]*Order, error)
	// ListLinked returns every order carrying a treatment link, for the
	// orphan sweep.
	ListLinked(ctx context.Context) ([]*Order, error)
}
