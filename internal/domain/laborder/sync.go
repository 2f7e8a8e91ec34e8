package laborder

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/omarmosa2/dental-clinic-sub005/internal/domain/treatment"
	"github.com/omarmosa2/dental-clinic-sub005/pkg/money"
)

// LabDirectory resolves a lab id to a display name.
type LabDirectory interface {
	LabName(ctx context.Context, id uuid.UUID) (string, error)
}

// Synchronizer keeps the 0-or-1 lab order linked to a prosthetic treatment
// in step with the treatment's lab selection and lab cost. For any other
// category the linked order, if one exists, is removed.
type Synchronizer struct {
	orders Repository
	labs   LabDirectory
	log    zerolog.Logger
}

func NewSynchronizer(orders Repository, labs LabDirectory, log zerolog.Logger) *Synchronizer {
	return &Synchronizer{orders: orders, labs: labs, log: log}
}

// FindLinkedOrder returns the order linked to the treatment, or nil. The
// schema's unique index makes more than one row impossible; if the store
// returns several anyway, the first is treated as canonical and the rest are
// logged.
func (s *Synchronizer) FindLinkedOrder(ctx context.Context, treatmentID uuid.UUID) (*Order, error) {
	linked, err := s.orders.ListByTreatment(ctx, treatmentID)
	if err != nil {
		return nil, fmt.Errorf("list linked orders: %w", err)
	}
	if len(linked) == 0 {
		return nil, nil
	}
	if len(linked) > 1 {
		s.log.Warn().Stringer("treatment_id", treatmentID).Int("count", len(linked)).
			Msg("multiple lab orders linked to one treatment, using first")
	}
	return linked[0], nil
}

// FindOrRelinkUnlinked is the recovery path: when no order is linked to the
// treatment but an unlinked pending order exists for the same patient, that
// order is relinked in place instead of creating a duplicate. This
// accommodates orders placed before the treatment record existed. Cancelled
// and completed orders are dead history and are never resurrected here.
func (s *Synchronizer) FindOrRelinkUnlinked(ctx context.Context, patientID, treatmentID uuid.UUID) (*Order, error) {
	if o, err := s.FindLinkedOrder(ctx, treatmentID); err != nil || o != nil {
		return o, err
	}
	unlinked, err := s.orders.ListUnlinkedByPatient(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("list unlinked orders: %w", err)
	}
	var o *Order
	for _, candidate := range unlinked {
		if candidate.Status == StatusPending {
			o = candidate
			break
		}
	}
	if o == nil {
		return nil, nil
	}
	id := treatmentID
	o.TreatmentID = &id
	if err := s.orders.Update(ctx, o); err != nil {
		return nil, fmt.Errorf("relink order %s: %w", o.ID, err)
	}
	s.log.Info().Stringer("order_id", o.ID).Stringer("treatment_id", treatmentID).
		Msg("relinked unlinked lab order")
	return o, nil
}

func (s *Synchronizer) serviceName(ctx context.Context, t *treatment.ToothTreatment, labID uuid.UUID) string {
	name, err := s.labs.LabName(ctx, labID)
	if err != nil {
		s.log.Warn().Err(err).Stringer("lab_id", labID).Msg("lab lookup failed for order description")
		return fmt.Sprintf("%s - tooth %d", t.TreatmentType, t.ToothNumber)
	}
	return fmt.Sprintf("%s - tooth %d (%s)", t.TreatmentType, t.ToothNumber, name)
}

// UpsertOrder creates or updates the single order linked to the treatment.
// Calling it twice with identical arguments leaves exactly one row.
func (s *Synchronizer) UpsertOrder(ctx context.Context, t *treatment.ToothTreatment, labID uuid.UUID, labCost float64) (*Order, error) {
	labCost = money.Round(labCost)

	o, err := s.FindOrRelinkUnlinked(ctx, t.PatientID, t.ID)
	if err != nil {
		return nil, err
	}
	if o != nil {
		o.LabID = labID
		o.Cost = labCost
		o.ToothNumber = t.ToothNumber
		o.ServiceName = s.serviceName(ctx, t, labID)
		o.RemainingBalance = money.Round(labCost - o.PaidAmount)
		if err := s.orders.Update(ctx, o); err != nil {
			return nil, fmt.Errorf("update lab order: %w", err)
		}
		return o, nil
	}

	id := t.ID
	o = &Order{
		LabID:            labID,
		PatientID:        t.PatientID,
		TreatmentID:      &id,
		ToothNumber:      t.ToothNumber,
		ServiceName:      s.serviceName(ctx, t, labID),
		Cost:             labCost,
		PaidAmount:       0,
		RemainingBalance: labCost,
		Status:           StatusPending,
		OrderDate:        time.Now(),
	}
	if err := s.orders.Create(ctx, o); err != nil {
		return nil, fmt.Errorf("create lab order: %w", err)
	}
	return o, nil
}

// RemoveOrderIfUnneeded deletes the treatment's linked order when the
// treatment no longer warrants one: no lab selected, no lab cost, or a
// category other than prosthetic. Returns whether an order was removed.
func (s *Synchronizer) RemoveOrderIfUnneeded(ctx context.Context, t *treatment.ToothTreatment, labID uuid.UUID, labCost float64) (bool, error) {
	needed := t.Category == treatment.CategoryProsthetic && labID != uuid.Nil && money.Round(labCost) > 0
	if needed {
		return false, nil
	}
	o, err := s.FindLinkedOrder(ctx, t.ID)
	if err != nil {
		return false, err
	}
	if o == nil {
		return false, nil
	}
	if err := s.orders.Delete(ctx, o.ID); err != nil {
		return false, fmt.Errorf("delete lab order %s: %w", o.ID, err)
	}
	return true, nil
}

// RemoveOnTreatmentDelete unconditionally deletes the treatment's linked
// order, for the delete cascade. Returns whether an order was removed.
func (s *Synchronizer) RemoveOnTreatmentDelete(ctx context.Context, treatmentID uuid.UUID) (bool, error) {
	o, err := s.FindLinkedOrder(ctx, treatmentID)
	if err != nil {
		return false, err
	}
	if o == nil {
		return false, nil
	}
	if err := s.orders.Delete(ctx, o.ID); err != nil {
		return false, fmt.Errorf("delete lab order %s: %w", o.ID, err)
	}
	return true, nil
}

// StrandedOrders returns linked orders whose treatment no longer exists.
func (s *Synchronizer) StrandedOrders(ctx context.Context, exists func(ctx context.Context, id uuid.UUID) bool) ([]*Order, error) {
	linked, err := s.orders.ListLinked(ctx)
	if err != nil {
		return nil, fmt.Errorf("list linked orders: %w", err)
	}
	var stranded []*Order
	for _, o := range linked {
		if !exists(ctx, *o.TreatmentID) {
			stranded = append(stranded, o)
		}
	}
	return stranded, nil
}

// CancelOrder marks a stranded order cancelled and clears its link.
func (s *Synchronizer) CancelOrder(ctx context.Context, o *Order) error {
	o.TreatmentID = nil
	o.Status = StatusCancelled
	if err := s.orders.Update(ctx, o); err != nil {
		return fmt.Errorf("cancel order %s: %w", o.ID, err)
	}
	return nil
}

func (s *Synchronizer) OrdersForPatient(ctx context.Context, patientID uuid.UUID) ([]*Order, error) {
	return s.orders.ListByPatient(ctx, patientID)
}
