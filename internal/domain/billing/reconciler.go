package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/omarmosa2/dental-clinic-sub005/internal/domain/treatment"
	"github.com/omarmosa2/dental-clinic-sub005/pkg/money"
)

// PatientDirectory resolves a patient id to a display name for generated
// descriptions.
type PatientDirectory interface {
	PatientName(ctx context.Context, id uuid.UUID) (string, error)
}

// Reconciler derives and maintains the billing rows that mirror a
// treatment's cost. All linked rows for one treatment carry the same
// aggregate snapshot (total due, total paid, remaining balance, status);
// reconciliation recomputes that snapshot and rewrites every row.
type Reconciler struct {
	entries  Repository
	patients PatientDirectory
	log      zerolog.Logger
}

func NewReconciler(entries Repository, patients PatientDirectory, log zerolog.Logger) *Reconciler {
	return &Reconciler{entries: entries, patients: patients, log: log}
}

// DeriveStatus computes the payment status from a pre-rounded aggregate
// snapshot: completed when nothing is owed (or the cost is zero), partial
// when some but not all is paid, pending otherwise.
func DeriveStatus(totalDue, totalPaid, remaining float64) string {
	if totalDue <= 0 {
		return StatusCompleted
	}
	if remaining <= 0 && totalPaid > 0 {
		return StatusCompleted
	}
	if totalPaid > 0 && remaining > 0 {
		return StatusPartial
	}
	return StatusPending
}

func (r *Reconciler) description(ctx context.Context, t *treatment.ToothTreatment) string {
	name, err := r.patients.PatientName(ctx, t.PatientID)
	if err != nil {
		r.log.Warn().Err(err).Stringer("patient_id", t.PatientID).Msg("patient lookup failed for invoice description")
		return fmt.Sprintf("%s - tooth %d", t.TreatmentType, t.ToothNumber)
	}
	return fmt.Sprintf("%s - tooth %d (%s)", t.TreatmentType, t.ToothNumber, name)
}

// CreatePendingInvoice creates the initial zero-paid billing row for a
// treatment. No-op when the treatment has no id, its cost is not positive,
// or a linked row already exists.
func (r *Reconciler) CreatePendingInvoice(ctx context.Context, t *treatment.ToothTreatment) error {
	if t == nil || t.ID == uuid.Nil {
		return nil
	}
	cost := money.Round(t.Cost)
	if cost <= 0 {
		return nil
	}
	existing, err := r.entries.ListByTreatment(ctx, t.ID)
	if err != nil {
		return fmt.Errorf("list linked entries: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	id := t.ID
	e := &Entry{
		PatientID:        t.PatientID,
		TreatmentID:      &id,
		Amount:           0,
		TotalDue:         cost,
		TotalPaid:        0,
		RemainingBalance: cost,
		Status:           StatusPending,
		PaymentDate:      time.Now(),
		Description:      r.description(ctx, t),
	}
	if err := r.entries.Create(ctx, e); err != nil {
		return fmt.Errorf("create pending invoice: %w", err)
	}
	return nil
}

// ReconcileOnCostChange re-derives the aggregate snapshot after a cost
// change and writes it to every linked row. No-op when the cost did not
// actually change. When no linked rows exist and the new cost is positive, a
// fresh pending invoice is created instead.
func (r *Reconciler) ReconcileOnCostChange(ctx context.Context, t *treatment.ToothTreatment, oldCost, newCost float64) error {
	oldCost = money.Round(oldCost)
	newCost = money.Round(newCost)
	if money.Equal(oldCost, newCost) {
		return nil
	}

	linked, err := r.entries.ListByTreatment(ctx, t.ID)
	if err != nil {
		return fmt.Errorf("list linked entries: %w", err)
	}
	if len(linked) == 0 {
		if newCost > 0 {
			return r.CreatePendingInvoice(ctx, t)
		}
		return nil
	}
	return r.mirror(ctx, linked, newCost)
}

// mirror writes one recomputed aggregate snapshot to every linked row.
func (r *Reconciler) mirror(ctx context.Context, linked []*Entry, totalDue float64) error {
	totalPaid := 0.0
	for _, e := range linked {
		totalPaid += e.Amount
	}
	totalPaid = money.Round(totalPaid)

	remaining := money.NonNegative(totalDue - totalPaid)
	status := DeriveStatus(totalDue, totalPaid, remaining)

	for _, e := range linked {
		e.TotalDue = totalDue
		e.TotalPaid = totalPaid
		e.RemainingBalance = remaining
		e.Status = status
		if err := r.entries.Update(ctx, e); err != nil {
			return fmt.Errorf("mirror snapshot to entry %s: %w", e.ID, err)
		}
	}
	return nil
}

// RecordPayment adds a paid amount to an existing billing entry, then
// re-mirrors the aggregate snapshot across all rows linked to the same
// treatment.
func (r *Reconciler) RecordPayment(ctx context.Context, entryID uuid.UUID, amount float64, note *string) (*Entry, error) {
	amount = money.Round(amount)
	if amount <= 0 {
		return nil, fmt.Errorf("payment amount must be positive")
	}
	e, err := r.entries.GetByID(ctx, entryID)
	if err != nil {
		return nil, fmt.Errorf("load entry: %w", err)
	}

	e.Amount = money.Round(e.Amount + amount)
	e.PaymentDate = time.Now()
	if note != nil {
		e.Notes = note
	}
	if err := r.entries.Update(ctx, e); err != nil {
		return nil, fmt.Errorf("record payment: %w", err)
	}

	if e.TreatmentID == nil {
		// Unlinked row: nothing to mirror beyond its own fields.
		e.TotalPaid = e.Amount
		e.RemainingBalance = money.NonNegative(e.TotalDue - e.Amount)
		e.Status = DeriveStatus(e.TotalDue, e.TotalPaid, e.RemainingBalance)
		if err := r.entries.Update(ctx, e); err != nil {
			return nil, fmt.Errorf("update entry: %w", err)
		}
		return e, nil
	}

	linked, err := r.entries.ListByTreatment(ctx, *e.TreatmentID)
	if err != nil {
		return nil, fmt.Errorf("list linked entries: %w", err)
	}
	if err := r.mirror(ctx, linked, e.TotalDue); err != nil {
		return nil, err
	}
	return r.entries.GetByID(ctx, entryID)
}

// Summary returns the derived billing state for one treatment. A treatment
// with no linked rows has a zero summary with status completed only when its
// cost is zero; callers pass the treatment's current cost for that case.
func (r *Reconciler) Summary(ctx context.Context, treatmentID uuid.UUID, cost float64) (*Summary, error) {
	linked, err := r.entries.ListByTreatment(ctx, treatmentID)
	if err != nil {
		return nil, fmt.Errorf("list linked entries: %w", err)
	}
	s := &Summary{TreatmentID: treatmentID, EntryCount: len(linked)}
	if len(linked) == 0 {
		s.TotalDue = money.Round(cost)
		s.RemainingBalance = s.TotalDue
		s.Status = DeriveStatus(s.TotalDue, 0, s.RemainingBalance)
		return s, nil
	}
	// All linked rows mirror the same snapshot; read it off the first.
	s.TotalDue = linked[0].TotalDue
	s.TotalPaid = linked[0].TotalPaid
	s.RemainingBalance = linked[0].RemainingBalance
	s.Status = linked[0].Status
	return s, nil
}

// EntriesForTreatment exposes the raw linked rows.
func (r *Reconciler) EntriesForTreatment(ctx context.Context, treatmentID uuid.UUID) ([]*Entry, error) {
	return r.entries.ListByTreatment(ctx, treatmentID)
}

// CleanupOnTreatmentDelete reconciles billing rows when their treatment is
// removed: rows with no recorded payment are deleted, rows carrying paid
// amounts are detached (link cleared) and annotated so audit data survives
// without a dangling treatment reference. Returns how many rows were deleted
// and detached.
func (r *Reconciler) CleanupOnTreatmentDelete(ctx context.Context, treatmentID uuid.UUID) (deleted, detached int, err error) {
	linked, err := r.entries.ListByTreatment(ctx, treatmentID)
	if err != nil {
		return 0, 0, fmt.Errorf("list linked entries: %w", err)
	}
	for _, e := range linked {
		if e.Amount <= 0 {
			if err := r.entries.Delete(ctx, e.ID); err != nil {
				return deleted, detached, fmt.Errorf("delete unpaid entry %s: %w", e.ID, err)
			}
			deleted++
			continue
		}
		e.TreatmentID = nil
		e.Description = fmt.Sprintf("%s [treatment removed %s]", e.Description, time.Now().Format("2006-01-02"))
		if err := r.entries.Update(ctx, e); err != nil {
			return deleted, detached, fmt.Errorf("detach paid entry %s: %w", e.ID, err)
		}
		detached++
	}
	return deleted, detached, nil
}

// StrandedEntries returns linked rows whose treatment id no longer resolves,
// using exists to check the treatment store. Used by the orphan sweep.
func (r *Reconciler) StrandedEntries(ctx context.Context, exists func(ctx context.Context, id uuid.UUID) bool) ([]*Entry, error) {
	linked, err := r.entries.ListLinked(ctx)
	if err != nil {
		return nil, fmt.Errorf("list linked entries: %w", err)
	}
	var stranded []*Entry
	for _, e := range linked {
		if !exists(ctx, *e.TreatmentID) {
			stranded = append(stranded, e)
		}
	}
	return stranded, nil
}

// DetachEntry clears a stranded row's treatment link and annotates it.
func (r *Reconciler) DetachEntry(ctx context.Context, e *Entry) error {
	e.TreatmentID = nil
	e.Description = fmt.Sprintf("%s [orphan sweep %s]", e.Description, time.Now().Format("2006-01-02"))
	if err := r.entries.Update(ctx, e); err != nil {
		return fmt.Errorf("detach entry %s: %w", e.ID, err)
	}
	return nil
}
