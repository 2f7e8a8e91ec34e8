package coordinator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/omarmosa2/dental-clinic-sub005/internal/domain/billing"
	"github.com/omarmosa2/dental-clinic-sub005/internal/domain/laborder"
	"github.com/omarmosa2/dental-clinic-sub005/internal/domain/treatment"
	"github.com/omarmosa2/dental-clinic-sub005/internal/platform/notify"
	"github.com/omarmosa2/dental-clinic-sub005/pkg/money"
)

// Coordinator sequences the plan manager, billing reconciler and lab
// synchronizer for a single treatment mutation. The treatment write is the
// required step; billing and lab bookkeeping are partial-tolerant and their
// failures are reported, not rolled back. Every operation ends in exactly
// one notification.
type Coordinator struct {
	plan     *treatment.PlanService
	billing  *billing.Reconciler
	laborder *laborder.Synchronizer
	notifier notify.Sink
	log      zerolog.Logger
}

func New(plan *treatment.PlanService, rec *billing.Reconciler, sync *laborder.Synchronizer, notifier notify.Sink, log zerolog.Logger) *Coordinator {
	return &Coordinator{plan: plan, billing: rec, laborder: sync, notifier: notifier, log: log}
}

// CreateInput carries the treatment fields plus the optional lab selection.
type CreateInput struct {
	PatientID     uuid.UUID  `json:"patient_id"`
	ToothNumber   int        `json:"tooth_number"`
	ToothName     string     `json:"tooth_name"`
	TreatmentType string     `json:"treatment_type"`
	Category      string     `json:"treatment_category"`
	Status        string     `json:"treatment_status,omitempty"`
	Cost          float64    `json:"cost"`
	StartDate     time.Time  `json:"start_date,omitempty"`
	Notes         *string    `json:"notes,omitempty"`
	LabID         *uuid.UUID `json:"lab_id,omitempty"`
	LabCost       float64    `json:"lab_cost,omitempty"`
}

// EditInput is the field-by-field patch for a coordinated edit. Lab fields
// follow the same convention as the treatment patch: nil means unchanged.
type EditInput struct {
	treatment.UpdateInput
	LabID   *uuid.UUID `json:"lab_id,omitempty"`
	LabCost *float64   `json:"lab_cost,omitempty"`
}

func validateLabSelection(category string, labID *uuid.UUID, labCost float64) error {
	if category == treatment.CategoryProsthetic && money.Round(labCost) > 0 && (labID == nil || *labID == uuid.Nil) {
		return &ValidationError{Field: "lab_id", Reason: "lab cost given without a lab selection"}
	}
	return nil
}

func (c *Coordinator) notifyOutcome(ctx context.Context, action string, t *treatment.ToothTreatment, r *Report) {
	if r.OK() {
		c.notifier.Success(ctx, fmt.Sprintf("%s %s for tooth %d", t.TreatmentType, action, t.ToothNumber))
		return
	}
	c.notifier.Warning(ctx, fmt.Sprintf("%s %s, but %s failed", t.TreatmentType, action, strings.Join(r.Failed(), ", ")))
}

// CreateTreatment validates first, then runs the three-step create. A lab
// cost without a lab selection is rejected before any write. Billing and lab
// steps run only when warranted and are partial-tolerant.
func (c *Coordinator) CreateTreatment(ctx context.Context, in CreateInput) (*Report, error) {
	if err := validateLabSelection(in.Category, in.LabID, in.LabCost); err != nil {
		c.notifier.Error(ctx, err.Error())
		return nil, err
	}

	t := &treatment.ToothTreatment{
		PatientID:     in.PatientID,
		ToothNumber:   in.ToothNumber,
		ToothName:     in.ToothName,
		TreatmentType: in.TreatmentType,
		Category:      in.Category,
		Status:        in.Status,
		Cost:          in.Cost,
		StartDate:     in.StartDate,
		Notes:         in.Notes,
	}

	r := &Report{}
	if err := c.plan.AddTreatment(ctx, t); err != nil {
		c.notifier.Error(ctx, fmt.Sprintf("could not save treatment: %v", err))
		return nil, &PersistenceError{Step: StepTreatment, Err: err}
	}
	r.Treatment = t
	r.ok(StepTreatment)

	if t.Cost > 0 {
		if err := c.billing.CreatePendingInvoice(ctx, t); err != nil {
			c.log.Error().Err(err).Stringer("treatment_id", t.ID).Msg("billing step failed on create")
			r.fail(StepBilling, err)
		} else {
			r.ok(StepBilling)
		}
	}

	if t.Category == treatment.CategoryProsthetic && in.LabID != nil && money.Round(in.LabCost) > 0 {
		if _, err := c.laborder.UpsertOrder(ctx, t, *in.LabID, in.LabCost); err != nil {
			c.log.Error().Err(err).Stringer("treatment_id", t.ID).Msg("lab order step failed on create")
			r.fail(StepLabOrder, err)
		} else {
			r.ok(StepLabOrder)
		}
	}

	c.notifyOutcome(ctx, "saved", t, r)
	return r, nil
}

// EditTreatment applies the patch, then reconciles billing on cost change
// and synchronizes the lab order against the effective category and lab
// fields after the patch.
func (c *Coordinator) EditTreatment(ctx context.Context, id uuid.UUID, in EditInput) (*Report, error) {
	current, err := c.plan.GetTreatment(ctx, id)
	if err != nil {
		return nil, &NotFoundError{Entity: "treatment", Err: err}
	}

	effectiveCategory := current.Category
	if in.Category != nil {
		effectiveCategory = *in.Category
	}

	// Lab fields not present in the patch fall back to the current order.
	labID := in.LabID
	labCost := 0.0
	if in.LabCost != nil {
		labCost = *in.LabCost
	}
	if in.LabID == nil || in.LabCost == nil {
		if existing, err := c.laborder.FindLinkedOrder(ctx, id); err == nil && existing != nil {
			if in.LabID == nil {
				labID = &existing.LabID
			}
			if in.LabCost == nil {
				labCost = existing.Cost
			}
		}
	}

	if err := validateLabSelection(effectiveCategory, labID, labCost); err != nil {
		c.notifier.Error(ctx, err.Error())
		return nil, err
	}

	r := &Report{}
	updated, changes, err := c.plan.UpdateTreatment(ctx, id, in.UpdateInput)
	if err != nil {
		c.notifier.Error(ctx, fmt.Sprintf("could not update treatment: %v", err))
		return nil, &PersistenceError{Step: StepTreatment, Err: err}
	}
	r.Treatment = updated
	r.ok(StepTreatment)

	if changes.CostChanged {
		if err := c.billing.ReconcileOnCostChange(ctx, updated, changes.OldCost, updated.Cost); err != nil {
			c.log.Error().Err(err).Stringer("treatment_id", id).Msg("billing step failed on edit")
			r.fail(StepBilling, err)
		} else {
			r.ok(StepBilling)
		}
	}

	if err := c.syncLabOrder(ctx, updated, labID, labCost); err != nil {
		c.log.Error().Err(err).Stringer("treatment_id", id).Msg("lab order step failed on edit")
		r.fail(StepLabOrder, err)
	} else {
		r.ok(StepLabOrder)
	}

	c.notifyOutcome(ctx, "updated", updated, r)
	return r, nil
}

// syncLabOrder drives the order toward what the treatment's current state
// warrants: an upsert when prosthetic with a lab and cost, removal otherwise.
func (c *Coordinator) syncLabOrder(ctx context.Context, t *treatment.ToothTreatment, labID *uuid.UUID, labCost float64) error {
	resolvedLab := uuid.Nil
	if labID != nil {
		resolvedLab = *labID
	}
	if t.Category == treatment.CategoryProsthetic && resolvedLab != uuid.Nil && money.Round(labCost) > 0 {
		_, err := c.laborder.UpsertOrder(ctx, t, resolvedLab, labCost)
		return err
	}
	_, err := c.laborder.RemoveOrderIfUnneeded(ctx, t, resolvedLab, labCost)
	return err
}

// DeleteTreatment cascades first, then removes the treatment: sessions are
// deleted, unpaid billing rows are deleted and paid ones detached, the
// linked lab order is deleted. The cleanup steps must run while the
// treatment row still exists — its foreign keys null every link the moment
// the row goes — and each is partial-tolerant; the treatment delete itself
// is the required step.
func (c *Coordinator) DeleteTreatment(ctx context.Context, id uuid.UUID) (*Report, error) {
	t, err := c.plan.GetTreatment(ctx, id)
	if err != nil {
		return nil, &NotFoundError{Entity: "treatment", Err: err}
	}

	r := &Report{Treatment: t}

	if err := c.plan.DeleteSessionsForTreatment(ctx, id); err != nil {
		c.log.Error().Err(err).Stringer("treatment_id", id).Msg("session cascade failed on delete")
		r.fail(StepSessions, err)
	} else {
		r.ok(StepSessions)
	}

	if _, _, err := c.billing.CleanupOnTreatmentDelete(ctx, id); err != nil {
		c.log.Error().Err(err).Stringer("treatment_id", id).Msg("billing cascade failed on delete")
		r.fail(StepBillingCleanup, err)
	} else {
		r.ok(StepBillingCleanup)
	}

	if _, err := c.laborder.RemoveOnTreatmentDelete(ctx, id); err != nil {
		c.log.Error().Err(err).Stringer("treatment_id", id).Msg("lab order cascade failed on delete")
		r.fail(StepLabOrderCleanup, err)
	} else {
		r.ok(StepLabOrderCleanup)
	}

	if err := c.plan.DeleteTreatment(ctx, id); err != nil {
		c.notifier.Error(ctx, fmt.Sprintf("could not delete treatment: %v", err))
		return nil, &PersistenceError{Step: StepTreatment, Err: err}
	}
	r.ok(StepTreatment)

	c.notifyOutcome(ctx, "deleted", t, r)
	return r, nil
}

// Reorder submits the complete new order for one tooth's plan.
func (c *Coordinator) Reorder(ctx context.Context, patientID uuid.UUID, toothNumber int, orderedIDs []uuid.UUID) error {
	if err := c.plan.ReorderTreatments(ctx, patientID, toothNumber, orderedIDs); err != nil {
		c.notifier.Error(ctx, fmt.Sprintf("could not reorder plan: %v", err))
		return err
	}
	c.notifier.Success(ctx, fmt.Sprintf("treatment plan for tooth %d reordered", toothNumber))
	return nil
}

// Move shifts the treatment at index one position up or down.
func (c *Coordinator) Move(ctx context.Context, patientID uuid.UUID, toothNumber, index int, direction string) error {
	var err error
	switch direction {
	case "up":
		err = c.plan.MoveUp(ctx, patientID, toothNumber, index)
	case "down":
		err = c.plan.MoveDown(ctx, patientID, toothNumber, index)
	default:
		err = &ValidationError{Field: "direction", Reason: "must be up or down"}
	}
	if err != nil {
		c.notifier.Error(ctx, fmt.Sprintf("could not move treatment: %v", err))
		return err
	}
	c.notifier.Success(ctx, fmt.Sprintf("treatment plan for tooth %d reordered", toothNumber))
	return nil
}

// SweepReport summarizes one orphan sweep run.
type SweepReport struct {
	DetachedBillingRows int `json:"detached_billing_rows"`
	CancelledLabOrders  int `json:"cancelled_lab_orders"`
}

// Sweep scans for billing rows and lab orders whose treatment no longer
// exists: stranded billing rows are detached and annotated, stranded lab
// orders cancelled. Recovery for the partial states the non-transactional
// step chains can leave behind.
func (c *Coordinator) Sweep(ctx context.Context) (*SweepReport, error) {
	exists := func(ctx context.Context, id uuid.UUID) bool {
		_, err := c.plan.GetTreatment(ctx, id)
		return err == nil
	}

	report := &SweepReport{}

	stranded, err := c.billing.StrandedEntries(ctx, exists)
	if err != nil {
		return nil, fmt.Errorf("scan billing entries: %w", err)
	}
	for _, e := range stranded {
		if err := c.billing.DetachEntry(ctx, e); err != nil {
			return report, err
		}
		report.DetachedBillingRows++
	}

	orders, err := c.laborder.StrandedOrders(ctx, exists)
	if err != nil {
		return report, fmt.Errorf("scan lab orders: %w", err)
	}
	for _, o := range orders {
		if err := c.laborder.CancelOrder(ctx, o); err != nil {
			return report, err
		}
		report.CancelledLabOrders++
	}

	c.notifier.Info(ctx, fmt.Sprintf("orphan sweep detached %d billing rows, cancelled %d lab orders",
		report.DetachedBillingRows, report.CancelledLabOrders))
	return report, nil
}
