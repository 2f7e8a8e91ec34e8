package treatment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/omarmosa2/dental-clinic-sub005/pkg/money"
)

// PlanService owns the ordered treatment plan for each tooth: it assigns
// priorities on add, renumbers them on reorder and delete, and reports which
// derived fields changed on update so callers can run downstream
// reconciliations.
type PlanService struct {
	treatments Repository
	sessions   SessionRepository
}

func NewPlanService(treatments Repository, sessions SessionRepository) *PlanService {
	return &PlanService{treatments: treatments, sessions: sessions}
}

// UpdateInput is a field-by-field patch for a treatment. Nil means "leave
// unchanged".
// SessionUpdateInput is the PATCH shape for a treatment session; nil fields
// keep their stored value.
type SessionUpdateInput struct {
	Date        *time.Time `json:"session_date,omitempty"`
	Description *string    `json:"description,omitempty"`
	Notes       *string    `json:"notes,omitempty"`
}

type UpdateInput struct {
	ToothName      *string    `json:"tooth_name,omitempty"`
	TreatmentType  *string    `json:"treatment_type,omitempty"`
	Category       *string    `json:"treatment_category,omitempty"`
	Status         *string    `json:"treatment_status,omitempty"`
	Cost           *float64   `json:"cost,omitempty"`
	StartDate      *time.Time `json:"start_date,omitempty"`
	CompletionDate *time.Time `json:"completion_date,omitempty"`
	Notes          *string    `json:"notes,omitempty"`
}

// ChangeSet reports which reconciliation-relevant fields an update touched.
type ChangeSet struct {
	CostChanged     bool
	OldCost         float64
	CategoryChanged bool
	OldCategory     string
}

func validateTreatment(t *ToothTreatment) error {
	if t.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if t.ToothNumber <= 0 {
		return fmt.Errorf("tooth_number must be positive")
	}
	if strings.TrimSpace(t.TreatmentType) == "" {
		return fmt.Errorf("treatment_type is required")
	}
	if !ValidCategory(t.Category) {
		return fmt.Errorf("invalid treatment_category %q", t.Category)
	}
	if t.Status != "" && !ValidStatus(t.Status) {
		return fmt.Errorf("invalid treatment_status %q", t.Status)
	}
	if money.Round(t.Cost) < 0 {
		return fmt.Errorf("cost must be non-negative")
	}
	return nil
}

// AddTreatment persists a new treatment at the end of its tooth's plan:
// priority = 1 + the highest existing priority for that tooth, or 1 for an
// empty plan.
func (s *PlanService) AddTreatment(ctx context.Context, t *ToothTreatment) error {
	if err := validateTreatment(t); err != nil {
		return err
	}
	if t.Status == "" {
		t.Status = StatusPlanned
	}
	if t.StartDate.IsZero() {
		t.StartDate = time.Now()
	}
	t.Cost = money.Round(t.Cost)

	max, err := s.treatments.MaxPriority(ctx, t.PatientID, t.ToothNumber)
	if err != nil {
		return fmt.Errorf("resolve next priority: %w", err)
	}
	t.Priority = max + 1

	if err := s.treatments.Create(ctx, t); err != nil {
		return fmt.Errorf("create treatment: %w", err)
	}
	return nil
}

func (s *PlanService) GetTreatment(ctx context.Context, id uuid.UUID) (*ToothTreatment, error) {
	return s.treatments.GetByID(ctx, id)
}

// UpdateTreatment applies the patch and returns the new state along with
// which derived fields changed, so the caller can decide whether billing or
// lab-order reconciliation is needed.
func (s *PlanService) UpdateTreatment(ctx context.Context, id uuid.UUID, in UpdateInput) (*ToothTreatment, ChangeSet, error) {
	var changes ChangeSet

	t, err := s.treatments.GetByID(ctx, id)
	if err != nil {
		return nil, changes, fmt.Errorf("load treatment: %w", err)
	}

	if in.ToothName != nil {
		t.ToothName = *in.ToothName
	}
	if in.TreatmentType != nil {
		t.TreatmentType = *in.TreatmentType
	}
	if in.Category != nil && *in.Category != t.Category {
		if !ValidCategory(*in.Category) {
			return nil, changes, fmt.Errorf("invalid treatment_category %q", *in.Category)
		}
		changes.CategoryChanged = true
		changes.OldCategory = t.Category
		t.Category = *in.Category
	}
	if in.Status != nil {
		if !ValidStatus(*in.Status) {
			return nil, changes, fmt.Errorf("invalid treatment_status %q", *in.Status)
		}
		t.Status = *in.Status
	}
	if in.Cost != nil {
		newCost := money.Round(*in.Cost)
		if newCost < 0 {
			return nil, changes, fmt.Errorf("cost must be non-negative")
		}
		if !money.Equal(newCost, t.Cost) {
			changes.CostChanged = true
			changes.OldCost = t.Cost
			t.Cost = newCost
		}
	}
	if in.StartDate != nil {
		t.StartDate = *in.StartDate
	}
	if in.CompletionDate != nil {
		t.CompletionDate = in.CompletionDate
	}
	if in.Notes != nil {
		t.Notes = in.Notes
	}

	if err := s.treatments.Update(ctx, t); err != nil {
		return nil, changes, fmt.Errorf("update treatment: %w", err)
	}
	return t, changes, nil
}

// DeleteTreatment removes the treatment row and closes the priority gap it
// leaves behind by renumbering the remaining plan. Sessions, billing rows and
// lab orders are cleaned up by the coordinator, not here.
func (s *PlanService) DeleteTreatment(ctx context.Context, id uuid.UUID) error {
	t, err := s.treatments.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("load treatment: %w", err)
	}
	if err := s.treatments.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete treatment: %w", err)
	}

	remaining, err := s.treatments.ListByTooth(ctx, t.PatientID, t.ToothNumber)
	if err != nil {
		return fmt.Errorf("list remaining plan: %w", err)
	}
	if len(remaining) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(remaining))
	for i, rt := range remaining {
		ids[i] = rt.ID
	}
	if err := s.treatments.Reorder(ctx, ids); err != nil {
		return fmt.Errorf("renumber plan: %w", err)
	}
	return nil
}

// PlanForTooth returns the tooth's treatments sorted by priority.
func (s *PlanService) PlanForTooth(ctx context.Context, patientID uuid.UUID, toothNumber int) ([]*ToothTreatment, error) {
	return s.treatments.ListByTooth(ctx, patientID, toothNumber)
}

func (s *PlanService) TreatmentsForPatient(ctx context.Context, patientID uuid.UUID) ([]*ToothTreatment, error) {
	return s.treatments.ListByPatient(ctx, patientID)
}

// ReorderTreatments takes the complete ordered list for one tooth and
// assigns priority = index+1 to each. The submitted ids must be exactly the
// tooth's current treatment set; partial or pairwise submissions are
// rejected because they can leave the priority sequence non-contiguous.
func (s *PlanService) ReorderTreatments(ctx context.Context, patientID uuid.UUID, toothNumber int, orderedIDs []uuid.UUID) error {
	current, err := s.treatments.ListByTooth(ctx, patientID, toothNumber)
	if err != nil {
		return fmt.Errorf("list plan: %w", err)
	}
	if len(orderedIDs) != len(current) {
		return fmt.Errorf("reorder must include all %d treatments for tooth %d, got %d",
			len(current), toothNumber, len(orderedIDs))
	}
	existing := make(map[uuid.UUID]bool, len(current))
	for _, t := range current {
		existing[t.ID] = true
	}
	seen := make(map[uuid.UUID]bool, len(orderedIDs))
	for _, id := range orderedIDs {
		if !existing[id] {
			return fmt.Errorf("treatment %s does not belong to tooth %d", id, toothNumber)
		}
		if seen[id] {
			return fmt.Errorf("treatment %s listed twice", id)
		}
		seen[id] = true
	}
	if err := s.treatments.Reorder(ctx, orderedIDs); err != nil {
		return fmt.Errorf("reorder plan: %w", err)
	}
	return nil
}

// MoveUp swaps the treatment at index with its predecessor and submits the
// full resulting order. A no-op at the top of the list.
func (s *PlanService) MoveUp(ctx context.Context, patientID uuid.UUID, toothNumber, index int) error {
	return s.move(ctx, patientID, toothNumber, index, index-1)
}

// MoveDown swaps the treatment at index with its successor. A no-op at the
// bottom of the list.
func (s *PlanService) MoveDown(ctx context.Context, patientID uuid.UUID, toothNumber, index int) error {
	return s.move(ctx, patientID, toothNumber, index, index+1)
}

func (s *PlanService) move(ctx context.Context, patientID uuid.UUID, toothNumber, from, to int) error {
	plan, err := s.treatments.ListByTooth(ctx, patientID, toothNumber)
	if err != nil {
		return fmt.Errorf("list plan: %w", err)
	}
	if from < 0 || from >= len(plan) {
		return fmt.Errorf("index %d out of range", from)
	}
	if to < 0 || to >= len(plan) {
		return nil
	}
	ids := make([]uuid.UUID, len(plan))
	for i, t := range plan {
		ids[i] = t.ID
	}
	ids[from], ids[to] = ids[to], ids[from]
	return s.treatments.Reorder(ctx, ids)
}

// Session CRUD, scoped to one treatment.

func (s *PlanService) AddSession(ctx context.Context, sess *Session) error {
	if sess.TreatmentID == uuid.Nil {
		return fmt.Errorf("tooth_treatment_id is required")
	}
	if strings.TrimSpace(sess.Description) == "" {
		return fmt.Errorf("description is required")
	}
	if sess.Date.IsZero() {
		sess.Date = time.Now()
	}
	if _, err := s.treatments.GetByID(ctx, sess.TreatmentID); err != nil {
		return fmt.Errorf("load treatment: %w", err)
	}
	return s.sessions.Create(ctx, sess)
}

// UpdateSession patches the stored session. The session must belong to the
// given treatment; omitted fields keep their stored value.
func (s *PlanService) UpdateSession(ctx context.Context, treatmentID, sessionID uuid.UUID, in SessionUpdateInput) (*Session, error) {
	sess, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if sess.TreatmentID != treatmentID {
		return nil, fmt.Errorf("session %s does not belong to treatment %s", sessionID, treatmentID)
	}

	if in.Date != nil && !in.Date.IsZero() {
		sess.Date = *in.Date
	}
	if in.Description != nil {
		if strings.TrimSpace(*in.Description) == "" {
			return nil, fmt.Errorf("description is required")
		}
		sess.Description = *in.Description
	}
	if in.Notes != nil {
		sess.Notes = in.Notes
	}

	if err := s.sessions.Update(ctx, sess); err != nil {
		return nil, fmt.Errorf("update session: %w", err)
	}
	return sess, nil
}

func (s *PlanService) DeleteSession(ctx context.Context, id uuid.UUID) error {
	return s.sessions.Delete(ctx, id)
}

func (s *PlanService) SessionsForTreatment(ctx context.Context, treatmentID uuid.UUID) ([]*Session, error) {
	return s.sessions.ListByTreatment(ctx, treatmentID)
}

// DeleteSessionsForTreatment removes every session belonging to a treatment.
// Used by the coordinator's delete cascade.
func (s *PlanService) DeleteSessionsForTreatment(ctx context.Context, treatmentID uuid.UUID) error {
	return s.sessions.DeleteByTreatment(ctx, treatmentID)
}
