package treatment

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
)

type fakeRepo struct {
	treatments map[uuid.UUID]*ToothTreatment
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{treatments: make(map[uuid.UUID]*ToothTreatment)}
}

func (f *fakeRepo) Create(_ context.Context, t *ToothTreatment) error {
	t.ID = uuid.New()
	t.CreatedAt = time.Now()
	t.UpdatedAt = time.Now()
	cp := *t
	f.treatments[t.ID] = &cp
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (*ToothTreatment, error) {
	t, ok := f.treatments[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	cp := *t
	return &cp, nil
}

func (f *fakeRepo) Update(_ context.Context, t *ToothTreatment) error {
	if _, ok := f.treatments[t.ID]; !ok {
		return fmt.Errorf("not found")
	}
	cp := *t
	f.treatments[t.ID] = &cp
	return nil
}

func (f *fakeRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.treatments, id)
	return nil
}

func (f *fakeRepo) ListByPatient(_ context.Context, patientID uuid.UUID) ([]*ToothTreatment, error) {
	var result []*ToothTreatment
	for _, t := range f.treatments {
		if t.PatientID == patientID {
			cp := *t
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].ToothNumber != result[j].ToothNumber {
			return result[i].ToothNumber < result[j].ToothNumber
		}
		return result[i].Priority < result[j].Priority
	})
	return result, nil
}

func (f *fakeRepo) ListByTooth(_ context.Context, patientID uuid.UUID, toothNumber int) ([]*ToothTreatment, error) {
	var result []*ToothTreatment
	for _, t := range f.treatments {
		if t.PatientID == patientID && t.ToothNumber == toothNumber {
			cp := *t
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Priority < result[j].Priority })
	return result, nil
}

func (f *fakeRepo) MaxPriority(_ context.Context, patientID uuid.UUID, toothNumber int) (int, error) {
	max := 0
	for _, t := range f.treatments {
		if t.PatientID == patientID && t.ToothNumber == toothNumber && t.Priority > max {
			max = t.Priority
		}
	}
	return max, nil
}

func (f *fakeRepo) Reorder(_ context.Context, orderedIDs []uuid.UUID) error {
	for i, id := range orderedIDs {
		t, ok := f.treatments[id]
		if !ok {
			return fmt.Errorf("not found")
		}
		t.Priority = i + 1
	}
	return nil
}

type fakeSessionRepo struct {
	sessions map[uuid.UUID]*Session
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[uuid.UUID]*Session)}
}

func (f *fakeSessionRepo) Create(_ context.Context, s *Session) error {
	s.ID = uuid.New()
	cp := *s
	f.sessions[s.ID] = &cp
	return nil
}

func (f *fakeSessionRepo) GetByID(_ context.Context, id uuid.UUID) (*Session, error) {
	s, ok := f.sessions[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	cp := *s
	return &cp, nil
}

func (f *fakeSessionRepo) Update(_ context.Context, s *Session) error {
	cp := *s
	f.sessions[s.ID] = &cp
	return nil
}

func (f *fakeSessionRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.sessions, id)
	return nil
}

func (f *fakeSessionRepo) ListByTreatment(_ context.Context, treatmentID uuid.UUID) ([]*Session, error) {
	var result []*Session
	for _, s := range f.sessions {
		if s.TreatmentID == treatmentID {
			cp := *s
			result = append(result, &cp)
		}
	}
	return result, nil
}

func (f *fakeSessionRepo) DeleteByTreatment(_ context.Context, treatmentID uuid.UUID) error {
	for id, s := range f.sessions {
		if s.TreatmentID == treatmentID {
			delete(f.sessions, id)
		}
	}
	return nil
}

func newPlan(repo *fakeRepo) *PlanService {
	return NewPlanService(repo, newFakeSessionRepo())
}

func addTreatment(t *testing.T, svc *PlanService, patientID uuid.UUID, tooth int, typ string) *ToothTreatment {
	t.Helper()
	tr := &ToothTreatment{
		PatientID:     patientID,
		ToothNumber:   tooth,
		ToothName:     "Molar",
		TreatmentType: typ,
		Category:      CategoryRestorative,
		Cost:          100,
	}
	if err := svc.AddTreatment(context.Background(), tr); err != nil {
		t.Fatalf("add treatment: %v", err)
	}
	return tr
}

func assertContiguous(t *testing.T, svc *PlanService, patientID uuid.UUID, tooth int) {
	t.Helper()
	plan, err := svc.PlanForTooth(context.Background(), patientID, tooth)
	if err != nil {
		t.Fatalf("plan for tooth: %v", err)
	}
	for i, tr := range plan {
		if tr.Priority != i+1 {
			t.Errorf("position %d has priority %d, want %d", i, tr.Priority, i+1)
		}
	}
}

func TestAddTreatment_AssignsNextPriority(t *testing.T) {
	repo := newFakeRepo()
	svc := newPlan(repo)
	patientID := uuid.New()

	t1 := addTreatment(t, svc, patientID, 14, "Filling")
	t2 := addTreatment(t, svc, patientID, 14, "Crown")
	other := addTreatment(t, svc, patientID, 21, "Filling")

	if t1.Priority != 1 || t2.Priority != 2 {
		t.Errorf("priorities = %d, %d; want 1, 2", t1.Priority, t2.Priority)
	}
	if other.Priority != 1 {
		t.Errorf("different tooth starts at priority %d, want 1", other.Priority)
	}
}

func TestAddTreatment_Validation(t *testing.T) {
	svc := newPlan(newFakeRepo())

	cases := []struct {
		name string
		mod  func(*ToothTreatment)
	}{
		{"missing patient", func(tr *ToothTreatment) { tr.PatientID = uuid.Nil }},
		{"bad tooth number", func(tr *ToothTreatment) { tr.ToothNumber = 0 }},
		{"missing type", func(tr *ToothTreatment) { tr.TreatmentType = " " }},
		{"bad category", func(tr *ToothTreatment) { tr.Category = "experimental" }},
		{"negative cost", func(tr *ToothTreatment) { tr.Cost = -5 }},
	}
	for _, tc := range cases {
		tr := &ToothTreatment{
			PatientID:     uuid.New(),
			ToothNumber:   14,
			TreatmentType: "Filling",
			Category:      CategoryRestorative,
			Cost:          100,
		}
		tc.mod(tr)
		if err := svc.AddTreatment(context.Background(), tr); err == nil {
			t.Errorf("%s: expected validation error", tc.name)
		}
	}
}

func TestReorderTreatments(t *testing.T) {
	repo := newFakeRepo()
	svc := newPlan(repo)
	patientID := uuid.New()

	t1 := addTreatment(t, svc, patientID, 14, "Filling")
	t2 := addTreatment(t, svc, patientID, 14, "Crown")
	t3 := addTreatment(t, svc, patientID, 14, "Root Canal")

	// Submit the order [T3, T1, T2].
	err := svc.ReorderTreatments(context.Background(), patientID, 14,
		[]uuid.UUID{t3.ID, t1.ID, t2.ID})
	if err != nil {
		t.Fatalf("reorder: %v", err)
	}

	want := map[uuid.UUID]int{t3.ID: 1, t1.ID: 2, t2.ID: 3}
	for id, priority := range want {
		got, _ := svc.GetTreatment(context.Background(), id)
		if got.Priority != priority {
			t.Errorf("treatment %s priority = %d, want %d", id, got.Priority, priority)
		}
	}
	assertContiguous(t, svc, patientID, 14)
}

func TestReorderTreatments_RejectsPartialOrder(t *testing.T) {
	repo := newFakeRepo()
	svc := newPlan(repo)
	patientID := uuid.New()

	t1 := addTreatment(t, svc, patientID, 14, "Filling")
	addTreatment(t, svc, patientID, 14, "Crown")

	err := svc.ReorderTreatments(context.Background(), patientID, 14, []uuid.UUID{t1.ID})
	if err == nil {
		t.Error("expected error for incomplete order")
	}
}

func TestReorderTreatments_RejectsForeignID(t *testing.T) {
	repo := newFakeRepo()
	svc := newPlan(repo)
	patientID := uuid.New()

	t1 := addTreatment(t, svc, patientID, 14, "Filling")
	other := addTreatment(t, svc, patientID, 21, "Filling")

	err := svc.ReorderTreatments(context.Background(), patientID, 14,
		[]uuid.UUID{t1.ID, other.ID})
	if err == nil {
		t.Error("expected error for id from another tooth")
	}
}

func TestMoveUpDown(t *testing.T) {
	repo := newFakeRepo()
	svc := newPlan(repo)
	patientID := uuid.New()

	t1 := addTreatment(t, svc, patientID, 14, "Filling")
	t2 := addTreatment(t, svc, patientID, 14, "Crown")

	if err := svc.MoveUp(context.Background(), patientID, 14, 1); err != nil {
		t.Fatalf("move up: %v", err)
	}
	got, _ := svc.GetTreatment(context.Background(), t2.ID)
	if got.Priority != 1 {
		t.Errorf("moved treatment priority = %d, want 1", got.Priority)
	}

	// Boundary moves are no-ops.
	if err := svc.MoveUp(context.Background(), patientID, 14, 0); err != nil {
		t.Fatalf("move up at top: %v", err)
	}
	if err := svc.MoveDown(context.Background(), patientID, 14, 1); err != nil {
		t.Fatalf("move down at bottom: %v", err)
	}
	got, _ = svc.GetTreatment(context.Background(), t1.ID)
	if got.Priority != 2 {
		t.Errorf("boundary move changed priority to %d", got.Priority)
	}
	assertContiguous(t, svc, patientID, 14)
}

func TestDeleteTreatment_ClosesPriorityGap(t *testing.T) {
	repo := newFakeRepo()
	svc := newPlan(repo)
	patientID := uuid.New()

	addTreatment(t, svc, patientID, 14, "Filling")
	t2 := addTreatment(t, svc, patientID, 14, "Crown")
	addTreatment(t, svc, patientID, 14, "Root Canal")

	if err := svc.DeleteTreatment(context.Background(), t2.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	plan, _ := svc.PlanForTooth(context.Background(), patientID, 14)
	if len(plan) != 2 {
		t.Fatalf("plan length = %d, want 2", len(plan))
	}
	assertContiguous(t, svc, patientID, 14)
}

func TestUpdateTreatment_ReportsChanges(t *testing.T) {
	repo := newFakeRepo()
	svc := newPlan(repo)
	patientID := uuid.New()

	tr := addTreatment(t, svc, patientID, 14, "Crown")

	newCost := 250.0
	newCategory := CategoryProsthetic
	updated, changes, err := svc.UpdateTreatment(context.Background(), tr.ID, UpdateInput{
		Cost:     &newCost,
		Category: &newCategory,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !changes.CostChanged || changes.OldCost != 100 {
		t.Errorf("cost change = %+v, want CostChanged with OldCost 100", changes)
	}
	if !changes.CategoryChanged || changes.OldCategory != CategoryRestorative {
		t.Errorf("category change = %+v, want CategoryChanged with old restorative", changes)
	}
	if updated.Cost != 250 || updated.Category != CategoryProsthetic {
		t.Errorf("updated = cost %v category %s", updated.Cost, updated.Category)
	}
}

func TestUpdateTreatment_SameCostNotFlagged(t *testing.T) {
	repo := newFakeRepo()
	svc := newPlan(repo)
	tr := addTreatment(t, svc, uuid.New(), 14, "Crown")

	same := 100.0
	_, changes, err := svc.UpdateTreatment(context.Background(), tr.ID, UpdateInput{Cost: &same})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if changes.CostChanged {
		t.Error("unchanged cost reported as changed")
	}
}

func TestSessionCRUD(t *testing.T) {
	repo := newFakeRepo()
	sessions := newFakeSessionRepo()
	svc := NewPlanService(repo, sessions)
	tr := addTreatment(t, svc, uuid.New(), 14, "Crown")

	s := &Session{TreatmentID: tr.ID, Description: "Impression taken"}
	if err := svc.AddSession(context.Background(), s); err != nil {
		t.Fatalf("add session: %v", err)
	}

	list, _ := svc.SessionsForTreatment(context.Background(), tr.ID)
	if len(list) != 1 {
		t.Fatalf("session count = %d, want 1", len(list))
	}

	if err := svc.AddSession(context.Background(), &Session{TreatmentID: uuid.New(), Description: "x"}); err == nil {
		t.Error("expected error for unknown treatment")
	}

	if err := svc.DeleteSessionsForTreatment(context.Background(), tr.ID); err != nil {
		t.Fatalf("delete sessions: %v", err)
	}
	list, _ = svc.SessionsForTreatment(context.Background(), tr.ID)
	if len(list) != 0 {
		t.Errorf("session count after cascade = %d, want 0", len(list))
	}
}

func TestUpdateSession_PreservesOmittedFields(t *testing.T) {
	repo := newFakeRepo()
	sessions := newFakeSessionRepo()
	svc := NewPlanService(repo, sessions)
	tr := addTreatment(t, svc, uuid.New(), 14, "Crown")

	when := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	notes := "shade A2"
	s := &Session{TreatmentID: tr.ID, Date: when, Description: "Impression taken", Notes: &notes}
	if err := svc.AddSession(context.Background(), s); err != nil {
		t.Fatalf("add session: %v", err)
	}

	// A patch carrying only a new description keeps the stored date and notes.
	desc := "Impression retaken"
	got, err := svc.UpdateSession(context.Background(), tr.ID, s.ID, SessionUpdateInput{Description: &desc})
	if err != nil {
		t.Fatalf("update session: %v", err)
	}
	if got.Description != desc {
		t.Errorf("description = %q, want %q", got.Description, desc)
	}
	if !got.Date.Equal(when) {
		t.Errorf("date = %v, want stored %v", got.Date, when)
	}
	if got.Notes == nil || *got.Notes != notes {
		t.Error("notes not preserved")
	}

	stored, _ := sessions.GetByID(context.Background(), s.ID)
	if !stored.Date.Equal(when) {
		t.Errorf("stored date = %v, want %v", stored.Date, when)
	}

	empty := "   "
	if _, err := svc.UpdateSession(context.Background(), tr.ID, s.ID, SessionUpdateInput{Description: &empty}); err == nil {
		t.Error("expected error for blank description")
	}
}

func TestUpdateSession_RejectsForeignTreatment(t *testing.T) {
	repo := newFakeRepo()
	sessions := newFakeSessionRepo()
	svc := NewPlanService(repo, sessions)
	tr := addTreatment(t, svc, uuid.New(), 14, "Crown")
	other := addTreatment(t, svc, tr.PatientID, 15, "Filling")

	s := &Session{TreatmentID: tr.ID, Description: "Impression taken"}
	if err := svc.AddSession(context.Background(), s); err != nil {
		t.Fatalf("add session: %v", err)
	}

	desc := "hijacked"
	if _, err := svc.UpdateSession(context.Background(), other.ID, s.ID, SessionUpdateInput{Description: &desc}); err == nil {
		t.Error("expected error for session owned by another treatment")
	}

	if _, err := svc.UpdateSession(context.Background(), tr.ID, uuid.New(), SessionUpdateInput{Description: &desc}); err == nil {
		t.Error("expected error for unknown session")
	}
}
