package billing

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/omarmosa2/dental-clinic-sub005/internal/domain/treatment"
)

type fakeRepo struct {
	entries map[uuid.UUID]*Entry
	updates int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{entries: make(map[uuid.UUID]*Entry)}
}

func (f *fakeRepo) Create(_ context.Context, e *Entry) error {
	e.ID = uuid.New()
	e.CreatedAt = time.Now()
	cp := *e
	f.entries[e.ID] = &cp
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (*Entry, error) {
	e, ok := f.entries[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	cp := *e
	return &cp, nil
}

func (f *fakeRepo) Update(_ context.Context, e *Entry) error {
	if _, ok := f.entries[e.ID]; !ok {
		return fmt.Errorf("not found")
	}
	f.updates++
	cp := *e
	f.entries[e.ID] = &cp
	return nil
}

func (f *fakeRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.entries, id)
	return nil
}

func (f *fakeRepo) ListByPatient(_ context.Context, patientID uuid.UUID) ([]*Entry, error) {
	var result []*Entry
	for _, e := range f.entries {
		if e.PatientID == patientID {
			cp := *e
			result = append(result, &cp)
		}
	}
	return result, nil
}

func (f *fakeRepo) ListByTreatment(_ context.Context, treatmentID uuid.UUID) ([]*Entry, error) {
	var result []*Entry
	for _, e := range f.entries {
		if e.TreatmentID != nil && *e.TreatmentID == treatmentID {
			cp := *e
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

func (f *fakeRepo) ListLinked(_ context.Context) ([]*Entry, error) {
	var result []*Entry
	for _, e := range f.entries {
		if e.TreatmentID != nil {
			cp := *e
			result = append(result, &cp)
		}
	}
	return result, nil
}

type fakeDirectory struct{}

func (fakeDirectory) PatientName(context.Context, uuid.UUID) (string, error) {
	return "Sara Haddad", nil
}

func newReconciler(repo *fakeRepo) *Reconciler {
	return NewReconciler(repo, fakeDirectory{}, zerolog.Nop())
}

func testTreatment(cost float64) *treatment.ToothTreatment {
	return &treatment.ToothTreatment{
		ID:            uuid.New(),
		PatientID:     uuid.New(),
		ToothNumber:   14,
		TreatmentType: "Crown",
		Category:      treatment.CategoryProsthetic,
		Cost:          cost,
	}
}

func TestDeriveStatus(t *testing.T) {
	cases := []struct {
		due, paid, remaining float64
		want                 string
	}{
		{0, 0, 0, StatusCompleted},
		{500, 0, 500, StatusPending},
		{500, 200, 300, StatusPartial},
		{500, 500, 0, StatusCompleted},
		{300, 500, 0, StatusCompleted},
	}
	for _, tc := range cases {
		if got := DeriveStatus(tc.due, tc.paid, tc.remaining); got != tc.want {
			t.Errorf("DeriveStatus(%v, %v, %v) = %s, want %s", tc.due, tc.paid, tc.remaining, got, tc.want)
		}
	}
}

func TestCreatePendingInvoice(t *testing.T) {
	repo := newFakeRepo()
	rec := newReconciler(repo)
	tr := testTreatment(500)

	if err := rec.CreatePendingInvoice(context.Background(), tr); err != nil {
		t.Fatalf("create invoice: %v", err)
	}

	linked, _ := repo.ListByTreatment(context.Background(), tr.ID)
	if len(linked) != 1 {
		t.Fatalf("linked rows = %d, want 1", len(linked))
	}
	e := linked[0]
	if e.Amount != 0 || e.TotalDue != 500 || e.RemainingBalance != 500 || e.Status != StatusPending {
		t.Errorf("invoice = amount %v due %v remaining %v status %s", e.Amount, e.TotalDue, e.RemainingBalance, e.Status)
	}
	if e.Description == "" {
		t.Error("expected generated description")
	}
}

func TestCreatePendingInvoice_NoOps(t *testing.T) {
	repo := newFakeRepo()
	rec := newReconciler(repo)

	// Zero cost never produces an invoice.
	if err := rec.CreatePendingInvoice(context.Background(), testTreatment(0)); err != nil {
		t.Fatalf("zero cost: %v", err)
	}
	if len(repo.entries) != 0 {
		t.Error("zero-cost treatment produced an invoice")
	}

	// Missing id is a no-op.
	tr := testTreatment(100)
	tr.ID = uuid.Nil
	if err := rec.CreatePendingInvoice(context.Background(), tr); err != nil {
		t.Fatalf("nil id: %v", err)
	}
	if len(repo.entries) != 0 {
		t.Error("treatment without id produced an invoice")
	}

	// Second call for the same treatment does not duplicate.
	tr = testTreatment(100)
	rec.CreatePendingInvoice(context.Background(), tr)
	rec.CreatePendingInvoice(context.Background(), tr)
	linked, _ := repo.ListByTreatment(context.Background(), tr.ID)
	if len(linked) != 1 {
		t.Errorf("linked rows after double create = %d, want 1", len(linked))
	}
}

func TestReconcileOnCostChange_SameCostIsNoOp(t *testing.T) {
	repo := newFakeRepo()
	rec := newReconciler(repo)
	tr := testTreatment(500)
	rec.CreatePendingInvoice(context.Background(), tr)

	before := repo.updates
	if err := rec.ReconcileOnCostChange(context.Background(), tr, 500, 500); err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if repo.updates != before {
		t.Error("same-cost reconcile wrote to the store")
	}
}

func TestReconcileOnCostChange_MirrorsAllRows(t *testing.T) {
	repo := newFakeRepo()
	rec := newReconciler(repo)
	tr := testTreatment(500)

	// Two payment rows linked to the same treatment.
	id := tr.ID
	repo.Create(context.Background(), &Entry{
		PatientID: tr.PatientID, TreatmentID: &id, Amount: 200,
		TotalDue: 500, TotalPaid: 200, RemainingBalance: 300, Status: StatusPartial,
	})
	repo.Create(context.Background(), &Entry{
		PatientID: tr.PatientID, TreatmentID: &id, Amount: 100,
		TotalDue: 500, TotalPaid: 300, RemainingBalance: 200, Status: StatusPartial,
	})

	if err := rec.ReconcileOnCostChange(context.Background(), tr, 500, 800); err != nil {
		t.Fatalf("reconcile: %v", err)
	}

	linked, _ := repo.ListByTreatment(context.Background(), tr.ID)
	for _, e := range linked {
		if e.TotalDue != 800 || e.TotalPaid != 300 || e.RemainingBalance != 500 || e.Status != StatusPartial {
			t.Errorf("row %s = due %v paid %v remaining %v status %s; want 800/300/500/partial",
				e.ID, e.TotalDue, e.TotalPaid, e.RemainingBalance, e.Status)
		}
	}
}

func TestReconcileOnCostChange_ReductionBelowPaid(t *testing.T) {
	repo := newFakeRepo()
	rec := newReconciler(repo)
	tr := testTreatment(500)

	id := tr.ID
	repo.Create(context.Background(), &Entry{
		PatientID: tr.PatientID, TreatmentID: &id, Amount: 500,
		TotalDue: 500, TotalPaid: 500, RemainingBalance: 0, Status: StatusCompleted,
	})

	// Cost drops to 300 after a full 500 payment: remaining clamps to 0.
	if err := rec.ReconcileOnCostChange(context.Background(), tr, 500, 300); err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	linked, _ := repo.ListByTreatment(context.Background(), tr.ID)
	e := linked[0]
	if e.TotalDue != 300 || e.RemainingBalance != 0 || e.Status != StatusCompleted {
		t.Errorf("row = due %v remaining %v status %s; want 300/0/completed", e.TotalDue, e.RemainingBalance, e.Status)
	}
}

func TestReconcileOnCostChange_CreatesInvoiceWhenNoneLinked(t *testing.T) {
	repo := newFakeRepo()
	rec := newReconciler(repo)
	tr := testTreatment(250)

	if err := rec.ReconcileOnCostChange(context.Background(), tr, 0, 250); err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	linked, _ := repo.ListByTreatment(context.Background(), tr.ID)
	if len(linked) != 1 || linked[0].Status != StatusPending || linked[0].TotalDue != 250 {
		t.Errorf("expected one pending invoice for 250, got %+v", linked)
	}
}

func TestRecordPayment_MirrorsAcrossRows(t *testing.T) {
	repo := newFakeRepo()
	rec := newReconciler(repo)
	tr := testTreatment(500)
	rec.CreatePendingInvoice(context.Background(), tr)

	linked, _ := repo.ListByTreatment(context.Background(), tr.ID)
	entry, err := rec.RecordPayment(context.Background(), linked[0].ID, 200, nil)
	if err != nil {
		t.Fatalf("record payment: %v", err)
	}
	if entry.Amount != 200 || entry.TotalPaid != 200 || entry.RemainingBalance != 300 || entry.Status != StatusPartial {
		t.Errorf("entry = amount %v paid %v remaining %v status %s", entry.Amount, entry.TotalPaid, entry.RemainingBalance, entry.Status)
	}

	// Paying the rest completes the treatment.
	entry, err = rec.RecordPayment(context.Background(), entry.ID, 300, nil)
	if err != nil {
		t.Fatalf("record payment: %v", err)
	}
	if entry.Status != StatusCompleted || entry.RemainingBalance != 0 {
		t.Errorf("entry after full payment = status %s remaining %v", entry.Status, entry.RemainingBalance)
	}
}

func TestRecordPayment_RejectsNonPositive(t *testing.T) {
	repo := newFakeRepo()
	rec := newReconciler(repo)
	tr := testTreatment(500)
	rec.CreatePendingInvoice(context.Background(), tr)
	linked, _ := repo.ListByTreatment(context.Background(), tr.ID)

	if _, err := rec.RecordPayment(context.Background(), linked[0].ID, 0, nil); err == nil {
		t.Error("expected error for zero payment")
	}
	if _, err := rec.RecordPayment(context.Background(), linked[0].ID, -10, nil); err == nil {
		t.Error("expected error for negative payment")
	}
}

func TestSummary(t *testing.T) {
	repo := newFakeRepo()
	rec := newReconciler(repo)
	tr := testTreatment(500)

	// No rows, zero cost: completed with nothing due.
	s, err := rec.Summary(context.Background(), tr.ID, 0)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if s.Status != StatusCompleted || s.TotalDue != 0 {
		t.Errorf("zero-cost summary = %+v", s)
	}

	// No rows, positive cost: pending for the full amount.
	s, _ = rec.Summary(context.Background(), tr.ID, 500)
	if s.Status != StatusPending || s.RemainingBalance != 500 {
		t.Errorf("uninvoiced summary = %+v", s)
	}

	rec.CreatePendingInvoice(context.Background(), tr)
	s, _ = rec.Summary(context.Background(), tr.ID, tr.Cost)
	if s.EntryCount != 1 || s.TotalDue != 500 || s.Status != StatusPending {
		t.Errorf("invoiced summary = %+v", s)
	}
}

func TestCleanupOnTreatmentDelete(t *testing.T) {
	repo := newFakeRepo()
	rec := newReconciler(repo)
	tr := testTreatment(500)
	id := tr.ID

	repo.Create(context.Background(), &Entry{
		PatientID: tr.PatientID, TreatmentID: &id, Amount: 0,
		TotalDue: 500, RemainingBalance: 500, Status: StatusPending, Description: "Crown - tooth 14",
	})
	repo.Create(context.Background(), &Entry{
		PatientID: tr.PatientID, TreatmentID: &id, Amount: 200,
		TotalDue: 500, TotalPaid: 200, RemainingBalance: 300, Status: StatusPartial, Description: "Crown - tooth 14",
	})

	deleted, detached, err := rec.CleanupOnTreatmentDelete(context.Background(), tr.ID)
	if err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if deleted != 1 || detached != 1 {
		t.Errorf("deleted = %d, detached = %d; want 1, 1", deleted, detached)
	}

	// Nothing still references the treatment.
	linked, _ := repo.ListByTreatment(context.Background(), tr.ID)
	if len(linked) != 0 {
		t.Errorf("rows still linked after cleanup: %d", len(linked))
	}
	// The paid row survives, detached and annotated.
	if len(repo.entries) != 1 {
		t.Fatalf("surviving rows = %d, want 1", len(repo.entries))
	}
	for _, e := range repo.entries {
		if e.TreatmentID != nil {
			t.Error("surviving row still holds a treatment reference")
		}
		if e.Description == "Crown - tooth 14" {
			t.Error("surviving row was not annotated")
		}
	}
}

func TestStrandedEntries(t *testing.T) {
	repo := newFakeRepo()
	rec := newReconciler(repo)
	live := uuid.New()
	dead := uuid.New()

	repo.Create(context.Background(), &Entry{PatientID: uuid.New(), TreatmentID: &live, Amount: 100})
	repo.Create(context.Background(), &Entry{PatientID: uuid.New(), TreatmentID: &dead, Amount: 100})

	stranded, err := rec.StrandedEntries(context.Background(), func(_ context.Context, id uuid.UUID) bool {
		return id == live
	})
	if err != nil {
		t.Fatalf("stranded: %v", err)
	}
	if len(stranded) != 1 || *stranded[0].TreatmentID != dead {
		t.Errorf("stranded = %+v", stranded)
	}

	if err := rec.DetachEntry(context.Background(), stranded[0]); err != nil {
		t.Fatalf("detach: %v", err)
	}
	remaining, _ := rec.StrandedEntries(context.Background(), func(_ context.Context, id uuid.UUID) bool {
		return id == live
	})
	if len(remaining) != 0 {
		t.Errorf("stranded after detach = %d, want 0", len(remaining))
	}
}
