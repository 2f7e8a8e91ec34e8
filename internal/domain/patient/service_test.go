package patient

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

type mockRepo struct {
	patients map[uuid.UUID]*Patient
}

func newMockRepo() *mockRepo {
	return &mockRepo{patients: make(map[uuid.UUID]*Patient)}
}

func (m *mockRepo) Create(_ context.Context, p *Patient) error {
	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	p.UpdatedAt = time.Now()
	m.patients[p.ID] = p
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Patient, error) {
	p, ok := m.patients[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return p, nil
}

func (m *mockRepo) Update(_ context.Context, p *Patient) error {
	m.patients[p.ID] = p
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.patients, id)
	return nil
}

func (m *mockRepo) List(_ context.Context, limit, offset int) ([]*Patient, int, error) {
	var result []*Patient
	for _, p := range m.patients {
		result = append(result, p)
	}
	return result, len(result), nil
}

func (m *mockRepo) SearchByName(_ context.Context, name string, limit, offset int) ([]*Patient, int, error) {
	var result []*Patient
	for _, p := range m.patients {
		if strings.Contains(strings.ToLower(p.FullName), strings.ToLower(name)) {
			result = append(result, p)
		}
	}
	return result, len(result), nil
}

func newTestService() *Service {
	return NewService(newMockRepo())
}

func TestCreatePatient(t *testing.T) {
	svc := newTestService()
	p := &Patient{FullName: "Omar Hassan"}
	if err := svc.CreatePatient(context.Background(), p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ID == uuid.Nil {
		t.Error("expected assigned id")
	}
}

func TestCreatePatient_NameRequired(t *testing.T) {
	svc := newTestService()
	err := svc.CreatePatient(context.Background(), &Patient{FullName: "   "})
	if err == nil {
		t.Error("expected error for missing name")
	}
}

func TestCreatePatient_InvalidGender(t *testing.T) {
	svc := newTestService()
	g := "unknown"
	err := svc.CreatePatient(context.Background(), &Patient{FullName: "A", Gender: &g})
	if err == nil {
		t.Error("expected error for invalid gender")
	}
}

func TestGetPatient_NotFound(t *testing.T) {
	svc := newTestService()
	if _, err := svc.GetPatient(context.Background(), uuid.New()); err == nil {
		t.Error("expected error for not found")
	}
}

func TestSearchPatients(t *testing.T) {
	svc := newTestService()
	svc.CreatePatient(context.Background(), &Patient{FullName: "Omar Hassan"})
	svc.CreatePatient(context.Background(), &Patient{FullName: "Lina Farouk"})

	items, total, err := svc.SearchPatients(context.Background(), "omar", 20, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 1 || len(items) != 1 {
		t.Errorf("expected 1 match, got %d", total)
	}
}

func TestPatientName(t *testing.T) {
	svc := newTestService()
	p := &Patient{FullName: "Omar Hassan"}
	svc.CreatePatient(context.Background(), p)

	name, err := svc.PatientName(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if name != "Omar Hassan" {
		t.Errorf("expected Omar Hassan, got %s", name)
	}
}

func TestDeletePatient(t *testing.T) {
	svc := newTestService()
	p := &Patient{FullName: "Omar Hassan"}
	svc.CreatePatient(context.Background(), p)
	if err := svc.DeletePatient(context.Background(), p.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.GetPatient(context.Background(), p.ID); err == nil {
		t.Error("expected error after deletion")
	}
}
