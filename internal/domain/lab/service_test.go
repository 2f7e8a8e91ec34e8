package lab

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
)

type mockRepo struct {
	labs map[uuid.UUID]*Laboratory
}

func newMockRepo() *mockRepo {
	return &mockRepo{labs: make(map[uuid.UUID]*Laboratory)}
}

func (m *mockRepo) Create(_ context.Context, l *Laboratory) error {
	l.ID = uuid.New()
	l.CreatedAt = time.Now()
	l.UpdatedAt = time.Now()
	m.labs[l.ID] = l
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Laboratory, error) {
	l, ok := m.labs[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return l, nil
}

func (m *mockRepo) Update(_ context.Context, l *Laboratory) error {
	m.labs[l.ID] = l
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.labs, id)
	return nil
}

func (m *mockRepo) List(_ context.Context, limit, offset int) ([]*Laboratory, int, error) {
	var result []*Laboratory
	for _, l := range m.labs {
		result = append(result, l)
	}
	return result, len(result), nil
}

func TestCreateLaboratory(t *testing.T) {
	svc := NewService(newMockRepo())
	l := &Laboratory{Name: "Crown Works"}
	if err := svc.CreateLaboratory(context.Background(), l); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if l.ID == uuid.Nil {
		t.Error("expected assigned id")
	}
}

func TestCreateLaboratory_NameRequired(t *testing.T) {
	svc := NewService(newMockRepo())
	if err := svc.CreateLaboratory(context.Background(), &Laboratory{Name: "  "}); err == nil {
		t.Error("expected error for missing name")
	}
}

func TestLabName(t *testing.T) {
	svc := NewService(newMockRepo())
	l := &Laboratory{Name: "Crown Works"}
	svc.CreateLaboratory(context.Background(), l)

	name, err := svc.LabName(context.Background(), l.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if name != "Crown Works" {
		t.Errorf("expected Crown Works, got %s", name)
	}
}

func TestLabName_NotFound(t *testing.T) {
	svc := NewService(newMockRepo())
	if _, err := svc.LabName(context.Background(), uuid.New()); err == nil {
		t.Error("expected error for not found")
	}
}
