package lab

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

type Service struct {
	labs Repository
}

func NewService(labs Repository) *Service {
	return &Service{labs: labs}
}

func (s *Service) CreateLaboratory(ctx context.Context, l *Laboratory) error {
	l.Name = strings.TrimSpace(l.Name)
	if l.Name == "" {
		return fmt.Errorf("name is required")
	}
	return s.labs.Create(ctx, l)
}

func (s *Service) GetLaboratory(ctx context.Context, id uuid.UUID) (*Laboratory, error) {
	return s.labs.GetByID(ctx, id)
}

func (s *Service) UpdateLaboratory(ctx context.Context, l *Laboratory) error {
	l.Name = strings.TrimSpace(l.Name)
	if l.Name == "" {
		return fmt.Errorf("name is required")
	}
	return s.labs.Update(ctx, l)
}

func (s *Service) DeleteLaboratory(ctx context.Context, id uuid.UUID) error {
	return s.labs.Delete(ctx, id)
}

func (s *Service) ListLaboratories(ctx context.Context, limit, offset int) ([]*Laboratory, int, error) {
	return s.labs.List(ctx, limit, offset)
}

// LabName resolves a laboratory's display name for generated descriptions.
func (s *Service) LabName(ctx context.Context, id uuid.UUID) (string, error) {
	l, err := s.labs.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	return l.Name, nil
}
