package service

import (
	"context"

	"github.com/civicvoice/complaint-service/internal/domain"
	"github.com/civicvoice/complaint-service/internal/repository"
)

// DirectoryService lists the department officers citizens can see ratings for.
type DirectoryService struct {
	users repository.UserRepository
}

// NewDirectoryService constructs the service.
func NewDirectoryService(users repository.UserRepository) *DirectoryService {
	return &DirectoryService{users: users}
}

// Departments returns the active department actors with their running rating.
func (s *DirectoryService) Departments(ctx context.Context) ([]domain.Actor, error) {
	officers, err := s.users.ListByRole(ctx, domain.RoleDepartment)
	if err != nil {
		return nil, err
	}
	if officers == nil {
		officers = []domain.Actor{}
	}
	return officers, nil
}
