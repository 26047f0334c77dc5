package repositories

import (
	"context"

	"employee/internal/models"
)

// EmployeeRepository defines the interface for employee record data access.
// Every method is scoped to a single owner.
type EmployeeRepository interface {
	ListByOwner(ctx context.Context, ownerID string) ([]models.Employee, error)
	GetByID(ctx context.Context, ownerID, id string) (*models.Employee, error)
	Create(ctx context.Context, employee *models.Employee) error
	Update(ctx context.Context, employee *models.Employee) error
	Delete(ctx context.Context, ownerID, id string) error
}
