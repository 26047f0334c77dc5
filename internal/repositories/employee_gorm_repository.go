package repositories

import (
	"context"
	"errors"
	"fmt"

	"employee/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMEmployeeRepository is a GORM implementation of EmployeeRepository.
type GORMEmployeeRepository struct {
	db *gorm.DB
}

// NewGORMEmployeeRepository creates a new instance of GORMEmployeeRepository.
func NewGORMEmployeeRepository(db *gorm.DB) *GORMEmployeeRepository {
	return &GORMEmployeeRepository{
		db: db,
	}
}

// ListByOwner returns the owner's records, oldest first.
func (r *GORMEmployeeRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.Employee, error) {
	employees := make([]models.Employee, 0)
	err := conn(ctx, r.db).
		Where("owner_id = ?", ownerID).
		Order("created_at ASC").Order("id ASC").
		Find(&employees).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list employees for owner %s: %w", ownerID, err)
	}
	return employees, nil
}

// GetByID retrieves a record by ID if it belongs to ownerID.
func (r *GORMEmployeeRepository) GetByID(ctx context.Context, ownerID, id string) (*models.Employee, error) {
	var employee models.Employee
	if err := conn(ctx, r.db).First(&employee, "id = ? AND owner_id = ?", id, ownerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("employee with ID %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get employee by ID %s: %w", id, err)
	}
	return &employee, nil
}

// Create creates a new employee record in the database.
func (r *GORMEmployeeRepository) Create(ctx context.Context, employee *models.Employee) error {
	if employee.ID == "" {
		employee.ID = uuid.New().String()
	}
	if err := conn(ctx, r.db).Create(employee).Error; err != nil {
		return fmt.Errorf("failed to create employee: %w", err)
	}
	return nil
}

// Update replaces the value snapshot of an existing record.
func (r *GORMEmployeeRepository) Update(ctx context.Context, employee *models.Employee) error {
	res := conn(ctx, r.db).Model(employee).
		Where("owner_id = ?", employee.OwnerID).
		Select("field_values", "updated_at").
		Updates(employee)
	if res.Error != nil {
		return fmt.Errorf("failed to update employee: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("employee with ID %s: %w", employee.ID, ErrNotFound)
	}
	return nil
}

// Delete deletes a record by ID if it belongs to ownerID.
func (r *GORMEmployeeRepository) Delete(ctx context.Context, ownerID, id string) error {
	res := conn(ctx, r.db).Where("id = ? AND owner_id = ?", id, ownerID).Delete(&models.Employee{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete employee: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("employee with ID %s: %w", id, ErrNotFound)
	}
	return nil
}
