package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"employee/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMFormFieldRepository is a GORM implementation of FormFieldRepository.
type GORMFormFieldRepository struct {
	db *gorm.DB
}

// NewGORMFormFieldRepository creates a new instance of GORMFormFieldRepository.
func NewGORMFormFieldRepository(db *gorm.DB) *GORMFormFieldRepository {
	return &GORMFormFieldRepository{
		db: db,
	}
}

// ListByOwner returns the owner's fields in display order.
func (r *GORMFormFieldRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.FormField, error) {
	fields := make([]models.FormField, 0)
	err := conn(ctx, r.db).
		Where("owner_id = ?", ownerID).
		Order("sort_order ASC").Order("created_at ASC").Order("id ASC").
		Find(&fields).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list form fields for owner %s: %w", ownerID, err)
	}
	return fields, nil
}

// GetByID retrieves a field by ID if it belongs to ownerID.
func (r *GORMFormFieldRepository) GetByID(ctx context.Context, ownerID, id string) (*models.FormField, error) {
	var field models.FormField
	if err := conn(ctx, r.db).First(&field, "id = ? AND owner_id = ?", id, ownerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("form field with ID %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get form field by ID %s: %w", id, err)
	}
	return &field, nil
}

// NextOrder returns MAX(sort_order)+1 for the owner, or 0 without fields.
func (r *GORMFormFieldRepository) NextOrder(ctx context.Context, ownerID string) (int, error) {
	var maxOrder sql.NullInt64
	row := conn(ctx, r.db).Model(&models.FormField{}).
		Select("MAX(sort_order)").
		Where("owner_id = ?", ownerID).
		Row()
	if err := row.Scan(&maxOrder); err != nil {
		return 0, fmt.Errorf("failed to read max order for owner %s: %w", ownerID, err)
	}
	if !maxOrder.Valid {
		return 0, nil
	}
	return int(maxOrder.Int64) + 1, nil
}

// Create creates a new form field in the database.
func (r *GORMFormFieldRepository) Create(ctx context.Context, field *models.FormField) error {
	if field.ID == "" {
		field.ID = uuid.New().String()
	}
	if err := conn(ctx, r.db).Create(field).Error; err != nil {
		return fmt.Errorf("failed to create form field: %w", err)
	}
	return nil
}

// Update writes every mutable column of field. The owner is part of the
// WHERE clause so a foreign row is never touched.
func (r *GORMFormFieldRepository) Update(ctx context.Context, field *models.FormField) error {
	res := conn(ctx, r.db).Model(field).
		Where("owner_id = ?", field.OwnerID).
		Select("label", "field_type", "required", "sort_order", "updated_at").
		Updates(field)
	if res.Error != nil {
		return fmt.Errorf("failed to update form field: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("form field with ID %s: %w", field.ID, ErrNotFound)
	}
	return nil
}

// SetOrder moves a single field to order.
func (r *GORMFormFieldRepository) SetOrder(ctx context.Context, ownerID, id string, order int) (bool, error) {
	res := conn(ctx, r.db).Model(&models.FormField{}).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Update("sort_order", order)
	if res.Error != nil {
		return false, fmt.Errorf("failed to set order of form field %s: %w", id, res.Error)
	}
	return res.RowsAffected > 0, nil
}

// Delete deletes a field by ID if it belongs to ownerID.
func (r *GORMFormFieldRepository) Delete(ctx context.Context, ownerID, id string) error {
	res := conn(ctx, r.db).Where("id = ? AND owner_id = ?", id, ownerID).Delete(&models.FormField{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete form field: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("form field with ID %s: %w", id, ErrNotFound)
	}
	return nil
}
