package repositories

import (
	"context"

	"employee/internal/models"
)

// FormFieldRepository defines the interface for form field data access.
// Every method is scoped to a single owner.
type FormFieldRepository interface {
	ListByOwner(ctx context.Context, ownerID string) ([]models.FormField, error)
	GetByID(ctx context.Context, ownerID, id string) (*models.FormField, error)
	// NextOrder returns the highest order in use plus one, or 0 when the
	// owner has no fields.
	NextOrder(ctx context.Context, ownerID string) (int, error)
	Create(ctx context.Context, field *models.FormField) error
	Update(ctx context.Context, field *models.FormField) error
	// SetOrder reports whether a field owned by ownerID was updated.
	SetOrder(ctx context.Context, ownerID, id string, order int) (bool, error)
	Delete(ctx context.Context, ownerID, id string) error
}
