package services

import (
	"context"
	"strings"
	"unicode/utf8"

	"employee/internal/models"
	"employee/internal/repositories"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

const maxLabelLength = 100

// SchemaCache stores an owner's ordered field list between writes. Entries
// are keyed by a per-owner generation; Invalidate moves the owner to a new
// generation so a list loaded before a write is never served after it.
type SchemaCache interface {
	Generation(ctx context.Context, ownerID string) (int64, error)
	Get(ctx context.Context, ownerID string, generation int64) ([]models.FormField, bool, error)
	Set(ctx context.Context, ownerID string, generation int64, fields []models.FormField) error
	Invalidate(ctx context.Context, ownerID string) error
}

// FieldInput describes a new form field.
type FieldInput struct {
	Label    string
	Type     models.FieldType
	Required bool
}

// FieldPatch holds the attributes to change on a form field. Nil members
// are left untouched.
type FieldPatch struct {
	Label    *string
	Type     *models.FieldType
	Required *bool
	Order    *int
}

// FormFieldService manages each owner's runtime schema.
type FormFieldService struct {
	repo   repositories.FormFieldRepository
	tx     repositories.Transactor
	cache  SchemaCache
	events EventPublisher
	log    logrus.FieldLogger
	sf     singleflight.Group
}

// NewFormFieldService creates a new FormFieldService. cache and events may be nil.
func NewFormFieldService(repo repositories.FormFieldRepository, tx repositories.Transactor, cache SchemaCache, events EventPublisher, log logrus.FieldLogger) *FormFieldService {
	return &FormFieldService{
		repo:   repo,
		tx:     tx,
		cache:  cache,
		events: events,
		log:    log,
	}
}

// DefineField appends a field at the end of the owner's schema.
func (s *FormFieldService) DefineField(ctx context.Context, ownerID string, in FieldInput) (*models.FormField, error) {
	label, err := normalizeLabel(in.Label)
	if err != nil {
		return nil, err
	}
	if !in.Type.Valid() {
		return nil, errors.Wrapf(ErrValidation, "unsupported field type %q", in.Type)
	}

	field := &models.FormField{
		ID:       uuid.New().String(),
		OwnerID:  ownerID,
		Label:    label,
		Type:     in.Type,
		Required: in.Required,
	}
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		next, err := s.repo.NextOrder(ctx, ownerID)
		if err != nil {
			return err
		}
		field.Order = next
		return s.repo.Create(ctx, field)
	})
	if err != nil {
		return nil, errors.Wrap(err, "define field")
	}

	s.schemaChanged(ctx, Event{Type: EventFieldDefined, OwnerID: ownerID, EntityID: field.ID, Data: field})
	return field, nil
}

// ListFields returns the owner's fields sorted by order.
func (s *FormFieldService) ListFields(ctx context.Context, ownerID string) ([]models.FormField, error) {
	cache, generation := s.cacheGeneration(ctx, ownerID)
	if cache != nil {
		fields, ok, err := cache.Get(ctx, ownerID, generation)
		if err != nil {
			s.log.WithField("owner_id", ownerID).WithError(err).Warn("schema cache read failed")
		} else if ok {
			return fields, nil
		}
	}

	v, err, _ := s.sf.Do(ownerID, func() (interface{}, error) {
		fields, err := s.repo.ListByOwner(ctx, ownerID)
		if err != nil {
			return nil, err
		}
		if cache != nil {
			if err := cache.Set(ctx, ownerID, generation, fields); err != nil {
				s.log.WithField("owner_id", ownerID).WithError(err).Warn("schema cache write failed")
			}
		}
		return fields, nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "list fields")
	}

	shared := v.([]models.FormField)
	fields := make([]models.FormField, len(shared))
	copy(fields, shared)
	return fields, nil
}

// cacheGeneration reads the owner's generation before the repository is
// consulted. A nil cache means the cache is bypassed for this call.
func (s *FormFieldService) cacheGeneration(ctx context.Context, ownerID string) (SchemaCache, int64) {
	if s.cache == nil {
		return nil, 0
	}
	generation, err := s.cache.Generation(ctx, ownerID)
	if err != nil {
		s.log.WithField("owner_id", ownerID).WithError(err).Warn("schema cache generation read failed")
		return nil, 0
	}
	return s.cache, generation
}

// GetField returns a single field owned by ownerID.
func (s *FormFieldService) GetField(ctx context.Context, ownerID, id string) (*models.FormField, error) {
	field, err := s.repo.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, wrapRepoErr(err, "get field %s", id)
	}
	return field, nil
}

// UpdateField applies patch to a field owned by ownerID.
func (s *FormFieldService) UpdateField(ctx context.Context, ownerID, id string, patch FieldPatch) (*models.FormField, error) {
	if err := patch.validate(); err != nil {
		return nil, err
	}

	var field *models.FormField
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		field, err = s.repo.GetByID(ctx, ownerID, id)
		if err != nil {
			return err
		}
		if patch.Label != nil {
			field.Label = strings.TrimSpace(*patch.Label)
		}
		if patch.Type != nil {
			field.Type = *patch.Type
		}
		if patch.Required != nil {
			field.Required = *patch.Required
		}
		if patch.Order != nil {
			field.Order = *patch.Order
		}
		return s.repo.Update(ctx, field)
	})
	if err != nil {
		return nil, wrapRepoErr(err, "update field %s", id)
	}

	s.schemaChanged(ctx, Event{Type: EventFieldUpdated, OwnerID: ownerID, EntityID: field.ID, Data: field})
	return field, nil
}

// DeleteField removes a field. Records already captured keep their values.
func (s *FormFieldService) DeleteField(ctx context.Context, ownerID, id string) error {
	if err := s.repo.Delete(ctx, ownerID, id); err != nil {
		return wrapRepoErr(err, "delete field %s", id)
	}
	s.schemaChanged(ctx, Event{Type: EventFieldDeleted, OwnerID: ownerID, EntityID: id})
	return nil
}

// Reorder sets order = index for every id in orderedIDs. Ids the owner does
// not have are skipped. All moves commit together.
func (s *FormFieldService) Reorder(ctx context.Context, ownerID string, orderedIDs []string) error {
	moved := 0
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		moved = 0
		for idx, id := range orderedIDs {
			if id == "" {
				continue
			}
			ok, err := s.repo.SetOrder(ctx, ownerID, id, idx)
			if err != nil {
				return err
			}
			if ok {
				moved++
			}
		}
		return nil
	})
	if err != nil {
		return errors.Wrap(err, "reorder fields")
	}

	s.log.WithFields(logrus.Fields{
		"owner_id":  ownerID,
		"requested": len(orderedIDs),
		"moved":     moved,
	}).Debug("fields reordered")
	s.schemaChanged(ctx, Event{Type: EventFieldsReordered, OwnerID: ownerID, Data: orderedIDs})
	return nil
}

// schemaChanged runs after a committed write. Loads already in flight for
// the owner are detached so later readers query the store again.
func (s *FormFieldService) schemaChanged(ctx context.Context, evt Event) {
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, evt.OwnerID); err != nil {
			s.log.WithField("owner_id", evt.OwnerID).WithError(err).Warn("schema cache invalidation failed")
		}
	}
	s.sf.Forget(evt.OwnerID)
	publishEvent(ctx, s.events, s.log, evt)
}

func (p FieldPatch) validate() error {
	if p.Label == nil && p.Type == nil && p.Required == nil && p.Order == nil {
		return errors.Wrap(ErrValidation, "empty patch")
	}
	if p.Label != nil {
		if _, err := normalizeLabel(*p.Label); err != nil {
			return err
		}
	}
	if p.Type != nil && !p.Type.Valid() {
		return errors.Wrapf(ErrValidation, "unsupported field type %q", *p.Type)
	}
	if p.Order != nil && *p.Order < 0 {
		return errors.Wrapf(ErrValidation, "order must not be negative, got %d", *p.Order)
	}
	return nil
}

func normalizeLabel(label string) (string, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return "", errors.Wrap(ErrValidation, "label is required")
	}
	if utf8.RuneCountInString(label) > maxLabelLength {
		return "", errors.Wrapf(ErrValidation, "label exceeds %d characters", maxLabelLength)
	}
	return label, nil
}
