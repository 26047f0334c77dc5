package services

import (
	"bytes"
	"context"
	"encoding/json"

	"employee/internal/models"
	"employee/internal/repositories"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

// EmployeeService stores employee records against the owner's current schema.
type EmployeeService struct {
	repo   repositories.EmployeeRepository
	fields repositories.FormFieldRepository
	tx     repositories.Transactor
	events EventPublisher
	log    logrus.FieldLogger
}

// NewEmployeeService creates a new EmployeeService. events may be nil.
func NewEmployeeService(repo repositories.EmployeeRepository, fields repositories.FormFieldRepository, tx repositories.Transactor, events EventPublisher, log logrus.FieldLogger) *EmployeeService {
	return &EmployeeService{
		repo:   repo,
		fields: fields,
		tx:     tx,
		events: events,
		log:    log,
	}
}

// CreateRecord snapshots raw, keyed by field ID, against the owner's schema.
// Fields missing from raw are stored with a nil value. The required flag is
// not enforced.
func (s *EmployeeService) CreateRecord(ctx context.Context, ownerID string, raw map[string]*string) (*models.Employee, error) {
	employee := &models.Employee{
		ID:      uuid.New().String(),
		OwnerID: ownerID,
	}
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		fields, err := s.fields.ListByOwner(ctx, ownerID)
		if err != nil {
			return err
		}
		employee.Values = datatypes.NewJSONType(BuildValues(fields, raw))
		return s.repo.Create(ctx, employee)
	})
	if err != nil {
		return nil, errors.Wrap(err, "create record")
	}

	publishEvent(ctx, s.events, s.log, Event{Type: EventRecordCreated, OwnerID: ownerID, EntityID: employee.ID, Data: employee})
	return employee, nil
}

// UpdateRecord rebuilds the full value snapshot of a record. It is a
// replace, not a merge.
func (s *EmployeeService) UpdateRecord(ctx context.Context, ownerID, id string, raw map[string]*string) (*models.Employee, error) {
	var employee *models.Employee
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		employee, err = s.repo.GetByID(ctx, ownerID, id)
		if err != nil {
			return err
		}
		fields, err := s.fields.ListByOwner(ctx, ownerID)
		if err != nil {
			return err
		}
		employee.Values = datatypes.NewJSONType(BuildValues(fields, raw))
		return s.repo.Update(ctx, employee)
	})
	if err != nil {
		return nil, wrapRepoErr(err, "update record %s", id)
	}

	publishEvent(ctx, s.events, s.log, Event{Type: EventRecordUpdated, OwnerID: ownerID, EntityID: employee.ID, Data: employee})
	return employee, nil
}

// DeleteRecord removes a record owned by ownerID.
func (s *EmployeeService) DeleteRecord(ctx context.Context, ownerID, id string) error {
	if err := s.repo.Delete(ctx, ownerID, id); err != nil {
		return wrapRepoErr(err, "delete record %s", id)
	}
	publishEvent(ctx, s.events, s.log, Event{Type: EventRecordDeleted, OwnerID: ownerID, EntityID: id})
	return nil
}

// GetRecord returns a single record owned by ownerID.
func (s *EmployeeService) GetRecord(ctx context.Context, ownerID, id string) (*models.Employee, error) {
	employee, err := s.repo.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, wrapRepoErr(err, "get record %s", id)
	}
	return employee, nil
}

// ListRecords returns the owner's records. A non-empty search keeps only
// records whose serialized values contain it, case-sensitively.
func (s *EmployeeService) ListRecords(ctx context.Context, ownerID, search string) ([]models.Employee, error) {
	employees, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, errors.Wrap(err, "list records")
	}
	if search == "" {
		return employees, nil
	}

	needle := []byte(search)
	matched := make([]models.Employee, 0, len(employees))
	for _, e := range employees {
		serialized, err := SerializeValues(e.Values.Data())
		if err != nil {
			return nil, errors.Wrapf(err, "serialize record %s", e.ID)
		}
		if bytes.Contains(serialized, needle) {
			matched = append(matched, e)
		}
	}
	return matched, nil
}

// BuildValues maps every field's label to the value submitted under the
// field's ID, tagged with the field's type. Later fields win on duplicate
// labels.
func BuildValues(fields []models.FormField, raw map[string]*string) models.FieldValues {
	values := make(models.FieldValues, len(fields))
	for _, field := range fields {
		var value *string
		if submitted, ok := raw[field.ID]; ok && submitted != nil {
			v := *submitted
			value = &v
		}
		values[field.Label] = models.FieldValue{Value: value, Type: field.Type}
	}
	return values
}

// SerializeValues is the textual form searched by ListRecords: JSON with
// sorted keys and no HTML escaping.
func SerializeValues(values models.FieldValues) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(values); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
