package models

import (
	"time"

	"gorm.io/datatypes"
)

// FieldValue is a submitted value tagged with the field type it was
// captured under. Value is nil when nothing was submitted.
type FieldValue struct {
	Value *string   `json:"value"`
	Type  FieldType `json:"type"`
}

// FieldValues maps a field label to its captured value.
type FieldValues map[string]FieldValue

// Employee is a schemaless record. Values is a snapshot of the owner's
// schema at write time; it does not reference FormField rows.
type Employee struct {
	ID        string                          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OwnerID   string                          `json:"owner_id" gorm:"type:varchar(36);not null;index"`
	Values    datatypes.JSONType[FieldValues] `json:"values" gorm:"column:field_values"`
	CreatedAt time.Time                       `json:"created_at"`
	UpdatedAt time.Time                       `json:"updated_at"`
}
