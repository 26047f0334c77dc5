package models

import "time"

// FieldType is the input type of a dynamic form field.
type FieldType string

const (
	FieldTypeText     FieldType = "text"
	FieldTypeNumber   FieldType = "number"
	FieldTypeDate     FieldType = "date"
	FieldTypeEmail    FieldType = "email"
	FieldTypePassword FieldType = "password"
	FieldTypeTextArea FieldType = "textarea"
	FieldTypeCheckbox FieldType = "checkbox"
	FieldTypeSelect   FieldType = "select"
)

// FieldTypes lists every supported field type in display order.
var FieldTypes = []FieldType{
	FieldTypeText,
	FieldTypeNumber,
	FieldTypeDate,
	FieldTypeEmail,
	FieldTypePassword,
	FieldTypeTextArea,
	FieldTypeCheckbox,
	FieldTypeSelect,
}

// Valid reports whether t is one of FieldTypes.
func (t FieldType) Valid() bool {
	for _, known := range FieldTypes {
		if t == known {
			return true
		}
	}
	return false
}

// FormField is one entry of an owner's runtime schema.
type FormField struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OwnerID   string    `json:"owner_id" gorm:"type:varchar(36);not null;index:idx_form_fields_owner_order,priority:1"`
	Label     string    `json:"label" gorm:"type:varchar(100);not null"`
	Type      FieldType `json:"type" gorm:"column:field_type;type:varchar(20);not null"`
	Required  bool      `json:"required" gorm:"not null"`
	Order     int       `json:"order" gorm:"column:sort_order;not null;index:idx_form_fields_owner_order,priority:2"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
