package models

import "time"

// Account is the identity that owns form fields and employee records.
type Account struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Email     string    `json:"email" gorm:"uniqueIndex;type:varchar(255);not null"`
	Password  string    `json:"-" gorm:"type:varchar(255);not null"` // bcrypt hash, never serialized
	FirstName string    `json:"first_name" gorm:"type:varchar(30);not null"`
	LastName  string    `json:"last_name" gorm:"type:varchar(30);not null"`
	Phone     *string   `json:"phone" gorm:"type:varchar(15)"`
	Address   *string   `json:"address" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
