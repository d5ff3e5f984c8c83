package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User covers citizens, contractors' login accounts, and ward staff.
// Role values are defined in the identity package; registration always
// produces a citizen, staff roles are administered.
type User struct {
	ID       uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Email    string     `gorm:"not null;size:255;uniqueIndex" json:"email"`
	Password string     `gorm:"not null" json:"-"`
	Name     string     `gorm:"size:255" json:"name"`
	Phone    string     `gorm:"size:20" json:"phone,omitempty"`
	Role     string     `gorm:"size:20;not null;default:'CITIZEN';index" json:"role"`
	WardID   *uuid.UUID `gorm:"type:uuid;index" json:"ward_id,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

func (User) TableName() string {
	return "users"
}
