package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Ward is the administrative geographic unit that owns reports and is
// staffed by admins and moderators.
type Ward struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"not null;size:255" json:"name"`
	City      string    `gorm:"not null;size:255;index" json:"city"`
	Zone      string    `gorm:"size:100" json:"zone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (w *Ward) BeforeCreate(tx *gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return nil
}

func (Ward) TableName() string {
	return "wards"
}

// Department is a ward-scoped municipal unit that can receive direct
// assignments in place of an external contractor.
type Department struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	WardID    uuid.UUID `gorm:"type:uuid;not null;index" json:"ward_id"`
	Name      string    `gorm:"not null;size:255" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (d *Department) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

func (Department) TableName() string {
	return "departments"
}
