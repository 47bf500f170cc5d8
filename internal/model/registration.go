package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PlateRegistration maps a canonical plate to the account that registered it.
// Plate values are stored in normalized form only (uppercase, no whitespace).
type PlateRegistration struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	Plate     string    `gorm:"type:varchar(32);uniqueIndex;not null" json:"plate"`
	UserID    string    `gorm:"type:varchar(128);not null;index" json:"user_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (PlateRegistration) TableName() string {
	return "plate_registrations"
}

func (p *PlateRegistration) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
