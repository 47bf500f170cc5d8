package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const AlertStatusSent = "sent"

// ChargerAlert is the terminal audit record for a successful run. Rows are
// append-only: written once, never updated.
type ChargerAlert struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	Plate            string     `gorm:"type:varchar(32);not null;index" json:"plate"`
	Confidence       float64    `gorm:"not null" json:"confidence"`
	RecipientID      string     `gorm:"type:varchar(128);not null;index" json:"recipient_id"`
	ChargerID        string     `gorm:"type:varchar(64);not null" json:"charger_id"`
	Location         string     `gorm:"type:text" json:"location"`
	ReportedBy       string     `gorm:"type:varchar(128)" json:"reported_by"`
	OriginalImageURL string     `gorm:"type:text;not null" json:"original_image_url"`
	ResolvedImageURL string     `gorm:"type:text;not null" json:"resolved_image_url"`
	DeliveryMethod   string     `gorm:"type:varchar(32);not null" json:"delivery_method"`
	Status           string     `gorm:"type:varchar(16);not null" json:"status"`
	DispatchError    *string    `gorm:"type:text" json:"dispatch_error,omitempty"`
	CreatedAt        time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

func (ChargerAlert) TableName() string {
	return "charger_alerts"
}

func (a *ChargerAlert) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// UnregisteredPlate is the terminal audit record for a detected plate with
// no matching registration.
type UnregisteredPlate struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	Plate            string    `gorm:"type:varchar(32);not null;index" json:"plate"`
	Confidence       float64   `gorm:"not null" json:"confidence"`
	ChargerID        string    `gorm:"type:varchar(64);not null" json:"charger_id"`
	Location         string    `gorm:"type:text" json:"location"`
	ReportedBy       string    `gorm:"type:varchar(128)" json:"reported_by"`
	OriginalImageURL string    `gorm:"type:text;not null" json:"original_image_url"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (UnregisteredPlate) TableName() string {
	return "unregistered_plates"
}

func (u *UnregisteredPlate) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// FailedDetection is the terminal audit record for an unrecoverable pipeline
// failure. UpstreamBody keeps any structured error payload returned by the
// failing collaborator.
type FailedDetection struct {
	ID               uuid.UUID      `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	Stage            string         `gorm:"type:varchar(32);not null" json:"stage"`
	ErrorMessage     string         `gorm:"type:text;not null" json:"error_message"`
	UpstreamBody     datatypes.JSON `gorm:"type:jsonb" json:"upstream_body,omitempty"`
	ChargerID        string         `gorm:"type:varchar(64);not null" json:"charger_id"`
	Location         string         `gorm:"type:text" json:"location"`
	OriginalImageURL string         `gorm:"type:text;not null" json:"original_image_url"`
	CreatedAt        time.Time      `gorm:"autoCreateTime" json:"created_at"`
}

func (FailedDetection) TableName() string {
	return "failed_detections"
}

func (f *FailedDetection) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}
