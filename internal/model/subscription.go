package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PushSubscription tracks a user's membership in the broadcast topic.
// Upserted on subscribe/unsubscribe, keyed by user.
type PushSubscription struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	UserID    string    `gorm:"type:varchar(128);uniqueIndex;not null" json:"user_id"`
	Topic     string    `gorm:"type:varchar(64);not null" json:"topic"`
	Token     string    `gorm:"type:text;not null" json:"token"`
	Active    bool      `gorm:"not null;default:false" json:"active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (PushSubscription) TableName() string {
	return "push_subscriptions"
}

func (s *PushSubscription) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
