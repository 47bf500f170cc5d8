package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"charger-alert-service/internal/model"
)

type SubscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

// Upsert writes the subscription keyed by user: one row per user, updated in
// place on subscribe/unsubscribe.
func (r *SubscriptionRepository) Upsert(ctx context.Context, sub *model.PushSubscription) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"topic", "token", "active", "updated_at"}),
		}).
		Create(sub).Error
}

func (r *SubscriptionRepository) GetByUserID(ctx context.Context, userID string) (*model.PushSubscription, error) {
	var sub model.PushSubscription
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&sub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sub, nil
}
