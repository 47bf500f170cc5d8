package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"charger-alert-service/internal/model"
)

type RegistrationRepository struct {
	db *gorm.DB
}

func NewRegistrationRepository(db *gorm.DB) *RegistrationRepository {
	return &RegistrationRepository{db: db}
}

// GetByPlate looks up a registration by exact normalized plate. Not found is
// the explicit "unregistered" signal, returned as (nil, nil).
func (r *RegistrationRepository) GetByPlate(ctx context.Context, plate string) (*model.PlateRegistration, error) {
	if plate == "" {
		return nil, nil
	}
	var registration model.PlateRegistration
	err := r.db.WithContext(ctx).
		Where("plate = ?", plate).
		Limit(1).
		First(&registration).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &registration, nil
}
