package repository

import (
	"context"

	"gorm.io/gorm"

	"charger-alert-service/internal/model"
)

// AuditRepository owns the three append-only outcome logs. Records are
// created once and never updated.
type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) CreateAlert(ctx context.Context, alert *model.ChargerAlert) error {
	return r.db.WithContext(ctx).Create(alert).Error
}

func (r *AuditRepository) CreateUnregisteredPlate(ctx context.Context, rec *model.UnregisteredPlate) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *AuditRepository) CreateFailedDetection(ctx context.Context, rec *model.FailedDetection) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *AuditRepository) ListAlerts(ctx context.Context, limit, offset int) ([]model.ChargerAlert, error) {
	var alerts []model.ChargerAlert
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&alerts).Error
	return alerts, err
}

func (r *AuditRepository) ListUnregisteredPlates(ctx context.Context, limit, offset int) ([]model.UnregisteredPlate, error) {
	var records []model.UnregisteredPlate
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&records).Error
	return records, err
}

func (r *AuditRepository) ListFailedDetections(ctx context.Context, limit, offset int) ([]model.FailedDetection, error) {
	var records []model.FailedDetection
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&records).Error
	return records, err
}
