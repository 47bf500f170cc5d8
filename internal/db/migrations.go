package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	`CREATE EXTENSION IF NOT EXISTS "pgcrypto";`,
	`CREATE TABLE IF NOT EXISTS plate_registrations (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		plate VARCHAR(32) NOT NULL,
		user_id VARCHAR(128) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_plate_registrations_plate ON plate_registrations (plate);`,
	`CREATE INDEX IF NOT EXISTS idx_plate_registrations_user_id ON plate_registrations (user_id);`,
	`CREATE TABLE IF NOT EXISTS charger_alerts (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		plate VARCHAR(32) NOT NULL,
		confidence DOUBLE PRECISION NOT NULL,
		recipient_id VARCHAR(128) NOT NULL,
		charger_id VARCHAR(64) NOT NULL,
		location TEXT,
		reported_by VARCHAR(128),
		original_image_url TEXT NOT NULL,
		resolved_image_url TEXT NOT NULL,
		delivery_method VARCHAR(32) NOT NULL,
		status VARCHAR(16) NOT NULL,
		dispatch_error TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_charger_alerts_plate ON charger_alerts (plate);`,
	`CREATE INDEX IF NOT EXISTS idx_charger_alerts_recipient_id ON charger_alerts (recipient_id);`,
	`CREATE INDEX IF NOT EXISTS idx_charger_alerts_created_at ON charger_alerts (created_at);`,
	`CREATE TABLE IF NOT EXISTS unregistered_plates (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		plate VARCHAR(32) NOT NULL,
		confidence DOUBLE PRECISION NOT NULL,
		charger_id VARCHAR(64) NOT NULL,
		location TEXT,
		reported_by VARCHAR(128),
		original_image_url TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_unregistered_plates_plate ON unregistered_plates (plate);`,
	`CREATE TABLE IF NOT EXISTS failed_detections (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		stage VARCHAR(32) NOT NULL,
		error_message TEXT NOT NULL,
		upstream_body JSONB,
		charger_id VARCHAR(64) NOT NULL,
		location TEXT,
		original_image_url TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_failed_detections_created_at ON failed_detections (created_at);`,
	`CREATE TABLE IF NOT EXISTS push_subscriptions (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		user_id VARCHAR(128) NOT NULL,
		topic VARCHAR(64) NOT NULL,
		token TEXT NOT NULL,
		active BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_push_subscriptions_user_id ON push_subscriptions (user_id);`,
}

func RunMigrations(database *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := database.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration statement %d failed: %w", i, err)
		}
	}
	return nil
}
