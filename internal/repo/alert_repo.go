// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Alert model.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-sos-backend/internal/domain"
)

// MaxAlertsList caps the alert listing used by polling clients.
const MaxAlertsList = 200

// CreateAlert inserts a new Alert row with a UUID primary key and UTC
// timestamp. Alerts are immutable after this point.
func CreateAlert(ctx context.Context, db *gorm.DB, message string) (*domain.Alert, error) {
	a := &domain.Alert{
		ID:        uuid.NewString(),
		Message:   message,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(a).Error; err != nil {
		return nil, err
	}
	return a, nil
}

// GetAlert fetches a single alert by ID, or ErrNotFound.
func GetAlert(ctx context.Context, db *gorm.DB, id string) (*domain.Alert, error) {
	var a domain.Alert
	if err := db.WithContext(ctx).Where("id = ?", id).First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

// ListAlerts returns alerts ordered newest-first, capped at limit (values
// outside (0, MaxAlertsList] are coerced to MaxAlertsList).
func ListAlerts(ctx context.Context, db *gorm.DB, limit int) ([]domain.Alert, error) {
	if limit <= 0 || limit > MaxAlertsList {
		limit = MaxAlertsList
	}
	var out []domain.Alert
	err := db.WithContext(ctx).
		Order("created_at desc, id desc").
		Limit(limit).
		Find(&out).Error
	return out, err
}
