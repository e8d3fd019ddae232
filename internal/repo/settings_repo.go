// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the single-row
// settings table holding the owner's display name.
package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/tbourn/go-sos-backend/internal/domain"
)

// GetOwnerName returns the configured owner display name, or "" when setup
// has not run yet.
func GetOwnerName(ctx context.Context, db *gorm.DB) (string, error) {
	var s domain.Setting
	err := db.WithContext(ctx).Where("id = 1").First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return s.OwnerName, nil
}

// SetOwnerName stores the owner display name on the settings row.
func SetOwnerName(ctx context.Context, db *gorm.DB, name string) error {
	return db.WithContext(ctx).
		Model(&domain.Setting{}).
		Where("id = 1").
		Update("owner_name", name).Error
}
