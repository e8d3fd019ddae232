// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Contact
// model. Contacts are written only by the setup flow; the alert fan-out
// reads them and never mutates them.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-sos-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// ListContacts returns all contacts, newest first. An empty slice means the
// owner has not registered anyone yet.
func ListContacts(ctx context.Context, db *gorm.DB) ([]domain.Contact, error) {
	var out []domain.Contact
	err := db.WithContext(ctx).
		Order("created_at desc, id desc").
		Find(&out).Error
	return out, err
}

// ReplaceContacts deletes the current contact list and inserts the given one
// in a single transaction, so a failed setup never leaves a half-replaced
// list behind. IDs and timestamps are assigned here.
func ReplaceContacts(ctx context.Context, db *gorm.DB, contacts []domain.Contact) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&domain.Contact{}).Error; err != nil {
			return err
		}
		now := time.Now().UTC()
		for i := range contacts {
			contacts[i].ID = uuid.NewString()
			contacts[i].CreatedAt = now
			if err := tx.Create(&contacts[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
