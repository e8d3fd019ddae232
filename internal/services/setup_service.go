// Package services – SetupService
//
// Owner/contact configuration. This is deliberately plain CRUD: the contact
// list is replaced wholesale on each setup submission, mirroring a simple
// single-owner installation. Contacts are immutable during an alert's
// lifetime; replacing them only affects future alerts.
package services

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/tbourn/go-sos-backend/internal/domain"
	"github.com/tbourn/go-sos-backend/internal/repo"
)

// ContactInput is one contact entry from the setup payload.
type ContactInput struct {
	Name        string
	Phone       string
	ViaSMS      bool
	ViaWhatsApp bool
}

// SetupService manages the owner name and the contact list.
type SetupService struct {
	DB *gorm.DB
}

// Owner returns the configured owner display name ("" before first setup).
func (s *SetupService) Owner(ctx context.Context) (string, error) {
	return repo.GetOwnerName(ctx, s.DB)
}

// Contacts returns the current contact list.
func (s *SetupService) Contacts(ctx context.Context) ([]domain.Contact, error) {
	return repo.ListContacts(ctx, s.DB)
}

// Apply stores the owner name and replaces the contact list. Entries missing
// a name or phone are dropped; a contact with no channel selected defaults
// to SMS, matching the data model's default.
func (s *SetupService) Apply(ctx context.Context, ownerName string, inputs []ContactInput) error {
	ownerName = strings.TrimSpace(ownerName)

	contacts := make([]domain.Contact, 0, len(inputs))
	for _, in := range inputs {
		name := strings.TrimSpace(in.Name)
		phone := strings.TrimSpace(in.Phone)
		if name == "" || phone == "" {
			continue
		}
		c := domain.Contact{
			Name:        name,
			Phone:       phone,
			ViaSMS:      in.ViaSMS,
			ViaWhatsApp: in.ViaWhatsApp,
		}
		if !c.ViaSMS && !c.ViaWhatsApp {
			c.ViaSMS = true
		}
		contacts = append(contacts, c)
	}

	if err := repo.SetOwnerName(ctx, s.DB, ownerName); err != nil {
		return err
	}
	if err := repo.ReplaceContacts(ctx, s.DB, contacts); err != nil {
		return err
	}

	_ = repo.AddAudit(ctx, s.DB, "info", "setup_completed", map[string]any{
		"owner_name":    ownerName,
		"contact_count": len(contacts),
	})
	return nil
}
