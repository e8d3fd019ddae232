package services

import (
	"context"
	"testing"
)

func TestSetupApply_StoresOwnerAndContacts(t *testing.T) {
	db := newServiceDB(t)
	ctx := context.Background()
	svc := &SetupService{DB: db}

	err := svc.Apply(ctx, "  Ana  ", []ContactInput{
		{Name: "Ben", Phone: "+15550001111", ViaSMS: true},
		{Name: "Cara", Phone: "+15550002222", ViaWhatsApp: true},
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	owner, err := svc.Owner(ctx)
	if err != nil {
		t.Fatalf("Owner: %v", err)
	}
	if owner != "Ana" {
		t.Fatalf("owner = %q, want Ana (trimmed)", owner)
	}

	contacts, err := svc.Contacts(ctx)
	if err != nil {
		t.Fatalf("Contacts: %v", err)
	}
	if len(contacts) != 2 {
		t.Fatalf("contacts = %d, want 2", len(contacts))
	}
}

func TestSetupApply_DropsInvalidEntries(t *testing.T) {
	db := newServiceDB(t)
	ctx := context.Background()
	svc := &SetupService{DB: db}

	err := svc.Apply(ctx, "Ana", []ContactInput{
		{Name: "", Phone: "+1000", ViaSMS: true},      // no name
		{Name: "Ghost", Phone: "   ", ViaSMS: true},   // no phone
		{Name: "Ben", Phone: "+15550001111"},          // no channel: defaults to SMS
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	contacts, err := svc.Contacts(ctx)
	if err != nil {
		t.Fatalf("Contacts: %v", err)
	}
	if len(contacts) != 1 {
		t.Fatalf("contacts = %d, want 1", len(contacts))
	}
	if contacts[0].Name != "Ben" || !contacts[0].ViaSMS || contacts[0].ViaWhatsApp {
		t.Fatalf("contact = %+v", contacts[0])
	}
}

func TestSetupApply_ReplacesPreviousList(t *testing.T) {
	db := newServiceDB(t)
	ctx := context.Background()
	svc := &SetupService{DB: db}

	if err := svc.Apply(ctx, "Ana", []ContactInput{{Name: "Old", Phone: "+1", ViaSMS: true}}); err != nil {
		t.Fatalf("first Apply: %v", err)
	}
	if err := svc.Apply(ctx, "Ana", []ContactInput{{Name: "New", Phone: "+2", ViaSMS: true}}); err != nil {
		t.Fatalf("second Apply: %v", err)
	}

	contacts, err := svc.Contacts(ctx)
	if err != nil {
		t.Fatalf("Contacts: %v", err)
	}
	if len(contacts) != 1 || contacts[0].Name != "New" {
		t.Fatalf("contacts = %+v, want only New", contacts)
	}
}
