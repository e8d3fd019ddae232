package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tbourn/go-sos-backend/internal/domain"
)

func TestCreateRecipient_Defaults(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	c := seedContact(t, db, "Ben", "+15550001111", true, false)
	a, err := CreateAlert(ctx, db, "help now")
	if err != nil {
		t.Fatalf("CreateAlert: %v", err)
	}

	r, err := CreateRecipient(ctx, db, a.ID, c.ID, domain.ChannelSMS, "tok-abc")
	if err != nil {
		t.Fatalf("CreateRecipient: %v", err)
	}
	if r.ID == "" {
		t.Fatal("expected generated recipient ID")
	}
	if r.Delivery != domain.DeliveryNotAttempted {
		t.Errorf("delivery = %q, want %q", r.Delivery, domain.DeliveryNotAttempted)
	}
	if r.Response != domain.ResponsePending {
		t.Errorf("response = %q, want %q", r.Response, domain.ResponsePending)
	}
	if r.RespondedAt != nil {
		t.Errorf("responded_at = %v, want nil", r.RespondedAt)
	}
}

func TestCreateRecipient_DuplicateToken(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	c := seedContact(t, db, "Ben", "+15550001111", true, true)
	a, err := CreateAlert(ctx, db, "help")
	if err != nil {
		t.Fatalf("CreateAlert: %v", err)
	}

	if _, err := CreateRecipient(ctx, db, a.ID, c.ID, domain.ChannelSMS, "same-token"); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	_, err = CreateRecipient(ctx, db, a.ID, c.ID, domain.ChannelWhatsApp, "same-token")
	if !errors.Is(err, ErrDuplicateToken) {
		t.Fatalf("second insert err = %v, want ErrDuplicateToken", err)
	}

	// The original row must be untouched.
	n, err := CountRecipients(ctx, db, a.ID)
	if err != nil {
		t.Fatalf("CountRecipients: %v", err)
	}
	if n != 1 {
		t.Fatalf("recipient rows = %d, want 1", n)
	}
}

func TestMarkDelivery(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	c := seedContact(t, db, "Ben", "+15550001111", true, false)
	a, _ := CreateAlert(ctx, db, "help")
	r, err := CreateRecipient(ctx, db, a.ID, c.ID, domain.ChannelSMS, "tok-1")
	if err != nil {
		t.Fatalf("CreateRecipient: %v", err)
	}

	if err := MarkDelivery(ctx, db, r.ID, false, "provider returned status 401"); err != nil {
		t.Fatalf("MarkDelivery(failed): %v", err)
	}
	var got domain.Recipient
	if err := db.First(&got, "id = ?", r.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.Delivery != domain.DeliveryFailed || got.DeliveryError != "provider returned status 401" {
		t.Fatalf("after failure: delivery=%q error=%q", got.Delivery, got.DeliveryError)
	}

	// Marking delivered clears the stale reason.
	if err := MarkDelivery(ctx, db, r.ID, true, "ignored"); err != nil {
		t.Fatalf("MarkDelivery(delivered): %v", err)
	}
	if err := db.First(&got, "id = ?", r.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.Delivery != domain.DeliveryDelivered || got.DeliveryError != "" {
		t.Fatalf("after success: delivery=%q error=%q", got.Delivery, got.DeliveryError)
	}

	if err := MarkDelivery(ctx, db, "no-such-id", true, ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown recipient err = %v, want ErrNotFound", err)
	}
}

func TestRecordResponse_LastWriteWins(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	c := seedContact(t, db, "Ben", "+15550001111", true, false)
	a, _ := CreateAlert(ctx, db, "help")
	r, err := CreateRecipient(ctx, db, a.ID, c.ID, domain.ChannelSMS, "tok-lww")
	if err != nil {
		t.Fatalf("CreateRecipient: %v", err)
	}

	first := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	if err := RecordResponse(ctx, db, "tok-lww", domain.ResponseNotResponding, "busy", first); err != nil {
		t.Fatalf("first RecordResponse: %v", err)
	}

	second := first.Add(5 * time.Minute)
	if err := RecordResponse(ctx, db, "tok-lww", domain.ResponseResponding, "on my way", second); err != nil {
		t.Fatalf("second RecordResponse: %v", err)
	}

	var got domain.Recipient
	if err := db.First(&got, "id = ?", r.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.Response != domain.ResponseResponding {
		t.Errorf("response = %q, want %q", got.Response, domain.ResponseResponding)
	}
	if got.Note != "on my way" {
		t.Errorf("note = %q, want %q", got.Note, "on my way")
	}
	if got.RespondedAt == nil || !got.RespondedAt.Equal(second) {
		t.Errorf("responded_at = %v, want %v", got.RespondedAt, second)
	}
}

func TestRecordResponse_UnknownToken(t *testing.T) {
	db := newTestDB(t)

	err := RecordResponse(context.Background(), db, "nope", domain.ResponseResponding, "", time.Now().UTC())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestListRecipientViews_JoinsContact(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	c := seedContact(t, db, "Ben", "+15550001111", true, true)
	a, _ := CreateAlert(ctx, db, "help")
	if _, err := CreateRecipient(ctx, db, a.ID, c.ID, domain.ChannelSMS, "tok-s"); err != nil {
		t.Fatalf("sms row: %v", err)
	}
	if _, err := CreateRecipient(ctx, db, a.ID, c.ID, domain.ChannelWhatsApp, "tok-w"); err != nil {
		t.Fatalf("whatsapp row: %v", err)
	}

	views, err := ListRecipientViews(ctx, db, a.ID)
	if err != nil {
		t.Fatalf("ListRecipientViews: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("views = %d, want 2", len(views))
	}
	for _, v := range views {
		if v.ContactName != "Ben" || v.ContactPhone != "+15550001111" {
			t.Errorf("joined contact = %q/%q, want Ben/+15550001111", v.ContactName, v.ContactPhone)
		}
		if v.Response != domain.ResponsePending {
			t.Errorf("response = %q, want pending", v.Response)
		}
	}
}

func TestGetTokenView(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	c := seedContact(t, db, "Ben", "+15550001111", true, false)
	a, _ := CreateAlert(ctx, db, "flood in basement")
	if _, err := CreateRecipient(ctx, db, a.ID, c.ID, domain.ChannelSMS, "tok-view"); err != nil {
		t.Fatalf("CreateRecipient: %v", err)
	}

	v, err := GetTokenView(ctx, db, "tok-view")
	if err != nil {
		t.Fatalf("GetTokenView: %v", err)
	}
	if v.ContactName != "Ben" || v.AlertID != a.ID || v.AlertMessage != "flood in basement" {
		t.Fatalf("view = %+v", v)
	}

	if _, err := GetTokenView(ctx, db, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown token err = %v, want ErrNotFound", err)
	}
}
