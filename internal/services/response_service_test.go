package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/tbourn/go-sos-backend/internal/domain"
	"github.com/tbourn/go-sos-backend/internal/repo"
)

func TestResponseApply_InvalidStatus(t *testing.T) {
	db := newServiceDB(t)
	svc := &ResponseService{DB: db}

	err := svc.Apply(context.Background(), "some-token", "maybe", "")
	if !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("err = %v, want ErrInvalidStatus", err)
	}
}

func TestResponseApply_UnknownToken(t *testing.T) {
	db := newServiceDB(t)
	svc := &ResponseService{DB: db}

	err := svc.Apply(context.Background(), "no-such-token", domain.ResponseResponding, "")
	if !errors.Is(err, ErrTokenNotFound) {
		t.Fatalf("err = %v, want ErrTokenNotFound", err)
	}

	if err := svc.Apply(context.Background(), "  ", domain.ResponseResponding, ""); !errors.Is(err, ErrTokenNotFound) {
		t.Fatalf("blank token err = %v, want ErrTokenNotFound", err)
	}
}

func TestResponseApply_RecordsAndOverwrites(t *testing.T) {
	db := newServiceDB(t)
	ctx := context.Background()

	c := seedContact(t, db, "Ben", "+15550001111", true, false)
	alert, err := repo.CreateAlert(ctx, db, "help")
	if err != nil {
		t.Fatalf("CreateAlert: %v", err)
	}
	rec, err := repo.CreateRecipient(ctx, db, alert.ID, c.ID, domain.ChannelSMS, "tok-apply")
	if err != nil {
		t.Fatalf("CreateRecipient: %v", err)
	}

	svc := &ResponseService{DB: db}
	if err := svc.Apply(ctx, "tok-apply", domain.ResponseResponding, "on my way"); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	var got domain.Recipient
	if err := db.First(&got, "id = ?", rec.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.Response != domain.ResponseResponding || got.Note != "on my way" {
		t.Fatalf("after first apply: response=%q note=%q", got.Response, got.Note)
	}
	if got.RespondedAt == nil {
		t.Fatal("responded_at not stamped")
	}
	first := *got.RespondedAt

	// A second redemption replaces the first; the latest submission wins.
	if err := svc.Apply(ctx, "tok-apply", domain.ResponseNotResponding, "cannot make it"); err != nil {
		t.Fatalf("second Apply: %v", err)
	}
	if err := db.First(&got, "id = ?", rec.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.Response != domain.ResponseNotResponding || got.Note != "cannot make it" {
		t.Fatalf("after second apply: response=%q note=%q", got.Response, got.Note)
	}
	if got.RespondedAt == nil || got.RespondedAt.Before(first) {
		t.Fatalf("responded_at = %v, want >= %v", got.RespondedAt, first)
	}
}

func TestResponseApply_ClipsLongNote(t *testing.T) {
	db := newServiceDB(t)
	ctx := context.Background()

	c := seedContact(t, db, "Ben", "+15550001111", true, false)
	alert, _ := repo.CreateAlert(ctx, db, "help")
	rec, err := repo.CreateRecipient(ctx, db, alert.ID, c.ID, domain.ChannelSMS, "tok-clip")
	if err != nil {
		t.Fatalf("CreateRecipient: %v", err)
	}

	svc := &ResponseService{DB: db}
	long := strings.Repeat("x", maxNoteRunes+100)
	if err := svc.Apply(ctx, "tok-clip", domain.ResponseResponding, long); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	var got domain.Recipient
	if err := db.First(&got, "id = ?", rec.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if n := len([]rune(got.Note)); n != maxNoteRunes {
		t.Fatalf("note runes = %d, want %d", n, maxNoteRunes)
	}
}

func TestResponseLookup(t *testing.T) {
	db := newServiceDB(t)
	ctx := context.Background()

	c := seedContact(t, db, "Ben", "+15550001111", true, false)
	alert, _ := repo.CreateAlert(ctx, db, "gas leak")
	if _, err := repo.CreateRecipient(ctx, db, alert.ID, c.ID, domain.ChannelSMS, "tok-look"); err != nil {
		t.Fatalf("CreateRecipient: %v", err)
	}

	svc := &ResponseService{DB: db}
	v, err := svc.Lookup(ctx, "tok-look")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if v.ContactName != "Ben" || v.AlertMessage != "gas leak" || v.Response != domain.ResponsePending {
		t.Fatalf("view = %+v", v)
	}

	if _, err := svc.Lookup(ctx, "missing"); !errors.Is(err, ErrTokenNotFound) {
		t.Fatalf("err = %v, want ErrTokenNotFound", err)
	}
}

func TestClipRunes(t *testing.T) {
	if got := clipRunes("héllo", 3); got != "hél" {
		t.Fatalf("got %q", got)
	}
	if got := clipRunes("short", 10); got != "short" {
		t.Fatalf("got %q", got)
	}
}
