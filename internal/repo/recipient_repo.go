// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Recipient
// model — the per-(alert, contact, channel) row tracking delivery outcome
// and the contact's human response.
//
// Error semantics:
//   - ErrDuplicateToken signals a response-token collision on insert. The
//     caller regenerates the token; the row is never silently overwritten.
//   - ErrNotFound is returned when a token does not match any row.
//   - Other DB errors are propagated raw.
//
// Concurrency: delivery-state and response-state writes target disjoint
// columns of the same row, so a token redemption may race a delivery write
// without conflict. Concurrent redemptions of the same token serialize on
// the row update; the later UPDATE wins, which is the documented
// last-write-wins policy.
package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-sos-backend/internal/domain"
)

// ErrDuplicateToken indicates the generated response token already exists.
var ErrDuplicateToken = errors.New("duplicate response token")

// CreateRecipient inserts a pending recipient row for one (alert, contact,
// channel) dispatch unit. Delivery starts as not_attempted and response as
// pending. A unique violation on the token column is mapped to
// ErrDuplicateToken so the caller can mint a fresh token and retry.
func CreateRecipient(ctx context.Context, db *gorm.DB, alertID, contactID string, ch domain.Channel, token string) (*domain.Recipient, error) {
	r := &domain.Recipient{
		ID:        uuid.NewString(),
		AlertID:   alertID,
		ContactID: contactID,
		Channel:   ch,
		Token:     token,
		Delivery:  domain.DeliveryNotAttempted,
		Response:  domain.ResponsePending,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(r).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateToken
		}
		return nil, err
	}
	return r, nil
}

// MarkDelivery records the dispatcher's immediate outcome for a recipient.
// It runs at most once per row in practice (delivery is never retried); the
// reason column is set only on failure.
func MarkDelivery(ctx context.Context, db *gorm.DB, recipientID string, delivered bool, reason string) error {
	state := domain.DeliveryDelivered
	if !delivered {
		state = domain.DeliveryFailed
	} else {
		reason = ""
	}
	res := db.WithContext(ctx).
		Model(&domain.Recipient{}).
		Where("id = ?", recipientID).
		Updates(map[string]any{"delivery": state, "delivery_error": reason})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// RecordResponse overwrites the response state, note, and timestamp of the
// row owning token. The update is unconditional (not guarded by the current
// state): a contact may change their mind and the latest submission wins.
// Returns ErrNotFound when no row owns the token.
func RecordResponse(ctx context.Context, db *gorm.DB, tok, status, note string, at time.Time) error {
	res := db.WithContext(ctx).
		Model(&domain.Recipient{}).
		Where("token = ?", tok).
		Updates(map[string]any{"response": status, "note": note, "responded_at": at})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// RecipientView is a recipient row joined with its contact's identity, the
// shape the aggregated alert view exposes to polling clients.
type RecipientView struct {
	ID            string         `json:"id"`
	ContactID     string         `json:"contact_id"`
	ContactName   string         `json:"contact_name"`
	ContactPhone  string         `json:"contact_phone"`
	Channel       domain.Channel `json:"channel"`
	Delivery      string         `json:"delivery"`
	DeliveryError string         `json:"delivery_error,omitempty"`
	Response      string         `json:"response"`
	Note          string         `json:"note,omitempty"`
	RespondedAt   *time.Time     `json:"responded_at,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
}

// ListRecipientViews returns the joined recipient rows for one alert in
// stable dispatch order.
func ListRecipientViews(ctx context.Context, db *gorm.DB, alertID string) ([]RecipientView, error) {
	var out []RecipientView
	err := db.WithContext(ctx).
		Table("recipients AS r").
		Select("r.id, r.contact_id, c.name AS contact_name, c.phone AS contact_phone, r.channel, r.delivery, r.delivery_error, r.response, r.note, r.responded_at, r.created_at").
		Joins("JOIN contacts c ON c.id = r.contact_id").
		Where("r.alert_id = ?", alertID).
		Order("r.created_at asc, r.id asc").
		Scan(&out).Error
	return out, err
}

// TokenView is what the response page needs before the contact submits:
// who the alert is about and when it was raised. The token itself is the
// only credential; nothing here requires a login.
type TokenView struct {
	ContactName    string    `json:"contact_name"`
	ContactPhone   string    `json:"contact_phone"`
	AlertID        string    `json:"alert_id"`
	AlertMessage   string    `json:"alert_message,omitempty"`
	AlertCreatedAt time.Time `json:"alert_created_at"`
	Response       string    `json:"response"`
	Note           string    `json:"note,omitempty"`
}

// GetTokenView resolves a response token to its joined view, or ErrNotFound.
func GetTokenView(ctx context.Context, db *gorm.DB, tok string) (*TokenView, error) {
	var v TokenView
	res := db.WithContext(ctx).
		Table("recipients AS r").
		Select("c.name AS contact_name, c.phone AS contact_phone, a.id AS alert_id, a.message AS alert_message, a.created_at AS alert_created_at, r.response, r.note").
		Joins("JOIN contacts c ON c.id = r.contact_id").
		Joins("JOIN alerts a ON a.id = r.alert_id").
		Where("r.token = ?", tok).
		Limit(1).
		Scan(&v)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return &v, nil
}

// CountRecipients returns the number of recipient rows for an alert.
func CountRecipients(ctx context.Context, db *gorm.DB, alertID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Recipient{}).
		Where("alert_id = ?", alertID).
		Count(&total).Error
	return total, err
}

// isUniqueViolation detects unique-constraint violations across drivers that
// may not map to gorm.ErrDuplicatedKey.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// glebarez/sqlite often returns plain-text errors for UNIQUE violations.
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "constraint failed: unique")
}
