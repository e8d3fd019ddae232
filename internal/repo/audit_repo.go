// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides the append-only audit trail the core
// writes dispatch outcomes and reactions into. The trail is a write-only
// sink from the core's point of view; the listing exists for the logs view.
package repo

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-sos-backend/internal/domain"
)

// MaxAuditList caps the audit listing used by polling clients.
const MaxAuditList = 500

// AddAudit appends one trail entry. Meta is marshalled to JSON; a nil map
// stores an empty meta column. Audit failures must never abort the calling
// operation, so callers typically log and discard the returned error.
func AddAudit(ctx context.Context, db *gorm.DB, level, event string, meta map[string]any) error {
	var encoded string
	if len(meta) > 0 {
		b, err := json.Marshal(meta)
		if err != nil {
			return err
		}
		encoded = string(b)
	}
	entry := &domain.AuditLog{
		ID:        uuid.NewString(),
		Level:     level,
		Event:     event,
		Meta:      encoded,
		CreatedAt: time.Now().UTC(),
	}
	return db.WithContext(ctx).Create(entry).Error
}

// ListAudit returns trail entries newest-first, capped at limit (values
// outside (0, MaxAuditList] are coerced to MaxAuditList).
func ListAudit(ctx context.Context, db *gorm.DB, limit int) ([]domain.AuditLog, error) {
	if limit <= 0 || limit > MaxAuditList {
		limit = MaxAuditList
	}
	var out []domain.AuditLog
	err := db.WithContext(ctx).
		Order("created_at desc, id desc").
		Limit(limit).
		Find(&out).Error
	return out, err
}
