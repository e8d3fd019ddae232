// Package services – ResponseService
//
// This file implements the ResponseService, which validates an inbound
// response token and applies the contact's reaction to the matching
// recipient row. Application is idempotent but overwritable: redeeming the
// same token again replaces the previous state and timestamp, so the latest
// submission wins. That is a deliberate policy — a contact who first tapped
// "responding" may realize they cannot make it after all.
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-sos-backend/internal/domain"
	"github.com/tbourn/go-sos-backend/internal/repo"
)

// maxNoteRunes caps the free-text note a recipient may attach.
const maxNoteRunes = 500

// ResponseService implements the use-cases around token redemption.
type ResponseService struct {
	// DB is the database handle used for all response operations.
	DB *gorm.DB
}

// Apply records a reaction for the recipient owning tok.
//
// Semantics:
//   - status must be "responding" or "not_responding"; anything else yields
//     ErrInvalidStatus before any lookup or mutation.
//   - An unknown token yields ErrTokenNotFound and mutates nothing.
//   - On success the response state and note are overwritten unconditionally
//     and the response timestamp is stamped with the time of this call.
func (s *ResponseService) Apply(ctx context.Context, tok, status, note string) error {
	tok = strings.TrimSpace(tok)
	if tok == "" {
		return ErrTokenNotFound
	}
	if !domain.ValidResponseStatus(status) {
		return ErrInvalidStatus
	}
	note = clipRunes(strings.TrimSpace(note), maxNoteRunes)

	err := repo.RecordResponse(ctx, s.DB, tok, status, note, time.Now().UTC())
	if errors.Is(err, repo.ErrNotFound) {
		return ErrTokenNotFound
	}
	if err != nil {
		return err
	}

	_ = repo.AddAudit(ctx, s.DB, "info", "reaction_recorded", map[string]any{
		"status": status,
	})
	return nil
}

// Lookup resolves a token to the view the response page renders before the
// contact submits. Read-only; an unknown token yields ErrTokenNotFound.
func (s *ResponseService) Lookup(ctx context.Context, tok string) (*repo.TokenView, error) {
	tok = strings.TrimSpace(tok)
	if tok == "" {
		return nil, ErrTokenNotFound
	}
	v, err := repo.GetTokenView(ctx, s.DB, tok)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrTokenNotFound
	}
	return v, err
}

// clipRunes truncates s to at most n runes.
func clipRunes(s string, n int) string {
	if n <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
