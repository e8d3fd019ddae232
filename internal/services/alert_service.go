// Package services – AlertService
//
// This file implements the AlertService, the component that owns alert
// creation and the fan-out across contacts × enabled channels. For every
// dispatched unit it mints a response token, inserts the recipient row,
// invokes the channel dispatcher, and records the immediate delivery outcome.
// Per-recipient failures are isolated: one contact or channel failing never
// aborts another recipient's dispatch, nor the alert itself.
//
// The read side (alert listing and the consolidated per-recipient view) lives
// here too; it is side-effect free and cheap enough for polling clients.
//
// Observability: CreateAndDispatch is OpenTelemetry-instrumented; the span
// carries the alert id and the fan-out size.
package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/tbourn/go-sos-backend/internal/dispatch"
	"github.com/tbourn/go-sos-backend/internal/domain"
	"github.com/tbourn/go-sos-backend/internal/repo"
	"github.com/tbourn/go-sos-backend/internal/token"
)

// maxTokenAttempts bounds regeneration when a minted token collides with an
// existing row. With 128-bit tokens a single retry is already astronomically
// unlikely; exhausting the attempts means the entropy source is broken.
const maxTokenAttempts = 5

// DispatchOutcome reports one recipient's immediate result to the caller.
// The overall alert call succeeds even when individual outcomes are failures.
type DispatchOutcome struct {
	RecipientID string         `json:"recipient_id,omitempty"`
	ContactID   string         `json:"contact_id"`
	ContactName string         `json:"contact_name"`
	Channel     domain.Channel `json:"channel"`
	OK          bool           `json:"ok"`
	ProviderRef string         `json:"provider_ref,omitempty"`
	Error       string         `json:"error,omitempty"`
}

// AlertService coordinates alert creation, fan-out, and the aggregated view.
type AlertService struct {
	DB         *gorm.DB
	Dispatcher *dispatch.Dispatcher

	// AppBaseURL is the absolute base for response links.
	AppBaseURL string
	// Concurrency bounds parallel sends during fan-out.
	Concurrency int
}

// NewAlertService constructs an AlertService with a sane fan-out bound.
func NewAlertService(db *gorm.DB, d *dispatch.Dispatcher, appBaseURL string, concurrency int) *AlertService {
	if concurrency < 1 {
		concurrency = 1
	}
	return &AlertService{
		DB:          db,
		Dispatcher:  d,
		AppBaseURL:  strings.TrimRight(appBaseURL, "/"),
		Concurrency: concurrency,
	}
}

// dispatchUnit is one (contact, channel) pair scheduled for sending, with its
// recipient row already persisted.
type dispatchUnit struct {
	contact   domain.Contact
	channel   domain.Channel
	recipient *domain.Recipient
	body      string
}

// CreateAndDispatch creates an alert and fans it out to every contact over
// every channel that is both enabled on the contact and usable at the system
// level.
//
// Semantics:
//   - An empty contact list fails with ErrNoContacts before any Alert row is
//     created: a repeated SOS press must never leave orphan alerts behind.
//   - Recipient rows are inserted before their sends, in pending state, so a
//     send can never exist without its row.
//   - Sends run concurrently, bounded by s.Concurrency; each is limited by
//     the dispatcher's per-send timeout, so one hanging provider call cannot
//     stall the HTTP response indefinitely.
//   - Delivery outcomes are written per row as sends complete. A provider
//     failure is recorded and reported in the outcome list but never aborts
//     the remaining fan-out.
//   - Once the Alert row exists the fan-out is detached from the caller's
//     cancellation: a client disconnect aborts neither in-flight sends nor
//     the delivery-state and audit writes that follow them.
func (s *AlertService) CreateAndDispatch(ctx context.Context, message string) (*domain.Alert, []DispatchOutcome, error) {
	tr := otel.Tracer("services/AlertService")
	ctx, span := tr.Start(ctx, "CreateAndDispatch")
	defer span.End()

	message = strings.TrimSpace(message)

	contacts, err := repo.ListContacts(ctx, s.DB)
	if err != nil {
		return nil, nil, err
	}
	if len(contacts) == 0 {
		return nil, nil, ErrNoContacts
	}

	owner, err := repo.GetOwnerName(ctx, s.DB)
	if err != nil {
		return nil, nil, err
	}

	alert, err := repo.CreateAlert(ctx, s.DB, message)
	if err != nil {
		return nil, nil, err
	}

	// From here on the fan-out must not die with the owner's connection: a
	// dropped HTTP request right after the SOS press still has to reach every
	// contact, and every delivery outcome still has to land on its row. Keep
	// trace context and values, drop the caller's cancellation; the
	// dispatcher's per-send timeout remains the only bound on each send.
	ctx = context.WithoutCancel(ctx)

	span.SetAttributes(attribute.String("alert.id", alert.ID))
	s.audit(ctx, "info", "alert_created", map[string]any{"alert_id": alert.ID, "message": message})

	// Phase 1: persist one recipient row per (contact, usable channel).
	// Row creation is sequential (SQLite serializes writers anyway); failures
	// here surface as outcomes and skip the send, keeping row and send paired.
	var units []dispatchUnit
	var outcomes []DispatchOutcome
	for _, c := range contacts {
		for _, ch := range c.Channels() {
			if !s.Dispatcher.Usable(ch) {
				// Configuration gap, not a delivery failure: no row, no result.
				continue
			}
			rec, err := s.createRecipient(ctx, alert.ID, c.ID, ch)
			if err != nil {
				outcomes = append(outcomes, DispatchOutcome{
					ContactID:   c.ID,
					ContactName: c.Name,
					Channel:     ch,
					Error:       err.Error(),
				})
				continue
			}
			units = append(units, dispatchUnit{
				contact:   c,
				channel:   ch,
				recipient: rec,
				body:      composeBody(owner, message, s.responseLink(rec.Token)),
			})
		}
	}
	span.SetAttributes(attribute.Int("alert.recipients", len(units)))

	// Phase 2: send concurrently with bounded parallelism.
	results := make([]DispatchOutcome, len(units))
	sem := make(chan struct{}, s.Concurrency)
	var wg sync.WaitGroup
	for i, u := range units {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, u dispatchUnit) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = s.sendOne(ctx, alert.ID, u)
		}(i, u)
	}
	wg.Wait()

	outcomes = append(outcomes, results...)
	return alert, outcomes, nil
}

// sendOne dispatches a single unit and records its delivery outcome.
func (s *AlertService) sendOne(ctx context.Context, alertID string, u dispatchUnit) DispatchOutcome {
	res := s.Dispatcher.Send(ctx, u.channel, u.contact.Phone, u.body)

	// Delivery-state writes key on the recipient id and touch columns the
	// response path never writes, so no cross-recipient coordination needed.
	if err := repo.MarkDelivery(ctx, s.DB, u.recipient.ID, res.OK, res.Err); err != nil {
		s.audit(ctx, "error", "delivery_mark_failed", map[string]any{
			"alert_id": alertID, "recipient_id": u.recipient.ID, "error": err.Error(),
		})
	}

	event := string(u.channel) + "_sent"
	level := "info"
	if !res.OK {
		event = string(u.channel) + "_error"
		level = "error"
	}
	s.audit(ctx, level, event, map[string]any{
		"alert_id":     alertID,
		"recipient_id": u.recipient.ID,
		"to":           u.contact.Phone,
		"provider_ref": res.ProviderRef,
		"error":        res.Err,
	})

	return DispatchOutcome{
		RecipientID: u.recipient.ID,
		ContactID:   u.contact.ID,
		ContactName: u.contact.Name,
		Channel:     u.channel,
		OK:          res.OK,
		ProviderRef: res.ProviderRef,
		Error:       res.Err,
	}
}

// createRecipient inserts the row, regenerating the token on the (in
// practice unheard-of) unique violation. Collisions past the attempt limit
// abort this recipient rather than ever overwriting an existing row.
func (s *AlertService) createRecipient(ctx context.Context, alertID, contactID string, ch domain.Channel) (*domain.Recipient, error) {
	for attempt := 0; attempt < maxTokenAttempts; attempt++ {
		rec, err := repo.CreateRecipient(ctx, s.DB, alertID, contactID, ch, token.New())
		if errors.Is(err, repo.ErrDuplicateToken) {
			continue
		}
		return rec, err
	}
	return nil, fmt.Errorf("response token collided %d times; refusing to dispatch", maxTokenAttempts)
}

// responseLink builds the URL a recipient taps to respond. Token possession
// is the link's only authorization.
func (s *AlertService) responseLink(tok string) string {
	return s.AppBaseURL + "/response.html?token=" + url.QueryEscape(tok)
}

// composeBody renders the outbound text. The text is identical for every
// recipient of an alert except for the embedded link.
func composeBody(owner, message, link string) string {
	if strings.TrimSpace(owner) == "" {
		owner = "Unknown"
	}
	return fmt.Sprintf("ALERT: %s needs help.\n%s\nTap to respond: %s", owner, message, link)
}

// audit appends a trail entry; trail errors are logged into gorm's logger by
// the repo and otherwise ignored so they never abort dispatch.
func (s *AlertService) audit(ctx context.Context, level, event string, meta map[string]any) {
	_ = repo.AddAudit(ctx, s.DB, level, event, meta)
}

//
// Read side (aggregated view)
//

// Detail returns an alert plus the joined per-recipient view: contact
// identity, channel, delivery state, response state, note, and response
// timestamp. Read-only and safe to call at arbitrary polling frequency.
func (s *AlertService) Detail(ctx context.Context, alertID string) (*domain.Alert, []repo.RecipientView, error) {
	alert, err := repo.GetAlert(ctx, s.DB, alertID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrAlertNotFound
		}
		return nil, nil, err
	}
	recipients, err := repo.ListRecipientViews(ctx, s.DB, alertID)
	if err != nil {
		return nil, nil, err
	}
	return alert, recipients, nil
}

// List returns alerts newest-first, capped by the repo's listing limit.
func (s *AlertService) List(ctx context.Context, limit int) ([]domain.Alert, error) {
	return repo.ListAlerts(ctx, s.DB, limit)
}

// Logs returns the audit trail newest-first.
func (s *AlertService) Logs(ctx context.Context, limit int) ([]domain.AuditLog, error) {
	return repo.ListAudit(ctx, s.DB, limit)
}
