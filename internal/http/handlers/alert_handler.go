// Alert HTTP handlers.
//
// This file exposes REST endpoints for the alert lifecycle:
//   - POST /alert        (trigger SOS: create + fan out)
//   - GET  /alerts       (list, newest first)
//   - GET  /alerts/{id}  (consolidated per-recipient view)
//   - GET  /logs         (audit trail)
//
// Handlers are transport-thin: they validate input, call application
// services, and translate results into HTTP responses.
package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tbourn/go-sos-backend/internal/domain"
	"github.com/tbourn/go-sos-backend/internal/repo"
	"github.com/tbourn/go-sos-backend/internal/services"
	"github.com/tbourn/go-sos-backend/internal/utils"
)

//
// Service contracts (context-aware)
//

// AlertService defines the alert operations consumed by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type AlertService interface {
	// CreateAndDispatch creates an alert and fans it out to all contacts.
	CreateAndDispatch(ctx context.Context, message string) (*domain.Alert, []services.DispatchOutcome, error)
	// Detail returns an alert plus its joined recipient rows.
	Detail(ctx context.Context, alertID string) (*domain.Alert, []repo.RecipientView, error)
	// List returns alerts newest-first, capped.
	List(ctx context.Context, limit int) ([]domain.Alert, error)
	// Logs returns the audit trail newest-first, capped.
	Logs(ctx context.Context, limit int) ([]domain.AuditLog, error)
}

// ResponseService defines token lookup and redemption operations.
type ResponseService interface {
	// Apply records a reaction for the recipient owning the token.
	Apply(ctx context.Context, token, status, note string) error
	// Lookup resolves a token for the response page.
	Lookup(ctx context.Context, token string) (*repo.TokenView, error)
}

// SetupService defines owner/contact configuration operations.
type SetupService interface {
	Owner(ctx context.Context) (string, error)
	Contacts(ctx context.Context) ([]domain.Contact, error)
	Apply(ctx context.Context, ownerName string, contacts []services.ContactInput) error
}

//
// Handler wiring
//

// Handlers groups the HTTP endpoints for alerts, responses, and setup.
// It depends on abstract service interfaces to keep transport concerns
// separate from business logic.
type Handlers struct {
	alertSvc AlertService
	respSvc  ResponseService
	setupSvc SetupService

	// appBaseURL is echoed to the UI so it can render absolute links.
	appBaseURL string
}

// New constructs a Handlers instance bound to the given services.
func New(alertSvc AlertService, respSvc ResponseService, setupSvc SetupService, appBaseURL string) *Handlers {
	return &Handlers{alertSvc: alertSvc, respSvc: respSvc, setupSvc: setupSvc, appBaseURL: appBaseURL}
}

//
// DTOs
//

// TriggerAlertRequest is the JSON payload for raising an SOS alert.
type TriggerAlertRequest struct {
	// Message optionally adds free text to the broadcast.
	Message string `json:"message" example:"help now"`
}

// TriggerAlertResponse reports the created alert and per-recipient outcomes.
type TriggerAlertResponse struct {
	OK      bool                       `json:"ok"`
	AlertID string                     `json:"alert_id"`
	Results []services.DispatchOutcome `json:"results"`
}

// AlertDetailResponse is the consolidated view for one alert.
type AlertDetailResponse struct {
	Alert      *domain.Alert        `json:"alert"`
	Recipients []repo.RecipientView `json:"recipients"`
}

//
// Handlers
//

// TriggerAlert godoc
// @ID          triggerAlert
// @Summary     Trigger an SOS alert
// @Description Creates an alert and dispatches it to every contact over every usable channel. Individual delivery failures are reported per recipient and do not fail the call.
// @Tags        Alerts
// @Accept      json
// @Produce     json
// @Param       body  body  handlers.TriggerAlertRequest  true  "Alert payload"
// @Success     200  {object}  handlers.TriggerAlertResponse
// @Failure     400  {object}  handlers.ErrorResponse  "No contacts configured / bad payload"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /alert [post]
func (h *Handlers) TriggerAlert(c *gin.Context) {
	// An absent body (plain SOS press) is fine; chunked bodies have no
	// Content-Length, so bind unconditionally and treat only EOF as "empty".
	var req TriggerAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	alert, results, err := h.alertSvc.CreateAndDispatch(c.Request.Context(), req.Message)
	if err != nil {
		if errors.Is(err, services.ErrNoContacts) {
			fail(c, http.StatusBadRequest, ErrCodeNoContacts, "no contacts configured")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeDispatchFailed, err.Error())
		return
	}

	if results == nil {
		results = []services.DispatchOutcome{}
	}
	ok(c, http.StatusOK, TriggerAlertResponse{OK: true, AlertID: alert.ID, Results: results})
}

// ListAlerts godoc
// @ID          listAlerts
// @Summary     List alerts (newest first)
// @Tags        Alerts
// @Produce     json
// @Param       limit  query  int  false  "Maximum entries"  minimum(1) maximum(200)
// @Success     200  {object}  map[string][]domain.Alert
// @Failure     500  {object}  handlers.ErrorResponse
// @Router      /alerts [get]
func (h *Handlers) ListAlerts(c *gin.Context) {
	limit := utils.AtoiDefault(c.Query("limit"), repo.MaxAlertsList)
	alerts, err := h.alertSvc.List(c.Request.Context(), limit)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	if alerts == nil {
		alerts = []domain.Alert{}
	}
	ok(c, http.StatusOK, gin.H{"alerts": alerts})
}

// AlertDetail godoc
// @ID          alertDetail
// @Summary     Consolidated alert view
// @Description Returns the alert plus one entry per dispatched recipient with delivery and response state. Cheap to poll.
// @Tags        Alerts
// @Produce     json
// @Param       id  path  string  true  "Alert ID (UUID)"  format(uuid)
// @Success     200  {object}  handlers.AlertDetailResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Malformed id"
// @Failure     404  {object}  handlers.ErrorResponse  "Unknown alert"
// @Router      /alerts/{id} [get]
func (h *Handlers) AlertDetail(c *gin.Context) {
	alertID := c.Param("id")
	if _, err := uuid.Parse(alertID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "alert id must be a UUID")
		return
	}

	alert, recipients, err := h.alertSvc.Detail(c.Request.Context(), alertID)
	if err != nil {
		if errors.Is(err, services.ErrAlertNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "alert not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	if recipients == nil {
		recipients = []repo.RecipientView{}
	}
	ok(c, http.StatusOK, AlertDetailResponse{Alert: alert, Recipients: recipients})
}

// ListLogs godoc
// @ID          listLogs
// @Summary     List audit trail entries (newest first)
// @Tags        Logs
// @Produce     json
// @Param       limit  query  int  false  "Maximum entries"  minimum(1) maximum(500)
// @Success     200  {object}  map[string][]domain.AuditLog
// @Failure     500  {object}  handlers.ErrorResponse
// @Router      /logs [get]
func (h *Handlers) ListLogs(c *gin.Context) {
	limit := utils.AtoiDefault(c.Query("limit"), repo.MaxAuditList)
	logs, err := h.alertSvc.Logs(c.Request.Context(), limit)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	if logs == nil {
		logs = []domain.AuditLog{}
	}
	ok(c, http.StatusOK, gin.H{"logs": logs})
}
