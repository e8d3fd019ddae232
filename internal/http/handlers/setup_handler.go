// Setup HTTP handlers.
//
//   - GET  /config  (owner, contacts, app base URL — what the UI needs)
//   - POST /setup   (store owner name, replace the contact list)
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-sos-backend/internal/domain"
	"github.com/tbourn/go-sos-backend/internal/services"
)

// SetupContact is one contact entry in the setup payload.
type SetupContact struct {
	Name        string `json:"name"         example:"Ben"`
	Phone       string `json:"phone"        example:"+15550001111"`
	ViaSMS      bool   `json:"via_sms"      example:"true"`
	ViaWhatsApp bool   `json:"via_whatsapp" example:"false"`
}

// SetupRequest is the JSON payload replacing the configuration.
type SetupRequest struct {
	OwnerName string         `json:"owner_name" example:"Ana"`
	Contacts  []SetupContact `json:"contacts"   binding:"required"`
}

// ConfigResponse is what the UI reads on load.
type ConfigResponse struct {
	OwnerName  string           `json:"owner_name"`
	Contacts   []domain.Contact `json:"contacts"`
	AppBaseURL string           `json:"app_base_url"`
}

// GetConfig godoc
// @ID          getConfig
// @Summary     Current owner and contact configuration
// @Tags        Setup
// @Produce     json
// @Success     200  {object}  handlers.ConfigResponse
// @Failure     500  {object}  handlers.ErrorResponse
// @Router      /config [get]
func (h *Handlers) GetConfig(c *gin.Context) {
	ctx := c.Request.Context()

	owner, err := h.setupSvc.Owner(ctx)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	contacts, err := h.setupSvc.Contacts(ctx)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	if contacts == nil {
		contacts = []domain.Contact{}
	}
	ok(c, http.StatusOK, ConfigResponse{OwnerName: owner, Contacts: contacts, AppBaseURL: h.appBaseURL})
}

// ApplySetup godoc
// @ID          applySetup
// @Summary     Store owner name and replace contacts
// @Description Replaces the contact list wholesale. Entries without both a name and phone are dropped.
// @Tags        Setup
// @Accept      json
// @Produce     json
// @Param       body  body  handlers.SetupRequest  true  "Setup payload"
// @Success     200  {object}  map[string]bool
// @Failure     400  {object}  handlers.ErrorResponse  "Malformed payload"
// @Failure     500  {object}  handlers.ErrorResponse
// @Router      /setup [post]
func (h *Handlers) ApplySetup(c *gin.Context) {
	var req SetupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "owner_name and contacts are required")
		return
	}

	inputs := make([]services.ContactInput, 0, len(req.Contacts))
	for _, sc := range req.Contacts {
		inputs = append(inputs, services.ContactInput{
			Name:        sc.Name,
			Phone:       sc.Phone,
			ViaSMS:      sc.ViaSMS,
			ViaWhatsApp: sc.ViaWhatsApp,
		})
	}

	if err := h.setupSvc.Apply(c.Request.Context(), req.OwnerName, inputs); err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeSetupFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, gin.H{"ok": true})
}
