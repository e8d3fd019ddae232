// Response HTTP handlers.
//
// This file exposes the two endpoints a recipient's single-use link needs:
//   - GET  /recipient/{token}  (who/when, for rendering the response page)
//   - POST /respond            (record responding / not_responding + note)
//
// Token possession is the only authorization on both endpoints; there is no
// login. An unknown token is a clean 404, distinct from a malformed request.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-sos-backend/internal/services"
)

// RespondRequest is the JSON payload for submitting a reaction.
type RespondRequest struct {
	Token  string `json:"token"  binding:"required" example:"3q2m8TzKx9cVb1nQeRd7Jg"`
	Status string `json:"status" binding:"required" example:"responding"`
	Note   string `json:"note"   example:"on my way"`
}

// RecipientByToken godoc
// @ID          recipientByToken
// @Summary     Resolve a response token
// @Description Returns the contact identity and alert metadata for a valid token, so the response page can render context before the recipient submits.
// @Tags        Responses
// @Produce     json
// @Param       token  path  string  true  "Response token"
// @Success     200  {object}  repo.TokenView
// @Failure     404  {object}  handlers.ErrorResponse  "Unknown token"
// @Router      /recipient/{token} [get]
func (h *Handlers) RecipientByToken(c *gin.Context) {
	view, err := h.respSvc.Lookup(c.Request.Context(), c.Param("token"))
	if err != nil {
		if errors.Is(err, services.ErrTokenNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "unknown response token")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, view)
}

// Respond godoc
// @ID          respond
// @Summary     Record a recipient's reaction
// @Description Applies responding/not_responding (plus an optional note) to the recipient owning the token. The latest submission wins; re-submitting overwrites the previous reaction and timestamp.
// @Tags        Responses
// @Accept      json
// @Produce     json
// @Param       body  body  handlers.RespondRequest  true  "Reaction payload"
// @Success     200  {object}  map[string]bool
// @Failure     400  {object}  handlers.ErrorResponse  "Bad status / malformed body"
// @Failure     404  {object}  handlers.ErrorResponse  "Unknown token"
// @Router      /respond [post]
func (h *Handlers) Respond(c *gin.Context) {
	var req RespondRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "token and status are required")
		return
	}

	err := h.respSvc.Apply(c.Request.Context(), req.Token, req.Status, req.Note)
	switch {
	case errors.Is(err, services.ErrInvalidStatus):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
	case errors.Is(err, services.ErrTokenNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "unknown response token")
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
	default:
		ok(c, http.StatusOK, gin.H{"ok": true})
	}
}
