package handlers

import (
	"encoding/json"
	"net/http"
	"net/mail"

	"github.com/gorilla/mux"

	"github.com/linesmerrill/video-screening-api/config"
	"github.com/linesmerrill/video-screening-api/models"
	"github.com/linesmerrill/video-screening-api/services"
)

// Invite exported for testing purposes
type Invite struct {
	Service *services.InviteService
}

// CreateInviteHandler issues a new invite for the email in the body
func (i Invite) CreateInviteHandler(w http.ResponseWriter, r *http.Request) {
	var req models.CreateInviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}
	if req.Email == "" {
		serviceError(w, services.ErrEmailRequired)
		return
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		config.ErrorStatus("invalid email", http.StatusBadRequest, w, err)
		return
	}

	invite, err := i.Service.CreateInvite(r.Context(), req.Email)
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, models.NewInviteResponse(invite))
}

// InvitesHandler lists every invite, oldest first
func (i Invite) InvitesHandler(w http.ResponseWriter, r *http.Request) {
	invites, err := i.Service.ListInvites(r.Context())
	if err != nil {
		serviceError(w, err)
		return
	}
	resp := make([]models.InviteResponse, 0, len(invites))
	for _, inv := range invites {
		resp = append(resp, models.NewInviteResponse(inv))
	}
	writeJSON(w, http.StatusOK, resp)
}

// ValidateTokenHandler tells the candidate page whether a token exists
func (i Invite) ValidateTokenHandler(w http.ResponseWriter, r *http.Request) {
	token := mux.Vars(r)["token"]

	invite, err := i.Service.ValidateToken(r.Context(), token)
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, models.ValidateTokenResponse{OK: true, InviteID: invite.ID})
}
