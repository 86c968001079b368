package handlers

import (
	"errors"
	"net/http"

	"swipefleet/internal/collab/profilesync"
	"swipefleet/pkg/api"

	"github.com/google/uuid"
)

// GetAccountProfile handles GET /accounts/{id}/profile.
// Relays the account's automation-profile metadata from the external
// profile service. 501 when no profile service is configured.
func (h *Handlers) GetAccountProfile(w http.ResponseWriter, r *http.Request) {
	if h.profiles == nil {
		h.httpError(w, "Profile service not configured", http.StatusNotImplemented)
		return
	}

	accountID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.httpError(w, "Invalid account id", http.StatusBadRequest)
		return
	}

	account, err := h.store.GetAccountByID(r.Context(), accountID)
	if err != nil {
		h.httpError(w, "Account not found", http.StatusNotFound)
		return
	}

	profile, err := h.profiles.Fetch(r.Context(), account)
	if err != nil {
		var apiErr *profilesync.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			h.httpError(w, "No profile for account", http.StatusNotFound)
			return
		}
		h.httpError(w, "Profile service error", http.StatusBadGateway)
		return
	}

	h.respondJson(w, http.StatusOK, api.ProfileResponse{
		ProfileID: profile.ProfileID,
		Name:      profile.Name,
		Proxy:     profile.Proxy,
		Fields:    profile.Fields,
	})
}

// GetVPSLocation handles GET /vps/{id}/location.
// Resolves the host's address through the geo service. 501 when no geo
// service is configured.
func (h *Handlers) GetVPSLocation(w http.ResponseWriter, r *http.Request) {
	if h.geo == nil {
		h.httpError(w, "Geo service not configured", http.StatusNotImplemented)
		return
	}

	vpsID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.httpError(w, "Invalid vps id", http.StatusBadRequest)
		return
	}

	vps, err := h.store.GetResourceByID(r.Context(), vpsID)
	if err != nil {
		h.httpError(w, "VPS not found", http.StatusNotFound)
		return
	}

	loc, err := h.geo.Lookup(r.Context(), vps.Address)
	if err != nil {
		h.httpError(w, "Geo service error", http.StatusBadGateway)
		return
	}

	h.respondJson(w, http.StatusOK, api.VPSLocationResponse{
		Address: vps.Address,
		Country: loc.Country,
		Region:  loc.Region,
		City:    loc.City,
		Lat:     loc.Lat,
		Lon:     loc.Lon,
	})
}
