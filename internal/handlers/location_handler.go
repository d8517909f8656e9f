package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/studyfindr/studyfindr-api/internal/services"
)

// LocationHandler serves ingested places.
type LocationHandler struct {
	Service *services.LocationService
}

func NewLocationHandler(service *services.LocationService) *LocationHandler {
	return &LocationHandler{Service: service}
}

func (h *LocationHandler) ListLocationsHandler(w http.ResponseWriter, r *http.Request) {
	locations, err := h.Service.ListLocations(r.Context(), queryInt(r, "limit", 0))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"locations": locations})
}

func (h *LocationHandler) GetLocationHandler(w http.ResponseWriter, r *http.Request) {
	loc, err := h.Service.GetLocation(r.Context(), mux.Vars(r)["placeId"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"location": loc})
}
