package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rotaguia/rotaguia/internal/api/models"
	"github.com/rotaguia/rotaguia/internal/api/response"
	"github.com/rotaguia/rotaguia/internal/geocode"
	"github.com/rotaguia/rotaguia/internal/guide"
)

// GeocodeHandler handles direct reverse-geocoding requests.
type GeocodeHandler struct {
	guide *guide.Service
}

// NewGeocodeHandler creates a new GeocodeHandler.
func NewGeocodeHandler(guideService *guide.Service) *GeocodeHandler {
	return &GeocodeHandler{guide: guideService}
}

// ReverseGeocode handles POST /v1/geocode/reverse - resolve coordinates to
// a standardized address without touching tracker state.
func (h *GeocodeHandler) ReverseGeocode(w http.ResponseWriter, r *http.Request) {
	var input models.ReverseRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	addr, err := h.guide.ReverseGeocode(r.Context(), input.Latitude, input.Longitude)
	if err != nil {
		switch {
		case errors.Is(err, geocode.ErrInvalidCoordinates):
			response.BadRequest(w, r, "coordinates out of range", nil)
		case errors.Is(err, geocode.ErrNoResult):
			response.NotFound(w, r, "no address at these coordinates")
		case errors.Is(err, geocode.ErrProviderUnavailable):
			response.ServiceUnavailable(w, r, "geocoding provider unavailable")
		default:
			response.InternalError(w, r, "reverse geocoding failed")
		}
		return
	}

	response.JSON(w, r, http.StatusOK, models.NewAddressResponse(addr))
}
