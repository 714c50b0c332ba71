package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rotaguia/rotaguia/internal/api/middleware"
	"github.com/rotaguia/rotaguia/internal/api/models"
	"github.com/rotaguia/rotaguia/internal/api/response"
	"github.com/rotaguia/rotaguia/internal/guide"
)

// TrackHandler handles position tracking endpoints.
type TrackHandler struct {
	guide *guide.Service
}

// NewTrackHandler creates a new TrackHandler.
func NewTrackHandler(guideService *guide.Service) *TrackHandler {
	return &TrackHandler{guide: guideService}
}

// SubmitFix handles POST /v1/track/fixes - evaluates a GPS fix for the
// authenticated device. Rejected fixes still return 200; the response body
// carries the outcome.
func (h *TrackHandler) SubmitFix(w http.ResponseWriter, r *http.Request) {
	deviceID := middleware.GetDeviceID(r.Context())

	var input models.FixRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	fieldErrors := validateFix(&input)
	if len(fieldErrors) > 0 {
		response.BadRequest(w, r, "invalid fix", fieldErrors)
		return
	}

	result, err := h.guide.ProcessFix(r.Context(), deviceID, input.Fix())
	if err != nil {
		if errors.Is(err, guide.ErrUnknownDevice) {
			response.NotFound(w, r, "device is not registered")
			return
		}
		response.InternalError(w, r, "fix processing failed")
		return
	}

	response.JSON(w, r, http.StatusOK, models.NewFixResponse(result))
}

// CurrentPosition handles GET /v1/track/position - the last accepted
// reading for the authenticated device.
func (h *TrackHandler) CurrentPosition(w http.ResponseWriter, r *http.Request) {
	deviceID := middleware.GetDeviceID(r.Context())

	session, err := h.guide.Session(deviceID)
	if err != nil {
		response.NotFound(w, r, "device is not registered")
		return
	}

	reading, ok := session.Tracker.Current()
	if !ok {
		response.NotFound(w, r, "no position accepted yet")
		return
	}

	response.JSON(w, r, http.StatusOK, models.NewPositionBody(reading))
}

// CurrentAddress handles GET /v1/track/address - the standardized address
// of the last accepted reading.
func (h *TrackHandler) CurrentAddress(w http.ResponseWriter, r *http.Request) {
	deviceID := middleware.GetDeviceID(r.Context())

	session, err := h.guide.Session(deviceID)
	if err != nil {
		response.NotFound(w, r, "device is not registered")
		return
	}

	addr, _ := session.CurrentAddress()
	if addr == nil {
		response.NotFound(w, r, "no address resolved yet")
		return
	}

	response.JSON(w, r, http.StatusOK, models.NewAddressResponse(addr))
}

// validateFix checks a fix request's coordinate and timestamp ranges.
func validateFix(f *models.FixRequest) []models.FieldError {
	var out []models.FieldError
	if f.Latitude < -90 || f.Latitude > 90 {
		out = append(out, models.FieldError{Field: "latitude", Message: "must be between -90 and 90", Code: "out_of_range"})
	}
	if f.Longitude < -180 || f.Longitude > 180 {
		out = append(out, models.FieldError{Field: "longitude", Message: "must be between -180 and 180", Code: "out_of_range"})
	}
	if f.Accuracy < 0 {
		out = append(out, models.FieldError{Field: "accuracy", Message: "must not be negative", Code: "out_of_range"})
	}
	if f.Timestamp <= 0 {
		out = append(out, models.FieldError{Field: "timestamp", Message: "must be milliseconds since the Unix epoch", Code: "required"})
	}
	return out
}
