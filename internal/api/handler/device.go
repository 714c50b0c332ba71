package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/rotaguia/rotaguia/internal/api/models"
	"github.com/rotaguia/rotaguia/internal/api/response"
	"github.com/rotaguia/rotaguia/internal/auth"
	"github.com/rotaguia/rotaguia/internal/guide"
	"github.com/rotaguia/rotaguia/internal/position"
)

// DeviceHandler handles device registration.
type DeviceHandler struct {
	guide      *guide.Service
	jwtService *auth.JWTService
}

// NewDeviceHandler creates a new DeviceHandler.
func NewDeviceHandler(guideService *guide.Service, jwtService *auth.JWTService) *DeviceHandler {
	return &DeviceHandler{
		guide:      guideService,
		jwtService: jwtService,
	}
}

// RegisterDevice handles POST /v1/devices - register a device and issue its
// session token.
func (h *DeviceHandler) RegisterDevice(w http.ResponseWriter, r *http.Request) {
	var input models.RegisterDeviceRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			response.BadRequest(w, r, "invalid JSON body", nil)
			return
		}
	}

	profile := position.Profile(input.Profile)
	if input.Profile == "" {
		profile = position.ProfileMobile
	}
	if !profile.Valid() {
		response.BadRequest(w, r, "profile must be \"mobile\" or \"desktop\"", []models.FieldError{
			{Field: "profile", Message: "unknown profile", Code: "invalid_value"},
		})
		return
	}

	deviceID := "dev_" + uuid.New().String()[:22]
	if _, err := h.guide.Register(deviceID, profile); err != nil {
		if errors.Is(err, guide.ErrDeviceExists) {
			response.Conflict(w, r, "device already registered")
			return
		}
		response.InternalError(w, r, "device registration failed")
		return
	}

	token, expiresAt, err := h.jwtService.GenerateDeviceToken(deviceID)
	if err != nil {
		h.guide.Remove(deviceID)
		response.InternalError(w, r, "token generation failed")
		return
	}

	location := fmt.Sprintf("/v1/devices/%s", deviceID)
	response.Created(w, r, location, models.RegisterDeviceResponse{
		DeviceID:  deviceID,
		Profile:   string(profile),
		Token:     token,
		ExpiresAt: models.Timestamp(expiresAt),
	})
}
