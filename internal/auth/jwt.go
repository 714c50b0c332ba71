// Package auth issues and validates device session tokens. A device
// registers once, receives a bearer token bound to its device ID, and
// presents it on every tracking call.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DeviceTokenExpiry is how long device tokens are valid. Tourist sessions
// are day trips; a device re-registers after expiry.
const DeviceTokenExpiry = 24 * time.Hour

// Auth errors.
var (
	ErrInvalidToken = errors.New("invalid device token")
	ErrTokenExpired = errors.New("device token has expired")
)

// DeviceClaims are the claims carried by device tokens.
type DeviceClaims struct {
	jwt.RegisteredClaims

	// DeviceID is the registered device this token belongs to.
	DeviceID string `json:"did"`
}

// JWTConfig holds configuration for the token service.
type JWTConfig struct {
	// SigningKey is the HS256 secret.
	SigningKey string

	// Issuer is the issuer claim (e.g. "rotaguia-api").
	Issuer string
}

// JWTService creates and validates device tokens.
type JWTService struct {
	signingKey []byte
	issuer     string
}

// NewJWTService creates a token service.
func NewJWTService(cfg JWTConfig) *JWTService {
	return &JWTService{
		signingKey: []byte(cfg.SigningKey),
		issuer:     cfg.Issuer,
	}
}

// GenerateDeviceToken creates a signed token for a device.
func (s *JWTService) GenerateDeviceToken(deviceID string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(DeviceTokenExpiry)

	claims := DeviceClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   deviceID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			NotBefore: jwt.NewNumericDate(now),
			ID:        uuid.New().String(),
		},
		DeviceID: deviceID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("signing device token: %w", err)
	}

	return signed, expiresAt, nil
}

// ValidateDeviceToken checks a token and returns the device ID it is bound to.
func (s *JWTService) ValidateDeviceToken(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &DeviceClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.signingKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(*DeviceClaims)
	if !ok || !token.Valid || claims.DeviceID == "" {
		return "", ErrInvalidToken
	}

	return claims.DeviceID, nil
}
