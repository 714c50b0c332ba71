package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/rotaguia/rotaguia/internal/api/models"
	"github.com/rotaguia/rotaguia/internal/auth"
)

// deviceIDKey is the context key for the authenticated device ID.
type deviceIDKey struct{}

// DeviceAuth creates authentication middleware that validates device bearer
// tokens and puts the device ID on the request context.
func DeviceAuth(jwtService *auth.JWTService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeUnauthorized(w, r, "missing authorization header")
				return
			}

			const bearerPrefix = "Bearer "
			if len(authHeader) < len(bearerPrefix) ||
				!strings.EqualFold(authHeader[:len(bearerPrefix)], bearerPrefix) {
				writeUnauthorized(w, r, "invalid authorization header format")
				return
			}

			tokenString := authHeader[len(bearerPrefix):]
			if tokenString == "" {
				writeUnauthorized(w, r, "missing bearer token")
				return
			}

			deviceID, err := jwtService.ValidateDeviceToken(tokenString)
			if err != nil {
				switch {
				case errors.Is(err, auth.ErrTokenExpired):
					writeUnauthorized(w, r, "device token has expired")
				case errors.Is(err, auth.ErrInvalidToken):
					writeUnauthorized(w, r, "invalid device token")
				default:
					writeUnauthorized(w, r, "authentication failed")
				}
				return
			}

			ctx := context.WithValue(r.Context(), deviceIDKey{}, deviceID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// writeUnauthorized writes a 401 Unauthorized response.
// Implemented directly here to avoid an import cycle with the response package.
func writeUnauthorized(w http.ResponseWriter, r *http.Request, detail string) {
	traceID := GetRequestID(r.Context())
	problem := models.NewUnauthorized(traceID, detail)
	problem.Instance = r.URL.Path
	problem.Write(w)
}

// GetDeviceID retrieves the authenticated device ID from the context.
// Returns an empty string when the request is not authenticated.
func GetDeviceID(ctx context.Context) string {
	if id, ok := ctx.Value(deviceIDKey{}).(string); ok {
		return id
	}
	return ""
}
