package stream

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/rotaguia/rotaguia/internal/api/middleware"
	"github.com/rotaguia/rotaguia/internal/auth"
)

const (
	// writeWait is the deadline for a single WebSocket write.
	writeWait = 10 * time.Second

	// pongWait is how long a connection may go without a pong.
	pongWait = 60 * time.Second

	// pingInterval must be shorter than pongWait.
	pingInterval = 20 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(_ *http.Request) bool { return true },
}

// Handler serves the WebSocket event stream for a device.
type Handler struct {
	broker     *Broker
	jwtService *auth.JWTService
	logger     zerolog.Logger
}

// NewHandler creates a stream handler.
func NewHandler(broker *Broker, jwtService *auth.JWTService, logger zerolog.Logger) *Handler {
	return &Handler{
		broker:     broker,
		jwtService: jwtService,
		logger:     logger,
	}
}

// ServeHTTP handles GET /v1/track/stream. Authentication accepts either the
// usual bearer header or a "token" query parameter, since browser WebSocket
// clients cannot set request headers.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	deviceID := middleware.GetDeviceID(r.Context())
	if deviceID == "" {
		token := r.URL.Query().Get("token")
		if token == "" {
			http.Error(w, `{"error":"missing device token"}`, http.StatusUnauthorized)
			return
		}
		var err error
		deviceID, err = h.jwtService.ValidateDeviceToken(token)
		if err != nil {
			http.Error(w, `{"error":"invalid device token"}`, http.StatusUnauthorized)
			return
		}
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Str("device_id", deviceID).Msg("websocket upgrade failed")
		return
	}

	events := h.broker.Subscribe(deviceID)
	h.logger.Info().Str("device_id", deviceID).Msg("stream subscriber connected")

	done := make(chan struct{})

	// Read loop. The client sends nothing meaningful; reads exist to
	// process pongs and detect the close.
	go func() {
		defer close(done)
		conn.SetReadLimit(1 << 10)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		h.broker.Unsubscribe(deviceID, events)
		_ = conn.Close()
		h.logger.Info().Str("device_id", deviceID).Msg("stream subscriber disconnected")
	}()

	for {
		select {
		case evt, ok := <-events:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(evt); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
