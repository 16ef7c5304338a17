package notification

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/civicsafe/civicsafe-api/internal/domain/report"
	"github.com/civicsafe/civicsafe-api/internal/pkg/errorhandler"
	"github.com/civicsafe/civicsafe-api/internal/pkg/response"
)

// WebSocket constants
const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024
	sendBuffer     = 16
)

// ReportLookup resolves a tracking id to its public view
type ReportLookup interface {
	GetReportByTrackingID(ctx context.Context, reportID string) (*report.TrackingView, error)
}

// Handler upgrades tracking subscriptions to WebSockets
type Handler struct {
	hub      *Hub
	reports  ReportLookup
	upgrader websocket.Upgrader
}

// NewHandler creates tracking notification handler
func NewHandler(hub *Hub, reports ReportLookup, allowedOrigins []string) *Handler {
	return &Handler{
		hub:     hub,
		reports: reports,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")

				// Allow all when no origins are configured, and non-browser clients
				if len(allowedOrigins) == 0 || origin == "" {
					return true
				}

				for _, allowed := range allowedOrigins {
					if origin == allowed {
						return true
					}
				}

				log.Warn().Str("origin", origin).Msg("WebSocket origin rejected")
				return false
			},
		},
	}
}

// Routes returns tracking WebSocket routes
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/reports/{reportId}", h.Track)
	return r
}

// Track handles WS /ws/reports/{reportId}. The tracking id is the only credential.
func (h *Handler) Track(w http.ResponseWriter, r *http.Request) {
	view, err := h.reports.GetReportByTrackingID(r.Context(), chi.URLParam(r, "reportId"))
	if err != nil {
		if errors.Is(err, report.ErrReportNotFound) {
			response.NotFound(w, "Report not found")
			return
		}
		errorhandler.Internal(r.Context(), w, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	client := &Connection{
		ReportID: view.ReportID,
		Conn:     conn,
		Send:     make(chan []byte, sendBuffer),
	}

	h.hub.Register(client)

	if snapshot, err := json.Marshal(&Event{
		Type:      EventSnapshot,
		ReportID:  view.ReportID,
		Status:    string(view.Status),
		UpdatedAt: view.UpdatedAt,
	}); err == nil {
		client.Send <- snapshot
	}

	go h.wsReader(client)
	go h.wsWriter(client)
}

// wsReader only drains control frames; subscribers never send data
func (h *Handler) wsReader(client *Connection) {
	defer func() {
		h.hub.Unregister(client)
		client.Conn.Close()
	}()

	client.Conn.SetReadLimit(maxMessageSize)
	client.Conn.SetReadDeadline(time.Now().Add(pongWait))
	client.Conn.SetPongHandler(func(string) error {
		client.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := client.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().Err(err).Str("report_id", client.ReportID).Msg("WebSocket read error")
			}
			return
		}
	}
}

func (h *Handler) wsWriter(client *Connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		client.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-client.Send:
			client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the channel
				client.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := client.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
