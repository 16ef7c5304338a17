package notification

import (
	"context"
	"encoding/json"
	"expvar"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// EventType for WebSocket messages
type EventType string

const (
	EventSnapshot      EventType = "snapshot"
	EventStatusChanged EventType = "status_changed"
)

const statusChannelPrefix = "reports:status:"

var (
	wsConnectionsGauge   = expvar.NewInt("tracking_ws_connections")
	wsEventsSentTotal    = expvar.NewInt("tracking_ws_events_sent_total")
	wsEventsDroppedTotal = expvar.NewInt("tracking_ws_events_dropped_total")
)

// Event is pushed to tracking subscribers
type Event struct {
	Type      EventType `json:"type"`
	ReportID  string    `json:"report_id"`
	Status    string    `json:"status"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Connection is one socket watching one tracking id
type Connection struct {
	ReportID string
	Conn     *websocket.Conn
	Send     chan []byte
}

// Hub fans status changes out to local sockets; with Redis every instance
// receives every change and delivers to its own sockets.
type Hub struct {
	subscribers map[string]map[*Connection]bool
	mu          sync.RWMutex

	redis  *redis.Client
	pubsub *redis.PubSub

	ctx    context.Context
	cancel context.CancelFunc
}

// NewHub creates a hub; redisClient may be nil for a single instance
func NewHub(redisClient *redis.Client) *Hub {
	ctx, cancel := context.WithCancel(context.Background())

	h := &Hub{
		subscribers: make(map[string]map[*Connection]bool),
		redis:       redisClient,
		ctx:         ctx,
		cancel:      cancel,
	}
	if redisClient != nil {
		h.pubsub = redisClient.PSubscribe(ctx, statusChannelPrefix+"*")
	}
	return h
}

// Run delivers events received from Redis until Shutdown (call in goroutine)
func (h *Hub) Run() {
	if h.pubsub == nil {
		<-h.ctx.Done()
		return
	}

	ch := h.pubsub.Channel()
	for {
		select {
		case <-h.ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			reportID := strings.TrimPrefix(msg.Channel, statusChannelPrefix)
			if reportID == msg.Channel || reportID == "" {
				continue
			}
			h.deliverLocal(reportID, []byte(msg.Payload))
		}
	}
}

// Register subscribes conn to its report's changes
func (h *Hub) Register(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.subscribers[conn.ReportID] == nil {
		h.subscribers[conn.ReportID] = make(map[*Connection]bool)
	}
	h.subscribers[conn.ReportID][conn] = true
	wsConnectionsGauge.Add(1)
	log.Debug().Str("report_id", conn.ReportID).Msg("Tracking subscriber connected")
}

// Unregister removes conn and closes its send channel; safe to call twice
func (h *Hub) Unregister(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conns, ok := h.subscribers[conn.ReportID]
	if !ok {
		return
	}
	if _, exists := conns[conn]; !exists {
		return
	}
	delete(conns, conn)
	close(conn.Send)
	wsConnectionsGauge.Add(-1)
	if len(conns) == 0 {
		delete(h.subscribers, conn.ReportID)
	}
	log.Debug().Str("report_id", conn.ReportID).Msg("Tracking subscriber disconnected")
}

// PublishStatusChange announces a new status for reportID on every instance
func (h *Hub) PublishStatusChange(ctx context.Context, reportID, status string, updatedAt time.Time) {
	data, err := json.Marshal(&Event{
		Type:      EventStatusChanged,
		ReportID:  reportID,
		Status:    status,
		UpdatedAt: updatedAt,
	})
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal tracking event")
		return
	}

	if h.redis == nil {
		h.deliverLocal(reportID, data)
		return
	}

	channel := statusChannelPrefix + reportID
	if err := h.redis.Publish(ctx, channel, data).Err(); err != nil {
		log.Error().Err(err).Str("channel", channel).Msg("Redis publish failed")
		// Fallback to local delivery
		h.deliverLocal(reportID, data)
	}
}

// deliverLocal never blocks; a full send buffer drops the message
func (h *Hub) deliverLocal(reportID string, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for conn := range h.subscribers[reportID] {
		select {
		case conn.Send <- data:
			wsEventsSentTotal.Add(1)
		default:
			wsEventsDroppedTotal.Add(1)
			log.Warn().Str("report_id", reportID).Msg("WebSocket send buffer full")
		}
	}
}

// SubscriberCount returns the number of local sockets watching reportID
func (h *Hub) SubscriberCount(reportID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[reportID])
}

// Shutdown stops Run and closes the Redis subscription
func (h *Hub) Shutdown() {
	h.cancel()
	if h.pubsub != nil {
		h.pubsub.Close()
	}
}
