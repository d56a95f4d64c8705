package websocket

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/civicfix/civicfix-api/internal/logger"
	"github.com/civicfix/civicfix-api/internal/metrics"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// TopicAllReports receives every report and bid event
const TopicAllReports = "reports"

// TopicForReport returns the per-report topic name
func TopicForReport(reportID int) string {
	return fmt.Sprintf("report:%d", reportID)
}

// Hub maintains the set of active clients grouped by subscribed topic and
// fans report/bid events out to them
type Hub struct {
	// Registered clients by topic
	clients map[string]map[*Client]bool

	// Register requests from the clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	mutex sync.RWMutex

	logger *zerolog.Logger
}

// Client is a middleman between the websocket connection and the hub
type Client struct {
	// The websocket connection
	conn *websocket.Conn

	// Buffered channel of outbound messages
	Send chan []byte

	// Topic the client is subscribed to
	Topic string

	// Hub reference
	Hub *Hub

	// Connection metadata
	ConnectedAt time.Time
	LastPing    time.Time
}

// BidProgressEvent is broadcast whenever a contractor updates bid progress
type BidProgressEvent struct {
	Type      string    `json:"type"`
	BidID     int       `json:"bidId"`
	ReportID  int       `json:"reportId"`
	Progress  int       `json:"progress"`
	BidStatus string    `json:"bidStatus"`
	Timestamp time.Time `json:"timestamp"`
}

// ReportStatusEvent is broadcast whenever a report changes status
type ReportStatusEvent struct {
	Type      string    `json:"type"`
	ReportID  int       `json:"reportId"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// Message represents a generic WebSocket message
type Message struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// The event feed is read-only, so cross-origin watchers are fine
		return true
	},
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     logger.Global(),
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)
		}
	}
}

// registerClient registers a new client under its topic
func (h *Hub) registerClient(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if client.Topic == "" {
		client.Topic = TopicAllReports
	}
	if h.clients[client.Topic] == nil {
		h.clients[client.Topic] = make(map[*Client]bool)
	}
	h.clients[client.Topic][client] = true

	metrics.Get().IncrementWSConnection()

	h.logger.Info().
		Str("topic", client.Topic).
		Int("topic_connections", len(h.clients[client.Topic])).
		Msg("WebSocket client registered")

	welcome := Message{
		Type:      "connection",
		Data:      map[string]string{"status": "connected", "topic": client.Topic},
		Timestamp: time.Now(),
	}
	client.SendMessage(welcome)
}

// unregisterClient unregisters a client
func (h *Hub) unregisterClient(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if clients, ok := h.clients[client.Topic]; ok {
		if _, ok := clients[client]; ok {
			delete(clients, client)
			close(client.Send)

			metrics.Get().DecrementWSConnection()

			if len(clients) == 0 {
				delete(h.clients, client.Topic)
			}

			h.logger.Info().
				Str("topic", client.Topic).
				Int("remaining_connections", len(clients)).
				Msg("WebSocket client unregistered")
		}
	}
}

// SendToTopic sends a message to every client subscribed to a topic
func (h *Hub) SendToTopic(topic string, message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("topic", topic).
			Msg("Failed to marshal message for topic")
		return
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	clients, exists := h.clients[topic]
	if !exists {
		return
	}

	for client := range clients {
		select {
		case client.Send <- data:
			metrics.Get().IncrementWSMessageOut()
		default:
			h.logger.Warn().
				Str("topic", topic).
				Msg("Failed to send message to client, closing connection")
			close(client.Send)
			delete(clients, client)
			metrics.Get().DecrementWSConnection()
		}
	}

	if len(clients) == 0 {
		delete(h.clients, topic)
	}
}

// BroadcastBidProgress publishes a bid progress event to the report's topic
// and the global feed
func (h *Hub) BroadcastBidProgress(event BidProgressEvent) {
	event.Type = "bid_progress"
	event.Timestamp = time.Now()

	h.SendToTopic(TopicForReport(event.ReportID), event)
	h.SendToTopic(TopicAllReports, event)
}

// BroadcastReportStatus publishes a report status change to the report's
// topic and the global feed
func (h *Hub) BroadcastReportStatus(event ReportStatusEvent) {
	event.Type = "report_status"
	event.Timestamp = time.Now()

	h.SendToTopic(TopicForReport(event.ReportID), event)
	h.SendToTopic(TopicAllReports, event)
}

// GetTopics returns the list of topics with at least one subscriber
func (h *Hub) GetTopics() []string {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	topics := make([]string, 0, len(h.clients))
	for topic := range h.clients {
		topics = append(topics, topic)
	}
	return topics
}

// GetConnectionCount returns the total number of active connections
func (h *Hub) GetConnectionCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	count := 0
	for _, clients := range h.clients {
		count += len(clients)
	}
	return count
}

// GetTopicConnectionCount returns the number of connections on a topic
func (h *Hub) GetTopicConnectionCount(topic string) int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	if clients, exists := h.clients[topic]; exists {
		return len(clients)
	}
	return 0
}

// RegisterClient is a public method to register a client (for testing)
func (h *Hub) RegisterClient(client *Client) {
	h.registerClient(client)
}

// UnregisterClient is a public method to unregister a client (for testing)
func (h *Hub) UnregisterClient(client *Client) {
	h.unregisterClient(client)
}
