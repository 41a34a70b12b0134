package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/kode4food/caravan/topic"

	"github.com/kode4food/banquet/internal/util"
	"github.com/kode4food/banquet/pkg/api"
	"github.com/kode4food/banquet/pkg/log"
)

type (
	// Client represents a WebSocket client connection for event streaming
	Client struct {
		conn     *websocket.Conn
		consumer topic.Consumer[*api.RunEvent]
		filter   eventFilter
		getState StateFunc
		minSeq   int64
	}

	// StateFunc retrieves the current state of a run along with the
	// sequence the next published event will carry. Clients use the
	// sequence to detect skew between the snapshot and the event stream
	StateFunc func(api.RunID) (*api.RunState, int64, error)

	eventFilter func(*api.RunEvent) bool
)

const (
	writeWait          = 10 * time.Second
	pongWait           = 60 * time.Second
	pingPeriod         = (pongWait * 9) / 10
	maxMessageSize     = 512
	wsBufferSize       = 1024
	incomingBufferSize = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  wsBufferSize,
	WriteBufferSize: wsBufferSize,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func (s *Server) handleEvents(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Error("WebSocket upgrade failed",
			log.Error(err))
		return
	}

	cl := &Client{
		conn:     conn,
		consumer: s.engine.NewConsumer(),
		filter:   func(*api.RunEvent) bool { return false },
		getState: s.runSnapshot,
	}

	s.registerWebSocket(cl)
	go func() {
		defer s.unregisterWebSocket(cl)
		cl.run()
	}()
}

func (s *Server) runSnapshot(id api.RunID) (*api.RunState, int64, error) {
	st, err := s.engine.GetRunState(id)
	if err != nil {
		return nil, 0, err
	}
	return st, s.engine.Sequence() + 1, nil
}

// Close tears the connection down, ending the client's run loop
func (c *Client) Close() {
	_ = c.conn.Close()
}

func (c *Client) run() {
	defer func() {
		c.consumer.Close()
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	incoming := make(chan []byte, incomingBufferSize)
	go c.readMessages(incoming)

	for {
		select {
		case message, ok := <-incoming:
			if !ok {
				return
			}
			c.handleSubscribe(message)

		case event, ok := <-c.consumer.Receive():
			if !ok {
				_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if !c.sendEventIfMatched(event) {
				return
			}

		case <-ticker.C:
			if !c.sendPing() {
				return
			}
		}
	}
}

func (c *Client) readMessages(incoming chan []byte) {
	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			close(incoming)
			return
		}
		incoming <- message
	}
}

func (c *Client) handleSubscribe(message []byte) {
	var sub api.SubscribeRequest
	if err := json.Unmarshal(message, &sub); err != nil {
		slog.Error("Failed to parse WebSocket message",
			log.Error(err))
		return
	}

	if sub.Type != "subscribe" {
		return
	}

	c.filter = buildFilter(&sub.Data)

	if sub.Data.RunID != "" {
		c.sendSubscribeState(sub.Data.RunID)
	}
}

func (c *Client) sendSubscribeState(id api.RunID) {
	if c.getState == nil {
		return
	}

	state, nextSeq, err := c.getState(id)
	if err != nil {
		slog.Error("Failed to get run state for subscription",
			log.RunID(id),
			log.Error(err))
		return
	}

	data, err := json.Marshal(state)
	if err != nil {
		slog.Error("Failed to marshal run state",
			log.RunID(id),
			log.Error(err))
		return
	}

	c.minSeq = nextSeq

	msg := api.SubscribedResult{
		Type:     "subscribed",
		RunID:    id,
		Data:     data,
		Sequence: nextSeq,
	}

	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteJSON(msg); err != nil {
		slog.Error("WebSocket write failed",
			slog.String("context", "subscribed"),
			log.Error(err))
	}
}

func (c *Client) sendEventIfMatched(event *api.RunEvent) bool {
	if event.Sequence < c.minSeq || !c.filter(event) {
		return true
	}

	wsEvent := c.transformEvent(event)
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteJSON(wsEvent); err != nil {
		slog.Error("WebSocket write failed",
			log.Error(err))
		return false
	}
	return true
}

func (c *Client) transformEvent(ev *api.RunEvent) *api.WebSocketEvent {
	data, err := json.Marshal(ev.Data)
	if err != nil {
		slog.Error("Failed to marshal event data",
			log.RunID(ev.RunID),
			log.EventType(ev.Type),
			log.Error(err))
		data = nil
	}
	return &api.WebSocketEvent{
		Type:      ev.Type,
		Data:      data,
		RunID:     ev.RunID,
		Timestamp: ev.Timestamp.UnixMilli(),
		Sequence:  ev.Sequence,
	}
}

func (c *Client) sendPing() bool {
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	err := c.conn.WriteMessage(websocket.PingMessage, nil)
	return err == nil
}

// buildFilter creates an event filter from client subscription
// preferences. An unconstrained subscription receives every run event
func buildFilter(sub *api.ClientSubscription) eventFilter {
	var runFilter eventFilter
	if sub.RunID != "" {
		id := sub.RunID
		runFilter = func(ev *api.RunEvent) bool {
			return ev.RunID == id
		}
	}

	var eventTypeFilter eventFilter
	if len(sub.EventTypes) > 0 {
		lookup := make(util.Set[api.EventType], len(sub.EventTypes))
		for _, et := range sub.EventTypes {
			lookup.Add(et)
		}
		eventTypeFilter = func(ev *api.RunEvent) bool {
			return lookup.Contains(ev.Type)
		}
	}

	switch {
	case runFilter != nil && eventTypeFilter != nil:
		return func(ev *api.RunEvent) bool {
			return runFilter(ev) && eventTypeFilter(ev)
		}
	case runFilter != nil:
		return runFilter
	case eventTypeFilter != nil:
		return eventTypeFilter
	default:
		return func(*api.RunEvent) bool { return true }
	}
}
