package realtime

import (
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/charlesng35/fleetcn/pkg/metrics"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	maxControlSize = 16 << 10
	sendBuffer     = 64
)

type client struct {
	hub     *Hub
	socket  *websocket.Conn
	userID  string
	allowed map[string]struct{}

	// streams is guarded by hub.mu.
	streams map[string]struct{}

	send      chan Message
	done      chan struct{}
	closeOnce sync.Once
}

func newClient(hub *Hub, socket *websocket.Conn, userID string, allowed map[string]struct{}) *client {
	return &client{
		hub:     hub,
		socket:  socket,
		userID:  userID,
		allowed: allowed,
		streams: make(map[string]struct{}),
		send:    make(chan Message, sendBuffer),
		done:    make(chan struct{}),
	}
}

func (c *client) mayJoin(stream string) bool {
	if len(c.allowed) == 0 {
		return true
	}
	_, ok := c.allowed[stream]
	return ok
}

// readLoop handles control frames until the socket fails or the client is closed.
func (c *client) readLoop() {
	defer c.close()

	c.socket.SetReadLimit(maxControlSize)
	_ = c.socket.SetReadDeadline(time.Now().Add(pongWait))
	c.socket.SetPongHandler(func(string) error {
		return c.socket.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, payload, err := c.socket.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.log.Debug("websocket closed", zap.String("user_id", c.userID), zap.Error(err))
			}
			return
		}
		if len(payload) > 0 {
			c.handleControl(payload)
		}
	}
}

func (c *client) handleControl(payload []byte) {
	var ctrl controlMessage
	if err := json.Unmarshal(payload, &ctrl); err != nil {
		c.hub.log.Debug("malformed control frame", zap.String("user_id", c.userID), zap.Error(err))
		return
	}

	switch strings.ToLower(strings.TrimSpace(ctrl.Action)) {
	case actionSubscribe:
		c.reply(Message{Event: EventSubscribed, Data: c.hub.subscribe(c, ctrl.Streams)})
	case actionUnsubscribe:
		c.reply(Message{Event: EventSubscribed, Data: c.hub.unsubscribe(c, ctrl.Streams)})
	case actionPing:
		c.reply(Message{Event: EventPong})
	default:
		c.hub.log.Debug("unknown control action", zap.String("action", ctrl.Action), zap.String("user_id", c.userID))
	}
}

// reply queues a frame for this client only, dropping it when the buffer is full.
func (c *client) reply(message Message) {
	select {
	case c.send <- message:
	default:
	}
}

func (c *client) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			_ = c.socket.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
			_ = c.socket.Close()
			return
		case message := <-c.send:
			_ = c.socket.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.socket.WriteJSON(message); err != nil {
				c.close()
				return
			}
		case <-ticker.C:
			if err := c.socket.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				c.close()
				return
			}
		}
	}
}

// close is idempotent. send is never closed; writeLoop exits on done.
func (c *client) close() {
	c.closeOnce.Do(func() {
		c.hub.unregister(c)
		metrics.NotificationSubscribers.Dec()
		close(c.done)
		_ = c.socket.SetReadDeadline(time.Now())
	})
}
