package realtime

import (
	"net"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/charlesng35/fleetcn/pkg/logger"
	"github.com/charlesng35/fleetcn/pkg/metrics"
)

type subscriptionKey struct {
	stream string
	userID string
}

// Hub fans messages out to the websocket clients of individual users. Each client chooses
// its streams, limited to the set the caller was allowed when it connected.
type Hub struct {
	mu       sync.RWMutex
	subs     map[subscriptionKey]map[*client]struct{}
	upgrader websocket.Upgrader
	log      *zap.Logger
}

// NewHub constructs a Hub. Cross-origin upgrades are accepted only from the listed origins;
// same-host and loopback origins are always accepted.
func NewHub(allowedOrigins ...string) *Hub {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		if origin = canonicalOrigin(origin); origin != "" {
			allowed[origin] = struct{}{}
		}
	}

	return &Hub{
		subs: make(map[subscriptionKey]map[*client]struct{}),
		log:  logger.WithModule("realtime"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return originAllowed(r, allowed) },
		},
	}
}

// Serve upgrades the request and blocks until the client disconnects. The client starts
// subscribed to streams; an empty allowed set permits every stream.
func (h *Hub) Serve(userID string, streams []string, allowed map[string]struct{}, w http.ResponseWriter, r *http.Request) {
	socket, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.String("user_id", userID), zap.Error(err))
		return
	}

	c := newClient(h, socket, userID, allowed)
	metrics.NotificationSubscribers.Inc()
	h.subscribe(c, streams)

	go c.writeLoop()
	c.readLoop()
}

// BroadcastToUser queues message for every client of userID subscribed to stream.
func (h *Hub) BroadcastToUser(stream, userID string, message Message) {
	key := subscriptionKey{stream: normalizeStream(stream), userID: userID}
	if key.stream == "" || key.userID == "" {
		return
	}
	message.Stream = key.stream

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.subs[key] {
		h.enqueue(c, message)
	}
}

// BroadcastToUsers is BroadcastToUser for several users.
func (h *Hub) BroadcastToUsers(stream string, userIDs []string, message Message) {
	for _, userID := range userIDs {
		h.BroadcastToUser(stream, userID, message)
	}
}

// Subscribers counts the clients listening on stream across all users.
func (h *Hub) Subscribers(stream string) int {
	stream = normalizeStream(stream)

	h.mu.RLock()
	defer h.mu.RUnlock()

	count := 0
	for key, clients := range h.subs {
		if key.stream == stream {
			count += len(clients)
		}
	}
	return count
}

// subscribe adds the permitted streams and returns the client's resulting stream list.
func (h *Hub) subscribe(c *client, streams []string) []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, stream := range uniqueStreams(streams) {
		if !c.mayJoin(stream) {
			h.log.Debug("stream not permitted", zap.String("stream", stream), zap.String("user_id", c.userID))
			continue
		}
		key := subscriptionKey{stream: stream, userID: c.userID}
		if h.subs[key] == nil {
			h.subs[key] = make(map[*client]struct{})
		}
		h.subs[key][c] = struct{}{}
		c.streams[stream] = struct{}{}
	}
	return c.streamList()
}

func (h *Hub) unsubscribe(c *client, streams []string) []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, stream := range uniqueStreams(streams) {
		h.dropLocked(c, stream)
	}
	return c.streamList()
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for stream := range c.streams {
		h.dropLocked(c, stream)
	}
}

func (h *Hub) dropLocked(c *client, stream string) {
	key := subscriptionKey{stream: stream, userID: c.userID}
	if clients, ok := h.subs[key]; ok {
		delete(clients, c)
		if len(clients) == 0 {
			delete(h.subs, key)
		}
	}
	delete(c.streams, stream)
}

// enqueue never blocks; a client whose buffer is full is disconnected.
func (h *Hub) enqueue(c *client, message Message) {
	select {
	case c.send <- message:
	default:
		h.log.Warn("disconnecting slow websocket client", zap.String("user_id", c.userID))
		go c.close()
	}
}

func (c *client) streamList() []string {
	out := make([]string, 0, len(c.streams))
	for stream := range c.streams {
		out = append(out, stream)
	}
	sort.Strings(out)
	return out
}

func canonicalOrigin(origin string) string {
	return strings.ToLower(strings.TrimRight(strings.TrimSpace(origin), "/"))
}

func originAllowed(r *http.Request, allowed map[string]struct{}) bool {
	origin := strings.TrimSpace(r.Header.Get("Origin"))
	if origin == "" {
		return true
	}
	if _, ok := allowed[canonicalOrigin(origin)]; ok {
		return true
	}

	parsed, err := url.Parse(origin)
	if err != nil {
		return false
	}
	host := parsed.Hostname()
	if strings.EqualFold(host, stripPort(r.Host)) {
		return true
	}
	if ip := net.ParseIP(host); ip != nil {
		return ip.IsLoopback()
	}
	return strings.EqualFold(host, "localhost")
}

func stripPort(hostport string) string {
	if host, _, err := net.SplitHostPort(strings.TrimSpace(hostport)); err == nil {
		return host
	}
	return strings.TrimSpace(hostport)
}
