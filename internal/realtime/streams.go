package realtime

import "strings"

// Named realtime streams.
const (
	// StreamNotifications carries changes to the caller's own inbox.
	StreamNotifications = "notifications"
	// StreamExpiry carries certificate and licence expiry warnings.
	StreamExpiry = "documents.expiry"
)

// Message is the JSON frame written to clients.
type Message struct {
	Stream string `json:"stream"`
	Event  string `json:"event"`
	Data   any    `json:"data,omitempty"`
}

// Control actions a client may send.
const (
	actionSubscribe   = "subscribe"
	actionUnsubscribe = "unsubscribe"
	actionPing        = "ping"
)

// Events the hub itself emits.
const (
	EventSubscribed = "subscribed"
	EventPong       = "pong"
)

type controlMessage struct {
	Action  string   `json:"action"`
	Streams []string `json:"streams"`
}

func normalizeStream(stream string) string {
	return strings.ToLower(strings.TrimSpace(stream))
}

func uniqueStreams(streams []string) []string {
	seen := make(map[string]struct{}, len(streams))
	out := make([]string, 0, len(streams))
	for _, stream := range streams {
		stream = normalizeStream(stream)
		if _, dup := seen[stream]; dup || stream == "" {
			continue
		}
		seen[stream] = struct{}{}
		out = append(out, stream)
	}
	return out
}
