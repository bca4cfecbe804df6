// Package ws bridges bus events to websocket clients so a browser UI or a
// diagnostics session can watch the simulation live. The bridge is an
// outbound tap only; chat operations go through the HTTP API.
package ws

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"nexus-chat/internal/bus"
	"nexus-chat/internal/models"
	"nexus-chat/internal/observability"
)

// ConnInfo identifies one tap connection.
type ConnInfo struct {
	ConnID      string
	IP          string
	RequestID   string
	ConnectedAt time.Time
}

// Envelope is the wire shape of one forwarded event.
type Envelope struct {
	Type    models.EventKind `json:"type"`
	Payload models.Event     `json:"payload"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Tap upgrades connections and forwards every bus event to them.
type Tap struct {
	bus *bus.Bus
}

// NewTap builds a Tap over b.
func NewTap(b *bus.Bus) *Tap {
	return &Tap{bus: b}
}

// Handle upgrades the request and streams events until the client goes
// away. Each connection gets its own subscriptions and writer goroutine;
// bus handlers never block on a slow client beyond its send buffer.
func (t *Tap) Handle(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	info := ConnInfo{
		ConnID:      uuid.NewString(),
		IP:          observability.IPFromRequest(c.Request),
		RequestID:   observability.RequestIDFromRequest(c.Request),
		ConnectedAt: time.Now(),
	}

	observability.IncWSActive()
	observability.IncWSEvent("connect")
	log.Printf("ws tap connected conn_id=%s ip=%s", info.ConnID, info.IP)

	outbound := make(chan Envelope, 64)
	forward := func(ev models.Event) {
		select {
		case outbound <- Envelope{Type: ev.Kind(), Payload: ev}:
		default:
			// Slow client: drop the event rather than stall the bus.
			observability.IncWSEvent("dropped")
		}
	}

	cancels := make([]func(), 0, 4)
	for _, kind := range []models.EventKind{
		models.EventNewMessage,
		models.EventPresenceUpdate,
		models.EventMessagesRead,
		models.EventTyping,
	} {
		cancels = append(cancels, t.bus.Subscribe(kind, forward))
	}

	done := make(chan struct{})

	// Reader: the tap ignores client frames but needs the read loop to
	// notice disconnects.
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	go func() {
		defer func() {
			for _, cancel := range cancels {
				cancel()
			}
			conn.Close()
			observability.DecWSActive()
			observability.IncWSEvent("disconnect")
			log.Printf("ws tap disconnected conn_id=%s duration_ms=%d",
				info.ConnID, time.Since(info.ConnectedAt).Milliseconds())
		}()

		for {
			select {
			case env := <-outbound:
				if err := conn.WriteJSON(env); err != nil {
					log.Printf("ws tap write error conn_id=%s: %v", info.ConnID, err)
					return
				}
				observability.IncWSEvent("forwarded")
			case <-done:
				return
			}
		}
	}()
}
