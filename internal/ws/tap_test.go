package ws

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nexus-chat/internal/bus"
	"nexus-chat/internal/models"
)

func TestTapForwardsBusEvents(t *testing.T) {
	gin.SetMode(gin.TestMode)
	b := bus.New()
	router := gin.New()
	router.GET("/ws", NewTap(b).Handle)

	srv := httptest.NewServer(router)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	defer conn.Close()

	// The handler may still be wiring subscriptions when Dial returns, so
	// keep publishing until a frame lands.
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		ticker := time.NewTicker(10 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				b.Publish(models.TypingEvent{RoomID: 101, UserID: 2, IsTyping: true})
			}
		}
	}()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var env struct {
		Type    string         `json:"type"`
		Payload map[string]any `json:"payload"`
	}
	require.NoError(t, conn.ReadJSON(&env))

	assert.Equal(t, "typing", env.Type)
	assert.EqualValues(t, 101, env.Payload["room_id"])
	assert.EqualValues(t, 2, env.Payload["user_id"])
	assert.Equal(t, true, env.Payload["is_typing"])
}
