package simulation

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nexus-chat/internal/bus"
	"nexus-chat/internal/cache"
	"nexus-chat/internal/models"
	"nexus-chat/internal/token"
)

// recorder captures every bus event and signals when the scripted reply
// message lands.
type recorder struct {
	mu     sync.Mutex
	events []models.Event
	done   chan struct{}
	once   sync.Once
}

func newRecorder(b *bus.Bus) *recorder {
	r := &recorder{done: make(chan struct{})}
	handle := func(ev models.Event) {
		r.mu.Lock()
		r.events = append(r.events, ev)
		r.mu.Unlock()
		if msg, ok := ev.(models.NewMessageEvent); ok && strings.HasSuffix(msg.Message.ID, "_reply") {
			r.once.Do(func() { close(r.done) })
		}
	}
	for _, kind := range []models.EventKind{
		models.EventNewMessage,
		models.EventPresenceUpdate,
		models.EventMessagesRead,
		models.EventTyping,
	} {
		b.Subscribe(kind, handle)
	}
	return r
}

func (r *recorder) wait(t *testing.T) []models.Event {
	t.Helper()
	select {
	case <-r.done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reply sequence")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.Event(nil), r.events...)
}

func (r *recorder) snapshot() []models.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.Event(nil), r.events...)
}

func TestReplySequenceScenario(t *testing.T) {
	svc, b := newTestService(t, nil)
	user := login(t, svc)
	rec := newRecorder(b)

	sent, err := svc.SendMessage(context.Background(), 102, "hello")
	require.NoError(t, err)

	events := rec.wait(t)
	require.GreaterOrEqual(t, len(events), 5)

	// 1. Immediate optimistic echo.
	echo, ok := events[0].(models.NewMessageEvent)
	require.True(t, ok, "first event must be the sender's echo")
	assert.Equal(t, sent.ID, echo.Message.ID)
	assert.Equal(t, user.ID, echo.Message.SenderID)
	assert.Equal(t, "hello", echo.Message.Content)
	assert.Equal(t, []int{user.ID}, echo.Message.ReadBy)

	// 2. The responder reads the room before typing. Room 102 is 1:1 with
	// Alice, so the responder is deterministic.
	read, ok := events[1].(models.MessagesReadEvent)
	require.True(t, ok, "read receipt precedes typing")
	assert.Equal(t, 102, read.RoomID)
	assert.Equal(t, 2, read.ReadByUserID)
	assert.Contains(t, read.MessageIDs, sent.ID)

	// 3. Typing start, then stop.
	start, ok := events[2].(models.TypingEvent)
	require.True(t, ok)
	assert.True(t, start.IsTyping)
	assert.Equal(t, 102, start.RoomID)
	assert.Equal(t, 2, start.UserID)

	stop, ok := events[3].(models.TypingEvent)
	require.True(t, ok)
	assert.False(t, stop.IsTyping)
	assert.Equal(t, 2, stop.UserID)

	// 4. The scripted reply, drawn from the fixed phrase set.
	reply, ok := events[4].(models.NewMessageEvent)
	require.True(t, ok)
	assert.Equal(t, 102, reply.Message.RoomID)
	assert.Equal(t, 2, reply.Message.SenderID)
	assert.Contains(t, replyPhrases, reply.Message.Content)
	assert.True(t, reply.Message.Delivered)
	assert.Equal(t, []int{2}, reply.Message.ReadBy)
}

func TestReplySequenceSkippedWithoutOtherMembers(t *testing.T) {
	svc, b := newTestService(t, nil)
	login(t, svc)

	svc.mu.Lock()
	svc.rooms = append(svc.rooms, models.Room{ID: 999, Name: "Notes to self", Members: []int{1}})
	svc.mu.Unlock()

	rec := newRecorder(b)

	_, err := svc.SendMessage(context.Background(), 999, "just me here")
	require.NoError(t, err)

	time.Sleep(100 * time.Millisecond)
	events := rec.snapshot()
	require.Len(t, events, 1, "only the echo fires when nobody can reply")
	_, ok := events[0].(models.NewMessageEvent)
	assert.True(t, ok)
}

func TestMarkAsReadIdempotentAndMonotonic(t *testing.T) {
	svc, b := newTestService(t, nil)
	login(t, svc)
	rec := newRecorder(b)

	_, err := svc.SendMessage(context.Background(), 103, "hi bob")
	require.NoError(t, err)
	rec.wait(t)

	var readEvents []models.MessagesReadEvent
	var mu sync.Mutex
	bus.On(b, func(ev models.MessagesReadEvent) {
		mu.Lock()
		readEvents = append(readEvents, ev)
		mu.Unlock()
	})

	// Bob's reply is unread by user 1: the first call marks it and fires
	// one event, the second finds nothing new.
	require.NoError(t, svc.MarkAsRead(context.Background(), 103, 1))
	require.NoError(t, svc.MarkAsRead(context.Background(), 103, 1))

	mu.Lock()
	require.Len(t, readEvents, 1)
	assert.Equal(t, 103, readEvents[0].RoomID)
	assert.Equal(t, 1, readEvents[0].ReadByUserID)
	mu.Unlock()

	msgs, err := svc.Messages(context.Background(), 103)
	require.NoError(t, err)
	for _, m := range msgs {
		seen := map[int]int{}
		for _, id := range m.ReadBy {
			seen[id]++
		}
		for id, n := range seen {
			assert.Equal(t, 1, n, "read_by holds user %d once in message %s", id, m.ID)
		}
	}
}

func TestCloseCancelsInFlightReplySequences(t *testing.T) {
	b := bus.New()
	slot := cache.NewMemorySlot()
	delays := Delays{ReplyRead: 200 * time.Millisecond}
	svc, err := New(b, slot, token.NewIssuer("test-secret", time.Hour), delays)
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), "me@example.com")
	require.NoError(t, err)
	_, err = svc.SendMessage(context.Background(), 103, "going down")
	require.NoError(t, err)

	require.NoError(t, svc.Close())

	// The reply never landed: the sequence was cancelled at its first wait.
	reopened, err := New(bus.New(), slot, token.NewIssuer("test-secret", time.Hour), Delays{})
	require.NoError(t, err)
	defer reopened.Close()

	msgs, err := reopened.Messages(context.Background(), 103)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "going down", msgs[0].Content)
}

func TestOverlappingSequencesBothComplete(t *testing.T) {
	svc, b := newTestService(t, nil)
	login(t, svc)

	var mu sync.Mutex
	replies := 0
	done := make(chan struct{})
	bus.On(b, func(ev models.NewMessageEvent) {
		if !strings.HasSuffix(ev.Message.ID, "_reply") {
			return
		}
		mu.Lock()
		replies++
		if replies == 2 {
			close(done)
		}
		mu.Unlock()
	})

	_, err := svc.SendMessage(context.Background(), 102, "first")
	require.NoError(t, err)
	_, err = svc.SendMessage(context.Background(), 103, "second")
	require.NoError(t, err)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for overlapping reply sequences")
	}

	for _, roomID := range []int{102, 103} {
		msgs, err := svc.Messages(context.Background(), roomID)
		require.NoError(t, err)
		var found bool
		for _, m := range msgs {
			if strings.HasSuffix(m.ID, "_reply") {
				found = true
			}
		}
		assert.True(t, found, "room %d received its reply", roomID)
	}
}
