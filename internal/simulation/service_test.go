package simulation

import (
	"context"
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

func newTestService(t *testing.T, slot cache.Slot) (*Service, *bus.Bus) {
	t.Helper()
	if slot == nil {
		slot = cache.NewMemorySlot()
	}
	b := bus.New()
	svc, err := New(b, slot, token.NewIssuer("test-secret", time.Hour), Delays{})
	require.NoError(t, err)
	t.Cleanup(func() { svc.Close() })
	return svc, b
}

func login(t *testing.T, svc *Service) models.User {
	t.Helper()
	resp, err := svc.Login(context.Background(), "me@example.com")
	require.NoError(t, err)
	return resp.User
}

func TestLoginBindsDemoUser(t *testing.T) {
	svc, _ := newTestService(t, nil)

	resp, err := svc.Login(context.Background(), "whoever@example.com")
	require.NoError(t, err)

	assert.Equal(t, 1, resp.User.ID)
	assert.Equal(t, "Current User", resp.User.Username)
	assert.NotEmpty(t, resp.Token)

	current, ok := svc.CurrentUser()
	require.True(t, ok)
	assert.Equal(t, resp.User.ID, current.ID)
}

func TestRegisterAllocatesFreshUser(t *testing.T) {
	svc, _ := newTestService(t, nil)

	resp, err := svc.Register(context.Background(), "new@example.com", "newbie")
	require.NoError(t, err)

	assert.GreaterOrEqual(t, resp.User.ID, 10)
	assert.Less(t, resp.User.ID, 10010)
	assert.Equal(t, models.StatusOnline, resp.User.Status)
	assert.NotEmpty(t, resp.User.AvatarURL)
	assert.NotEmpty(t, resp.Token)

	users, err := svc.Users(context.Background())
	require.NoError(t, err)
	assert.Len(t, users, 5)

	// Fresh accounts join the group room so they can actually chat.
	rooms, err := svc.Rooms(context.Background())
	require.NoError(t, err)
	for _, r := range rooms {
		if r.IsGroup {
			assert.True(t, r.HasMember(resp.User.ID))
		} else {
			assert.False(t, r.HasMember(resp.User.ID))
		}
	}
}

func TestUpdateUserBroadcastsPresence(t *testing.T) {
	svc, b := newTestService(t, nil)
	login(t, svc)

	var got models.PresenceUpdateEvent
	var fired int
	bus.On(b, func(ev models.PresenceUpdateEvent) {
		got = ev
		fired++
	})

	status := models.StatusBusy
	username := "Renamed"
	updated, err := svc.UpdateUser(context.Background(), 1, models.UserUpdate{Username: &username, Status: &status})
	require.NoError(t, err)

	assert.Equal(t, "Renamed", updated.Username)
	assert.Equal(t, models.StatusBusy, updated.Status)
	assert.Equal(t, "me@example.com", updated.Email, "untouched fields survive the merge")

	require.Equal(t, 1, fired)
	assert.Equal(t, updated, got.User, "event carries the full updated record")

	current, ok := svc.CurrentUser()
	require.True(t, ok)
	assert.Equal(t, "Renamed", current.Username, "session copy follows the edit")
}

func TestUpdateUserUnknownIDFailsWithoutEvent(t *testing.T) {
	svc, b := newTestService(t, nil)

	var fired int
	bus.On(b, func(models.PresenceUpdateEvent) { fired++ })

	_, err := svc.UpdateUser(context.Background(), 9999, models.UserUpdate{})
	require.ErrorIs(t, err, ErrUserNotFound)
	assert.Zero(t, fired)
}

func TestRoomsDeriveLastMessage(t *testing.T) {
	svc, _ := newTestService(t, nil)

	rooms, err := svc.Rooms(context.Background())
	require.NoError(t, err)
	require.Len(t, rooms, 3)

	byID := map[int]models.Room{}
	for _, r := range rooms {
		byID[r.ID] = r
	}

	require.NotNil(t, byID[101].LastMessage)
	assert.Equal(t, "m1", byID[101].LastMessage.ID)
	require.NotNil(t, byID[102].LastMessage)
	assert.Equal(t, "m2", byID[102].LastMessage.ID)
	assert.Nil(t, byID[103].LastMessage, "room without messages has no last message")
}

func TestMessagesAscendingByTimestamp(t *testing.T) {
	svc, _ := newTestService(t, nil)
	login(t, svc)

	_, err := svc.SendMessage(context.Background(), 102, "follow-up")
	require.NoError(t, err)

	msgs, err := svc.Messages(context.Background(), 102)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(msgs), 2)
	for i := 1; i < len(msgs); i++ {
		assert.False(t, msgs[i].Timestamp.Before(msgs[i-1].Timestamp))
	}
	assert.Equal(t, "m2", msgs[0].ID, "seed message comes first")
}

func TestAnalyticsSnapshot(t *testing.T) {
	svc, _ := newTestService(t, nil)

	snap, err := svc.Analytics(context.Background())
	require.NoError(t, err)

	// Seed: three of four users are not offline, two seed messages.
	assert.Equal(t, 3, snap.ActiveUsers)
	assert.Equal(t, 2, snap.TotalMessages)
	require.Len(t, snap.MessagesPerHour, 6)
	assert.Equal(t, "09:00", snap.MessagesPerHour[0].Hour)
	assert.Equal(t, 28, snap.MessagesPerHour[5].Count)
}

func TestSendMessageRequiresSession(t *testing.T) {
	svc, _ := newTestService(t, nil)

	_, err := svc.SendMessage(context.Background(), 101, "hi")
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestMarkAsReadRequiresSession(t *testing.T) {
	svc, _ := newTestService(t, nil)

	err := svc.MarkAsRead(context.Background(), 101, 1)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestSendMessageValidatesInput(t *testing.T) {
	svc, _ := newTestService(t, nil)
	login(t, svc)

	_, err := svc.SendMessage(context.Background(), 101, "   ")
	assert.ErrorIs(t, err, ErrEmptyContent)

	_, err = svc.SendMessage(context.Background(), 999, "hi")
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestSendMessageRejectsNonMembers(t *testing.T) {
	svc, _ := newTestService(t, nil)
	_, err := svc.Register(context.Background(), "new@example.com", "newbie")
	require.NoError(t, err)

	// Registered users join the group room but not the 1:1 rooms.
	_, err = svc.SendMessage(context.Background(), 102, "hi")
	assert.ErrorIs(t, err, ErrNotMember)
}

func TestSendMessageSynchronousEcho(t *testing.T) {
	svc, b := newTestService(t, nil)
	user := login(t, svc)

	var mu sync.Mutex
	var echoed *models.NewMessageEvent
	bus.On(b, func(ev models.NewMessageEvent) {
		mu.Lock()
		defer mu.Unlock()
		if echoed == nil {
			echoed = &ev
		}
	})

	msg, err := svc.SendMessage(context.Background(), 102, "hello")
	require.NoError(t, err)

	// The first new_message event fires before SendMessage returns.
	mu.Lock()
	first := echoed
	mu.Unlock()
	require.NotNil(t, first)
	assert.Equal(t, msg.ID, first.Message.ID)
	assert.Equal(t, user.ID, first.Message.SenderID)
	assert.Equal(t, "hello", first.Message.Content)
	assert.True(t, first.Message.Delivered)
	assert.Equal(t, []int{user.ID}, first.Message.ReadBy)
}

func TestPersistenceRoundTripAndSeedReset(t *testing.T) {
	slot := cache.NewMemorySlot()

	first, _ := newTestService(t, slot)
	login(t, first)
	_, err := first.Register(context.Background(), "extra@example.com", "extra")
	require.NoError(t, err)
	resp, err := first.Login(context.Background(), "me@example.com")
	require.NoError(t, err)
	sent, err := first.SendMessage(context.Background(), 102, "persist me")
	require.NoError(t, err)
	require.NoError(t, first.Close())
	_ = resp

	second, _ := newTestService(t, slot)

	msgs, err := second.Messages(context.Background(), 102)
	require.NoError(t, err)
	ids := make([]string, 0, len(msgs))
	for _, m := range msgs {
		ids = append(ids, m.ID)
	}
	assert.Contains(t, ids, "m2", "seed log survives in the slot")
	assert.Contains(t, ids, sent.ID, "sent message survives the restart")

	users, err := second.Users(context.Background())
	require.NoError(t, err)
	assert.Len(t, users, 4, "user table resets to seed data")

	_, ok := second.CurrentUser()
	assert.False(t, ok, "sessions do not survive restarts")
}
