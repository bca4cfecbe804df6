package simulation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"nexus-chat/internal/models"
	"nexus-chat/internal/observability"
)

// MarkAsRead records that userID has seen every message in the room sent by
// others. Idempotent: when nothing new qualifies it is a silent no-op and
// no event fires. Requires an active session.
func (s *Service) MarkAsRead(ctx context.Context, roomID, userID int) error {
	s.mu.Lock()
	authed := s.current != nil
	s.mu.Unlock()
	if !authed {
		observability.IncOperation("mark_as_read", "unauthenticated")
		return ErrUnauthenticated
	}

	s.markRead(roomID, userID)
	observability.IncOperation("mark_as_read", "ok")
	return nil
}

// markRead is the session-free core shared with the reply simulation.
func (s *Service) markRead(roomID, userID int) {
	s.mu.Lock()
	var affected []string
	for i := range s.messages {
		m := &s.messages[i]
		if m.RoomID != roomID || m.SenderID == userID || m.SeenBy(userID) {
			continue
		}
		m.ReadBy = append(m.ReadBy, userID)
		affected = append(affected, m.ID)
	}
	if len(affected) == 0 {
		s.mu.Unlock()
		return
	}
	data := s.snapshotLocked()
	s.mu.Unlock()

	s.store(data)
	s.publish(models.MessagesReadEvent{
		RoomID:       roomID,
		ReadByUserID: userID,
		MessageIDs:   affected,
	})
}

// SendMessage appends a message from the session user, persists the log and
// synchronously echoes a new_message event before returning. It then kicks
// off the reply simulation in the background; the caller never waits on it.
func (s *Service) SendMessage(ctx context.Context, roomID int, content string) (models.Message, error) {
	if strings.TrimSpace(content) == "" {
		observability.IncOperation("send_message", "invalid")
		return models.Message{}, ErrEmptyContent
	}

	s.mu.Lock()
	if s.current == nil {
		s.mu.Unlock()
		observability.IncOperation("send_message", "unauthenticated")
		return models.Message{}, ErrUnauthenticated
	}
	sender := s.current.ID

	idx := s.findRoomLocked(roomID)
	if idx == -1 {
		s.mu.Unlock()
		observability.IncOperation("send_message", "not_found")
		return models.Message{}, fmt.Errorf("send to room %d: %w", roomID, ErrRoomNotFound)
	}
	if !s.rooms[idx].HasMember(sender) {
		s.mu.Unlock()
		observability.IncOperation("send_message", "forbidden")
		return models.Message{}, fmt.Errorf("send to room %d: %w", roomID, ErrNotMember)
	}

	now := time.Now()
	msg := models.Message{
		ID:        s.nextMessageIDLocked(now),
		RoomID:    roomID,
		SenderID:  sender,
		Content:   content,
		Timestamp: now,
		Delivered: true,
		ReadBy:    []int{sender},
	}
	s.messages = append(s.messages, msg)
	data := s.snapshotLocked()
	s.mu.Unlock()

	s.store(data)
	s.publish(models.NewMessageEvent{Message: msg.Clone()})

	s.wg.Add(1)
	go s.runReplySequence(roomID, sender)

	observability.IncOperation("send_message", "ok")
	return msg.Clone(), nil
}
