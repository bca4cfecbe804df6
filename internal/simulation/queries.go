package simulation

import (
	"context"
	"sort"

	"nexus-chat/internal/models"
	"nexus-chat/internal/observability"
)

// Rooms returns a snapshot of every room, enriched with the derived
// last-message pointer: the room's message with the maximum timestamp.
func (s *Service) Rooms(ctx context.Context) ([]models.Room, error) {
	if err := s.pause(ctx, s.delays.Rooms); err != nil {
		return nil, err
	}

	s.mu.Lock()
	out := make([]models.Room, 0, len(s.rooms))
	for _, room := range s.rooms {
		snap := room
		snap.Members = append([]int(nil), room.Members...)
		snap.LastMessage = s.lastMessageLocked(room.ID)
		out = append(out, snap)
	}
	s.mu.Unlock()

	observability.IncOperation("rooms", "ok")
	return out, nil
}

func (s *Service) lastMessageLocked(roomID int) *models.Message {
	var best *models.Message
	for i := range s.messages {
		m := &s.messages[i]
		if m.RoomID != roomID {
			continue
		}
		if best == nil || !m.Timestamp.Before(best.Timestamp) {
			best = m
		}
	}
	if best == nil {
		return nil
	}
	clone := best.Clone()
	return &clone
}

// Messages returns the room's messages ascending by timestamp. An unknown
// room yields an empty list, not an error.
func (s *Service) Messages(ctx context.Context, roomID int) ([]models.Message, error) {
	if err := s.pause(ctx, s.delays.Messages); err != nil {
		return nil, err
	}

	s.mu.Lock()
	out := make([]models.Message, 0)
	for _, m := range s.messages {
		if m.RoomID == roomID {
			out = append(out, m.Clone())
		}
	}
	s.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})

	observability.IncOperation("messages", "ok")
	return out, nil
}

// Users returns a snapshot of the user table.
func (s *Service) Users(ctx context.Context) ([]models.User, error) {
	if err := s.pause(ctx, s.delays.Users); err != nil {
		return nil, err
	}

	s.mu.Lock()
	out := append([]models.User(nil), s.users...)
	s.mu.Unlock()

	observability.IncOperation("users", "ok")
	return out, nil
}

// Analytics computes the dashboard snapshot. The hour buckets are a fixed
// illustrative series; a real backend would derive them from message
// timestamps.
func (s *Service) Analytics(ctx context.Context) (models.AnalyticsSnapshot, error) {
	if err := s.pause(ctx, s.delays.Analytics); err != nil {
		return models.AnalyticsSnapshot{}, err
	}

	s.mu.Lock()
	active := 0
	for _, u := range s.users {
		if u.Status != models.StatusOffline {
			active++
		}
	}
	total := len(s.messages)
	s.mu.Unlock()

	observability.IncOperation("analytics", "ok")
	return models.AnalyticsSnapshot{
		ActiveUsers:   active,
		TotalMessages: total,
		MessagesPerHour: []models.HourBucket{
			{Hour: "09:00", Count: 12},
			{Hour: "10:00", Count: 45},
			{Hour: "11:00", Count: 32},
			{Hour: "12:00", Count: 15},
			{Hour: "13:00", Count: 50},
			{Hour: "14:00", Count: 28},
		},
	}, nil
}
