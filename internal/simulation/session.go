package simulation

import (
	"context"
	"fmt"
	"time"

	"nexus-chat/internal/models"
	"nexus-chat/internal/observability"
	"nexus-chat/internal/seed"
)

// Login binds the session to the demo account after the simulated
// round-trip. The mock domain has no credential check; any email succeeds.
func (s *Service) Login(ctx context.Context, email string) (models.AuthResponse, error) {
	if err := s.pause(ctx, s.delays.Login); err != nil {
		return models.AuthResponse{}, err
	}
	_ = email

	s.mu.Lock()
	idx := s.findUserLocked(seed.DemoUserID)
	user := s.users[idx]
	s.current = &user
	s.mu.Unlock()

	signed, err := s.tokens.Mint(user)
	if err != nil {
		observability.IncOperation("login", "error")
		return models.AuthResponse{}, fmt.Errorf("mint session token: %w", err)
	}

	observability.IncOperation("login", "ok")
	return models.AuthResponse{Token: signed, User: user}, nil
}

// Register allocates a fresh account, binds the session to it and adds it
// to the General Chat group so it has somewhere to talk.
func (s *Service) Register(ctx context.Context, email, username string) (models.AuthResponse, error) {
	if err := s.pause(ctx, s.delays.Register); err != nil {
		return models.AuthResponse{}, err
	}

	s.mu.Lock()
	id := s.freshUserIDLocked()
	user := models.User{
		ID:        id,
		Username:  username,
		Email:     email,
		Status:    models.StatusOnline,
		LastSeen:  time.Now(),
		AvatarURL: fmt.Sprintf("https://api.dicebear.com/9.x/avataaars/svg?seed=%d", id),
	}
	s.users = append(s.users, user)
	for i := range s.rooms {
		if s.rooms[i].IsGroup {
			s.rooms[i].Members = append(s.rooms[i].Members, id)
		}
	}
	s.current = &user
	s.mu.Unlock()

	signed, err := s.tokens.Mint(user)
	if err != nil {
		observability.IncOperation("register", "error")
		return models.AuthResponse{}, fmt.Errorf("mint session token: %w", err)
	}

	observability.IncOperation("register", "ok")
	return models.AuthResponse{Token: signed, User: user}, nil
}

// UpdateUser merges a partial profile edit into the user table and
// broadcasts the updated record. This broadcast is the only path by which
// the edit becomes visible; even the editor observes its own change through
// the presence_update round trip.
func (s *Service) UpdateUser(ctx context.Context, id int, updates models.UserUpdate) (models.User, error) {
	if err := s.pause(ctx, s.delays.Profile); err != nil {
		return models.User{}, err
	}

	s.mu.Lock()
	idx := s.findUserLocked(id)
	if idx == -1 {
		s.mu.Unlock()
		observability.IncOperation("update_user", "not_found")
		return models.User{}, fmt.Errorf("update user %d: %w", id, ErrUserNotFound)
	}

	user := &s.users[idx]
	if updates.Username != nil {
		user.Username = *updates.Username
	}
	if updates.Email != nil {
		user.Email = *updates.Email
	}
	if updates.AvatarURL != nil {
		user.AvatarURL = *updates.AvatarURL
	}
	if updates.Status != nil {
		user.Status = *updates.Status
	}
	updated := *user
	if s.current != nil && s.current.ID == id {
		s.current = &updated
	}
	s.mu.Unlock()

	s.publish(models.PresenceUpdateEvent{User: updated})
	observability.IncOperation("update_user", "ok")
	return updated, nil
}
