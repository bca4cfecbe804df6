// Package client is the headless counterpart of the browser view layer: it
// subscribes to the bus, folds events into renderable state and applies the
// client-side rules the UI contract depends on, such as suppressing unread
// counters for the room the viewer has open.
package client

import (
	"context"
	"fmt"
	"sync"

	"nexus-chat/internal/bus"
	"nexus-chat/internal/models"
	"nexus-chat/internal/simulation"
)

// State holds a read-only projection of the chat for one viewer. It never
// mutates domain entities directly; everything flows in through operation
// responses and bus events.
type State struct {
	svc *simulation.Service

	mu           sync.Mutex
	user         models.User
	loggedIn     bool
	users        []models.User
	rooms        []models.Room
	messages     []models.Message
	activeRoomID int
	typing       map[int]map[int]bool

	cancels []func()
}

// New builds a State and attaches it to the bus.
func New(svc *simulation.Service, b *bus.Bus) *State {
	s := &State{
		svc:    svc,
		typing: make(map[int]map[int]bool),
	}
	s.cancels = []func(){
		bus.On(b, s.onNewMessage),
		bus.On(b, s.onPresenceUpdate),
		bus.On(b, s.onMessagesRead),
		bus.On(b, s.onTyping),
	}
	return s
}

// Close detaches the state from the bus.
func (s *State) Close() {
	for _, cancel := range s.cancels {
		cancel()
	}
}

// Login authenticates and loads the initial room and user lists.
func (s *State) Login(ctx context.Context, email string) error {
	resp, err := s.svc.Login(ctx, email)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}

	rooms, err := s.svc.Rooms(ctx)
	if err != nil {
		return fmt.Errorf("load rooms: %w", err)
	}
	users, err := s.svc.Users(ctx)
	if err != nil {
		return fmt.Errorf("load users: %w", err)
	}

	s.mu.Lock()
	s.user = resp.User
	s.loggedIn = true
	s.rooms = rooms
	s.users = users
	s.mu.Unlock()
	return nil
}

// OpenRoom switches the active room: fetches its thread, marks it read and
// clears its local unread counter.
func (s *State) OpenRoom(ctx context.Context, roomID int) error {
	msgs, err := s.svc.Messages(ctx, roomID)
	if err != nil {
		return fmt.Errorf("load messages: %w", err)
	}

	s.mu.Lock()
	s.activeRoomID = roomID
	s.messages = msgs
	for i := range s.rooms {
		if s.rooms[i].ID == roomID {
			s.rooms[i].UnreadCount = 0
		}
	}
	viewer := s.user.ID
	s.mu.Unlock()

	if err := s.svc.MarkAsRead(ctx, roomID, viewer); err != nil {
		return fmt.Errorf("mark read: %w", err)
	}
	return nil
}

// Send posts content to the active room.
func (s *State) Send(ctx context.Context, content string) error {
	s.mu.Lock()
	roomID := s.activeRoomID
	s.mu.Unlock()
	if roomID == 0 {
		return fmt.Errorf("no active room")
	}
	_, err := s.svc.SendMessage(ctx, roomID, content)
	return err
}

// User returns the viewer's own record.
func (s *State) User() models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// Rooms returns the sidebar projection.
func (s *State) Rooms() []models.Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Room(nil), s.rooms...)
}

// Users returns the known user list.
func (s *State) Users() []models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.User(nil), s.users...)
}

// Messages returns the active room's thread.
func (s *State) Messages() []models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Message, 0, len(s.messages))
	for _, m := range s.messages {
		out = append(out, m.Clone())
	}
	return out
}

// TypingUsers lists users currently typing in roomID.
func (s *State) TypingUsers(roomID int) []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []int
	for id, active := range s.typing[roomID] {
		if active {
			out = append(out, id)
		}
	}
	return out
}

func (s *State) onNewMessage(ev models.NewMessageEvent) {
	msg := ev.Message

	s.mu.Lock()
	for i := range s.rooms {
		if s.rooms[i].ID != msg.RoomID {
			continue
		}
		clone := msg.Clone()
		s.rooms[i].LastMessage = &clone
		if s.activeRoomID != msg.RoomID {
			s.rooms[i].UnreadCount++
		}
	}
	active := s.activeRoomID == msg.RoomID
	viewer := s.user.ID
	loggedIn := s.loggedIn
	if active {
		s.messages = append(s.messages, msg.Clone())
	}
	s.mu.Unlock()

	// Viewing the room counts as reading it. This happens outside the
	// state lock because the resulting messages_read event re-enters.
	if active && loggedIn {
		_ = s.svc.MarkAsRead(context.Background(), msg.RoomID, viewer)
	}
}

func (s *State) onPresenceUpdate(ev models.PresenceUpdateEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.users {
		if s.users[i].ID == ev.User.ID {
			s.users[i] = ev.User
		}
	}
	if s.user.ID == ev.User.ID {
		s.user = ev.User
	}
}

func (s *State) onMessagesRead(ev models.MessagesReadEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.activeRoomID != ev.RoomID {
		return
	}
	marked := make(map[string]bool, len(ev.MessageIDs))
	for _, id := range ev.MessageIDs {
		marked[id] = true
	}
	for i := range s.messages {
		m := &s.messages[i]
		if marked[m.ID] && !m.SeenBy(ev.ReadByUserID) {
			m.ReadBy = append(m.ReadBy, ev.ReadByUserID)
		}
	}
}

func (s *State) onTyping(ev models.TypingEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ev.IsTyping {
		if s.typing[ev.RoomID] == nil {
			s.typing[ev.RoomID] = make(map[int]bool)
		}
		s.typing[ev.RoomID][ev.UserID] = true
		return
	}
	delete(s.typing[ev.RoomID], ev.UserID)
}
