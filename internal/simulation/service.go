// Package simulation implements the mock chat backend: the single source of
// truth for users, rooms and the message log, request operations with
// artificial latency, and the scripted peer that answers every outgoing
// message.
package simulation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"sync"
	"time"

	"nexus-chat/internal/bus"
	"nexus-chat/internal/cache"
	"nexus-chat/internal/models"
	"nexus-chat/internal/observability"
	"nexus-chat/internal/seed"
	"nexus-chat/internal/token"
)

var (
	ErrUnauthenticated = errors.New("no authenticated session")
	ErrUserNotFound    = errors.New("user not found")
	ErrRoomNotFound    = errors.New("room not found")
	ErrNotMember       = errors.New("sender is not a room member")
	ErrEmptyContent    = errors.New("message content is empty")
)

// Delays are the simulated round-trip times. Zero values make operations
// immediate, which is how the tests run.
type Delays struct {
	Login     time.Duration
	Register  time.Duration
	Profile   time.Duration
	Rooms     time.Duration
	Messages  time.Duration
	Users     time.Duration
	Analytics time.Duration

	ReplyRead       time.Duration
	ReplyTypingLead time.Duration
	ReplyTyping     time.Duration
}

// DefaultDelays returns the stock timings.
func DefaultDelays() Delays {
	return Delays{
		Login:           800 * time.Millisecond,
		Register:        800 * time.Millisecond,
		Profile:         500 * time.Millisecond,
		Rooms:           300 * time.Millisecond,
		Messages:        200 * time.Millisecond,
		Users:           200 * time.Millisecond,
		Analytics:       500 * time.Millisecond,
		ReplyRead:       800 * time.Millisecond,
		ReplyTypingLead: 500 * time.Millisecond,
		ReplyTyping:     2000 * time.Millisecond,
	}
}

// Scaled multiplies every delay by factor.
func (d Delays) Scaled(factor float64) Delays {
	scale := func(v time.Duration) time.Duration {
		return time.Duration(float64(v) * factor)
	}
	return Delays{
		Login:           scale(d.Login),
		Register:        scale(d.Register),
		Profile:         scale(d.Profile),
		Rooms:           scale(d.Rooms),
		Messages:        scale(d.Messages),
		Users:           scale(d.Users),
		Analytics:       scale(d.Analytics),
		ReplyRead:       scale(d.ReplyRead),
		ReplyTypingLead: scale(d.ReplyTypingLead),
		ReplyTyping:     scale(d.ReplyTyping),
	}
}

// Service owns the authoritative chat state. All mutations happen under one
// mutex so each operation stays indivisible; simulated delays run outside
// the lock, which is where concurrent operations interleave.
type Service struct {
	bus    *bus.Bus
	slot   cache.Slot
	tokens *token.Issuer
	delays Delays

	mu       sync.Mutex
	users    []models.User
	rooms    []models.Room
	messages []models.Message
	current  *models.User
	msgSeq   uint64

	// lifecycle for reply sequences; Close cancels in-flight ones.
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New builds a Service. Users and rooms always reset to seed data; the
// message log is reloaded from the slot when one was persisted before.
func New(b *bus.Bus, slot cache.Slot, tokens *token.Issuer, delays Delays) (*Service, error) {
	now := time.Now()
	ctx, cancel := context.WithCancel(context.Background())
	s := &Service{
		bus:      b,
		slot:     slot,
		tokens:   tokens,
		delays:   delays,
		users:    seed.Users(now),
		rooms:    seed.Rooms(),
		messages: seed.Messages(now),
		ctx:      ctx,
		cancel:   cancel,
	}

	data, err := slot.Load(context.Background())
	if err != nil {
		cancel()
		return nil, fmt.Errorf("load message log: %w", err)
	}
	if len(data) > 0 {
		var saved []models.Message
		if err := json.Unmarshal(data, &saved); err != nil {
			// A corrupt slot falls back to seed data rather than
			// refusing to start.
			log.Printf("discarding unreadable message log: %v", err)
		} else {
			s.messages = saved
		}
	}

	return s, nil
}

// Close cancels in-flight reply sequences, waits for them to wind down and
// flushes the message log one last time.
func (s *Service) Close() error {
	s.cancel()
	s.wg.Wait()

	s.mu.Lock()
	data := s.snapshotLocked()
	s.mu.Unlock()
	s.store(data)
	return nil
}

// CurrentUser returns a copy of the session identity, if a session exists.
func (s *Service) CurrentUser() (models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return models.User{}, false
	}
	return *s.current, true
}

// Logout drops the session identity. Reply sequences already in flight keep
// running.
func (s *Service) Logout() {
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()
}

// pause waits the simulated round-trip time, aborting early when ctx ends.
func (s *Service) pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// publish fans an event out on the bus.
func (s *Service) publish(ev models.Event) {
	observability.IncEventPublished(string(ev.Kind()))
	s.bus.Publish(ev)
}

// snapshotLocked serializes the message log. Callers hold s.mu.
func (s *Service) snapshotLocked() []byte {
	data, err := json.Marshal(s.messages)
	if err != nil {
		log.Printf("marshal message log: %v", err)
		return nil
	}
	return data
}

// store writes a serialized log to the slot. The mutation already happened,
// so persistence ignores request cancellation.
func (s *Service) store(data []byte) {
	if data == nil {
		return
	}
	if err := s.slot.Store(context.Background(), data); err != nil {
		log.Printf("persist message log: %v", err)
	}
}

// nextMessageIDLocked derives a creation-time id. The sequence suffix keeps
// ids distinct when two messages land in the same millisecond.
func (s *Service) nextMessageIDLocked(now time.Time) string {
	s.msgSeq++
	return fmt.Sprintf("m%d-%d", now.UnixMilli(), s.msgSeq)
}

func (s *Service) freshUserIDLocked() int {
	for {
		id := rand.IntN(10000) + 10
		if s.findUserLocked(id) == -1 {
			return id
		}
	}
}

func (s *Service) findUserLocked(id int) int {
	for i := range s.users {
		if s.users[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Service) findRoomLocked(id int) int {
	for i := range s.rooms {
		if s.rooms[i].ID == id {
			return i
		}
	}
	return -1
}
