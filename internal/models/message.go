package models

import "time"

// Message represents a chat message. Messages are append-only; read_by only
// ever grows and never holds duplicates.
type Message struct {
	ID        string    `json:"id"`
	RoomID    int       `json:"room_id"`
	SenderID  int       `json:"sender_id"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	Delivered bool      `json:"delivered"`
	ReadBy    []int     `json:"read_by"`
}

// SeenBy reports whether userID is already in the read_by set.
func (m Message) SeenBy(userID int) bool {
	for _, id := range m.ReadBy {
		if id == userID {
			return true
		}
	}
	return false
}

// Clone returns a copy that does not share the read_by slice. Snapshots
// handed to callers must not alias the authoritative log.
func (m Message) Clone() Message {
	c := m
	c.ReadBy = append([]int(nil), m.ReadBy...)
	return c
}
