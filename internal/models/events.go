package models

// EventKind identifies one of the four event variants emitted by the
// simulation service.
type EventKind string

const (
	EventNewMessage     EventKind = "new_message"
	EventPresenceUpdate EventKind = "presence_update"
	EventMessagesRead   EventKind = "messages_read"
	EventTyping         EventKind = "typing"
)

// Event is the closed set of payloads carried over the bus. Handlers receive
// the payload by value where possible but must still treat nested slices as
// read-only.
type Event interface {
	Kind() EventKind
}

// NewMessageEvent announces a message appended to the log.
type NewMessageEvent struct {
	Message Message `json:"message"`
}

func (NewMessageEvent) Kind() EventKind { return EventNewMessage }

// PresenceUpdateEvent carries the full updated user record after a profile
// or status change.
type PresenceUpdateEvent struct {
	User User `json:"user"`
}

func (PresenceUpdateEvent) Kind() EventKind { return EventPresenceUpdate }

// MessagesReadEvent names the exact messages newly marked as read.
type MessagesReadEvent struct {
	RoomID       int      `json:"room_id"`
	ReadByUserID int      `json:"read_by_user_id"`
	MessageIDs   []string `json:"message_ids"`
}

func (MessagesReadEvent) Kind() EventKind { return EventMessagesRead }

// TypingEvent is ephemeral typing presence. There is no stored lifecycle;
// consumers apply their own bounded display policy.
type TypingEvent struct {
	RoomID   int  `json:"room_id"`
	UserID   int  `json:"user_id"`
	IsTyping bool `json:"is_typing"`
}

func (TypingEvent) Kind() EventKind { return EventTyping }
