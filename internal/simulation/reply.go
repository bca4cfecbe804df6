package simulation

import (
	"math/rand/v2"
	"time"

	"nexus-chat/internal/models"
	"nexus-chat/internal/observability"
)

// replyPhrases is the fixed set the scripted peer answers from.
var replyPhrases = []string{
	"That sounds great!",
	"Can you verify that?",
	"I'll take a look shortly.",
	"Awesome work.",
	"Let's sync up later.",
	"Could you clarify?",
}

// runReplySequence plays the scripted peer for one outgoing message:
//
//	wait, mark the room read by the responder,
//	wait, typing start,
//	wait, typing stop, reply message.
//
// Sequences are fire-and-forget. Overlapping sends interleave freely; the
// only cross-sequence guarantee consumers get is the order within one
// sequence. Close cancels sequences at their next wait point.
func (s *Service) runReplySequence(roomID, senderID int) {
	defer s.wg.Done()

	s.mu.Lock()
	idx := s.findRoomLocked(roomID)
	var others []int
	if idx != -1 {
		others = s.rooms[idx].OtherMembers(senderID)
	}
	s.mu.Unlock()

	if len(others) == 0 {
		observability.IncReplySequence("skipped")
		return
	}
	responder := others[rand.IntN(len(others))]

	if err := s.pause(s.ctx, s.delays.ReplyRead); err != nil {
		observability.IncReplySequence("cancelled")
		return
	}
	s.markRead(roomID, responder)

	if err := s.pause(s.ctx, s.delays.ReplyTypingLead); err != nil {
		observability.IncReplySequence("cancelled")
		return
	}
	s.publish(models.TypingEvent{RoomID: roomID, UserID: responder, IsTyping: true})

	if err := s.pause(s.ctx, s.delays.ReplyTyping); err != nil {
		observability.IncReplySequence("cancelled")
		return
	}
	s.publish(models.TypingEvent{RoomID: roomID, UserID: responder, IsTyping: false})

	s.mu.Lock()
	now := time.Now()
	msg := models.Message{
		ID:        s.nextMessageIDLocked(now) + "_reply",
		RoomID:    roomID,
		SenderID:  responder,
		Content:   replyPhrases[rand.IntN(len(replyPhrases))],
		Timestamp: now,
		Delivered: true,
		ReadBy:    []int{responder},
	}
	s.messages = append(s.messages, msg)
	data := s.snapshotLocked()
	s.mu.Unlock()

	s.store(data)
	s.publish(models.NewMessageEvent{Message: msg.Clone()})
	observability.IncReplySequence("completed")
}
