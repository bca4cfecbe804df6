package models

// Room represents a conversation: either a named group or a 1:1 chat whose
// display name is derived from the other member.
type Room struct {
	ID          int      `json:"id"`
	Name        string   `json:"name"`
	IsGroup     bool     `json:"is_group"`
	UnreadCount int      `json:"unread_count"`
	Members     []int    `json:"members"`
	LastMessage *Message `json:"last_message,omitempty"`
}

// HasMember reports whether userID belongs to the room.
func (r Room) HasMember(userID int) bool {
	for _, id := range r.Members {
		if id == userID {
			return true
		}
	}
	return false
}

// OtherMembers returns the member ids excluding userID.
func (r Room) OtherMembers(userID int) []int {
	others := make([]int, 0, len(r.Members))
	for _, id := range r.Members {
		if id != userID {
			others = append(others, id)
		}
	}
	return others
}
